// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game  GameConfig  `toml:"game"`
	Stats StatsConfig `toml:"stats"`
	Log   LogConfig   `toml:"log"`
}

// GameConfig maps play settings.
type GameConfig struct {
	Mode         *string `toml:"mode"`
	Artifacts    *string `toml:"artifacts"`
	ArtifactsDir *string `toml:"artifacts-dir"`
	Sound        *bool   `toml:"sound"`
}

// StatsConfig maps stats view settings.
type StatsConfig struct {
	Period *string `toml:"period"`
	Window *int    `toml:"window"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written when the config command creates a new file.
const Template = `# intuit configuration

[game]
# mode = "default"        # default or blind
# artifacts = ""          # file with one artifact per line
# artifacts-dir = ""      # directory artifact files are resolved against
# sound = true

[stats]
# period = "all"          # all, today or week
# window = 1              # moving average window for curves

[log]
# level = "info"
# file = ""
`

// EnsureFile creates path with Template when it does not exist.
func EnsureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
