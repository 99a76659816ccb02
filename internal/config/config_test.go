package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Game.Mode != nil || cfg.Log.Level != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[game]
mode = "blind"
artifacts = "/tmp/list.txt"

[stats]
period = "week"
window = 3

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Game.Mode == nil || *cfg.Game.Mode != "blind" {
		t.Fatalf("unexpected mode: %v", cfg.Game.Mode)
	}
	if cfg.Game.Artifacts == nil || *cfg.Game.Artifacts != "/tmp/list.txt" {
		t.Fatalf("unexpected artifacts: %v", cfg.Game.Artifacts)
	}
	if cfg.Stats.Period == nil || *cfg.Stats.Period != "week" || cfg.Stats.Window == nil || *cfg.Stats.Window != 3 {
		t.Fatalf("unexpected stats config: %+v", cfg.Stats)
	}
	if cfg.Game.Sound != nil {
		t.Fatalf("expected unset sound")
	}
	if got := LogLevel(cfg); got != "debug" {
		t.Fatalf("expected debug level, got %q", got)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[game]\nmodee = \"blind\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "game.modee") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := EnsureFile(path); err != nil {
		t.Fatalf("ensure file: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := EnsureFile(path); err != nil {
		t.Fatalf("ensure existing file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "warn") {
		t.Fatalf("existing config was overwritten")
	}
}

func TestResolvePathsUsesEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvConfig, "")

	paths := ResolvePaths()
	if paths.Config != filepath.Join(dir, "cfg", "intuit", "config.toml") {
		t.Fatalf("unexpected config path %q", paths.Config)
	}
	if paths.DB != filepath.Join(dir, "data", "intuit", "intuit.db") {
		t.Fatalf("unexpected db path %q", paths.DB)
	}
	if paths.Log != filepath.Join(dir, "state", "intuit", "intuit.log") {
		t.Fatalf("unexpected log path %q", paths.Log)
	}

	t.Setenv(EnvDBPath, filepath.Join(dir, "other.db"))
	if got := ResolvePaths().DB; got != filepath.Join(dir, "other.db") {
		t.Fatalf("expected env db path, got %q", got)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("INTUIT_LOG_LEVEL=debug\nINTUIT_TEST_ONLY=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv("INTUIT_TEST_ONLY", "")
	if err := os.Unsetenv("INTUIT_TEST_ONLY"); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}
	LoadDotEnv(envFile, filepath.Join(dir, "missing.env"))
	if got := os.Getenv("INTUIT_TEST_ONLY"); got != "from-file" {
		t.Fatalf("expected value from .env, got %q", got)
	}
	if got := LogLevel(FileConfig{}); got != "warn" {
		t.Fatalf("expected environment to win, got %q", got)
	}
}
