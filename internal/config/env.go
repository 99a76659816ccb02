package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override defaults.
const (
	EnvDBPath   = "INTUIT_DB_PATH"
	EnvLogLevel = "INTUIT_LOG_LEVEL"
	EnvConfig   = "INTUIT_CONFIG"
)

// Paths are the resolved file locations for a run.
type Paths struct {
	Config string
	DB     string
	Log    string
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; variables already set win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ResolvePaths applies environment overrides to the default paths.
func ResolvePaths() Paths {
	return Paths{
		Config: getEnv(EnvConfig, DefaultConfigPath()),
		DB:     getEnv(EnvDBPath, DefaultDBPath()),
		Log:    DefaultLogPath(),
	}
}

// LogLevel returns the level from the environment, then the config file,
// then "info".
func LogLevel(cfg FileConfig) string {
	if v := os.Getenv(EnvLogLevel); v != "" {
		return v
	}
	if cfg.Log.Level != nil && *cfg.Log.Level != "" {
		return *cfg.Log.Level
	}
	return "info"
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
