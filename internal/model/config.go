package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage backend names
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Config is the complete client configuration
type Config struct {
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Build   BuildConfig   `yaml:"build" mapstructure:"build"`
}

// StorageConfig selects where session state is persisted
type StorageConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // file, sqlite, memory, none
	Dir     string `yaml:"dir" mapstructure:"dir"`         // State directory for file/sqlite
	Cache   bool   `yaml:"cache" mapstructure:"cache"`     // Front durable backends with a memory layer
}

// LogConfig controls the diagnostic logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// BuildConfig drives version injection into static assets
type BuildConfig struct {
	Asset       string `yaml:"asset" mapstructure:"asset"`             // Text asset containing the placeholder
	Placeholder string `yaml:"placeholder" mapstructure:"placeholder"` // Literal token to replace
	VersionEnv  string `yaml:"version_env" mapstructure:"version_env"` // Env var holding the version
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Dir:     DefaultStateDir(),
			Cache:   true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Build: BuildConfig{
			Asset:       filepath.Join("src", "app.html"),
			Placeholder: "GIT_HASH_PLACEHOLDER",
			VersionEnv:  "PUBLIC_GIT_HASH",
		},
	}
}

// DefaultStateDir returns ~/.findings/state, or a relative fallback when the
// home directory cannot be determined.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".findings", "state")
	}
	return filepath.Join(home, ".findings", "state")
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	backend := strings.ToLower(c.Storage.Backend)
	switch backend {
	case BackendFile, BackendSQLite, BackendMemory, BackendNone:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}

	if (backend == BackendFile || backend == BackendSQLite) && c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir: required for %s backend", c.Storage.Backend)
	}

	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}

	if c.Build.Placeholder == "" {
		return fmt.Errorf("build.placeholder: must not be empty")
	}

	return nil
}
