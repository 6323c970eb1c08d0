package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CS_HELPER_*)
// 2. Config file (.cs-helper/config.yml or .cs-helper/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".cs-helper")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("CS_HELPER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("params.function")
	v.BindEnv("params.comment_window")
	v.BindEnv("cache.capacity")

	defaults := Default()
	v.SetDefault("params.function", defaults.Params.Function)
	v.SetDefault("params.extensions", defaults.Params.Extensions)
	v.SetDefault("params.comment_window", defaults.Params.CommentWindow)
	v.SetDefault("paths.entries", defaults.Paths.Entries)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)
	v.SetDefault("cache.capacity", defaults.Cache.Capacity)

	// A missing config file is fine; defaults and env vars still apply.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadFromDir is a convenience wrapper over NewLoader(rootDir).Load().
func LoadFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
