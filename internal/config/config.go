// Package config holds the cs-helper configuration: declaration-call
// detection settings, entry discovery patterns, and cache sizing.
package config

import (
	"github.com/mi-examples/cs-helper/internal/analyzer"
)

// Config represents the complete cs-helper configuration.
// It can be loaded from .cs-helper/config.yml with environment variable
// overrides.
type Config struct {
	Params ParamsConfig `yaml:"params" mapstructure:"params"`
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
}

// ParamsConfig configures declaration-site detection.
type ParamsConfig struct {
	Function      string   `yaml:"function" mapstructure:"function"`             // parameter-declaration callee name
	Extensions    []string `yaml:"extensions" mapstructure:"extensions"`         // specifier probe order
	CommentWindow int      `yaml:"comment_window" mapstructure:"comment_window"` // max lines between a shape comment and its call
}

// PathsConfig defines which files are treated as entry scripts.
type PathsConfig struct {
	Entries []string `yaml:"entries" mapstructure:"entries"` // glob patterns for entry scripts
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// CacheConfig defines extraction cache behavior.
type CacheConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"` // max memoized entry results
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Params: ParamsConfig{
			Function:      analyzer.DefaultFunction,
			Extensions:    analyzer.DefaultExtensions,
			CommentWindow: analyzer.DefaultCommentWindow,
		},
		Paths: PathsConfig{
			Entries: []string{
				"**/*.ts",
				"**/*.tsx",
				"**/*.js",
				"**/*.jsx",
			},
			Ignore: []string{
				"node_modules/**",
				"dist/**",
				"build/**",
				".git/**",
				"**/*.d.ts",
				"**/*.test.ts",
				"**/*.spec.ts",
			},
		},
		Cache: CacheConfig{
			Capacity: analyzer.DefaultCacheCapacity,
		},
	}
}

// EngineOptions converts the configuration into analyzer engine options.
func (c *Config) EngineOptions() analyzer.Options {
	return analyzer.Options{
		Function:      c.Params.Function,
		CommentWindow: c.Params.CommentWindow,
		Extensions:    c.Params.Extensions,
		CacheCapacity: c.Cache.Capacity,
	}
}
