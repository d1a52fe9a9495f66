package config

import (
	"fmt"

	"github.com/mvp-joe/project-digest/internal/digest"
)

// Config represents the complete digest configuration.
// It can be loaded from .digest/config.yml with environment variable overrides.
type Config struct {
	Tokens TokensConfig `yaml:"tokens" mapstructure:"tokens"`
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Strict bool         `yaml:"strict" mapstructure:"strict"`
}

// TokensConfig sets the document size thresholds.
type TokensConfig struct {
	Target int `yaml:"target" mapstructure:"target"` // simple/standard boundary
	Warn   int `yaml:"warn" mapstructure:"warn"`     // warning above this
	Error  int `yaml:"error" mapstructure:"error"`   // hard limit
}

// PathsConfig defines which files to process and which to skip.
type PathsConfig struct {
	Roots   []string `yaml:"roots" mapstructure:"roots"`     // directories bare imports resolve against
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// OutputConfig defines where digest documents are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"` // relative to the project root
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Tokens: TokensConfig{
			Target: 250,
			Warn:   500,
			Error:  1000,
		},
		Paths: PathsConfig{
			Roots: []string{"src", "lib", "."},
			Include: []string{
				"**/*.ts",
				"**/*.tsx",
				"**/*.js",
				"**/*.jsx",
				"**/*.go",
				"**/*.py",
				"**/*.rs",
				"**/*.rb",
				"**/*.cs",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
				"**/*_test.go",
				"**/*.test.ts",
				"**/*.test.tsx",
				"**/*.spec.ts",
			},
		},
		Output: OutputConfig{
			Dir: ".digest",
		},
	}
}

// Thresholds converts the token settings into the form the digest and
// validate packages take.
func (c *Config) Thresholds() digest.Thresholds {
	return digest.Thresholds{
		Target: c.Tokens.Target,
		Warn:   c.Tokens.Warn,
		Error:  c.Tokens.Error,
	}
}

// Validate checks the configuration for consistency.
func Validate(cfg *Config) error {
	if cfg.Tokens.Target <= 0 {
		return fmt.Errorf("tokens.target must be positive, got %d", cfg.Tokens.Target)
	}
	if cfg.Tokens.Warn < cfg.Tokens.Target {
		return fmt.Errorf("tokens.warn (%d) must be at least tokens.target (%d)",
			cfg.Tokens.Warn, cfg.Tokens.Target)
	}
	if cfg.Tokens.Error < cfg.Tokens.Warn {
		return fmt.Errorf("tokens.error (%d) must be at least tokens.warn (%d)",
			cfg.Tokens.Error, cfg.Tokens.Warn)
	}
	if cfg.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	if len(cfg.Paths.Include) == 0 {
		return fmt.Errorf("paths.include must not be empty")
	}
	return nil
}
