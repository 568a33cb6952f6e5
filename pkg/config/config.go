// Package config loads Calque session configuration from YAML.
//
// A configuration file lets embedders ship session defaults — angle unit,
// numeric precision, recursion limits, caching, predefined constants and
// extension packs — without code changes:
//
//	angle_unit: degrees
//	precision: 128
//	max_depth: 500
//	caching: true
//	cache_size: 1024
//	constants:
//	  g: 9.80665
//	extensions:
//	  - stat
//	  - num
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/calque-lang/calque/pkg/types"
)

// Config holds session defaults loaded from YAML.
type Config struct {
	// AngleUnit is the trigonometric input mode: "radians" (default),
	// "degrees" or "gradians".
	AngleUnit string `yaml:"angle_unit"`
	// Precision is the mantissa precision in bits for arbitrary-precision
	// escapes. Zero keeps the evaluator default.
	Precision uint `yaml:"precision"`
	// MaxDepth limits function-call recursion. Zero keeps the default.
	MaxDepth int `yaml:"max_depth"`
	// MaxParseDepth limits grammar recursion. Zero keeps the default.
	MaxParseDepth int `yaml:"max_parse_depth"`
	// Caching enables the compiled-expression LRU cache.
	Caching bool `yaml:"caching"`
	// CacheSize is the LRU capacity when caching is enabled.
	CacheSize int `yaml:"cache_size"`
	// Constants are numeric bindings installed at session start.
	Constants map[string]float64 `yaml:"constants"`
	// Extensions names operator packs to install: "stat", "num".
	Extensions []string `yaml:"extensions"`
}

// Default returns the zero-value configuration with documented defaults
// applied.
func Default() *Config {
	return &Config{
		AngleUnit: "radians",
		CacheSize: 256,
	}
}

// Load reads a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration bytes and validates them.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values for consistency.
func (c *Config) Validate() error {
	if c.AngleUnit != "" {
		if _, err := c.Angle(); err != nil {
			return err
		}
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}
	if c.MaxParseDepth < 0 {
		return fmt.Errorf("max_parse_depth must be >= 0, got %d", c.MaxParseDepth)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be >= 0, got %d", c.CacheSize)
	}
	for name := range c.Constants {
		if name == "" {
			return fmt.Errorf("constants: empty name")
		}
	}
	for _, ext := range c.Extensions {
		switch ext {
		case "stat", "num":
		default:
			return fmt.Errorf("unknown extension pack %q", ext)
		}
	}
	return nil
}

// Angle resolves the configured angle unit.
func (c *Config) Angle() (types.AngleUnit, error) {
	if c.AngleUnit == "" {
		return types.Radians, nil
	}
	return types.ParseAngleUnit(c.AngleUnit)
}
