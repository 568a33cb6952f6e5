package config_test

import (
	"testing"

	"github.com/calque-lang/calque/pkg/config"
	"github.com/calque-lang/calque/pkg/types"
)

func TestParseFullConfig(t *testing.T) {
	doc := []byte(`
angle_unit: degrees
precision: 128
max_depth: 500
caching: true
cache_size: 1024
constants:
  g: 9.80665
  c: 299792458
extensions:
  - stat
  - num
`)
	cfg, err := config.Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	angle, err := cfg.Angle()
	if err != nil || angle != types.Degrees {
		t.Errorf("Angle = %v, %v", angle, err)
	}
	if cfg.Precision != 128 {
		t.Errorf("Precision = %d", cfg.Precision)
	}
	if cfg.MaxDepth != 500 {
		t.Errorf("MaxDepth = %d", cfg.MaxDepth)
	}
	if !cfg.Caching || cfg.CacheSize != 1024 {
		t.Errorf("caching = %v/%d", cfg.Caching, cfg.CacheSize)
	}
	if cfg.Constants["g"] != 9.80665 {
		t.Errorf("constants = %v", cfg.Constants)
	}
	if len(cfg.Extensions) != 2 {
		t.Errorf("extensions = %v", cfg.Extensions)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	angle, err := cfg.Angle()
	if err != nil || angle != types.Radians {
		t.Errorf("default angle = %v, %v", angle, err)
	}
	if cfg.CacheSize != 256 {
		t.Errorf("default cache size = %d", cfg.CacheSize)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad angle unit", "angle_unit: turns"},
		{"bad pack", "extensions: [statistics]"},
		{"negative depth", "max_depth: -1"},
		{"negative cache", "cache_size: -5"},
		{"malformed yaml", ":\n:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := config.Parse([]byte(tt.doc)); err == nil {
				t.Fatalf("expected error for %q", tt.doc)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load("/nonexistent/calque.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
