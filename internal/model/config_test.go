package model

import (
	"errors"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}

	if cfg.GWP.DefaultFactor != 2.5 {
		t.Errorf("Expected default factor 2.5, got %v", cfg.GWP.DefaultFactor)
	}
	if cfg.Parser.CategoryConfidence != 0.9 {
		t.Errorf("Expected category confidence 0.9, got %v", cfg.Parser.CategoryConfidence)
	}
	if cfg.Parser.ContextWindow != 2 {
		t.Errorf("Expected context window 2, got %d", cfg.Parser.ContextWindow)
	}
}

func TestGWPConfig_Validate_RatiosMustSumToOne(t *testing.T) {
	g := DefaultGWPConfig()
	g.TransportRatio = 0.2

	err := g.Validate()
	if err == nil {
		t.Fatal("Expected error for ratios summing to 1.05")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestGWPConfig_Validate_NegativeFactor(t *testing.T) {
	g := DefaultGWPConfig()
	g.DefaultFactor = -1

	if err := g.Validate(); err == nil {
		t.Error("Expected error for negative default factor")
	}
}

func TestGWPConfig_Validate_BenchmarkOrder(t *testing.T) {
	g := DefaultGWPConfig()
	g.IndustryAverage = 1000

	if err := g.Validate(); err == nil {
		t.Error("Expected error when industry average is below best practice")
	}
}

func TestConfig_Validate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"category confidence above 1", func(c *Config) { c.Parser.CategoryConfidence = 1.5 }},
		{"negative context window", func(c *Config) { c.Parser.ContextWindow = -1 }},
		{"review threshold below 0", func(c *Config) { c.Matcher.ReviewThreshold = -0.1 }},
		{"zero fragment length", func(c *Config) { c.Matcher.MinFragmentLength = 0 }},
		{"sqlite store without path", func(c *Config) { c.Catalog.Store = "sqlite" }},
		{"unknown store", func(c *Config) { c.Catalog.Store = "postgres" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSubjectFromReport(t *testing.T) {
	r := &Report{}
	if got := SubjectFromReport(r); got != "empty" {
		t.Errorf("Expected 'empty', got %q", got)
	}

	r.Documents = []ParsedDocument{{FileName: "cantiere_a.txt"}}
	if got := SubjectFromReport(r); got != "cantiere_a.txt" {
		t.Errorf("Expected file name, got %q", got)
	}

	r.Project.Name = "M/Y Aurora"
	if got := SubjectFromReport(r); got != "M/Y Aurora" {
		t.Errorf("Expected project name, got %q", got)
	}
}
