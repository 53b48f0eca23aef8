package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Config holds the complete lightship configuration
type Config struct {
	Parser       ParserConfig       `yaml:"parser" mapstructure:"parser"`
	Matcher      MatcherConfig      `yaml:"matcher" mapstructure:"matcher"`
	GWP          GWPConfig          `yaml:"gwp" mapstructure:"gwp"`
	Catalog      CatalogConfig      `yaml:"catalog" mapstructure:"catalog"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
}

// ParserConfig controls the line recognizer
type ParserConfig struct {
	MinLineLength      int     `yaml:"min_line_length" mapstructure:"min_line_length"`         // Shorter trimmed lines are skipped
	ContextWindow      int     `yaml:"context_window" mapstructure:"context_window"`           // Raw lines kept on each side of a match
	CategoryConfidence float64 `yaml:"category_confidence" mapstructure:"category_confidence"` // Assigned when a marker context is active
}

// MatcherConfig controls catalog matching
type MatcherConfig struct {
	MinFragmentLength int     `yaml:"min_fragment_length" mapstructure:"min_fragment_length"` // Substring rules ignore shorter fragments
	ReviewThreshold   float64 `yaml:"review_threshold" mapstructure:"review_threshold"`       // Items below this confidence are queued for review
	MaxSuggestions    int     `yaml:"max_suggestions" mapstructure:"max_suggestions"`
}

// GWPConfig holds the emissions policy constants.
// These are configuration, not derived from input documents.
type GWPConfig struct {
	DefaultFactor   float64 `json:"default_factor" yaml:"default_factor" mapstructure:"default_factor"` // kg CO2e/kg for unidentified items
	ProductionRatio float64 `json:"production_ratio" yaml:"production_ratio" mapstructure:"production_ratio"`
	TransportRatio  float64 `json:"transport_ratio" yaml:"transport_ratio" mapstructure:"transport_ratio"`
	ProcessingRatio float64 `json:"processing_ratio" yaml:"processing_ratio" mapstructure:"processing_ratio"`
	BestPractice    float64 `json:"best_practice" yaml:"best_practice" mapstructure:"best_practice"`
	IndustryAverage float64 `json:"industry_average" yaml:"industry_average" mapstructure:"industry_average"`
	RegulatoryLimit float64 `json:"regulatory_limit" yaml:"regulatory_limit" mapstructure:"regulatory_limit"`
}

// CatalogConfig selects the material catalog store
type CatalogConfig struct {
	Store string `yaml:"store" mapstructure:"store"` // builtin, yaml, sqlite
	Path  string `yaml:"path" mapstructure:"path"`   // File for yaml/sqlite stores
}

// HTTPConfig controls fetching of remote exports
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// CacheConfig controls the fetched-export cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig controls per-host request rates for URL sources
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
	MaxTableRows  int  `yaml:"max_table_rows" mapstructure:"max_table_rows"` // 0 renders every material
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	Mode  string `yaml:"mode" mapstructure:"mode"`   // dev or prod
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
}

// LLMConfig holds optional narrative summary settings
type LLMConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model         string `yaml:"model" mapstructure:"model"`
	APIKey        string `yaml:"-" mapstructure:"api_key"` // Never written to config files
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	Timeout       int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	StrictSources bool   `yaml:"strict_sources" mapstructure:"strict_sources"`
	MaxTokens     int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// DefaultGWPConfig returns the default emissions policy
func DefaultGWPConfig() GWPConfig {
	return GWPConfig{
		DefaultFactor:   2.5,
		ProductionRatio: 0.75,
		TransportRatio:  0.15,
		ProcessingRatio: 0.10,
		BestPractice:    2200,
		IndustryAverage: 2850,
		RegulatoryLimit: 3500,
	}
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Parser: ParserConfig{
			MinLineLength:      3,
			ContextWindow:      2,
			CategoryConfidence: 0.9,
		},
		Matcher: MatcherConfig{
			MinFragmentLength: 3,
			ReviewThreshold:   0.8,
			MaxSuggestions:    5,
		},
		GWP: DefaultGWPConfig(),
		Catalog: CatalogConfig{
			Store: "builtin",
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Lightship/0.1 (+https://github.com/ppiankov/lightship)",
			MaxBodyBytes:  5_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".lightship-cache",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Logging: LoggingConfig{
			Mode:  "dev",
			Level: "warn",
		},
		LLM: LLMConfig{
			Timeout:       30,
			StrictSources: true,
			MaxTokens:     1000,
		},
	}
}

// ErrInvalidConfig is returned when configuration values are out of range
var ErrInvalidConfig = errors.New("invalid configuration")

// ratioTolerance bounds the rounding slack allowed when phase ratios are summed
const ratioTolerance = 1e-9

// Validate checks policy constants and limits
func (c *Config) Validate() error {
	if err := c.GWP.Validate(); err != nil {
		return err
	}
	if c.Parser.MinLineLength < 0 {
		return fmt.Errorf("%w: parser.min_line_length must be >= 0, got %d", ErrInvalidConfig, c.Parser.MinLineLength)
	}
	if c.Parser.ContextWindow < 0 {
		return fmt.Errorf("%w: parser.context_window must be >= 0, got %d", ErrInvalidConfig, c.Parser.ContextWindow)
	}
	if !inUnitRange(c.Parser.CategoryConfidence) {
		return fmt.Errorf("%w: parser.category_confidence must be in [0,1], got %v", ErrInvalidConfig, c.Parser.CategoryConfidence)
	}
	if !inUnitRange(c.Matcher.ReviewThreshold) {
		return fmt.Errorf("%w: matcher.review_threshold must be in [0,1], got %v", ErrInvalidConfig, c.Matcher.ReviewThreshold)
	}
	if c.Matcher.MinFragmentLength < 1 {
		return fmt.Errorf("%w: matcher.min_fragment_length must be >= 1, got %d", ErrInvalidConfig, c.Matcher.MinFragmentLength)
	}
	switch c.Catalog.Store {
	case "", "builtin":
	case "yaml", "sqlite":
		if c.Catalog.Path == "" {
			return fmt.Errorf("%w: catalog.path is required for the %s store", ErrInvalidConfig, c.Catalog.Store)
		}
	default:
		return fmt.Errorf("%w: unknown catalog store %q (supported: builtin, yaml, sqlite)", ErrInvalidConfig, c.Catalog.Store)
	}
	return nil
}

// Validate checks that factors are non-negative, ratios sum to 1 and benchmarks are ordered
func (g GWPConfig) Validate() error {
	if g.DefaultFactor < 0 {
		return fmt.Errorf("%w: gwp.default_factor must be >= 0, got %v", ErrInvalidConfig, g.DefaultFactor)
	}
	for name, r := range map[string]float64{
		"production_ratio": g.ProductionRatio,
		"transport_ratio":  g.TransportRatio,
		"processing_ratio": g.ProcessingRatio,
	} {
		if !inUnitRange(r) {
			return fmt.Errorf("%w: gwp.%s must be in [0,1], got %v", ErrInvalidConfig, name, r)
		}
	}
	sum := g.ProductionRatio + g.TransportRatio + g.ProcessingRatio
	if math.Abs(sum-1) > ratioTolerance {
		return fmt.Errorf("%w: gwp phase ratios must sum to 1, got %v", ErrInvalidConfig, sum)
	}
	if g.BestPractice < 0 || g.IndustryAverage < g.BestPractice || g.RegulatoryLimit < g.IndustryAverage {
		return fmt.Errorf("%w: gwp benchmarks must satisfy 0 <= best_practice <= industry_average <= regulatory_limit", ErrInvalidConfig)
	}
	return nil
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
