package model

import "time"

// Config is the process-wide configuration record. Built once at
// startup from flags/env/config file and read-only afterward.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Limits      LimitsConfig      `yaml:"limits"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// LLMConfig configures the model gateway and the fallback chain.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai", "anthropic", "ollama"
	APIKey   string `yaml:"-"`        // Never serialized; from env only
	BaseURL  string `yaml:"base_url"` // Custom endpoint (Groq, Ollama, proxies)

	// Model is the preferred variant; FallbackModels are tried in order
	// after it when calls fail.
	Model          string   `yaml:"model"`
	FallbackModels []string `yaml:"fallback_models"`

	// FastModel is the single-shot low-latency variant used by ask mode.
	FastModel string `yaml:"fast_model"`

	Timeout     time.Duration `yaml:"timeout"`      // Per-call timeout
	MaxTokens   int           `yaml:"max_tokens"`   //
	Temperature float32       `yaml:"temperature"`  //
	MaxAttempts int           `yaml:"max_attempts"` // Per-variant attempts on transient failure
	BaseDelay   time.Duration `yaml:"base_delay"`   // Linear backoff unit

	// RatePerSecond throttles outbound calls per model variant (0 = off).
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// LimitsConfig caps how much document text is embedded in prompts.
// Cost/latency control, not correctness.
type LimitsConfig struct {
	SummaryChars    int `yaml:"summary_chars"`
	ExtractionChars int `yaml:"extraction_chars"`
}

// CacheConfig configures completion caching.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig controls batch processing parallelism.
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers"`
}

// OutputConfig controls rendering behavior.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			FallbackModels: []string{"gpt-4o"},
			FastModel:      "gpt-4o-mini",
			Timeout:        30 * time.Second,
			MaxTokens:      1600,
			Temperature:    0,
			MaxAttempts:    3,
			BaseDelay:      time.Second,
		},
		Limits: LimitsConfig{
			SummaryChars:    8000,
			ExtractionChars: 16000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
