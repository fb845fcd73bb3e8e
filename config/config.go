// Package config loads module settings from the environment and exposes
// functional options for programmatic construction.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/UnfitBeard/prompt-eval/utils"
)

// Config holds every tunable of the module: generator endpoint and
// sampling, scorer endpoint, example store location, loop thresholds and
// the per-call timeouts mandated for the evaluation and improve paths.
type Config struct {
	Provider string `env:"PROMPTEVAL_PROVIDER" envDefault:"gemini"`
	Model    string `env:"PROMPTEVAL_MODEL" envDefault:"gemini-2.5-flash"`
	Endpoint string `env:"PROMPTEVAL_LLM_ENDPOINT" envDefault:"https://generativelanguage.googleapis.com"`
	APIKey   string `env:"GEMINI_API_KEY"`

	// ScorerEndpoint points at the external scoring service. Empty means
	// the built-in heuristic scorer is used instead.
	ScorerEndpoint string `env:"PROMPTEVAL_SCORER_ENDPOINT"`

	StorePath  string `env:"PROMPTEVAL_STORE_PATH"`
	Collection string `env:"PROMPTEVAL_COLLECTION" envDefault:"prompt_examples"`

	OverallThreshold float64 `env:"PROMPTEVAL_THRESHOLD" envDefault:"7.0"`
	MaxRetries       int     `env:"PROMPTEVAL_MAX_RETRIES" envDefault:"2"`
	RetrieveK        int     `env:"PROMPTEVAL_RETRIEVE_K" envDefault:"6"`
	MaxCandidates    int     `env:"PROMPTEVAL_MAX_CANDIDATES" envDefault:"3"`
	PreviewTokens    int     `env:"PROMPTEVAL_PREVIEW_TOKENS" envDefault:"150"`
	CacheSize        int     `env:"PROMPTEVAL_CACHE_SIZE" envDefault:"256"`

	// The evaluation call is the fast diagnostic path; improve calls
	// produce more tokens and get a longer budget.
	EvalTimeout     time.Duration `env:"PROMPTEVAL_EVAL_TIMEOUT" envDefault:"10s"`
	ImproveTimeout  time.Duration `env:"PROMPTEVAL_IMPROVE_TIMEOUT" envDefault:"30s"`
	ScoreTimeout    time.Duration `env:"PROMPTEVAL_SCORE_TIMEOUT" envDefault:"5s"`
	RetrieveTimeout time.Duration `env:"PROMPTEVAL_RETRIEVE_TIMEOUT" envDefault:"5s"`

	LLMMaxRetries int           `env:"PROMPTEVAL_LLM_MAX_RETRIES" envDefault:"2"`
	RetryDelay    time.Duration `env:"PROMPTEVAL_RETRY_DELAY" envDefault:"2s"`
	RateEvery     time.Duration `env:"PROMPTEVAL_RATE_EVERY" envDefault:"1s"`
	RateBurst     int           `env:"PROMPTEVAL_RATE_BURST" envDefault:"2"`

	LogLevel utils.LogLevel `env:"PROMPTEVAL_LOG_LEVEL" envDefault:"WARN"`
}

// LoadConfig builds a Config from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

type ConfigOption func(*Config)

// NewConfig returns a Config with the same defaults the env tags declare,
// then applies the given options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := &Config{
		Provider:         "gemini",
		Model:            "gemini-2.5-flash",
		Endpoint:         "https://generativelanguage.googleapis.com",
		Collection:       "prompt_examples",
		OverallThreshold: 7.0,
		MaxRetries:       2,
		RetrieveK:        6,
		MaxCandidates:    3,
		PreviewTokens:    150,
		CacheSize:        256,
		EvalTimeout:      10 * time.Second,
		ImproveTimeout:   30 * time.Second,
		ScoreTimeout:     5 * time.Second,
		RetrieveTimeout:  5 * time.Second,
		LLMMaxRetries:    2,
		RetryDelay:       2 * time.Second,
		RateEvery:        time.Second,
		RateBurst:        2,
		LogLevel:         utils.LogLevelWarn,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func SetProvider(provider string) ConfigOption {
	return func(c *Config) { c.Provider = provider }
}

func SetModel(model string) ConfigOption {
	return func(c *Config) { c.Model = model }
}

func SetEndpoint(endpoint string) ConfigOption {
	return func(c *Config) { c.Endpoint = endpoint }
}

func SetAPIKey(key string) ConfigOption {
	return func(c *Config) { c.APIKey = key }
}

func SetScorerEndpoint(endpoint string) ConfigOption {
	return func(c *Config) { c.ScorerEndpoint = endpoint }
}

func SetStorePath(path string) ConfigOption {
	return func(c *Config) { c.StorePath = path }
}

func SetCollection(name string) ConfigOption {
	return func(c *Config) { c.Collection = name }
}

func SetOverallThreshold(threshold float64) ConfigOption {
	return func(c *Config) { c.OverallThreshold = threshold }
}

func SetMaxRetries(n int) ConfigOption {
	return func(c *Config) { c.MaxRetries = n }
}

func SetRetrieveK(k int) ConfigOption {
	return func(c *Config) { c.RetrieveK = k }
}

func SetMaxCandidates(n int) ConfigOption {
	return func(c *Config) { c.MaxCandidates = n }
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) { c.LogLevel = level }
}
