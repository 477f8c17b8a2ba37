package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/abhisek/adaptiq/internal/retry"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// Config selects and configures the question-generation backend.
type Config struct {
	Provider string

	Anthropic BackendConfig
	OpenAI    BackendConfig
	Gemini    BackendConfig
	Retry     RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

// BackendConfig is the per-provider connection setting. Model may be an
// alias from modelAliases or a provider model ID.
type BackendConfig struct {
	APIKey  string
	Model   string
	BaseURL string // OpenAI-compatible endpoints only
}

// RetryConfig configures retries of transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// Policy converts the config into a retry.Policy with ±20% jitter.
func (c RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		MaxAttempts:   c.MaxAttempts,
		InitialDelay:  c.InitialWait,
		MaxDelay:      c.MaxWait,
		BackoffFactor: c.Multiplier,
		Jitter:        0.2,
	}
}

// modelAliases maps short names to provider model IDs. Short, cheap models
// are the defaults: one question is a few hundred tokens.
var modelAliases = map[string]string{
	"claude-haiku":  "claude-haiku-4-5-20251001",
	"claude-sonnet": "claude-sonnet-4-20250514",
	"gpt-4o-mini":   "gpt-4o-mini",
	"gpt-4o":        "gpt-4o",
	"gemini-flash":  "gemini-2.0-flash",
	"gemini-pro":    "gemini-2.0-pro",
}

// resolveModel maps an alias to its model ID; anything else is used as is.
func resolveModel(name string) string {
	if id, ok := modelAliases[name]; ok {
		return id
	}
	return name
}

func DefaultConfig() Config {
	return Config{
		Provider:  ProviderAnthropic,
		Anthropic: BackendConfig{Model: "claude-haiku"},
		OpenAI:    BackendConfig{Model: "gpt-4o-mini"},
		Gemini:    BackendConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// backend returns the connection settings of the selected provider.
func (c Config) backend() (BackendConfig, bool) {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic, true
	case ProviderOpenAI:
		return c.OpenAI, true
	case ProviderGemini:
		return c.Gemini, true
	}
	return BackendConfig{}, false
}

// ConfigFromEnv builds a Config from ADAPTIQ_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("ADAPTIQ_LLM_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	for prefix, b := range map[string]*BackendConfig{
		"ADAPTIQ_ANTHROPIC": &cfg.Anthropic,
		"ADAPTIQ_OPENAI":    &cfg.OpenAI,
		"ADAPTIQ_GEMINI":    &cfg.Gemini,
	} {
		if v := os.Getenv(prefix + "_API_KEY"); v != "" {
			b.APIKey = v
		}
		if v := os.Getenv(prefix + "_MODEL"); v != "" {
			b.Model = v
		}
	}
	if v := os.Getenv("ADAPTIQ_OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}

	if v := os.Getenv("ADAPTIQ_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("ADAPTIQ_LLM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retry.MaxAttempts = n
		}
	}

	return cfg
}

// DiscoverConfig looks for a vendor API key (Gemini, then OpenAI, then
// Anthropic) and returns a Config for the first one found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, c := range []struct {
		env      string
		provider string
		dst      *BackendConfig
	}{
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic},
	} {
		if k := os.Getenv(c.env); k != "" {
			cfg.Provider = c.provider
			c.dst.APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	b, ok := c.backend()
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if b.APIKey == "" {
		return fmt.Errorf("ADAPTIQ_%s_API_KEY is required for the %s provider", envName(c.Provider), c.Provider)
	}
	return nil
}

func envName(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC"
	case ProviderOpenAI:
		return "OPENAI"
	default:
		return "GEMINI"
	}
}
