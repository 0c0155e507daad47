package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds LLM provider configuration.
type Config struct {
	// Provider is one of "openai", "anthropic", "gemini", "openrouter" or
	// "mock".
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout bounds one request including retries.
	Timeout time.Duration `yaml:"timeout"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"-"`
	Model  string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"` // for OpenAI-compatible gateways
}

type GeminiConfig struct {
	APIKey string `yaml:"-"`
	Model  string `yaml:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig targets OpenAI's small chat model.
func DefaultConfig() Config {
	return Config{
		Provider:   "openai",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "openai/gpt-4o-mini"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// envOverrides maps QUDURAT_* variables onto config fields.
func envOverrides(cfg *Config) []struct {
	key string
	dst *string
} {
	return []struct {
		key string
		dst *string
	}{
		{"QUDURAT_LLM_PROVIDER", &cfg.Provider},
		{"QUDURAT_ANTHROPIC_API_KEY", &cfg.Anthropic.APIKey},
		{"QUDURAT_ANTHROPIC_MODEL", &cfg.Anthropic.Model},
		{"QUDURAT_OPENAI_API_KEY", &cfg.OpenAI.APIKey},
		{"QUDURAT_OPENAI_MODEL", &cfg.OpenAI.Model},
		{"QUDURAT_OPENAI_BASE_URL", &cfg.OpenAI.BaseURL},
		{"QUDURAT_GEMINI_API_KEY", &cfg.Gemini.APIKey},
		{"QUDURAT_GEMINI_MODEL", &cfg.Gemini.Model},
		{"QUDURAT_OPENROUTER_API_KEY", &cfg.OpenRouter.APIKey},
		{"QUDURAT_OPENROUTER_MODEL", &cfg.OpenRouter.Model},
		{"QUDURAT_OPENROUTER_BASE_URL", &cfg.OpenRouter.BaseURL},
	}
}

// ApplyEnv overlays QUDURAT_* variables on cfg. When no provider-specific
// key is set, the vendor variables (OPENAI_API_KEY and friends) are tried.
func ApplyEnv(cfg *Config) {
	for _, o := range envOverrides(cfg) {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
	if d := os.Getenv("QUDURAT_LLM_TIMEOUT"); d != "" {
		if t, err := time.ParseDuration(d); err == nil {
			cfg.Timeout = t
		}
	}
	if cfg.Validate() == nil || os.Getenv("QUDURAT_LLM_PROVIDER") != "" {
		return
	}
	if found, ok := DiscoverConfig(); ok {
		cfg.Provider = found.Provider
		cfg.OpenAI.APIKey = firstNonEmpty(cfg.OpenAI.APIKey, found.OpenAI.APIKey)
		cfg.Anthropic.APIKey = firstNonEmpty(cfg.Anthropic.APIKey, found.Anthropic.APIKey)
		cfg.Gemini.APIKey = firstNonEmpty(cfg.Gemini.APIKey, found.Gemini.APIKey)
		cfg.OpenRouter.APIKey = firstNonEmpty(cfg.OpenRouter.APIKey, found.OpenRouter.APIKey)
	}
}

// ConfigFromEnv builds a Config from the defaults and the environment.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// DiscoverConfig looks through the vendor API key variables, OpenAI first, and
// returns a Config for the first provider with a key.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "anthropic":
		key, env = c.Anthropic.APIKey, "QUDURAT_ANTHROPIC_API_KEY"
	case "openai":
		key, env = c.OpenAI.APIKey, "QUDURAT_OPENAI_API_KEY"
	case "gemini":
		key, env = c.Gemini.APIKey, "QUDURAT_GEMINI_API_KEY"
	case "openrouter":
		key, env = c.OpenRouter.APIKey, "QUDURAT_OPENROUTER_API_KEY"
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
