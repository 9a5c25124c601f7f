package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock" // no network; scripted responses only
)

// Config selects a vendor and carries the settings for every vendor, so
// switching Provider needs no other change.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig

	// Retry is for auxiliary calls such as topic introductions. Question
	// generation has its own attempt budget in the acquisition pipeline.
	Retry RetryConfig

	// Timeout bounds one provider call, not a sequence of retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // empty means api.openai.com
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string // vendor-qualified, e.g. "openai/gpt-4o"
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider:   ProviderOpenAI,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "openai/gpt-4o"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 45 * time.Second,
	}
}

// vendor binds a provider name to its fields in Config and to the
// environment variables that fill them.
type vendor struct {
	name   string
	envKey string // QUIZWHIZ_* key variable
	stdKey string // the vendor's own conventional variable
	fields func(c *Config) (key, model, baseURL *string)
}

// vendors is in discovery priority order.
var vendors = []vendor{
	{ProviderOpenAI, "QUIZWHIZ_OPENAI_API_KEY", "OPENAI_API_KEY", func(c *Config) (*string, *string, *string) {
		return &c.OpenAI.APIKey, &c.OpenAI.Model, &c.OpenAI.BaseURL
	}},
	{ProviderGemini, "QUIZWHIZ_GEMINI_API_KEY", "GEMINI_API_KEY", func(c *Config) (*string, *string, *string) {
		return &c.Gemini.APIKey, &c.Gemini.Model, &c.Gemini.BaseURL
	}},
	{ProviderAnthropic, "QUIZWHIZ_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY", func(c *Config) (*string, *string, *string) {
		return &c.Anthropic.APIKey, &c.Anthropic.Model, nil
	}},
	{ProviderOpenRouter, "QUIZWHIZ_OPENROUTER_API_KEY", "OPENROUTER_API_KEY", func(c *Config) (*string, *string, *string) {
		return &c.OpenRouter.APIKey, &c.OpenRouter.Model, &c.OpenRouter.BaseURL
	}},
}

func lookupVendor(name string) (vendor, bool) {
	for _, v := range vendors {
		if v.name == name {
			return v, true
		}
	}
	return vendor{}, false
}

// ConfigFromEnv overlays QUIZWHIZ_* variables on DefaultConfig:
// QUIZWHIZ_LLM_PROVIDER, QUIZWHIZ_<VENDOR>_API_KEY, _MODEL and _BASE_URL,
// QUIZWHIZ_LLM_TIMEOUT (a Go duration) and QUIZWHIZ_LLM_RETRIES.
// Unparseable values are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	setenv(&cfg.Provider, "QUIZWHIZ_LLM_PROVIDER")

	for _, v := range vendors {
		key, model, baseURL := v.fields(&cfg)
		prefix := v.envKey[:len(v.envKey)-len("API_KEY")]
		setenv(key, v.envKey)
		setenv(model, prefix+"MODEL")
		if baseURL != nil {
			setenv(baseURL, prefix+"BASE_URL")
		}
	}

	if d, err := time.ParseDuration(os.Getenv("QUIZWHIZ_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("QUIZWHIZ_LLM_RETRIES")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	return cfg
}

func setenv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig picks the first vendor whose conventional key variable
// (OPENAI_API_KEY, GEMINI_API_KEY, ...) is set.
func DiscoverConfig() (Config, bool) {
	for _, v := range vendors {
		k := os.Getenv(v.stdKey)
		if k == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = v.name
		key, _, _ := v.fields(&cfg)
		*key = k
		return cfg, true
	}
	return Config{}, false
}

// Resolve uses the QUIZWHIZ_* configuration when it is complete and
// otherwise falls back to DiscoverConfig, keeping the configured timeout
// and retry budget.
func Resolve() Config {
	cfg := ConfigFromEnv()
	if cfg.Validate() == nil {
		return cfg
	}
	if found, ok := DiscoverConfig(); ok {
		found.Timeout = cfg.Timeout
		found.Retry = cfg.Retry
		return found
	}
	return cfg
}

// Validate checks that the selected vendor has an API key.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	v, ok := lookupVendor(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key, _, _ := v.fields(&c); *key == "" {
		return fmt.Errorf("%s is required for the %s provider", v.envKey, v.name)
	}
	return nil
}
