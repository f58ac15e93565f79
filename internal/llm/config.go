package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config selects and configures the model provider. It is the llm
// section of config.yaml.
type Config struct {
	// Provider is one of anthropic, openai, gemini, openrouter or mock.
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout bounds one Generate call including its retries.
	Timeout time.Duration `yaml:"timeout"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"` // for compatible gateways
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`

	// SiteURL is sent as the HTTP-Referer attribution header when set.
	SiteURL string `yaml:"site_url"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`

	// RetryInvalid allows one more attempt after a response fails schema
	// validation.
	RetryInvalid bool `yaml:"retry_invalid"`

	// RetryUnavailable retries provider outages and network errors.
	RetryUnavailable bool `yaml:"retry_unavailable"`
}

func DefaultConfig() Config {
	return Config{
		Provider:   "gemini",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-pro"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: time.Minute,
	}
}

// keyed describes a provider that needs an API key.
type keyed struct {
	name   string
	envKey string // conventional vendor variable used by Discover
	key    func(*Config) *string
	model  func(*Config) *string
}

// providers is in Discover's order of preference.
var providers = []keyed{
	{"gemini", "GEMINI_API_KEY",
		func(c *Config) *string { return &c.Gemini.APIKey },
		func(c *Config) *string { return &c.Gemini.Model }},
	{"openai", "OPENAI_API_KEY",
		func(c *Config) *string { return &c.OpenAI.APIKey },
		func(c *Config) *string { return &c.OpenAI.Model }},
	{"anthropic", "ANTHROPIC_API_KEY",
		func(c *Config) *string { return &c.Anthropic.APIKey },
		func(c *Config) *string { return &c.Anthropic.Model }},
	{"openrouter", "OPENROUTER_API_KEY",
		func(c *Config) *string { return &c.OpenRouter.APIKey },
		func(c *Config) *string { return &c.OpenRouter.Model }},
}

func lookupProvider(name string) (keyed, bool) {
	for _, p := range providers {
		if p.name == name {
			return p, true
		}
	}
	return keyed{}, false
}

func envName(provider, field string) string {
	return "MISTAKECOACH_" + strings.ToUpper(provider) + "_" + field
}

func setFromEnv(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// ApplyEnv overrides cfg with any MISTAKECOACH_* variables that are set,
// e.g. MISTAKECOACH_LLM_PROVIDER or MISTAKECOACH_GEMINI_API_KEY.
func ApplyEnv(cfg *Config) {
	setFromEnv(&cfg.Provider, "MISTAKECOACH_LLM_PROVIDER")
	for _, p := range providers {
		setFromEnv(p.key(cfg), envName(p.name, "API_KEY"))
		setFromEnv(p.model(cfg), envName(p.name, "MODEL"))
	}
	setFromEnv(&cfg.OpenAI.BaseURL, "MISTAKECOACH_OPENAI_BASE_URL")
}

// Discover picks the first provider whose vendor API key variable is set,
// such as GEMINI_API_KEY. It reports whether one was found.
func Discover(cfg *Config) bool {
	for _, p := range providers {
		if k := os.Getenv(p.envKey); k != "" {
			cfg.Provider = p.name
			*p.key(cfg) = k
			return true
		}
	}
	return false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	p, ok := lookupProvider(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if *p.key(&c) == "" {
		return fmt.Errorf("%s is required for the %s provider", envName(p.name, "API_KEY"), p.name)
	}
	return nil
}
