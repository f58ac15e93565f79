package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/mistakecoach/internal/llm"
)

// Config is the full application configuration.
type Config struct {
	LLM      llm.Config  `yaml:"llm"`
	Voice    VoiceConfig `yaml:"voice"`
	Data     DataConfig  `yaml:"data"`
	LogLevel string      `yaml:"log_level"`
}

// VoiceConfig controls the guided voice flow and its speech engines.
type VoiceConfig struct {
	// SilenceTimeout is how long one listen waits for speech.
	SilenceTimeout time.Duration `yaml:"silence_timeout"`

	// MaxReprompts is how many times silence is re-prompted before the
	// flow disengages.
	MaxReprompts int `yaml:"max_reprompts"`

	// Engine selects the speech backend: "console" or "openai".
	Engine string `yaml:"engine"`

	// TTSVoice is the OpenAI voice name used by the openai engine.
	TTSVoice string `yaml:"tts_voice"`

	// Player is a shell command that plays mp3 audio read from stdin.
	Player string `yaml:"player"`

	// Recorder is a shell command that writes one wav utterance to stdout.
	Recorder string `yaml:"recorder"`
}

// DataConfig locates persisted state.
type DataConfig struct {
	DBPath string `yaml:"db_path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM: llm.DefaultConfig(),
		Voice: VoiceConfig{
			SilenceTimeout: 15 * time.Second,
			MaxReprompts:   2,
			Engine:         "console",
			TTSVoice:       "alloy",
			Player:         "ffplay -nodisp -autoexit -loglevel quiet -",
			Recorder:       "sox -q -d -t wav - silence 1 0.1 1% 1 1.5 1% trim 0 30",
		},
		LogLevel: "info",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/mistakecoach/config.yaml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "mistakecoach", "config.yaml"), nil
}

// Load builds the configuration from defaults, the YAML file at path,
// MISTAKECOACH_* environment variables and finally the standard provider
// key variables. An empty path means DefaultPath; a missing default file
// is not an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	cfg := Default()
	if err := applyFile(&cfg, path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no config file", "path", path)
		} else {
			return Config{}, err
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.LLM.Validate() != nil {
		llm.Discover(&cfg.LLM)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	llm.ApplyEnv(&cfg.LLM)

	if v := os.Getenv("MISTAKECOACH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MISTAKECOACH_DB"); v != "" {
		cfg.Data.DBPath = v
	}
	if v := os.Getenv("MISTAKECOACH_VOICE_ENGINE"); v != "" {
		cfg.Voice.Engine = v
	}
	if v := os.Getenv("MISTAKECOACH_TTS_VOICE"); v != "" {
		cfg.Voice.TTSVoice = v
	}
	if v := os.Getenv("MISTAKECOACH_SILENCE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Voice.SilenceTimeout = d
		} else {
			slog.Warn("ignoring MISTAKECOACH_SILENCE_TIMEOUT", "value", v, "err", err)
		}
	}
	if v := os.Getenv("MISTAKECOACH_MAX_REPROMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Voice.MaxReprompts = n
		} else {
			slog.Warn("ignoring MISTAKECOACH_MAX_REPROMPTS", "value", v, "err", err)
		}
	}
}

// Validate checks the non-LLM sections. LLM problems are reported when a
// provider is built so the app can still start without one.
func (c Config) Validate() error {
	if c.Voice.SilenceTimeout <= 0 {
		return fmt.Errorf("voice.silence_timeout must be positive, got %s", c.Voice.SilenceTimeout)
	}
	if c.Voice.MaxReprompts < 0 {
		return fmt.Errorf("voice.max_reprompts must not be negative, got %d", c.Voice.MaxReprompts)
	}
	switch c.Voice.Engine {
	case "console", "openai":
	default:
		return fmt.Errorf("unknown voice engine %q (want console or openai)", c.Voice.Engine)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// VoiceAPIKey returns the OpenAI key used for speech, preferring the
// configured LLM key.
func (c Config) VoiceAPIKey() string {
	if c.LLM.OpenAI.APIKey != "" {
		return c.LLM.OpenAI.APIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Redacted returns a copy with API keys masked, for display.
func (c Config) Redacted() Config {
	c.LLM.Anthropic.APIKey = mask(c.LLM.Anthropic.APIKey)
	c.LLM.OpenAI.APIKey = mask(c.LLM.OpenAI.APIKey)
	c.LLM.Gemini.APIKey = mask(c.LLM.Gemini.APIKey)
	c.LLM.OpenRouter.APIKey = mask(c.LLM.OpenRouter.APIKey)
	return c
}

func mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteFile writes cfg to path, creating the parent directory. Existing
// files are left alone unless overwrite is set.
func WriteFile(path string, cfg Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
