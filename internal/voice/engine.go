package voice

import (
	"fmt"
	"io"

	"github.com/abhisek/mistakecoach/internal/config"
)

// Engines is a configured speaker and recognizer.
type Engines struct {
	Speaker    Speaker
	Recognizer Recognizer
}

// Close stops any subprocesses held by the engines.
func (e Engines) Close() error {
	var first error
	for _, v := range []any{e.Speaker, e.Recognizer} {
		if c, ok := v.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// NewEngines builds the speech engines selected by cfg.Voice.Engine. The
// console engine uses in and out.
func NewEngines(cfg config.Config, in io.Reader, out io.Writer) (Engines, error) {
	switch cfg.Voice.Engine {
	case "", "console":
		return Engines{
			Speaker:    NewConsoleSpeaker(out, "🔊 "),
			Recognizer: NewConsoleRecognizer(in),
		}, nil
	case "openai":
		oc := OpenAIConfig{
			APIKey:   cfg.VoiceAPIKey(),
			BaseURL:  cfg.LLM.OpenAI.BaseURL,
			Voice:    cfg.Voice.TTSVoice,
			Player:   cfg.Voice.Player,
			Recorder: cfg.Voice.Recorder,
		}
		sp, err := NewTTSSpeaker(oc)
		if err != nil {
			return Engines{}, fmt.Errorf("voice engine: %w", err)
		}
		rec, err := NewWhisperRecognizer(oc)
		if err != nil {
			return Engines{}, fmt.Errorf("voice engine: %w", err)
		}
		return Engines{Speaker: sp, Recognizer: rec}, nil
	}
	return Engines{}, fmt.Errorf("unknown voice engine %q", cfg.Voice.Engine)
}

// FlowConfig extracts the flow's silence settings from cfg.
func FlowConfig(cfg config.Config) Config {
	return Config{SilenceTimeout: cfg.Voice.SilenceTimeout, MaxReprompts: cfg.Voice.MaxReprompts}
}
