package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the OpenAI speech engines.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string

	// Voice is the TTS voice name, e.g. "alloy".
	Voice string

	// Player reads audio on stdin and plays it.
	Player string

	// Recorder writes one utterance as WAV on stdout and exits.
	Recorder string

	// Language is an optional ISO-639-1 hint for transcription.
	Language string
}

func newOpenAIClient(cfg OpenAIConfig) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required for speech")
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(config), nil
}

// procs tracks running subprocesses so Close can stop them.
type procs struct {
	mu      sync.Mutex
	running map[*exec.Cmd]struct{}
	closed  bool
}

var errClosed = errors.New("voice: engine closed")

func command(ctx context.Context, line string) (*exec.Cmd, error) {
	argv := strings.Fields(line)
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return exec.CommandContext(ctx, argv[0], argv[1:]...), nil
}

func (p *procs) run(cmd *exec.Cmd) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errClosed
	}
	if p.running == nil {
		p.running = make(map[*exec.Cmd]struct{})
	}
	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.running[cmd] = struct{}{}
	p.mu.Unlock()

	err := cmd.Wait()

	p.mu.Lock()
	delete(p.running, cmd)
	p.mu.Unlock()
	return err
}

func (p *procs) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for cmd := range p.running {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}
	return nil
}

// TTSSpeaker synthesizes speech with the OpenAI audio API and pipes it to a
// player command.
type TTSSpeaker struct {
	client *openai.Client
	voice  string
	player string
	procs  procs
}

// NewTTSSpeaker creates a speaker from cfg.
func NewTTSSpeaker(cfg OpenAIConfig) (*TTSSpeaker, error) {
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Player) == "" {
		return nil, fmt.Errorf("a player command is required")
	}
	v := cfg.Voice
	if v == "" {
		v = string(openai.VoiceAlloy)
	}
	return &TTSSpeaker{client: client, voice: v, player: cfg.Player}, nil
}

func (s *TTSSpeaker) Speak(ctx context.Context, text string) error {
	audio, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}
	defer audio.Close()

	cmd, err := command(ctx, s.player)
	if err != nil {
		return err
	}
	cmd.Stdin = audio
	if err := s.procs.run(cmd); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("play speech: %w", err)
	}
	return nil
}

// Close stops any playback in progress.
func (s *TTSSpeaker) Close() error { return s.procs.Close() }

// WhisperRecognizer records one utterance with a recorder command and
// transcribes it with the OpenAI audio API.
type WhisperRecognizer struct {
	client   *openai.Client
	recorder string
	language string
	procs    procs
}

// NewWhisperRecognizer creates a recognizer from cfg.
func NewWhisperRecognizer(cfg OpenAIConfig) (*WhisperRecognizer, error) {
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Recorder) == "" {
		return nil, fmt.Errorf("a recorder command is required")
	}
	return &WhisperRecognizer{client: client, recorder: cfg.Recorder, language: cfg.Language}, nil
}

func (r *WhisperRecognizer) Listen(ctx context.Context) (string, error) {
	cmd, err := command(ctx, r.recorder)
	if err != nil {
		return "", err
	}
	var audio bytes.Buffer
	cmd.Stdout = &audio
	if err := r.procs.run(cmd); err != nil {
		if ctx.Err() != nil {
			return "", ErrSilence
		}
		return "", fmt.Errorf("record audio: %w", err)
	}
	if audio.Len() == 0 {
		return "", ErrSilence
	}

	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "utterance.wav",
		Reader:   bytes.NewReader(audio.Bytes()),
		Language: r.language,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ErrSilence
		}
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrSilence
	}
	return text, nil
}

// Close stops any recording in progress.
func (r *WhisperRecognizer) Close() error { return r.procs.Close() }
