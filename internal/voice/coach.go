package voice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/mistakecoach/internal/coach"
)

// GoodbyeMessage is spoken when the learner ends a live session.
const GoodbyeMessage = "Goodbye! You did great today."

// Turn is one line of a live session transcript.
type Turn struct {
	Learner bool
	Text    string
}

// Coach is a live spoken conversation with the study buddy: listen, stream
// a reply, and speak it sentence by sentence until the learner says
// "goodbye" or the context ends.
type Coach struct {
	chat    *coach.Chat
	speaker Speaker
	rec     Recognizer
	cfg     Config
	onTurn  func(Turn)

	closeOnce sync.Once
	closeErr  error
}

// NewCoach starts a voice chat on client. onTurn may be nil.
func NewCoach(client *coach.Client, speaker Speaker, rec Recognizer, cfg Config, onTurn func(Turn)) *Coach {
	if cfg.SilenceTimeout <= 0 {
		cfg.SilenceTimeout = defaultSilence
	}
	return &Coach{
		chat:    client.NewVoiceChat(),
		speaker: speaker,
		rec:     rec,
		cfg:     cfg,
		onTurn:  onTurn,
	}
}

// Run holds the conversation. It returns nil when the learner says goodbye
// or stays silent past the re-prompt limit, and ctx's error when ctx ends.
// The speech engines are closed on return.
func (c *Coach) Run(ctx context.Context) error {
	defer c.Close()

	silent := 0
	for {
		heard, ok := c.listen(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if !ok {
			if silent < c.cfg.MaxReprompts {
				silent++
				c.say(ctx, RepromptMessage)
				continue
			}
			c.say(ctx, DisengageMessage)
			return nil
		}
		silent = 0
		c.turn(Turn{Learner: true, Text: heard})

		if strings.Contains(strings.ToLower(heard), "goodbye") {
			c.say(ctx, GoodbyeMessage)
			c.turn(Turn{Text: GoodbyeMessage})
			return nil
		}

		reply, err := c.respond(ctx, heard)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("voice coach: reply failed", "error", err)
			c.say(ctx, coach.ChatErrorMessage)
			c.turn(Turn{Text: coach.ChatErrorMessage})
			continue
		}
		c.turn(Turn{Text: reply})
	}
}

// respond streams the reply and speaks each sentence as soon as it is
// complete.
func (c *Coach) respond(ctx context.Context, text string) (string, error) {
	stream, err := c.chat.Send(ctx, text)
	if err != nil {
		return "", err
	}

	sentences := make(chan string, 8)
	var full strings.Builder
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(sentences)
		defer func() {
			for range stream {
			}
		}()
		var pending string
		for chunk := range stream {
			if chunk.Err != nil {
				return chunk.Err
			}
			full.WriteString(chunk.Text)
			var done []string
			done, pending = splitSentences(pending + chunk.Text)
			for _, s := range done {
				select {
				case sentences <- s:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
		if s := strings.TrimSpace(pending); s != "" {
			select {
			case sentences <- s:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		for s := range sentences {
			if err := c.speaker.Speak(gctx, s); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.Debug("voice coach: speak failed", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.TrimSpace(full.String()), nil
}

// splitSentences returns the complete sentences in buf and the remainder.
func splitSentences(buf string) ([]string, string) {
	var out []string
	start := 0
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '\n':
		case '.', '!', '?':
			if i+1 < len(buf) && buf[i+1] != ' ' && buf[i+1] != '\n' {
				continue
			}
			if i+1 == len(buf) {
				continue
			}
		default:
			continue
		}
		if s := strings.TrimSpace(buf[start : i+1]); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	return out, buf[start:]
}

func (c *Coach) listen(ctx context.Context) (string, bool) {
	lctx, cancel := context.WithTimeout(ctx, c.cfg.SilenceTimeout)
	defer cancel()
	text, err := c.rec.Listen(lctx)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil && !errors.Is(err, ErrSilence) {
			slog.Debug("voice coach: recognizer failed", "error", err)
		}
		<-lctx.Done()
		return "", false
	}
	return strings.TrimSpace(text), true
}

func (c *Coach) say(ctx context.Context, text string) {
	if err := c.speaker.Speak(ctx, text); err != nil && ctx.Err() == nil {
		slog.Debug("voice coach: speak failed", "error", err)
	}
}

func (c *Coach) turn(t Turn) {
	if c.onTurn != nil {
		c.onTurn(t)
	}
}

// Close stops the speech engines. It is safe to call more than once.
func (c *Coach) Close() error {
	c.closeOnce.Do(func() {
		var errs []error
		if cl, ok := c.speaker.(io.Closer); ok {
			errs = append(errs, cl.Close())
		}
		if cl, ok := c.rec.(io.Closer); ok && any(c.rec) != any(c.speaker) {
			errs = append(errs, cl.Close())
		}
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}
