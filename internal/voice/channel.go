package voice

import "context"

// Channel is a Speaker and Recognizer pair backed by channels, used when an
// event loop (the terminal UI) shows spoken lines and supplies utterances.
type Channel struct {
	spoken chan string
	heard  chan string
}

// NewChannel creates an unbuffered speaker side and a one-slot listener side.
func NewChannel() *Channel {
	return &Channel{spoken: make(chan string), heard: make(chan string, 1)}
}

// Speak hands text to the reader of Spoken and returns once it is taken.
func (c *Channel) Speak(ctx context.Context, text string) error {
	select {
	case c.spoken <- text:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Listen waits for an utterance passed to Say.
func (c *Channel) Listen(ctx context.Context) (string, error) {
	select {
	case text := <-c.heard:
		return text, nil
	case <-ctx.Done():
		return "", ErrSilence
	}
}

// Spoken delivers each line passed to Speak.
func (c *Channel) Spoken() <-chan string { return c.spoken }

// Say submits an utterance without blocking. It reports false when an
// earlier utterance has not been consumed yet.
func (c *Channel) Say(text string) bool {
	select {
	case c.heard <- text:
		return true
	default:
		return false
	}
}
