package coach

import (
	"context"
	"strings"
	"sync"

	"github.com/abhisek/mistakecoach/internal/llm"
)

// ChatErrorMessage is shown when a chat reply fails.
const ChatErrorMessage = "I encountered a neural synchronization error. Please try again."

// Chat is a multi-turn study-buddy conversation. The transcript is sent
// with every turn so the branding rule applies only to the first reply.
type Chat struct {
	client  *Client
	system  string
	purpose string

	mu      sync.Mutex
	history []llm.Message
}

// NewChat starts a typed study-buddy conversation.
func (c *Client) NewChat() *Chat {
	return &Chat{client: c, system: chatSystemPrompt, purpose: llm.PurposeChat}
}

// NewVoiceChat starts a conversation tuned for spoken replies.
func (c *Client) NewVoiceChat() *Chat {
	return &Chat{client: c, system: voiceChatSystemPrompt, purpose: llm.PurposeVoiceChat}
}

// Send adds a learner turn and streams the reply. The reply is added to
// the transcript once the stream completes without error; a failed turn
// is dropped from the transcript.
func (ch *Chat) Send(ctx context.Context, text string) (<-chan llm.StreamChunk, error) {
	if !ch.client.Available() {
		return nil, llm.ErrNoProvider
	}

	ch.mu.Lock()
	ch.history = append(ch.history, llm.Message{Role: llm.RoleUser, Content: text})
	msgs := append([]llm.Message(nil), ch.history...)
	ch.mu.Unlock()

	ctx = llm.WithPurpose(ctx, ch.purpose)
	in, err := llm.StreamText(ctx, ch.client.provider, llm.Request{
		System:      ch.system,
		Messages:    msgs,
		MaxTokens:   ch.client.cfg.ChatMaxTokens,
		Temperature: ch.client.cfg.ChatTemperature,
	})
	if err != nil {
		ch.dropLastUser()
		return nil, err
	}

	out := make(chan llm.StreamChunk)
	go func() {
		defer close(out)
		var reply strings.Builder
		failed := false
		for c := range in {
			if c.Err != nil {
				failed = true
			}
			reply.WriteString(c.Text)
			select {
			case out <- c:
			case <-ctx.Done():
				failed = true
			}
			if failed {
				break
			}
		}
		if failed || reply.Len() == 0 {
			ch.dropLastUser()
			return
		}
		ch.mu.Lock()
		ch.history = append(ch.history, llm.Message{Role: llm.RoleAssistant, Content: reply.String()})
		ch.mu.Unlock()
	}()
	return out, nil
}

// Reply sends a turn and waits for the whole reply.
func (ch *Chat) Reply(ctx context.Context, text string) (string, error) {
	stream, err := ch.Send(ctx, text)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var streamErr error
	for c := range stream {
		if c.Err != nil {
			streamErr = c.Err
			continue
		}
		b.WriteString(c.Text)
	}
	if streamErr != nil {
		return "", streamErr
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Turns returns a copy of the transcript.
func (ch *Chat) Turns() []llm.Message {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return append([]llm.Message(nil), ch.history...)
}

func (ch *Chat) dropLastUser() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if n := len(ch.history); n > 0 && ch.history[n-1].Role == llm.RoleUser {
		ch.history = ch.history[:n-1]
	}
}
