// Package chat is the study-buddy conversation screen.
package chat

import (
	"context"
	"log/slog"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/llm"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/ui/components"
	"github.com/abhisek/mistakecoach/internal/ui/layout"
	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

type streamMsg struct{ stream <-chan llm.StreamChunk }

type chunkMsg struct{ text string }

type streamDoneMsg struct{ err error }

type message struct {
	learner bool
	text    string
}

// ChatScreen streams replies from a coach.Chat.
type ChatScreen struct {
	chat    *coach.Chat
	ctx     context.Context
	cancel  context.CancelFunc
	stream  <-chan llm.StreamChunk
	input   components.TextInput
	spinner spinner.Model
	msgs    []message
	busy    bool
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)
var _ screen.Closer = (*ChatScreen)(nil)

// New starts a conversation with the greeting shown.
func New(deps screen.Deps) *ChatScreen {
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatScreen{
		chat:    deps.Coach.NewChat(),
		ctx:     ctx,
		cancel:  cancel,
		input:   components.NewTextInput("", "Ask about a concept or paste some code...", 2000),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		msgs:    []message{{text: coach.ChatGreeting}},
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	return s.input.Focus()
}

func (s *ChatScreen) Title() string {
	return "Study Buddy"
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Back"},
	}
}

// Close abandons any reply in flight.
func (s *ChatScreen) Close() {
	s.cancel()
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case streamMsg:
		s.stream = msg.stream
		s.msgs = append(s.msgs, message{})
		return s, s.next()

	case chunkMsg:
		last := &s.msgs[len(s.msgs)-1]
		last.text += msg.text
		return s, s.next()

	case streamDoneMsg:
		s.busy = false
		s.stream = nil
		if msg.err != nil {
			slog.Warn("chat reply failed", "error", msg.err)
			if n := len(s.msgs); n > 0 && !s.msgs[n-1].learner {
				s.msgs[n-1].text = coach.ChatErrorMessage
			} else {
				s.msgs = append(s.msgs, message{text: coach.ChatErrorMessage})
			}
		}
		return s, nil

	case spinner.TickMsg:
		if !s.busy {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if msg.String() == "enter" {
			return s, s.send()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) send() tea.Cmd {
	text := strings.TrimSpace(s.input.Value())
	if text == "" || s.busy {
		return nil
	}
	s.busy = true
	s.msgs = append(s.msgs, message{learner: true, text: text})
	s.input.Clear()

	ctx, chat := s.ctx, s.chat
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		stream, err := chat.Send(ctx, text)
		if err != nil {
			return streamDoneMsg{err: err}
		}
		return streamMsg{stream: stream}
	})
}

// next reads one chunk from the open stream.
func (s *ChatScreen) next() tea.Cmd {
	stream := s.stream
	return func() tea.Msg {
		c, ok := <-stream
		switch {
		case !ok:
			return streamDoneMsg{}
		case c.Err != nil:
			for range stream {
			}
			return streamDoneMsg{err: c.Err}
		}
		return chunkMsg{text: c.Text}
	}
}

func (s *ChatScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var parts []string
	for _, m := range s.msgs {
		if m.learner {
			parts = append(parts, lipgloss.NewStyle().
				Width(cw).Align(lipgloss.Right).Foreground(theme.Secondary).
				Render(m.text))
			continue
		}
		if m.text == "" {
			continue
		}
		parts = append(parts, components.Card("", components.Wrap(m.text, cw-4), cw))
	}
	if s.busy {
		parts = append(parts, s.spinner.View()+" "+theme.Hint.Render("Thinking..."))
	}

	input := s.input.View()
	room := max(height-lipgloss.Height(input)-1, 1)
	body := strings.Join(parts, "\n")
	if n := lipgloss.Height(body); n > room {
		body, _ = layout.Clip(body, n-room, room)
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(body+"\n"+input))
}
