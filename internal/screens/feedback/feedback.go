package feedback

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/store"
	"github.com/abhisek/mistakecoach/internal/ui/components"
	"github.com/abhisek/mistakecoach/internal/ui/layout"
	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

// ThankYou is shown once feedback is stored.
const ThankYou = "Thank you! Your feedback helps me get better."

type sentMsg struct{ err error }

// FeedbackScreen collects a free-text note from the learner.
type FeedbackScreen struct {
	deps    screen.Deps
	mode    coach.Mode
	text    components.TextArea
	sending bool
	sent    bool
	errMsg  string
}

var _ screen.Screen = (*FeedbackScreen)(nil)
var _ screen.KeyHintProvider = (*FeedbackScreen)(nil)

// New creates the screen. mode is stored with the note.
func New(deps screen.Deps, mode coach.Mode) *FeedbackScreen {
	return &FeedbackScreen{
		deps: deps,
		mode: mode,
		text: components.NewTextArea("Your feedback", "What worked? What was confusing?", 60, 6),
	}
}

func (s *FeedbackScreen) Init() tea.Cmd {
	return s.text.Focus()
}

func (s *FeedbackScreen) Title() string {
	return "Feedback"
}

func (s *FeedbackScreen) KeyHints() []layout.KeyHint {
	if s.sent {
		return []layout.KeyHint{{Key: "Enter", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "Ctrl+S", Description: "Send"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *FeedbackScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sentMsg:
		s.sending = false
		if msg.err != nil {
			s.errMsg = "Couldn't save your feedback: " + msg.err.Error()
			return s, nil
		}
		s.sent = true
		s.text.Blur()
		return s, nil

	case tea.KeyMsg:
		if s.sent {
			if msg.String() == "enter" {
				return s, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return s, nil
		}
		switch msg.String() {
		case "ctrl+s":
			return s, s.send()
		case "ctrl+x":
			s.errMsg = ""
			return s, nil
		}
	}

	if s.sent {
		return s, nil
	}
	var cmd tea.Cmd
	s.text, cmd = s.text.Update(msg)
	return s, cmd
}

func (s *FeedbackScreen) send() tea.Cmd {
	text := strings.TrimSpace(s.text.Value())
	if text == "" || s.sending {
		return nil
	}
	s.sending = true
	repo := s.deps.Events
	mode := string(s.mode)
	return func() tea.Msg {
		return sentMsg{err: repo.AppendFeedback(context.Background(), store.FeedbackData{
			Message:      text,
			LearningMode: mode,
		})}
	}
}

func (s *FeedbackScreen) View(width, height int) string {
	cw := min(components.ContentWidth(width), 72)
	s.text.SetWidth(cw - 6)

	var body string
	if s.sent {
		body = theme.Correct.Render(ThankYou)
	} else {
		body = s.text.View()
		if s.errMsg != "" {
			body += "\n\n" + components.ErrorLine(s.errMsg, cw-6)
		}
	}
	card := components.Card("Tell us how it went", body, cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
