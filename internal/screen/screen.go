package screen

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/learner"
	"github.com/abhisek/mistakecoach/internal/store"
	"github.com/abhisek/mistakecoach/internal/ui/layout"
	"github.com/abhisek/mistakecoach/internal/voice"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is an optional interface for screens that own background work.
// The router calls Close when the screen leaves the stack.
type Closer interface {
	Close()
}

// Deps are the services shared by every screen.
type Deps struct {
	Coach   *coach.Client
	Learner *learner.State

	// Events stores feedback. Nil disables the feedback screen.
	Events store.EventRepo

	// Voice tunes the guided voice flow.
	Voice voice.Config

	// Started is when the app was launched.
	Started time.Time
}

// FlashMsg shows a short notice under the header until the next key press.
type FlashMsg struct {
	Text string
}

// Flash returns a command that emits a FlashMsg.
func Flash(text string) tea.Cmd {
	return func() tea.Msg { return FlashMsg{Text: text} }
}
