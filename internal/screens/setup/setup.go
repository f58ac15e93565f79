// Package setup is the access gate shown on every launch: nickname, age
// group and, for child brackets, parental consent.
package setup

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/ui/components"
	"github.com/abhisek/mistakecoach/internal/ui/layout"
	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

const (
	focusName = iota
	focusAge
	focusConsent
	focusStart
	focusCount
)

// ResetNotice is shown on the gate after a full reset.
const ResetNotice = "Okay! Let’s start fresh."

type savedMsg struct{ err error }

// SetupScreen collects the learner's personalization.
type SetupScreen struct {
	deps    screen.Deps
	next    func() screen.Screen
	notice  string
	name    components.TextInput
	age     components.Choice
	consent bool
	start   components.Button
	focus   int
	errMsg  string
	saving  bool
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// New creates the gate. next builds the screen shown once setup is saved.
func New(deps screen.Deps, next func() screen.Screen, notice string) *SetupScreen {
	p := deps.Learner.Profile()

	ages := make([]string, len(coach.AgeGroups))
	for i, a := range coach.AgeGroups {
		ages[i] = string(a)
	}
	current := string(p.AgeGroup)
	if current == "" {
		current = string(coach.Age13to15)
	}

	name := components.NewTextInput("Nickname", "What should I call you?", 32)
	name.SetValue(p.UserName)

	s := &SetupScreen{
		deps:    deps,
		next:    next,
		notice:  notice,
		name:    name,
		age:     components.NewChoice("Age group", ages, current),
		consent: p.HasConsent(),
		start:   components.NewButton("Start learning"),
	}
	s.syncStart()
	return s
}

func (s *SetupScreen) Init() tea.Cmd {
	return s.setFocus(focusName)
}

func (s *SetupScreen) Title() string {
	return "Welcome"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "←→", Description: "Change"},
		{Key: "Space", Description: "Toggle consent"},
		{Key: "Enter", Description: "Start"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *SetupScreen) isChild() bool {
	return coach.AgeGroup(s.age.Value()).IsChild()
}

// canStart reports whether the gate may be passed.
func (s *SetupScreen) canStart() bool {
	if strings.TrimSpace(s.name.Value()) == "" {
		return false
	}
	return !s.isChild() || s.consent
}

func (s *SetupScreen) syncStart() {
	s.start.Disabled = !s.canStart()
	s.start.Focused = s.focus == focusStart
}

func (s *SetupScreen) setFocus(f int) tea.Cmd {
	if f == focusConsent && !s.isChild() {
		if f > s.focus {
			f = focusStart
		} else {
			f = focusAge
		}
	}
	s.focus = f
	s.age.Focused = f == focusAge
	s.syncStart()
	if f == focusName {
		return s.name.Focus()
	}
	s.name.Blur()
	return nil
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saving = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: s.next()} }

	case tea.KeyMsg:
		s.notice = ""
		switch msg.String() {
		case "tab", "down":
			return s, s.setFocus((s.focus + 1) % focusCount)
		case "shift+tab", "up":
			return s, s.setFocus((s.focus - 1 + focusCount) % focusCount)
		case "enter":
			if s.focus == focusName || s.focus == focusAge {
				return s, s.setFocus(s.focus + 1)
			}
			return s, s.submit()
		case "space":
			if s.focus == focusConsent {
				s.consent = !s.consent
				s.syncStart()
				return s, nil
			}
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case focusName:
		s.name, cmd = s.name.Update(msg)
	case focusAge:
		s.age, cmd = s.age.Update(msg)
		if !s.isChild() {
			s.consent = false
		}
	}
	s.syncStart()
	return s, cmd
}

func (s *SetupScreen) submit() tea.Cmd {
	if s.saving {
		return nil
	}
	if strings.TrimSpace(s.name.Value()) == "" {
		s.errMsg = "Please tell me your nickname."
		return nil
	}
	if s.isChild() && !s.consent {
		s.errMsg = "A parent or guardian needs to give consent first."
		return nil
	}
	s.errMsg = ""
	s.saving = true
	name := strings.TrimSpace(s.name.Value())
	age := coach.AgeGroup(s.age.Value())
	consent := s.consent
	st := s.deps.Learner
	return func() tea.Msg {
		return savedMsg{err: st.SetPersonalization(context.Background(), name, age, consent)}
	}
}

func (s *SetupScreen) View(width, height int) string {
	cw := min(components.ContentWidth(width), 64)

	var b strings.Builder
	if s.notice != "" {
		b.WriteString(theme.Banner.Render(s.notice) + "\n\n")
	}
	b.WriteString(theme.Title.Render("Human-Centered AI Tutor") + "\n")
	b.WriteString(theme.Subtitle.Render("Show me a mistake and we'll figure out the thinking behind it.") + "\n\n")

	b.WriteString(s.name.View() + "\n\n")
	b.WriteString(s.age.View() + "\n\n")

	if s.isChild() {
		box := "[ ]"
		if s.consent {
			box = "[x]"
		}
		style := theme.Subtitle
		if s.focus == focusConsent {
			style = theme.Label
		}
		b.WriteString(style.Render(box+" A parent or guardian agrees to let me learn here") + "\n")
		b.WriteString(theme.Hint.Render("Required for learners under 13.") + "\n\n")
	}

	b.WriteString(s.start.View())
	if s.errMsg != "" {
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	card := components.Card("", b.String(), cw)
	if banner := RenderBanner(width); height > lipgloss.Height(card)+lipgloss.Height(banner) {
		card = lipgloss.JoinVertical(lipgloss.Center, banner, "", card)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
