package history

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/learner"
	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/screens/result"
	"github.com/abhisek/mistakecoach/internal/ui/components"
	"github.com/abhisek/mistakecoach/internal/ui/layout"
	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

// HistoryScreen lists past analyses, newest first.
type HistoryScreen struct {
	deps     screen.Deps
	entries  []learner.Entry
	selected int
	expanded map[int]bool
	offset   int
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps screen.Deps) *HistoryScreen {
	return &HistoryScreen{
		deps:     deps,
		entries:  deps.Learner.History(),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return nil
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "O", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.entries)-1 {
			s.selected++
		}
	case "enter":
		s.expanded[s.selected] = !s.expanded[s.selected]
	case "o":
		if s.selected < len(s.entries) && s.entries[s.selected].Analysis != nil {
			e := s.entries[s.selected]
			in := result.Request(s.deps, coach.AnalyzeInput{
				Category:      e.Category,
				Problem:       e.Question,
				Attempt:       e.StudentAnswer,
				CorrectAnswer: e.CorrectAnswer,
				Language:      e.OutputLanguage,
				Mode:          e.LearningMode,
				Preference:    e.AccessibilityPreference,
			})
			res := result.New(s.deps, in, e.Analysis)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: res} }
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if len(s.entries) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No mistakes analyzed yet. Every mistake is a chance to learn!")
	}

	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString("\n")
	selectedLine := 0

	for i, e := range s.entries {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
			selectedLine = strings.Count(b.String(), "\n")
		}

		tag := learner.UnspecifiedTag
		if e.Analysis != nil && e.Analysis.MisconceptionTag != "" {
			tag = e.Analysis.MisconceptionTag
		}
		line := fmt.Sprintf("%s%s  %-18s %s", prefix, e.Time().Format("Jan 02 15:04"), e.Category, tag)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Width(cw).Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, details(e, cw)))
			b.WriteString("\n")
		}
	}

	// Keep the selection on screen.
	if selectedLine < s.offset {
		s.offset = selectedLine
	} else if selectedLine >= s.offset+height-1 {
		s.offset = selectedLine - height + 2
	}
	out, off := layout.Clip(b.String(), s.offset, height)
	s.offset = off
	return out
}

func details(e learner.Entry, width int) string {
	var lines []string
	add := func(label, text string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		l := theme.Label.Render(label) + " "
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, l, components.Wrap(text, max(width-8-lipgloss.Width(l), 10))))
	}
	add("Problem:", e.Question)
	add("You tried:", e.StudentAnswer)
	add("Correct:", e.CorrectAnswer)
	if e.ImagePreview != "" {
		add("Screenshot:", e.ImagePreview)
	}
	if e.Analysis != nil {
		add("What happened:", e.Analysis.Diagnosis)
		add("Key insight:", e.Analysis.KeyInsight)
	}
	add("Mode:", string(e.LearningMode)+" · "+e.OutputLanguage)
	return lipgloss.NewStyle().
		Width(width).
		PaddingLeft(4).
		Foreground(theme.TextDim).
		Render(strings.Join(lines, "\n"))
}
