// Package profile is the learner progress dashboard.
package profile

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/router"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/ui/components"
	"github.com/abhisek/mistakecoach/internal/ui/layout"
	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

// TopTags is how many misconceptions the dashboard lists.
const TopTags = 5

// ProfileScreen shows totals, the streak and where mistakes cluster.
type ProfileScreen struct {
	deps screen.Deps
	now  func() time.Time
}

var _ screen.Screen = (*ProfileScreen)(nil)
var _ screen.KeyHintProvider = (*ProfileScreen)(nil)

// New creates a new ProfileScreen.
func New(deps screen.Deps) *ProfileScreen {
	return &ProfileScreen{deps: deps, now: time.Now}
}

func (s *ProfileScreen) Init() tea.Cmd {
	return nil
}

func (s *ProfileScreen) Title() string {
	return "My Progress"
}

func (s *ProfileScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Back"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *ProfileScreen) sessionMinutes() int {
	if s.deps.Started.IsZero() {
		return 0
	}
	return int(s.now().Sub(s.deps.Started).Minutes())
}

func (s *ProfileScreen) View(width, height int) string {
	st := s.deps.Learner
	p := st.Profile()
	cw := min(components.ContentWidth(width), 72)
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder

	name := p.UserName
	if name == "" {
		name = "Learner"
	}
	b.WriteString(center(theme.Title.Render(name + "'s learning journey")))
	b.WriteString("\n\n")

	last := "never"
	if hist := st.History(); len(hist) > 0 {
		last = hist[0].Time().Format("Jan 02, 15:04")
	}
	stats := fmt.Sprintf("Mistakes analyzed: %d     Concepts: %d     Streak: %d day     This session: %d min",
		p.TotalDiagnostics, st.ConceptCount(), p.Streak, s.sessionMinutes())
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text).Render(stats)))
	b.WriteString("\n")
	b.WriteString(center(theme.Hint.Render("Last session: " + last)))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))

	// Misconceptions.
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Most frequent misconceptions")))
	b.WriteString("\n" + center(divider) + "\n")
	top := st.TopMisconceptions(TopTags)
	if len(top) == 0 {
		b.WriteString(center(theme.Hint.Render("Nothing yet. Analyze a mistake to get started!")))
		b.WriteString("\n")
	}
	for i, c := range top {
		line := fmt.Sprintf("%d. %-40s %3d×", i+1, c.Label, c.Count)
		b.WriteString(center(lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Render(line)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Categories.
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Subjects")))
	b.WriteString("\n" + center(divider) + "\n")
	shares := st.CategoryShare()
	labelWidth := 0
	for _, sh := range shares {
		labelWidth = max(labelWidth, lipgloss.Width(sh.Category))
	}
	for _, sh := range shares {
		bar := components.NewProgressBar(sh.Category, float64(sh.Percent)/100, true, cw)
		bar.LabelWidth = labelWidth
		b.WriteString(center(bar.View()))
		b.WriteString("\n")
	}

	out, _ := layout.Clip(b.String(), 0, height)
	return out
}
