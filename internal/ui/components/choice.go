package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

// Choice is a labeled single-select that cycles with left/right.
type Choice struct {
	Label    string
	Options  []string
	Selected int
	Focused  bool
}

// NewChoice creates a selector with the option equal to current selected,
// or the first option.
func NewChoice(label string, options []string, current string) Choice {
	c := Choice{Label: label, Options: options}
	for i, o := range options {
		if o == current {
			c.Selected = i
		}
	}
	return c
}

// Value returns the selected option.
func (c Choice) Value() string {
	if len(c.Options) == 0 {
		return ""
	}
	return c.Options[c.Selected]
}

// Update cycles the selection on left/right (or h/l) when focused.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	if !c.Focused || len(c.Options) == 0 {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}
	switch kmsg.String() {
	case "left", "h":
		c.Selected = (c.Selected - 1 + len(c.Options)) % len(c.Options)
	case "right", "l", "space":
		c.Selected = (c.Selected + 1) % len(c.Options)
	}
	return c, nil
}

// View renders the label and options on one line.
func (c Choice) View() string {
	label := theme.Subtitle
	if c.Focused {
		label = theme.Label
	}
	parts := make([]string, len(c.Options))
	for i, o := range c.Options {
		switch {
		case i == c.Selected && c.Focused:
			parts[i] = theme.Selected.Render("[" + o + "]")
		case i == c.Selected:
			parts[i] = lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("[" + o + "]")
		default:
			parts[i] = lipgloss.NewStyle().Foreground(theme.TextDim).Render(" " + o + " ")
		}
	}
	return label.Render(c.Label) + "  " + strings.Join(parts, " ")
}
