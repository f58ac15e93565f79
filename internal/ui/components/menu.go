package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

// MenuItem is one action row. Hint shows next to the selected row.
type MenuItem struct {
	Label    string
	Hint     string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list of actions. Disabled rows are skipped by
// navigation and never fire.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	m.Reselect()
	return m
}

// SetDisabled toggles the row at i. Out of range indexes are ignored.
func (m *Menu) SetDisabled(i int, disabled bool) {
	if i >= 0 && i < len(m.Items) {
		m.Items[i].Disabled = disabled
	}
}

// Reselect moves the cursor to the first enabled row when the current
// one has been disabled.
func (m *Menu) Reselect() {
	if m.enabled(m.Selected) {
		return
	}
	for i := range m.Items {
		if m.enabled(i) {
			m.Selected = i
			return
		}
	}
}

func (m Menu) enabled(i int) bool {
	return i >= 0 && i < len(m.Items) && !m.Items[i].Disabled
}

// move steps the cursor by dir until it lands on an enabled row. It
// stays put at either end.
func (m *Menu) move(dir int) {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if m.enabled(i) {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter":
		if m.enabled(m.Selected) && m.Items[m.Selected].Action != nil {
			return m, m.Items[m.Selected].Action()
		}
	}
	return m, nil
}

func (m Menu) View() string {
	// Built per render so a theme switch shows up immediately.
	row := lipgloss.NewStyle().Foreground(theme.Text)
	off := lipgloss.NewStyle().Foreground(theme.TextDim).Strikethrough(true)

	var b strings.Builder
	for i, it := range m.Items {
		switch {
		case it.Disabled:
			b.WriteString(off.Render("    " + it.Label))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render("  ▸ " + it.Label))
			if it.Hint != "" {
				b.WriteString("  " + theme.Hint.Render(it.Hint))
			}
		default:
			b.WriteString(row.Render("    " + it.Label))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
