package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

type grade int

const (
	ungraded grade = iota
	gradedRight
	gradedWrong
)

// TextInput is a labelled single-line field. Practice answers are marked
// ✓ or ✗ once the learning check has been evaluated.
type TextInput struct {
	Model textinput.Model
	Label string
	grade grade
}

// NewTextInput returns an unfocused input. A charLimit of 0 keeps the
// bubbles default.
func NewTextInput(label, placeholder string, charLimit int) TextInput {
	m := textinput.New()
	m.Placeholder = placeholder
	if charLimit > 0 {
		m.CharLimit = charLimit
	}
	return TextInput{Model: m, Label: label}
}

func (t *TextInput) Focus() tea.Cmd { return t.Model.Focus() }
func (t *TextInput) Blur()          { t.Model.Blur() }
func (t TextInput) Focused() bool   { return t.Model.Focused() }
func (t TextInput) Value() string   { return t.Model.Value() }

func (t *TextInput) SetValue(v string) { t.Model.SetValue(v) }

// Submit records whether the answer in the field was judged correct.
func (t *TextInput) Submit(correct bool) {
	t.grade = gradedWrong
	if correct {
		t.grade = gradedRight
	}
}

// Clear empties the field and drops its mark.
func (t *TextInput) Clear() {
	t.Model.SetValue("")
	t.grade = ungraded
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	out := t.Model.View()
	switch t.grade {
	case gradedRight:
		out += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
	case gradedWrong:
		out += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
	}
	if t.Label == "" {
		return out
	}
	label := theme.Subtitle
	if t.Focused() {
		label = theme.Label
	}
	return label.Render(t.Label) + "\n" + out
}
