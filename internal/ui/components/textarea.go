package components

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

// TextArea wraps bubbles/textarea with a label.
type TextArea struct {
	Model textarea.Model
	Label string
}

// NewTextArea creates an unfocused multi-line input.
func NewTextArea(label, placeholder string, width, height int) TextArea {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.Blur()
	return TextArea{Model: ta, Label: label}
}

// Focus focuses the area.
func (t *TextArea) Focus() tea.Cmd { return t.Model.Focus() }

// Blur removes focus.
func (t *TextArea) Blur() { t.Model.Blur() }

// Focused reports whether the area has focus.
func (t TextArea) Focused() bool { return t.Model.Focused() }

// SetWidth resizes the area.
func (t *TextArea) SetWidth(w int) { t.Model.SetWidth(w) }

// Update handles messages.
func (t TextArea) Update(msg tea.Msg) (TextArea, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label and the area.
func (t TextArea) View() string {
	label := theme.Label
	if !t.Focused() {
		label = theme.Subtitle
	}
	return label.Render(t.Label) + "\n" + t.Model.View()
}

// Value returns the text.
func (t TextArea) Value() string { return t.Model.Value() }

// SetValue replaces the text.
func (t *TextArea) SetValue(v string) { t.Model.SetValue(v) }
