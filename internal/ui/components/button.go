package components

import "github.com/abhisek/mistakecoach/internal/ui/theme"

// Button renders a form's submit control. The owning screen tracks focus
// and decides what enter does.
type Button struct {
	Label    string
	Focused  bool
	Disabled bool
}

func NewButton(label string) Button {
	return Button{Label: label}
}

func (b Button) View() string {
	if b.Focused && !b.Disabled {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}
