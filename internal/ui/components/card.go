package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for cards.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-4, 20), 96)
}

// Card wraps body in a rounded border with a bold heading.
func Card(heading, body string, width int) string {
	content := body
	if heading != "" {
		content = theme.Label.Render(heading) + "\n" + body
	}
	return theme.Card.Width(width).Render(content)
}

// Wrap renders text in the body style wrapped to width.
func Wrap(text string, width int) string {
	return theme.Body.Width(width).Render(text)
}

// ErrorLine renders a dismissible inline error.
func ErrorLine(msg string, width int) string {
	if msg == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true).
		Width(width).
		Render("⚠ " + msg + "  (ctrl+x to dismiss)")
}
