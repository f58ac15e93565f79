// Package layout draws the frame around every screen: a header with the
// learner's name and streak, the screen body, and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

// Smallest terminal the frame is drawn in.
const (
	MinWidth  = 80
	MinHeight = 24
)

const appName = "Mistake Coach"

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the learner to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("The window is a bit small.\n\nMake it at least %d × %d\n(now %d × %d)",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

// HeaderInfo is the learner summary shown on the right of the header.
type HeaderInfo struct {
	Name   string
	Streak int
	Dark   bool
}

func (h HeaderInfo) render() string {
	var parts []string
	if h.Name != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.Secondary).Render(h.Name))
	}
	icon := "☀"
	if h.Dark {
		icon = "☾"
	}
	parts = append(parts,
		lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("★ %d day", h.Streak)),
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(icon))
	return strings.Join(parts, "   ")
}

// RenderHeader draws the app name, the screen title centred and the
// learner summary inside a rounded box.
func RenderHeader(title string, info HeaderInfo, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  " + appName)
	mid := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	return box(width).Render(spread(left, mid, info.render(), max(width-4, 0)))
}

// spread lays out three segments so mid sits in the centre of width.
// Each gap keeps at least one space.
func spread(left, mid, right string, width int) string {
	lw, mw, rw := lipgloss.Width(left), lipgloss.Width(mid), lipgloss.Width(right)
	gapL := max((width-mw)/2-lw, 1)
	gapR := max(width-lw-gapL-mw-rw, 1)
	return left + strings.Repeat(" ", gapL) + mid + strings.Repeat(" ", gapR) + right
}

func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
	}
	return box(width).Render("  " + strings.Join(parts, "   "))
}

func box(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderFrame stacks header, body and footer. The body is padded or cut
// to whatever height is left.
func RenderFrame(header, content, footer string, width, height int) string {
	h := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(h).MaxHeight(h).Render(content)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Clip returns at most height lines of s starting at offset, clamping the
// offset so the last page stays full. It returns the clamped offset.
func Clip(s string, offset, height int) (string, int) {
	lines := strings.Split(s, "\n")
	if height <= 0 || len(lines) <= height {
		return s, 0
	}
	offset = max(min(offset, len(lines)-height), 0)
	return strings.Join(lines[offset:offset+height], "\n"), offset
}
