package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mistakecoach/internal/ui/theme"
)

// MascotVariant selects which mascot art to display in Kids mode.
type MascotVariant int

const (
	MascotIdle     MascotVariant = iota
	MascotThinking               // analysis running
	MascotOops                   // last request failed
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ◡  │
│ ?→! │
└─────┘`

const mascotThinking = `┌─────┐
│ ◔ ◔ │ …
│  ─  │
│ ?→! │
└─────┘`

const mascotOops = `┌─────┐
│ ◉ ◉ │ !
│  ○  │
│ ?→! │
└─────┘`

// RenderMascot returns the mascot ASCII art for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	switch v {
	case MascotThinking:
		art, fg = mascotThinking, theme.Secondary
	case MascotOops:
		art, fg = mascotOops, theme.Accent
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
