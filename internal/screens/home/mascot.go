package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/timestables/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle    MascotVariant = iota
	MascotCheer                 // someone is on the leaderboard
	MascotOffline               // results are only saved locally
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ 7×8 │
└─────┘`

const mascotCheer = `┌─────┐
│ ★ ★ │
│  ▿  │
│ 7×8 │
└─╥═╥─┘
  ╚═╝`

const mascotOffline = `┌─────┐
│ - - │ ?
│  ▽  │
│ 7×8 │
└─────┘`

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	switch v {
	case MascotCheer:
		art, fg = mascotCheer, theme.Gold
	case MascotOffline:
		art, fg = mascotOffline, theme.Accent
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
