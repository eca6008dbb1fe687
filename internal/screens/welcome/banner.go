package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/timestables/internal/ui/theme"
)

const bannerArt = `
 ╔╦╗╦╔╦╗╔═╗╔═╗  ╔╦╗╔═╗╔╗ ╦  ╔═╗╔═╗
  ║ ║║║║║╣ ╚═╗   ║ ╠═╣╠╩╗║  ║╣ ╚═╗
  ╩ ╩╩ ╩╚═╝╚═╝   ╩ ╩ ╩╚═╝╩═╝╚═╝╚═╝`

const bannerCompact = "T I M E S   T A B L E S"

// RenderBanner returns the title banner in the primary color, falling
// back to spaced letters below 40 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 40 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
