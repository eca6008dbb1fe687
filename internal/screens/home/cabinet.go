package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/timestables/internal/screens/welcome"
	"github.com/abhisek/timestables/internal/ui/theme"
)

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	// cabinet border (2) + inner padding (4)
	return min(max(frameWidth-6, 20), 60)
}

func centerIn(cw int, s string) string {
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(s)
}

func renderStatusBar(st status, cw int) string {
	players := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	leader := lipgloss.NewStyle().Foreground(theme.Gold).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	left := players.Render(fmt.Sprintf("☺ %d PLAYERS", st.players))
	right := dim.Render("★ NO CHAMPION YET")
	if st.leader != "" {
		right = leader.Render(fmt.Sprintf("★ %s · LEVEL %d", st.leader, st.leaderLevel))
	}
	text := left + "   " + right
	if st.offline {
		text += "   " + lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("OFFLINE")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(text)
}

func renderTitle(cw int) string {
	return centerIn(cw, welcome.RenderBanner(cw))
}

// renderCabinetFrame wraps content in a double border centered in the
// given dimensions.
func renderCabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
