package level

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/timestables/internal/game"
	"github.com/abhisek/timestables/internal/ui/components"
	"github.com/abhisek/timestables/internal/ui/layout"
	"github.com/abhisek/timestables/internal/ui/theme"
)

func (s *LevelScreen) View(width, height int) string {
	if s.fatal != "" {
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error),
			fmt.Sprintf("\n\n\nCould not start the level: %s\n\nPress any key to go back.", s.fatal))
	}
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}
	return s.renderQuestion(width)
}

func (s *LevelScreen) renderQuestion(width int) string {
	v := s.view
	var b strings.Builder

	info := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  %s", v.Description))
	hearts := components.Hearts(v.Lives, game.StartingLives)
	if pad := width - lipgloss.Width(info) - lipgloss.Width(hearts) - 4; pad > 0 {
		info += strings.Repeat(" ", pad) + hearts
	} else {
		info += "  " + hearts
	}
	b.WriteString(info)
	b.WriteString("\n")

	bar := components.NewProgressBar("Question", min(v.Index+1, v.Total), v.Total, min(width-20, 50)).View()
	score := lipgloss.NewStyle().Foreground(theme.Gold).Render(fmt.Sprintf("★ %d", v.Score))
	b.WriteString("  " + bar + "    " + score)
	b.WriteString("\n\n")

	prompt := theme.Prompt.Render(v.Prompt)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, prompt))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
	b.WriteString("\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Accent), s.errMsg))
	case s.feedback != nil && s.feedback.correct:
		b.WriteString(layout.Centered(width, theme.Correct, "✓ "+s.feedback.text))
	case s.feedback != nil:
		b.WriteString(layout.Centered(width, theme.Incorrect, "✗ "+s.feedback.text))
	}

	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(width, theme.Body.Bold(true), "End this level early?"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Hint, "Unanswered questions count as wrong."))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Success), "[Y] Yes, end level"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Primary), "[N] No, keep going"))
	return b.String()
}
