package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/timestables/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label     string
	Percent   float64
	Caption   string
	Width     int
	FillStyle lipgloss.Style
}

// NewProgressBar creates a bar for done out of total, captioned "done/total".
func NewProgressBar(label string, done, total, width int) ProgressBar {
	var pct float64
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	return ProgressBar{
		Label:     label,
		Percent:   pct,
		Caption:   fmt.Sprintf("%d/%d", done, total),
		Width:     width,
		FillStyle: theme.ProgressFilled,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	captionWidth := 0
	if p.Caption != "" {
		captionWidth = len(p.Caption) + 2
	}

	barWidth := max(p.Width-lipgloss.Width(result)-captionWidth, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	result += p.FillStyle.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	if p.Caption != "" {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render("  " + p.Caption)
	}

	return result
}

// Hearts renders lives as filled and empty hearts.
func Hearts(lives, total int) string {
	var b strings.Builder
	for i := range total {
		if i > 0 {
			b.WriteString(" ")
		}
		if i < lives {
			b.WriteString(theme.HeartFull.Render("♥"))
		} else {
			b.WriteString(theme.HeartEmpty.Render("♡"))
		}
	}
	return b.String()
}
