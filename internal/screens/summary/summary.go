package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/timestables/internal/game"
	"github.com/abhisek/timestables/internal/levels"
	"github.com/abhisek/timestables/internal/recorder"
	"github.com/abhisek/timestables/internal/router"
	"github.com/abhisek/timestables/internal/screen"
	"github.com/abhisek/timestables/internal/ui/components"
	"github.com/abhisek/timestables/internal/ui/layout"
	"github.com/abhisek/timestables/internal/ui/theme"
)

// Actions builds the screens the summary can move on to. A nil Next hides
// the next-level button.
type Actions struct {
	Next  func() screen.Screen
	Retry func() screen.Screen
}

// SummaryScreen shows how a finished level went and what is next.
type SummaryScreen struct {
	player  string
	summary game.Summary
	end     *recorder.EndResult
	menu    components.Menu
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.PlayerProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. end may be nil when the session was already
// finalized elsewhere.
func New(player string, sum game.Summary, end *recorder.EndResult, actions Actions) *SummaryScreen {
	var items []components.MenuItem
	if actions.Next != nil && sum.Passed && sum.Level < levels.Last {
		items = append(items, components.MenuItem{Label: "NEXT LEVEL", Action: replaceWith(actions.Next)})
	}
	if actions.Retry != nil {
		items = append(items, components.MenuItem{Label: "TRY AGAIN", Action: replaceWith(actions.Retry)})
	}
	items = append(items, components.MenuItem{Label: "HOME", Action: func() tea.Cmd {
		return func() tea.Msg { return router.PopToRootMsg{} }
	}})

	return &SummaryScreen{
		player:  player,
		summary: sum,
		end:     end,
		menu:    components.NewMenu(items),
	}
}

func replaceWith(build func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		next := build()
		return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return fmt.Sprintf("Level %d Complete", s.summary.Level)
}

func (s *SummaryScreen) Player() string {
	return s.player
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "esc" {
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

// HandlesEscape sends Esc home rather than back into a finished level.
func (s *SummaryScreen) HandlesEscape() bool {
	return true
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	var b strings.Builder

	title, c := headline(sum)
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(c).Bold(true), title))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Score: %d/%d        Accuracy: %d%%        Hearts left: %s",
		sum.Score, sum.Total, sum.Accuracy, components.Hearts(sum.LivesRemaining, game.StartingLives))
	b.WriteString(layout.Centered(width, theme.Body, stats))
	b.WriteString("\n")

	if sum.EndedByLives {
		b.WriteString(layout.Centered(width, theme.Hint, "You ran out of hearts."))
		b.WriteString("\n")
	} else if !sum.Passed {
		b.WriteString(layout.Centered(width, theme.Hint,
			fmt.Sprintf("You need %d%% to pass.", game.PassAccuracy)))
		b.WriteString("\n")
	}

	if note := saveNote(s.end); note != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Hint, note))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.menu.View(width))
	return b.String()
}

func headline(sum game.Summary) (string, color.Color) {
	switch {
	case sum.Perfect:
		return "★ Perfect score! ★", theme.Gold
	case sum.Passed:
		return "Level passed!", theme.Success
	default:
		return "Keep practising!", theme.Accent
	}
}

// saveNote tells the player where the result ended up.
func saveNote(end *recorder.EndResult) string {
	if end == nil {
		return ""
	}
	if end.Err != nil && end.Mode == recorder.ModeMemory {
		return "Could not save this result."
	}
	switch end.Mode {
	case recorder.ModeRemote:
		return "Result saved."
	case recorder.ModeLocal:
		return "Result saved on this computer."
	default:
		return ""
	}
}
