// Package home is the main menu.
package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/timestables/internal/problemgen"
	"github.com/abhisek/timestables/internal/recorder"
	"github.com/abhisek/timestables/internal/router"
	"github.com/abhisek/timestables/internal/screen"
	"github.com/abhisek/timestables/internal/screens/progress"
	"github.com/abhisek/timestables/internal/screens/welcome"
	"github.com/abhisek/timestables/internal/ui/components"
)

type status struct {
	players     int
	leader      string
	leaderLevel int
	offline     bool
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	rec    *recorder.Recorder
	menu   components.Menu
	status status
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a HomeScreen. player pre-fills the name prompt.
func New(gen *problemgen.Generator, rec *recorder.Recorder, player string) *HomeScreen {
	items := []components.MenuItem{
		{Label: "PLAY LEVELS", Action: func() tea.Cmd {
			return pushScreen(welcome.New(gen, rec, welcome.ModeLevels, player))
		}},
		{Label: "TIMED CHALLENGE", Action: func() tea.Cmd {
			return pushScreen(welcome.New(gen, rec, welcome.ModeTimed, player))
		}},
		{Label: "PROGRESS", Action: func() tea.Cmd {
			return pushScreen(progress.New(rec))
		}},
		{Label: "EXIT GAME", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		rec:  rec,
		menu: components.NewMenu(items),
	}
}

// Init refreshes the player count and current leader. The router calls it
// again whenever the stack unwinds back to home.
func (h *HomeScreen) Init() tea.Cmd {
	ctx := context.Background()
	h.status = status{}
	if students := h.rec.ListStudents(ctx); students.Err == nil {
		h.status.players = len(students.Value)
	}
	if board := h.rec.Leaderboard(ctx, 1); board.Err == nil && len(board.Value) > 0 {
		h.status.leader = board.Value[0].Name
		h.status.leaderLevel = board.Value[0].HighestLevelReached
	}
	h.status.offline = h.rec.Offline()
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := height+8 < 30 || width < 90
	cw := contentWidth(width)

	sections := []string{renderTitle(cw)}
	if !compact {
		sections = append(sections, centerIn(cw, RenderMascot(h.mascot())))
	}
	sections = append(sections,
		renderStatusBar(h.status, cw),
		h.menu.View(cw),
	)

	return renderCabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) mascot() MascotVariant {
	switch {
	case h.status.offline:
		return MascotOffline
	case h.status.leader != "":
		return MascotCheer
	default:
		return MascotIdle
	}
}

func pushScreen(s screen.Screen) tea.Cmd {
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: s}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}
