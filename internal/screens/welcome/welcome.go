// Package welcome asks for the player's name and, for leveled play, the
// starting level.
package welcome

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/timestables/internal/game"
	"github.com/abhisek/timestables/internal/levels"
	"github.com/abhisek/timestables/internal/problemgen"
	"github.com/abhisek/timestables/internal/recorder"
	"github.com/abhisek/timestables/internal/router"
	"github.com/abhisek/timestables/internal/screen"
	"github.com/abhisek/timestables/internal/screens/level"
	"github.com/abhisek/timestables/internal/screens/timed"
	"github.com/abhisek/timestables/internal/ui/components"
	"github.com/abhisek/timestables/internal/ui/layout"
	"github.com/abhisek/timestables/internal/ui/theme"
)

// Mode is what the player goes on to after entering their name.
type Mode int

const (
	ModeLevels Mode = iota
	ModeTimed
)

const maxNameLen = 24

// WelcomeScreen collects a name and starts the chosen game.
type WelcomeScreen struct {
	gen  *problemgen.Generator
	rec  *recorder.Recorder
	mode Mode

	input  components.TextInput
	level  int
	errMsg string
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen. name pre-fills the input.
func New(gen *problemgen.Generator, rec *recorder.Recorder, mode Mode, name string) *WelcomeScreen {
	in := components.NewTextInput("your name", false, maxNameLen)
	in.SetValue(name)
	return &WelcomeScreen{
		gen:   gen,
		rec:   rec,
		mode:  mode,
		input: in,
		level: levels.First,
	}
}

func (w *WelcomeScreen) Title() string {
	if w.mode == ModeTimed {
		return "Timed Challenge"
	}
	return "Play"
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return w.input.Init()
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Start"}}
	if w.mode == ModeLevels {
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Level"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter":
			return w, w.start()
		case "left":
			if w.mode == ModeLevels && w.level > levels.First {
				w.level--
			}
			return w, nil
		case "right":
			if w.mode == ModeLevels && w.level < levels.Last {
				w.level++
			}
			return w, nil
		}
	}

	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	w.errMsg = ""
	return w, cmd
}

func (w *WelcomeScreen) start() tea.Cmd {
	name := strings.TrimSpace(w.input.Value())
	if name == "" {
		w.errMsg = "Please type your name first."
		return nil
	}

	runner := game.NewRunner(w.gen, w.rec, name)
	var next screen.Screen
	if w.mode == ModeTimed {
		next = timed.New(runner, w.rec)
	} else {
		next = level.New(runner, w.level)
	}
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, RenderBanner(width), "")
	sections = append(sections, theme.Body.Bold(true).Render("What's your name?"), "")
	sections = append(sections, w.input.View(), "")

	if w.mode == ModeLevels {
		cfg, _ := levels.Get(w.level)
		picker := lipgloss.NewStyle().Foreground(theme.Gold).Bold(true).
			Render(fmt.Sprintf("◂  Level %d  ▸", w.level))
		sections = append(sections, picker, theme.Hint.Render(cfg.Description))
	} else {
		sections = append(sections, theme.Hint.Render(
			fmt.Sprintf("Answer as many as you can in %d seconds.", int(game.TimedDuration.Seconds()))))
	}

	if w.errMsg != "" {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.Accent).Render(w.errMsg))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, sections...))
}
