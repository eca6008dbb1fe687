// Package app wires the screens into the root Bubble Tea model.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/timestables/internal/game"
	"github.com/abhisek/timestables/internal/problemgen"
	"github.com/abhisek/timestables/internal/recorder"
	"github.com/abhisek/timestables/internal/router"
	"github.com/abhisek/timestables/internal/screen"
	"github.com/abhisek/timestables/internal/screens/home"
	"github.com/abhisek/timestables/internal/screens/level"
	"github.com/abhisek/timestables/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Generator *problemgen.Generator
	Recorder  *recorder.Recorder

	// Player and StartLevel, when both set, skip the menus and go straight
	// into that level.
	Player     string
	StartLevel int
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	if opts.Generator == nil {
		opts.Generator = problemgen.New()
	}
	if opts.Recorder == nil {
		opts.Recorder = recorder.New(nil)
	}
	return AppModel{
		router: router.New(home.New(opts.Generator, opts.Recorder, opts.Player)),
		opts:   opts,
	}
}

func (m AppModel) Init() tea.Cmd {
	cmd := m.router.Active().Init()
	if m.opts.Player != "" && m.opts.StartLevel > 0 {
		runner := game.NewRunner(m.opts.Generator, m.opts.Recorder, m.opts.Player)
		cmd = tea.Batch(cmd, m.router.Push(level.New(runner, m.opts.StartLevel)))
	}
	return cmd
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	info := layout.HeaderInfo{Offline: m.opts.Recorder.Offline()}
	if active != nil {
		title = active.Title()
		if p, ok := active.(screen.PlayerProvider); ok {
			info.Player = p.Player()
		}
	}

	header := layout.RenderHeader(title, info, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	var hints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = append(hints, p.KeyHints()...)
	} else if m.router.Depth() > 1 {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	} else {
		hints = append(hints,
			layout.KeyHint{Key: "↑↓", Description: "Navigate"},
			layout.KeyHint{Key: "Enter", Description: "Select"},
		)
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
