package level

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/timestables/internal/game"
	"github.com/abhisek/timestables/internal/problemgen"
	"github.com/abhisek/timestables/internal/recorder"
	"github.com/abhisek/timestables/internal/router"
	"github.com/abhisek/timestables/internal/screen"
	"github.com/abhisek/timestables/internal/screens/summary"
	"github.com/abhisek/timestables/internal/ui/components"
	"github.com/abhisek/timestables/internal/ui/layout"
)

const feedbackDuration = 1200 * time.Millisecond

type feedback struct {
	correct bool
	text    string
}

// LevelScreen plays one level through a game.Runner.
type LevelScreen struct {
	runner *game.Runner
	start  func(context.Context) (game.LevelStart, error)

	view        game.View
	input       components.TextInput
	feedback    *feedback
	feedbackSeq int
	confirmQuit bool
	errMsg      string
	fatal       string
}

var _ screen.Screen = (*LevelScreen)(nil)
var _ screen.KeyHintProvider = (*LevelScreen)(nil)
var _ screen.EscapeHandler = (*LevelScreen)(nil)
var _ screen.PlayerProvider = (*LevelScreen)(nil)

// New plays level n.
func New(r *game.Runner, n int) *LevelScreen {
	return newScreen(r, func(ctx context.Context) (game.LevelStart, error) {
		return r.StartLevel(ctx, n)
	})
}

// Next plays the level after the runner's current one.
func Next(r *game.Runner) *LevelScreen {
	return newScreen(r, r.NextLevel)
}

// Retry replays the runner's current level with fresh questions.
func Retry(r *game.Runner) *LevelScreen {
	return newScreen(r, r.Retry)
}

func newScreen(r *game.Runner, start func(context.Context) (game.LevelStart, error)) *LevelScreen {
	return &LevelScreen{
		runner: r,
		start:  start,
		input:  components.NewTextInput("answer", true, 6),
	}
}

// Init starts the level. The recorder session is opened here, inside the
// update loop, so all recorder calls stay on one goroutine.
func (s *LevelScreen) Init() tea.Cmd {
	ls, err := s.start(context.Background())
	if err != nil {
		s.fatal = err.Error()
		return nil
	}
	s.view = ls.View
	return s.input.Init()
}

func (s *LevelScreen) Title() string {
	if s.view.Level == 0 {
		return "Level"
	}
	return fmt.Sprintf("Level %d", s.view.Level)
}

func (s *LevelScreen) Player() string {
	return s.runner.Student()
}

func (s *LevelScreen) HandlesEscape() bool {
	return s.fatal == ""
}

func (s *LevelScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "End level"},
			{Key: "N", Description: "Keep going"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Tab", Description: "Skip"},
		{Key: "Shift+Tab", Description: "Back"},
		{Key: "Ctrl+S", Description: "Shuffle"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *LevelScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case feedbackDoneMsg:
		if msg.seq == s.feedbackSeq {
			s.feedback = nil
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *LevelScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.fatal != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s.quit()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.confirmQuit = true
		return s, nil
	case "enter":
		return s.submit()
	case "tab":
		view, sum, end := s.runner.Skip(context.Background())
		return s.moved(view, sum, end)
	case "shift+tab":
		s.view = s.runner.Previous()
		s.clearInput()
		return s, nil
	case "ctrl+s":
		s.view = s.runner.Shuffle()
		s.clearInput()
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.errMsg = ""
	return s, cmd
}

func (s *LevelScreen) submit() (screen.Screen, tea.Cmd) {
	input := s.input.Value()
	if input == "" {
		return s, nil
	}

	sub, err := s.runner.Submit(context.Background(), input)
	if err != nil {
		var invalid *problemgen.InvalidInputError
		if errors.As(err, &invalid) {
			s.errMsg = "Please type a whole number."
			return s, nil
		}
		s.errMsg = err.Error()
		return s, nil
	}

	s.clearInput()
	if sub.Completed {
		return s, s.finish(*sub.Summary, sub.End)
	}

	s.view = s.runner.Level().View()
	fb := &feedback{correct: sub.Correct}
	switch {
	case sub.Scored:
		fb.text = fmt.Sprintf("Correct! %s", answered(sub.Question))
	case sub.Correct:
		fb.text = fmt.Sprintf("Correct, but no point on a retry. %s", answered(sub.Question))
	default:
		fb.text = "Not quite. Try again!"
	}
	return s, s.showFeedback(fb)
}

func (s *LevelScreen) moved(view game.View, sum *game.Summary, end *recorder.EndResult) (screen.Screen, tea.Cmd) {
	s.clearInput()
	if sum != nil {
		return s, s.finish(*sum, end)
	}
	s.view = view
	return s, nil
}

func (s *LevelScreen) quit() (screen.Screen, tea.Cmd) {
	sum, end := s.runner.Quit(context.Background())
	return s, s.finish(sum, end)
}

func (s *LevelScreen) finish(sum game.Summary, end *recorder.EndResult) tea.Cmd {
	r := s.runner
	next := summary.New(r.Student(), sum, end, summary.Actions{
		Next:  func() screen.Screen { return Next(r) },
		Retry: func() screen.Screen { return Retry(r) },
	})
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *LevelScreen) showFeedback(fb *feedback) tea.Cmd {
	s.feedback = fb
	s.feedbackSeq++
	seq := s.feedbackSeq
	return tea.Tick(feedbackDuration, func(time.Time) tea.Msg {
		return feedbackDoneMsg{seq: seq}
	})
}

func (s *LevelScreen) clearInput() {
	s.input.Reset()
	s.errMsg = ""
}

func answered(q problemgen.Question) string {
	return fmt.Sprintf("%d %s %d = %d", q.Left, q.Operation.Symbol(), q.Right, q.Answer)
}
