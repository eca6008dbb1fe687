package timed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/timestables/internal/game"
	"github.com/abhisek/timestables/internal/problemgen"
	"github.com/abhisek/timestables/internal/recorder"
	"github.com/abhisek/timestables/internal/router"
	"github.com/abhisek/timestables/internal/screen"
	"github.com/abhisek/timestables/internal/store"
	"github.com/abhisek/timestables/internal/ui/components"
	"github.com/abhisek/timestables/internal/ui/layout"
	"github.com/abhisek/timestables/internal/ui/theme"
)

const (
	tickInterval = 250 * time.Millisecond
	historySize  = 5
)

type tickMsg time.Time

// TimedScreen runs the countdown challenge and shows its result.
type TimedScreen struct {
	runner *game.Runner
	rec    *recorder.Recorder
	now    func() time.Time

	challenge *game.Timed
	input     components.TextInput
	last      *game.TimedAnswer
	errMsg    string

	done    bool
	result  game.TimedResult
	saveErr error
	history []store.TimedResult
	menu    components.Menu
}

var _ screen.Screen = (*TimedScreen)(nil)
var _ screen.KeyHintProvider = (*TimedScreen)(nil)
var _ screen.PlayerProvider = (*TimedScreen)(nil)

// New creates a TimedScreen. rec is only read for past results and may be
// nil.
func New(r *game.Runner, rec *recorder.Recorder) *TimedScreen {
	s := &TimedScreen{
		runner: r,
		rec:    rec,
		now:    time.Now,
	}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "PLAY AGAIN", Action: func() tea.Cmd { return s.restart() }},
		{Label: "HOME", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PopToRootMsg{} }
		}},
	})
	return s
}

func (s *TimedScreen) Init() tea.Cmd {
	return s.restart()
}

func (s *TimedScreen) restart() tea.Cmd {
	s.challenge = s.runner.StartTimed(s.now())
	s.input = components.NewTextInput("answer", true, 6)
	s.last = nil
	s.errMsg = ""
	s.done = false
	s.saveErr = nil
	return tea.Batch(s.input.Init(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *TimedScreen) Title() string {
	return "Timed Challenge"
}

func (s *TimedScreen) Player() string {
	return s.runner.Student()
}

func (s *TimedScreen) KeyHints() []layout.KeyHint {
	if s.done {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Select"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Give up"},
	}
}

func (s *TimedScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if s.done {
			return s, nil
		}
		if s.challenge.Tick(s.now()) {
			s.finish()
			return s, nil
		}
		return s, tick()

	case tea.KeyMsg:
		if s.done {
			var cmd tea.Cmd
			s.menu, cmd = s.menu.Update(msg)
			return s, cmd
		}
		if msg.String() == "enter" {
			return s.submit()
		}
	}

	if s.done {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *TimedScreen) submit() (screen.Screen, tea.Cmd) {
	input := s.input.Value()
	if input == "" {
		return s, nil
	}

	ans, err := s.challenge.Submit(input, s.now())
	switch {
	case errors.Is(err, game.ErrChallengeOver):
		s.finish()
		return s, nil
	case err != nil:
		var invalid *problemgen.InvalidInputError
		if errors.As(err, &invalid) {
			s.errMsg = "Please type a whole number."
		} else {
			s.errMsg = err.Error()
		}
		return s, nil
	}

	s.last = &ans
	s.errMsg = ""
	s.input.Reset()
	return s, nil
}

// finish records the result locally and loads recent history.
func (s *TimedScreen) finish() {
	s.done = true
	s.result = s.challenge.Result()

	ctx := context.Background()
	_, s.saveErr = s.runner.FinishTimed(ctx)
	if s.rec != nil {
		if read := s.rec.TimedResults(ctx, s.runner.Student(), historySize); read.Err == nil {
			s.history = read.Value
		}
	}
}

func (s *TimedScreen) View(width, height int) string {
	if s.done {
		return s.renderResult(width)
	}
	return s.renderPlaying(width)
}

func (s *TimedScreen) renderPlaying(width int) string {
	var b strings.Builder

	remaining := s.challenge.Remaining(s.now())
	secs := int((remaining + time.Second - 1) / time.Second)
	clock := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(fmt.Sprintf("⏱ %ds", secs))
	if secs <= 5 {
		clock = lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render(fmt.Sprintf("⏱ %ds", secs))
	}
	res := s.challenge.Result()
	counts := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("Answered %d   Correct %d", res.Answered, res.Correct))

	b.WriteString(layout.Centered(width, lipgloss.NewStyle(), clock+"     "+counts))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("", int(remaining/time.Second), int(game.TimedDuration/time.Second), min(width-10, 50))
	bar.Caption = ""
	bar.FillStyle = theme.ProgressFilled.Background(theme.Accent)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Prompt.Render(s.challenge.Current().Prompt)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
	b.WriteString("\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Accent), s.errMsg))
	case s.last != nil && s.last.Correct:
		b.WriteString(layout.Centered(width, theme.Correct, "✓ Correct!"))
	case s.last != nil:
		b.WriteString(layout.Centered(width, theme.Incorrect,
			fmt.Sprintf("✗ %s was %d", strings.TrimSuffix(s.last.Question.Prompt, " = ?"), s.last.Question.Answer)))
	}
	return b.String()
}

func (s *TimedScreen) renderResult(width int) string {
	var b strings.Builder
	r := s.result

	b.WriteString(layout.Centered(width, theme.Title, "Time's up!"))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, theme.Body,
		fmt.Sprintf("Answered: %d        Correct: %d        Accuracy: %.0f%%", r.Answered, r.Correct, r.Accuracy)))
	b.WriteString("\n")
	if s.saveErr != nil {
		b.WriteString(layout.Centered(width, theme.Hint, "Could not save this result."))
		b.WriteString("\n")
	}

	if len(s.history) > 0 {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Subtitle, "Recent challenges"))
		b.WriteString("\n")
		for _, h := range s.history {
			line := fmt.Sprintf("%s   %d/%d   %.0f%%",
				h.Timestamp.Local().Format("Jan 2 15:04"), h.CorrectAnswers, h.QuestionsAnswered, h.Accuracy)
			b.WriteString(layout.Centered(width, theme.Hint, line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(s.menu.View(width))
	return b.String()
}
