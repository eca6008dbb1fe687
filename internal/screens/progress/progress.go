// Package progress shows students, their session history and the
// leaderboard.
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/timestables/internal/recorder"
	"github.com/abhisek/timestables/internal/screen"
	"github.com/abhisek/timestables/internal/store"
	"github.com/abhisek/timestables/internal/ui/layout"
	"github.com/abhisek/timestables/internal/ui/theme"
)

const (
	maxSessionsShown = 8
	maxTimedShown    = 3
)

// Reader is the read side of the recorder.
type Reader interface {
	ListStudents(ctx context.Context) recorder.Read[[]string]
	Student(ctx context.Context, name string) recorder.Read[store.StudentDetail]
	Leaderboard(ctx context.Context, limit int) recorder.Read[[]store.LeaderboardEntry]
	TimedResults(ctx context.Context, name string, limit int) recorder.Read[[]store.TimedResult]
}

type detail struct {
	name   string
	data   store.StudentDetail
	timed  []store.TimedResult
	source recorder.Mode
}

// ProgressScreen lists students beside the leaderboard; Enter opens one
// student's history.
type ProgressScreen struct {
	reader Reader

	students []string
	board    []store.LeaderboardEntry
	source   recorder.Mode
	selected int
	errMsg   string

	detail *detail
}

var _ screen.Screen = (*ProgressScreen)(nil)
var _ screen.KeyHintProvider = (*ProgressScreen)(nil)
var _ screen.EscapeHandler = (*ProgressScreen)(nil)

// New creates a ProgressScreen.
func New(reader Reader) *ProgressScreen {
	return &ProgressScreen{reader: reader}
}

// Init loads the student list and leaderboard.
func (s *ProgressScreen) Init() tea.Cmd {
	ctx := context.Background()
	students := s.reader.ListStudents(ctx)
	board := s.reader.Leaderboard(ctx, store.DefaultLeaderboardSize)

	s.students = students.Value
	s.board = board.Value
	s.source = max(students.Mode, board.Mode)
	s.errMsg = ""
	if err := errors.Join(students.Err, board.Err); err != nil {
		s.errMsg = err.Error()
	}
	s.selected = min(s.selected, max(len(s.students)-1, 0))
	return nil
}

func (s *ProgressScreen) Title() string {
	if s.detail != nil {
		return s.detail.name
	}
	return "Progress"
}

func (s *ProgressScreen) HandlesEscape() bool {
	return s.detail != nil
}

func (s *ProgressScreen) KeyHints() []layout.KeyHint {
	if s.detail != nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Back to students"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	if s.detail != nil {
		if kmsg.String() == "esc" {
			s.detail = nil
		}
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.students)-1 {
			s.selected++
		}
	case "enter":
		if len(s.students) > 0 {
			s.open(s.students[s.selected])
		}
	}
	return s, nil
}

func (s *ProgressScreen) open(name string) {
	ctx := context.Background()
	read := s.reader.Student(ctx, name)
	if read.Err != nil {
		s.errMsg = read.Err.Error()
		return
	}
	d := &detail{name: name, data: read.Value, source: read.Mode}
	if t := s.reader.TimedResults(ctx, name, maxTimedShown); t.Err == nil {
		d.timed = t.Value
	}
	s.detail = d
}

func (s *ProgressScreen) View(width, height int) string {
	if s.detail != nil {
		return s.renderDetail(width)
	}
	return s.renderOverview(width)
}

func (s *ProgressScreen) renderOverview(width int) string {
	var b strings.Builder
	b.WriteString("\n")

	if len(s.students) == 0 && s.errMsg == "" {
		b.WriteString(layout.Centered(width, theme.Hint, "No one has played yet. Start a level!"))
		return b.String()
	}

	colWidth := max((width-6)/2, 20)

	var names strings.Builder
	names.WriteString(theme.Subtitle.Render("Students") + "\n\n")
	for i, name := range s.students {
		if i == s.selected {
			names.WriteString(theme.Selected.Render("▸ "+name) + "\n")
		} else {
			names.WriteString(theme.Unselected.Render("  "+name) + "\n")
		}
	}

	var board strings.Builder
	board.WriteString(theme.Subtitle.Render("Leaderboard") + "\n\n")
	for _, e := range s.board {
		line := fmt.Sprintf("%2d. %-14s L%-2d %5.1f%%", e.Rank, truncate(e.Name, 14), e.HighestLevelReached, e.BestAccuracy)
		style := theme.Body
		if e.Rank == 1 {
			style = lipgloss.NewStyle().Foreground(theme.Gold).Bold(true)
		}
		board.WriteString(style.Render(line) + "\n")
	}

	left := lipgloss.NewStyle().Width(colWidth).Render(names.String())
	right := lipgloss.NewStyle().Width(colWidth).Render(board.String())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.JoinHorizontal(lipgloss.Top, left, right)))
	b.WriteString("\n")
	b.WriteString(s.footnote(width, s.source))
	return b.String()
}

func (s *ProgressScreen) renderDetail(width int) string {
	d := s.detail
	agg := d.data.Aggregate
	var b strings.Builder
	b.WriteString("\n")

	b.WriteString(layout.Centered(width, theme.Body.Bold(true), fmt.Sprintf(
		"Highest level: %d     Best accuracy: %.1f%%     Sessions: %d",
		agg.HighestLevelReached, agg.BestAccuracy, agg.TotalSessions)))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(width, theme.Subtitle, "Recent sessions"))
	b.WriteString("\n")
	if len(d.data.Sessions) == 0 {
		b.WriteString(layout.Centered(width, theme.Hint, "No sessions yet."))
		b.WriteString("\n")
	}
	for i, sess := range d.data.Sessions {
		if i == maxSessionsShown {
			b.WriteString(layout.Centered(width, theme.Hint, fmt.Sprintf("… and %d more", len(d.data.Sessions)-i)))
			b.WriteString("\n")
			break
		}
		b.WriteString(layout.Centered(width, sessionStyle(sess), sessionLine(sess)))
		b.WriteString("\n")
	}

	if len(d.timed) > 0 {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Subtitle, "Timed challenges"))
		b.WriteString("\n")
		for _, t := range d.timed {
			line := fmt.Sprintf("%s   %d correct of %d   %.0f%%",
				t.Timestamp.Local().Format("Jan 02 15:04"), t.CorrectAnswers, t.QuestionsAnswered, t.Accuracy)
			b.WriteString(layout.Centered(width, theme.Body, line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(s.footnote(width, d.source))
	return b.String()
}

func sessionLine(sess store.SessionRecord) string {
	status := "in progress"
	if sess.EndTime != nil {
		status = "✗"
		if sess.LevelPassed {
			status = "✓ passed"
		}
	}
	return fmt.Sprintf("%s   Level %-2d  %2d/%-2d  %5.1f%%  %s",
		sess.StartTime.Local().Format("Jan 02 15:04"), sess.Level,
		sess.CorrectAnswers, sess.TotalQuestions, sess.Accuracy, status)
}

func sessionStyle(sess store.SessionRecord) lipgloss.Style {
	if sess.LevelPassed {
		return lipgloss.NewStyle().Foreground(theme.Success)
	}
	return theme.Body
}

func (s *ProgressScreen) footnote(width int, source recorder.Mode) string {
	if s.errMsg != "" {
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error), s.errMsg)
	}
	if source == recorder.ModeLocal {
		return layout.Centered(width, theme.Hint, "Showing results saved on this computer.")
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
