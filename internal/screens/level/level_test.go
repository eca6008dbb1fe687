package level

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/timestables/internal/game"
	"github.com/abhisek/timestables/internal/problemgen"
	"github.com/abhisek/timestables/internal/recorder"
	"github.com/abhisek/timestables/internal/router"
	"github.com/abhisek/timestables/internal/screen"
	"github.com/abhisek/timestables/internal/screens/summary"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testRunner() *game.Runner {
	gen := problemgen.New(problemgen.WithRand(rand.New(rand.NewPCG(7, 11))))
	return game.NewRunner(gen, recorder.New(nil), "Ada")
}

func startedScreen(t *testing.T, n int) (*LevelScreen, *game.Runner) {
	t.Helper()
	r := testRunner()
	s := New(r, n)
	s.Init()
	if s.fatal != "" {
		t.Fatalf("level did not start: %s", s.fatal)
	}
	return s, r
}

func currentAnswer(t *testing.T, r *game.Runner) string {
	t.Helper()
	q, ok := r.Level().Current()
	if !ok {
		t.Fatal("no current question")
	}
	return strconv.Itoa(q.Answer)
}

func submit(s *LevelScreen, input string) (screen.Screen, tea.Cmd) {
	s.input.SetValue(input)
	return s.Update(specialKey(tea.KeyEnter))
}

func TestLevelScreen_Start(t *testing.T) {
	s, _ := startedScreen(t, 1)
	if s.Title() != "Level 1" {
		t.Errorf("Title = %q, want %q", s.Title(), "Level 1")
	}
	if s.Player() != "Ada" {
		t.Errorf("Player = %q", s.Player())
	}
	if s.view.Total != 20 || s.view.Lives != game.StartingLives {
		t.Errorf("unexpected start view %+v", s.view)
	}
	if !strings.Contains(s.View(80, 24), s.view.Prompt) {
		t.Error("expected the prompt in the view")
	}
}

func TestLevelScreen_CorrectAnswerAdvances(t *testing.T) {
	s, r := startedScreen(t, 1)
	_, cmd := submit(s, currentAnswer(t, r))

	if cmd == nil {
		t.Error("expected a feedback timer")
	}
	if s.feedback == nil || !s.feedback.correct {
		t.Fatal("expected correct feedback")
	}
	if s.view.Index != 1 || s.view.Score != 1 {
		t.Errorf("view after correct = %+v", s.view)
	}
	if s.input.Value() != "" {
		t.Error("expected input cleared")
	}
}

func TestLevelScreen_WrongAnswerCostsHeart(t *testing.T) {
	s, r := startedScreen(t, 1)
	q, _ := r.Level().Current()
	submit(s, strconv.Itoa(q.Answer+1))

	if s.feedback == nil || s.feedback.correct {
		t.Fatal("expected incorrect feedback")
	}
	if s.view.Lives != game.StartingLives-1 || s.view.Index != 0 {
		t.Errorf("view after wrong = %+v", s.view)
	}
}

func TestLevelScreen_CorrectRetryEarnsNoPoint(t *testing.T) {
	s, r := startedScreen(t, 1)
	q, _ := r.Level().Current()
	submit(s, strconv.Itoa(q.Answer+1))
	submit(s, strconv.Itoa(q.Answer))

	if s.feedback == nil || !s.feedback.correct {
		t.Fatal("expected correct feedback")
	}
	if !strings.Contains(s.feedback.text, "no point") {
		t.Errorf("feedback = %q, want a retry note", s.feedback.text)
	}
	if s.view.Index != 1 || s.view.Score != 0 {
		t.Errorf("view after retry = %+v", s.view)
	}
}

func TestLevelScreen_FeedbackClearsOnMatchingTick(t *testing.T) {
	s, r := startedScreen(t, 1)
	submit(s, currentAnswer(t, r))

	s.Update(feedbackDoneMsg{seq: s.feedbackSeq - 1})
	if s.feedback == nil {
		t.Fatal("stale timer should not clear feedback")
	}
	s.Update(feedbackDoneMsg{seq: s.feedbackSeq})
	if s.feedback != nil {
		t.Error("expected feedback cleared")
	}
}

func TestLevelScreen_InvalidInput(t *testing.T) {
	s, _ := startedScreen(t, 1)
	submit(s, "-")

	if s.errMsg == "" {
		t.Error("expected an error message for invalid input")
	}
	if s.view.Lives != game.StartingLives {
		t.Error("invalid input must not cost a heart")
	}
}

func TestLevelScreen_SkipAndBack(t *testing.T) {
	s, _ := startedScreen(t, 1)
	s.Update(specialKey(tea.KeyTab))
	if s.view.Index != 1 {
		t.Fatalf("Index after skip = %d, want 1", s.view.Index)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if s.view.Index != 0 {
		t.Errorf("Index after back = %d, want 0", s.view.Index)
	}
}

func TestLevelScreen_QuitConfirm(t *testing.T) {
	s, _ := startedScreen(t, 1)

	s.Update(specialKey(tea.KeyEscape))
	if !s.confirmQuit {
		t.Fatal("expected quit confirmation")
	}
	s.Update(keyPress('n'))
	if s.confirmQuit {
		t.Fatal("expected confirmation dismissed")
	}

	s.Update(specialKey(tea.KeyEscape))
	_, cmd := s.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("expected a command after quitting")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("expected summary screen, got %T", msg.Screen)
	}
}

func TestLevelScreen_PerfectRunShowsSummary(t *testing.T) {
	s, r := startedScreen(t, 1)

	var cmd tea.Cmd
	for range 20 {
		_, cmd = submit(s, currentAnswer(t, r))
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if !strings.Contains(msg.Screen.View(80, 24), "Perfect") {
		t.Error("expected perfect summary")
	}
}

func TestLevelScreen_BadLevel(t *testing.T) {
	s := New(testRunner(), 11)
	s.Init()
	if s.fatal == "" {
		t.Fatal("expected start error")
	}
	if s.HandlesEscape() {
		t.Error("a failed level should let Esc pop it")
	}
	_, cmd := s.Update(keyPress('x'))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestLevelScreen_NextAndRetry(t *testing.T) {
	r := testRunner()
	first := New(r, 2)
	first.Init()

	next := Next(r)
	next.Init()
	if next.view.Level != 3 {
		t.Errorf("Next level = %d, want 3", next.view.Level)
	}

	retry := Retry(r)
	retry.Init()
	if retry.view.Level != 3 {
		t.Errorf("Retry level = %d, want 3", retry.view.Level)
	}
}
