package recorder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/timestables/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errDown = errors.New("connection refused")

// fakeBackend fails the operations named in failing and records calls.
type fakeBackend struct {
	failing  map[string]bool
	answers  []store.AnswerLogEntry
	finalize []store.FinalizeRequest
	nextID   int
}

func newFake(failing ...string) *fakeBackend {
	f := &fakeBackend{failing: map[string]bool{}}
	for _, op := range failing {
		f.failing[op] = true
	}
	return f
}

func (f *fakeBackend) fail(op string) error {
	if f.failing[op] || f.failing["*"] {
		return &store.PersistenceError{Op: op, Err: errDown}
	}
	return nil
}

func (f *fakeBackend) CreateSession(_ context.Context, _ string, _ int, _ time.Time) (string, error) {
	if err := f.fail("create"); err != nil {
		return "", err
	}
	f.nextID++
	return fmt.Sprintf("remote-%d", f.nextID), nil
}

func (f *fakeBackend) AppendAnswer(_ context.Context, e store.AnswerLogEntry) error {
	if err := f.fail("append"); err != nil {
		return err
	}
	f.answers = append(f.answers, e)
	return nil
}

func (f *fakeBackend) FinalizeSession(_ context.Context, req store.FinalizeRequest) (store.SessionStats, error) {
	if err := f.fail("finalize"); err != nil {
		return store.SessionStats{}, err
	}
	f.finalize = append(f.finalize, req)
	return store.SessionStats{TotalQuestions: req.TotalQuestions, CorrectAnswers: req.CorrectAnswers, Accuracy: req.Accuracy}, nil
}

func (f *fakeBackend) ListStudents(context.Context) ([]string, error) {
	if err := f.fail("read"); err != nil {
		return nil, err
	}
	return []string{"remote-kid"}, nil
}

func (f *fakeBackend) GetStudent(_ context.Context, name string) (store.StudentDetail, error) {
	if err := f.fail("read"); err != nil {
		return store.StudentDetail{}, err
	}
	return store.StudentDetail{Aggregate: store.StudentAggregate{Name: name, HighestLevelReached: 7}}, nil
}

func (f *fakeBackend) Leaderboard(context.Context, int) ([]store.LeaderboardEntry, error) {
	if err := f.fail("read"); err != nil {
		return nil, err
	}
	return []store.LeaderboardEntry{{Rank: 1, StudentAggregate: store.StudentAggregate{Name: "remote-kid"}}}, nil
}

func openLocal(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:rec_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func answer(q string, correct bool) store.AnswerLogEntry {
	return store.AnswerLogEntry{Question: q, UserAnswer: 1, CorrectAnswer: 1, IsCorrect: correct, IsFirstAttempt: true}
}

func TestRemoteHappyPath(t *testing.T) {
	remote := newFake()
	rec := New(openLocal(t), WithRemote(remote))
	ctx := context.Background()

	start := rec.StartSession(ctx, "Ada", 2)
	require.NoError(t, start.Err)
	assert.Equal(t, ModeRemote, start.Mode)
	assert.False(t, start.Degraded)
	assert.False(t, rec.Offline())

	for i, ok := range []bool{true, true, false, true} {
		res := rec.LogAnswer(ctx, answer(fmt.Sprintf("q%d", i), ok))
		require.NoError(t, res.Err)
	}
	require.Len(t, remote.answers, 4)
	assert.Equal(t, start.SessionID, remote.answers[0].SessionID)
	assert.Equal(t, "Ada", remote.answers[0].StudentName)
	assert.Equal(t, 2, remote.answers[0].Level)

	end := rec.EndSession(ctx, false)
	require.NoError(t, end.Err)
	assert.Equal(t, ModeRemote, end.Mode)
	assert.Equal(t, 4, end.Record.TotalQuestions)
	assert.Equal(t, 3, end.Record.CorrectAnswers)
	assert.InDelta(t, 75.0, end.Record.Accuracy, 0.001)
	require.Len(t, remote.finalize, 1)
	assert.Equal(t, start.SessionID, remote.finalize[0].SessionID)

	_, _, open := rec.Active()
	assert.False(t, open)
}

func TestCreateSessionFailure_FallsBackToLocal(t *testing.T) {
	before := testutil.ToFloat64(FallbackCounter.WithLabelValues("start_session"))
	local := openLocal(t)
	core, logs := observer.New(zapcore.WarnLevel)
	rec := New(local, WithRemote(newFake("*")), WithLogger(zap.New(core)))
	ctx := context.Background()

	start := rec.StartSession(ctx, "Bo", 1)
	require.NotEmpty(t, start.SessionID)
	assert.Equal(t, ModeLocal, start.Mode)
	assert.True(t, start.Degraded)
	assert.ErrorIs(t, start.Err, errDown)
	assert.True(t, rec.Offline())
	assert.Equal(t, before+1, testutil.ToFloat64(FallbackCounter.WithLabelValues("start_session")))
	assert.Equal(t, 1, logs.FilterMessage("remote persistence failed, falling back").Len())

	for i := range 20 {
		res := rec.LogAnswer(ctx, answer(fmt.Sprintf("q%d", i), i < 17))
		require.NoError(t, res.Err)
		assert.Equal(t, ModeLocal, res.Mode)
	}

	end := rec.EndSession(ctx, true)
	require.NoError(t, end.Err)
	assert.Equal(t, ModeLocal, end.Mode)
	assert.InDelta(t, 85.0, end.Record.Accuracy, 0.001)

	detail, err := local.GetStudent(ctx, "Bo")
	require.NoError(t, err)
	require.Len(t, detail.Sessions, 1)
	assert.Len(t, detail.Sessions[0].Answers, 20)
	assert.Equal(t, 2, detail.Aggregate.HighestLevelReached)
}

func TestFinalizeFailure_ImportsIntoLocal(t *testing.T) {
	local := openLocal(t)
	remote := newFake("finalize")
	rec := New(local, WithRemote(remote))
	ctx := context.Background()

	start := rec.StartSession(ctx, "Cy", 5)
	require.Equal(t, ModeRemote, start.Mode)
	rec.LogAnswer(ctx, answer("a", true))
	rec.LogAnswer(ctx, answer("b", false))

	end := rec.EndSession(ctx, false)
	assert.Equal(t, ModeLocal, end.Mode)
	assert.True(t, end.Degraded)
	assert.ErrorIs(t, end.Err, errDown)

	detail, err := local.GetStudent(ctx, "Cy")
	require.NoError(t, err)
	require.Len(t, detail.Sessions, 1)
	assert.Equal(t, start.SessionID, detail.Sessions[0].ID)
	assert.Len(t, detail.Sessions[0].Answers, 2)
	assert.InDelta(t, 50.0, detail.Sessions[0].Accuracy, 0.001)
	assert.Equal(t, 1, detail.Aggregate.TotalSessions)
}

func TestAnswerForwardFailure_IsDegradedNotFatal(t *testing.T) {
	remote := newFake("append")
	rec := New(openLocal(t), WithRemote(remote))
	ctx := context.Background()

	rec.StartSession(ctx, "Dee", 1)
	res := rec.LogAnswer(ctx, answer("a", true))
	assert.True(t, res.Degraded)
	assert.Error(t, res.Err)

	end := rec.EndSession(ctx, false)
	require.NoError(t, end.Err)
	assert.Equal(t, ModeRemote, end.Mode)
	assert.Equal(t, 1, end.Record.TotalQuestions, "in-memory answers stay authoritative")
}

func TestEverythingDown_MemoryOnly(t *testing.T) {
	rec := New(nil, WithRemote(newFake("*")))
	ctx := context.Background()

	start := rec.StartSession(ctx, "Eve", 3)
	assert.Equal(t, ModeMemory, start.Mode)
	assert.NotEmpty(t, start.SessionID)

	res := rec.LogAnswer(ctx, answer("a", true))
	assert.NoError(t, res.Err)
	assert.Equal(t, ModeMemory, res.Mode)

	end := rec.EndSession(ctx, true)
	assert.Equal(t, ModeMemory, end.Mode)
	assert.Equal(t, 1, end.Record.CorrectAnswers)
	assert.InDelta(t, 100.0, end.Stats.Accuracy, 0.001)
}

func TestEndSession_NoAnswers(t *testing.T) {
	rec := New(openLocal(t))
	ctx := context.Background()

	start := rec.StartSession(ctx, "Fay", 1)
	require.NoError(t, start.Err)
	assert.Equal(t, ModeLocal, start.Mode)
	assert.False(t, start.Degraded)
	assert.False(t, rec.Offline(), "no remote configured is not offline")

	end := rec.EndSession(ctx, false)
	require.NoError(t, end.Err)
	assert.Zero(t, end.Record.TotalQuestions)
	assert.Zero(t, end.Record.Accuracy)
}

func TestNoActiveSession(t *testing.T) {
	rec := New(openLocal(t))
	ctx := context.Background()

	res := rec.LogAnswer(ctx, answer("a", true))
	assert.ErrorIs(t, res.Err, ErrNoActiveSession)

	end := rec.EndSession(ctx, true)
	assert.ErrorIs(t, end.Err, ErrNoActiveSession)

	// Ending twice reports the second call.
	rec.StartSession(ctx, "Gus", 1)
	require.NoError(t, rec.EndSession(ctx, false).Err)
	assert.ErrorIs(t, rec.EndSession(ctx, false).Err, ErrNoActiveSession)
}

func TestClock(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := New(nil, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	rec.StartSession(ctx, "Hal", 1)
	rec.LogAnswer(ctx, answer("a", true))
	end := rec.EndSession(ctx, true)
	assert.Equal(t, fixed, end.Record.StartTime)
	require.NotNil(t, end.Record.EndTime)
	assert.Equal(t, fixed, *end.Record.EndTime)
	assert.Equal(t, fixed, end.Record.Answers[0].Timestamp)
}

func TestReads_FallBackToLocal(t *testing.T) {
	local := openLocal(t)
	ctx := context.Background()

	seed := New(local)
	seed.StartSession(ctx, "local-kid", 1)
	seed.EndSession(ctx, true)

	online := New(local, WithRemote(newFake()))
	students := online.ListStudents(ctx)
	require.NoError(t, students.Err)
	assert.Equal(t, ModeRemote, students.Mode)
	assert.Equal(t, []string{"remote-kid"}, students.Value)

	offline := New(local, WithRemote(newFake("read")))
	students = offline.ListStudents(ctx)
	require.NoError(t, students.Err)
	assert.Equal(t, ModeLocal, students.Mode)
	assert.Equal(t, []string{"local-kid"}, students.Value)

	detail := offline.Student(ctx, "local-kid")
	require.NoError(t, detail.Err)
	assert.Equal(t, 2, detail.Value.Aggregate.HighestLevelReached)

	board := offline.Leaderboard(ctx, 10)
	require.NoError(t, board.Err)
	require.Len(t, board.Value, 1)
	assert.Equal(t, "local-kid", board.Value[0].Name)

	none := New(nil).ListStudents(ctx)
	assert.Error(t, none.Err)
}

func TestSaveTimed(t *testing.T) {
	local := openLocal(t)
	rec := New(local)
	ctx := context.Background()

	saved, err := rec.SaveTimed(ctx, store.TimedResult{StudentName: "Ivy", QuestionsAnswered: 12, CorrectAnswers: 9, Accuracy: 75})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	hist := rec.TimedResults(ctx, "Ivy", 5)
	require.NoError(t, hist.Err)
	require.Len(t, hist.Value, 1)
	assert.Equal(t, 12, hist.Value[0].QuestionsAnswered)

	_, err = New(nil).SaveTimed(ctx, store.TimedResult{StudentName: "Ivy"})
	var pe *store.PersistenceError
	assert.True(t, errors.As(err, &pe))
}
