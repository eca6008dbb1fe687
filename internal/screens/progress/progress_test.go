package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/timestables/internal/recorder"
	"github.com/abhisek/timestables/internal/store"
)

type fakeReader struct {
	mode     recorder.Mode
	students []string
	board    []store.LeaderboardEntry
	details  map[string]store.StudentDetail
	timed    map[string][]store.TimedResult
	listErr  error
	opened   []string
}

func (f *fakeReader) ListStudents(context.Context) recorder.Read[[]string] {
	return recorder.Read[[]string]{Value: f.students, Mode: f.mode, Err: f.listErr}
}

func (f *fakeReader) Student(_ context.Context, name string) recorder.Read[store.StudentDetail] {
	f.opened = append(f.opened, name)
	d, ok := f.details[name]
	if !ok {
		return recorder.Read[store.StudentDetail]{Mode: f.mode, Err: store.ErrNotFound}
	}
	return recorder.Read[store.StudentDetail]{Value: d, Mode: f.mode}
}

func (f *fakeReader) Leaderboard(context.Context, int) recorder.Read[[]store.LeaderboardEntry] {
	return recorder.Read[[]store.LeaderboardEntry]{Value: f.board, Mode: f.mode}
}

func (f *fakeReader) TimedResults(_ context.Context, name string, _ int) recorder.Read[[]store.TimedResult] {
	return recorder.Read[[]store.TimedResult]{Value: f.timed[name], Mode: recorder.ModeLocal}
}

func agg(name string, level int, acc float64, total int) store.StudentAggregate {
	return store.StudentAggregate{Name: name, HighestLevelReached: level, BestAccuracy: acc, TotalSessions: total}
}

func sampleReader() *fakeReader {
	start := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Minute)
	return &fakeReader{
		students: []string{"Ada", "Grace"},
		board: []store.LeaderboardEntry{
			{Rank: 1, StudentAggregate: agg("Grace", 4, 95, 6)},
			{Rank: 2, StudentAggregate: agg("Ada", 2, 80, 3)},
		},
		details: map[string]store.StudentDetail{
			"Grace": {
				Aggregate: agg("Grace", 4, 95, 6),
				Sessions: []store.SessionRecord{{
					ID: "s1", StudentName: "Grace", Level: 4, StartTime: start, EndTime: &end,
					TotalQuestions: 20, CorrectAnswers: 19, Accuracy: 95, LevelPassed: true,
				}},
			},
		},
		timed: map[string][]store.TimedResult{
			"Grace": {{StudentName: "Grace", QuestionsAnswered: 12, CorrectAnswers: 10, Accuracy: 83.3, Timestamp: end}},
		},
	}
}

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestProgressScreen_Overview(t *testing.T) {
	s := New(sampleReader())
	s.Init()

	assert.Equal(t, "Progress", s.Title())
	assert.False(t, s.HandlesEscape())

	view := s.View(100, 30)
	assert.Contains(t, view, "Students")
	assert.Contains(t, view, "Leaderboard")
	assert.Contains(t, view, "Ada")
	assert.Contains(t, view, "Grace")
	assert.NotContains(t, view, "saved on this computer")
}

func TestProgressScreen_Empty(t *testing.T) {
	s := New(&fakeReader{})
	s.Init()
	assert.Contains(t, s.View(80, 24), "No one has played yet")

	s.Update(key(tea.KeyEnter))
	assert.Nil(t, s.detail)
}

func TestProgressScreen_Navigation(t *testing.T) {
	s := New(sampleReader())
	s.Init()

	s.Update(key(tea.KeyUp))
	assert.Equal(t, 0, s.selected)
	s.Update(key(tea.KeyDown))
	assert.Equal(t, 1, s.selected)
	s.Update(key(tea.KeyDown))
	assert.Equal(t, 1, s.selected, "selection stays on the last student")
}

func TestProgressScreen_OpenDetailAndBack(t *testing.T) {
	r := sampleReader()
	s := New(r)
	s.Init()

	s.Update(key(tea.KeyDown))
	s.Update(key(tea.KeyEnter))
	require.NotNil(t, s.detail)
	assert.Equal(t, []string{"Grace"}, r.opened)
	assert.Equal(t, "Grace", s.Title())
	assert.True(t, s.HandlesEscape())

	view := s.View(100, 30)
	assert.Contains(t, view, "Highest level: 4")
	assert.Contains(t, view, "Level 4")
	assert.Contains(t, view, "19/20")
	assert.Contains(t, view, "passed")
	assert.Contains(t, view, "Timed challenges")
	assert.Contains(t, view, "10 correct of 12")

	s.Update(key(tea.KeyEscape))
	assert.Nil(t, s.detail)
	assert.Equal(t, "Progress", s.Title())
}

func TestProgressScreen_DetailError(t *testing.T) {
	s := New(sampleReader())
	s.Init()

	s.Update(key(tea.KeyEnter))
	assert.Nil(t, s.detail)
	assert.Contains(t, s.View(100, 30), store.ErrNotFound.Error())
}

func TestProgressScreen_LocalSourceNote(t *testing.T) {
	r := sampleReader()
	r.mode = recorder.ModeLocal
	s := New(r)
	s.Init()
	assert.Contains(t, s.View(100, 30), "saved on this computer")
}

func TestProgressScreen_ListError(t *testing.T) {
	r := &fakeReader{listErr: errors.New("backend down")}
	s := New(r)
	s.Init()
	assert.Contains(t, s.View(100, 30), "backend down")
}

func TestProgressScreen_ReadsFromRecorder(t *testing.T) {
	st, err := store.Open("file:progress_rec?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	rec := recorder.New(st)
	start := rec.StartSession(ctx, "Lin", 1)
	require.NoError(t, start.Err)
	rec.EndSession(ctx, true)

	s := New(rec)
	s.Init()
	assert.Equal(t, []string{"Lin"}, s.students)
	require.Len(t, s.board, 1)
	assert.Equal(t, 1, s.board[0].Rank)
}
