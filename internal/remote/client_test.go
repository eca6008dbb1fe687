package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/timestables/internal/store"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithTimeout(2*time.Second))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreateSession(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sessions", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ada", body["studentName"])
		assert.EqualValues(t, 3, body["level"])

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "sessionId": 17})
	})

	id, err := c.CreateSession(context.Background(), "Ada", 3, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "17", id)
}

func TestAppendAnswer_CamelCase(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		for _, k := range []string{"sessionId", "studentName", "userAnswer", "correctAnswer", "isCorrect", "isFirstAttempt"} {
			assert.Contains(t, body, k)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	err := c.AppendAnswer(context.Background(), store.AnswerLogEntry{
		SessionID: "s1", StudentName: "Ada", Level: 1, Question: "2 × 3 = ?",
		UserAnswer: 6, CorrectAnswer: 6, IsCorrect: true, IsFirstAttempt: true,
	})
	assert.NoError(t, err)
}

func TestFinalizeSession(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/sessions/abc", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"stats":   map[string]any{"totalQuestions": 20, "correctAnswers": 18, "accuracy": 90},
		})
	})

	stats, err := c.FinalizeSession(context.Background(), store.FinalizeRequest{SessionID: "abc", LevelPassed: true})
	require.NoError(t, err)
	assert.Equal(t, store.SessionStats{TotalQuestions: 20, CorrectAnswers: 18, Accuracy: 90}, stats)
}

func TestFinalizeSession_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, store.ErrNotFound},
		{"conflict", http.StatusConflict, store.ErrSessionFinalized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, map[string]any{"success": false, "error": "nope"})
			})
			_, err := c.FinalizeSession(context.Background(), store.FinalizeRequest{SessionID: "x"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFailures_ArePersistenceErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "boom"})
		}},
		{"success false", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Failed to start session"})
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, tt.handler)
			_, err := c.CreateSession(context.Background(), "Ada", 1, time.Now())
			var pe *store.PersistenceError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, "create session", pe.Op)
		})
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, WithTimeout(500*time.Millisecond))
	err := c.Health(context.Background())
	var pe *store.PersistenceError
	assert.True(t, errors.As(err, &pe))
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	c.timeout = 50 * time.Millisecond

	_, err := c.ListStudents(context.Background())
	assert.Error(t, err)
}

func TestReads(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/students":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "students": []string{"Ada", "Bo"}})
		case "/api/students/Ada Lovelace":
			writeJSON(w, http.StatusOK, map[string]any{
				"success":      true,
				"sessions":     []map[string]any{{"id": "1", "student_name": "Ada Lovelace", "level": 2}},
				"studentStats": map[string]any{"name": "Ada Lovelace", "highest_level": 3, "best_accuracy": 95, "total_sessions": 1},
			})
		case "/api/leaderboard":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			writeJSON(w, http.StatusOK, map[string]any{
				"success":     true,
				"leaderboard": []map[string]any{{"rank": 1, "name": "Ada", "highest_level": 4, "best_accuracy": 100, "total_sessions": 2}},
			})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	names, err := c.ListStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Bo"}, names)

	detail, err := c.GetStudent(ctx, "Ada Lovelace")
	require.NoError(t, err)
	require.Len(t, detail.Sessions, 1)
	assert.Equal(t, 3, detail.Aggregate.HighestLevelReached)

	board, err := c.Leaderboard(ctx, 5)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "Ada", board[0].Name)
	assert.Equal(t, 1, board[0].Rank)
}
