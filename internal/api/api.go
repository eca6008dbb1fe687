// Package api holds the JSON wire format shared by the HTTP server and
// the remote client. Every response carries a "success" flag; failures
// add an "error" message.
package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/abhisek/timestables/internal/store"
)

// Route paths.
const (
	PathSessions    = "/api/sessions"
	PathAnswers     = "/api/answers"
	PathStudents    = "/api/students"
	PathLeaderboard = "/api/leaderboard"
	PathHealth      = "/api/health"
)

// Envelope is the common response frame.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// CreateSessionRequest is the body of POST /api/sessions.
type CreateSessionRequest struct {
	StudentName string    `json:"studentName" binding:"required"`
	Level       int       `json:"level" binding:"required,min=1"`
	StartTime   time.Time `json:"startTime,omitzero"`
}

// CreateSessionResponse answers POST /api/sessions.
type CreateSessionResponse struct {
	Envelope
	SessionID SessionID `json:"sessionId"`
}

// EndSessionRequest is the body of PUT /api/sessions/:id.
type EndSessionRequest struct {
	LevelPassed    bool      `json:"levelPassed"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	Accuracy       float64   `json:"accuracy"`
	EndTime        time.Time `json:"endTime,omitzero"`
}

// EndSessionResponse answers PUT /api/sessions/:id.
type EndSessionResponse struct {
	Envelope
	Stats store.SessionStats `json:"stats"`
}

// StudentsResponse answers GET /api/students.
type StudentsResponse struct {
	Envelope
	Students []string `json:"students"`
}

// StudentResponse answers GET /api/students/:name.
type StudentResponse struct {
	Envelope
	store.StudentDetail
}

// LeaderboardResponse answers GET /api/leaderboard.
type LeaderboardResponse struct {
	Envelope
	Leaderboard []store.LeaderboardEntry `json:"leaderboard"`
}

// HealthResponse answers GET /api/health.
type HealthResponse struct {
	Envelope
	Timestamp time.Time `json:"timestamp"`
}

// SessionID accepts both string and numeric ids on decode, so the client
// also works against backends that use integer row ids.
type SessionID string

func (id *SessionID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = SessionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("session id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("session id %s: not an integer", n)
	}
	*id = SessionID(n.String())
	return nil
}
