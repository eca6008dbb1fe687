package store

import (
	"context"
	"time"
)

// SessionRecord is one playthrough of a single level.
type SessionRecord struct {
	ID             string           `json:"id"`
	StudentName    string           `json:"student_name"`
	Level          int              `json:"level"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        *time.Time       `json:"end_time"`
	TotalQuestions int              `json:"total_questions"`
	CorrectAnswers int              `json:"correct_answers"`
	Accuracy       float64          `json:"accuracy"`
	LevelPassed    bool             `json:"level_passed"`
	Answers        []AnswerLogEntry `json:"answers,omitempty"`
}

// AnswerLogEntry is one submission, retries included.
type AnswerLogEntry struct {
	SessionID      string    `json:"sessionId"`
	StudentName    string    `json:"studentName"`
	Level          int       `json:"level"`
	Question       string    `json:"question"`
	UserAnswer     int       `json:"userAnswer"`
	CorrectAnswer  int       `json:"correctAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
	IsFirstAttempt bool      `json:"isFirstAttempt"`
	Timestamp      time.Time `json:"timestamp"`
}

// StudentAggregate is the per-student summary behind the leaderboard.
type StudentAggregate struct {
	Name                string  `json:"name"`
	HighestLevelReached int     `json:"highest_level"`
	BestAccuracy        float64 `json:"best_accuracy"`
	TotalSessions       int     `json:"total_sessions"`
}

// StudentDetail is a student's session history, newest first, plus their
// aggregate.
type StudentDetail struct {
	Sessions  []SessionRecord  `json:"sessions"`
	Aggregate StudentAggregate `json:"studentStats"`
}

// LeaderboardEntry is a ranked aggregate. Rank starts at 1.
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	StudentAggregate
}

// FinalizeRequest carries the totals computed by the session owner.
type FinalizeRequest struct {
	SessionID      string
	TotalQuestions int
	CorrectAnswers int
	Accuracy       float64
	LevelPassed    bool
	EndTime        time.Time
}

// SessionStats is what finalizing a session reports back.
type SessionStats struct {
	TotalQuestions int     `json:"totalQuestions"`
	CorrectAnswers int     `json:"correctAnswers"`
	Accuracy       float64 `json:"accuracy"`
}

// TimedResult is the outcome of one timed challenge.
type TimedResult struct {
	ID                string    `json:"id"`
	StudentName       string    `json:"studentName"`
	QuestionsAnswered int       `json:"questionsAnswered"`
	CorrectAnswers    int       `json:"correctAnswers"`
	Accuracy          float64   `json:"accuracy"`
	Timestamp         time.Time `json:"timestamp"`
}

// DefaultLeaderboardSize is the number of leaderboard rows shown when the
// caller does not ask for a specific count.
const DefaultLeaderboardSize = 10

// Backend is the persistence contract the session recorder depends on.
// The SQL Store and the HTTP client both implement it.
type Backend interface {
	// CreateSession opens a session and returns its id.
	CreateSession(ctx context.Context, studentName string, level int, startedAt time.Time) (string, error)

	// AppendAnswer records one submission.
	AppendAnswer(ctx context.Context, entry AnswerLogEntry) error

	// FinalizeSession closes a session and merges it into the student's
	// aggregate. A session can be finalized only once.
	FinalizeSession(ctx context.Context, req FinalizeRequest) (SessionStats, error)

	// ListStudents returns every student with at least one session.
	ListStudents(ctx context.Context) ([]string, error)

	// GetStudent returns a student's sessions and aggregate.
	GetStudent(ctx context.Context, name string) (StudentDetail, error)

	// Leaderboard returns the top limit students.
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// MergeAggregate folds one finalized session into a student's aggregate.
// A nil existing aggregate starts at level 1 with no sessions. Values never
// decrease.
func MergeAggregate(existing *StudentAggregate, name string, level int, passed bool, accuracy float64) StudentAggregate {
	agg := StudentAggregate{Name: name, HighestLevelReached: 1}
	if existing != nil {
		agg = *existing
		agg.Name = name
	}
	if passed {
		agg.HighestLevelReached = max(agg.HighestLevelReached, level+1)
	}
	agg.BestAccuracy = max(agg.BestAccuracy, accuracy)
	agg.TotalSessions++
	return agg
}
