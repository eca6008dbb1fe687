package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	tableStudents = "students"
	tableSessions = "sessions"
	tableAnswers  = "answers"
	tableTimed    = "timed_challenges"
)

var sessionColumns = []string{
	"id", "student_name", "level", "start_time", "end_time",
	"total_questions", "correct_answers", "accuracy", "level_passed",
}

var answerColumns = []string{
	"session_id", "student_name", "level", "question", "user_answer",
	"correct_answer", "is_correct", "is_first_attempt", "timestamp",
}

// Store is the SQL implementation of Backend. It also serves as the local
// fallback when no remote backend is reachable.
type Store struct {
	db      *sql.DB
	dialect sqlDialect
}

var _ Backend = (*Store)(nil)

// Open creates a Store on the SQLite database at dsn.
func Open(dsn string) (*Store, error) {
	return OpenType(TypeSQLite, dsn)
}

// OpenType creates a Store for the given database type ("sqlite", "mysql"
// or "postgres"), applies connection settings and creates missing tables.
// MySQL DSNs need parseTime=true.
func OpenType(dbType, dsn string) (*Store, error) {
	d, err := dialectFor(dbType)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := d.Configure(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}

	s := &Store{db: db, dialect: d}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect.EntDialect())
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func execQ(ctx context.Context, q querier, b entsql.Querier) error {
	query, args := b.Query()
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

// CreateSession inserts an open session with a fresh UUID.
func (s *Store) CreateSession(ctx context.Context, studentName string, level int, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	ins := s.builder().Insert(tableSessions).
		Columns("id", "student_name", "level", "start_time").
		Values(id, studentName, level, startedAt.UTC())
	if err := execQ(ctx, s.db, ins); err != nil {
		return "", persistErr("create session", err)
	}
	return id, nil
}

// AppendAnswer inserts one answer row.
func (s *Store) AppendAnswer(ctx context.Context, e AnswerLogEntry) error {
	ins := s.builder().Insert(tableAnswers).Columns(answerColumns...)
	ins.Values(answerValues(e)...)
	if err := execQ(ctx, s.db, ins); err != nil {
		return persistErr("append answer", err)
	}
	return nil
}

func answerValues(e AnswerLogEntry) []any {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return []any{
		e.SessionID, e.StudentName, e.Level, e.Question, e.UserAnswer,
		e.CorrectAnswer, e.IsCorrect, e.IsFirstAttempt, ts.UTC(),
	}
}

// FinalizeSession closes the session and merges it into the student's
// aggregate in one transaction.
func (s *Store) FinalizeSession(ctx context.Context, req FinalizeRequest) (SessionStats, error) {
	stats := SessionStats{
		TotalQuestions: req.TotalQuestions,
		CorrectAnswers: req.CorrectAnswers,
		Accuracy:       req.Accuracy,
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return s.finalize(ctx, tx, req)
	})
	if err != nil {
		return SessionStats{}, persistErr("finalize session", err)
	}
	return stats, nil
}

func (s *Store) finalize(ctx context.Context, tx *sql.Tx, req FinalizeRequest) error {
	sel := s.builder().Select("student_name", "level", "end_time").
		From(s.builder().Table(tableSessions)).
		Where(entsql.EQ("id", req.SessionID))
	query, args := sel.Query()

	var (
		name  string
		level int
		ended sql.NullTime
	)
	err := tx.QueryRowContext(ctx, query, args...).Scan(&name, &level, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("session %s: %w", req.SessionID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if ended.Valid {
		return fmt.Errorf("session %s: %w", req.SessionID, ErrSessionFinalized)
	}

	endTime := req.EndTime
	if endTime.IsZero() {
		endTime = time.Now()
	}
	upd := s.builder().Update(tableSessions).
		Set("end_time", endTime.UTC()).
		Set("total_questions", req.TotalQuestions).
		Set("correct_answers", req.CorrectAnswers).
		Set("accuracy", req.Accuracy).
		Set("level_passed", req.LevelPassed).
		Where(entsql.EQ("id", req.SessionID))
	if err := execQ(ctx, tx, upd); err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	existing, err := s.aggregate(ctx, tx, name)
	if err != nil {
		return err
	}
	merged := MergeAggregate(existing, name, level, req.LevelPassed, req.Accuracy)
	return s.upsertAggregate(ctx, tx, merged)
}

func (s *Store) aggregate(ctx context.Context, q querier, name string) (*StudentAggregate, error) {
	sel := s.builder().Select("name", "highest_level", "best_accuracy", "total_sessions").
		From(s.builder().Table(tableStudents)).
		Where(entsql.EQ("name", name))
	query, args := sel.Query()

	var agg StudentAggregate
	err := q.QueryRowContext(ctx, query, args...).
		Scan(&agg.Name, &agg.HighestLevelReached, &agg.BestAccuracy, &agg.TotalSessions)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read aggregate: %w", err)
	}
	return &agg, nil
}

func (s *Store) upsertAggregate(ctx context.Context, q querier, agg StudentAggregate) error {
	ins := s.builder().Insert(tableStudents).
		Columns("name", "highest_level", "best_accuracy", "total_sessions").
		Values(agg.Name, agg.HighestLevelReached, agg.BestAccuracy, agg.TotalSessions).
		OnConflict(entsql.ConflictColumns("name"), entsql.ResolveWithNewValues())
	if err := execQ(ctx, q, ins); err != nil {
		return fmt.Errorf("upsert aggregate: %w", err)
	}
	return nil
}

// ImportSession copies a session and its answers that were recorded
// elsewhere into this store. An existing session with the same id is left
// as is; answers are always appended.
func (s *Store) ImportSession(ctx context.Context, rec SessionRecord, answers []AnswerLogEntry) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ins := s.builder().Insert(tableSessions).
			Columns("id", "student_name", "level", "start_time").
			Values(rec.ID, rec.StudentName, rec.Level, rec.StartTime.UTC()).
			OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
		if err := execQ(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		if len(answers) == 0 {
			return nil
		}
		batch := s.builder().Insert(tableAnswers).Columns(answerColumns...)
		for _, a := range answers {
			a.SessionID = rec.ID
			batch.Values(answerValues(a)...)
		}
		if err := execQ(ctx, tx, batch); err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
		return nil
	})
	return persistErr("import session", err)
}

// ListStudents returns the distinct names with sessions, in collated
// order.
func (s *Store) ListStudents(ctx context.Context) ([]string, error) {
	sel := s.builder().Select("student_name").Distinct().
		From(s.builder().Table(tableSessions))
	query, args := sel.Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("list students", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, persistErr("list students", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list students", err)
	}

	collate.New(language.English, collate.IgnoreCase).SortStrings(names)
	return names, nil
}

// GetStudent returns the student's sessions newest first, each with its
// answers in submission order. An unknown student yields no sessions and
// the default aggregate.
func (s *Store) GetStudent(ctx context.Context, name string) (StudentDetail, error) {
	sessions, err := s.sessionsFor(ctx, name)
	if err != nil {
		return StudentDetail{}, persistErr("get student", err)
	}
	if err := s.attachAnswers(ctx, sessions); err != nil {
		return StudentDetail{}, persistErr("get student", err)
	}

	agg, err := s.aggregate(ctx, s.db, name)
	if err != nil {
		return StudentDetail{}, persistErr("get student", err)
	}
	detail := StudentDetail{Sessions: sessions}
	if agg != nil {
		detail.Aggregate = *agg
	} else {
		detail.Aggregate = StudentAggregate{Name: name, HighestLevelReached: 1}
	}
	return detail, nil
}

func (s *Store) sessionsFor(ctx context.Context, name string) ([]SessionRecord, error) {
	sel := s.builder().Select(sessionColumns...).
		From(s.builder().Table(tableSessions)).
		Where(entsql.EQ("student_name", name)).
		OrderBy(entsql.Desc("start_time"))
	query, args := sel.Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			rec   SessionRecord
			ended sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.StudentName, &rec.Level, &rec.StartTime, &ended,
			&rec.TotalQuestions, &rec.CorrectAnswers, &rec.Accuracy, &rec.LevelPassed); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if ended.Valid {
			t := ended.Time
			rec.EndTime = &t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) attachAnswers(ctx context.Context, sessions []SessionRecord) error {
	if len(sessions) == 0 {
		return nil
	}
	ids := make([]any, len(sessions))
	index := make(map[string]int, len(sessions))
	for i, rec := range sessions {
		ids[i] = rec.ID
		index[rec.ID] = i
	}

	sel := s.builder().Select(answerColumns...).
		From(s.builder().Table(tableAnswers)).
		Where(entsql.In("session_id", ids...)).
		OrderBy(entsql.Asc("id"))
	query, args := sel.Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a AnswerLogEntry
		if err := rows.Scan(&a.SessionID, &a.StudentName, &a.Level, &a.Question, &a.UserAnswer,
			&a.CorrectAnswer, &a.IsCorrect, &a.IsFirstAttempt, &a.Timestamp); err != nil {
			return fmt.Errorf("scan answer: %w", err)
		}
		i := index[a.SessionID]
		sessions[i].Answers = append(sessions[i].Answers, a)
	}
	return rows.Err()
}

// Leaderboard returns the top limit students by highest level, then best
// accuracy. A non-positive limit uses DefaultLeaderboardSize.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	sel := s.builder().Select("name", "highest_level", "best_accuracy", "total_sessions").
		From(s.builder().Table(tableStudents)).
		OrderBy(entsql.Desc("highest_level"), entsql.Desc("best_accuracy"), entsql.Asc("name")).
		Limit(limit)
	query, args := sel.Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("leaderboard", err)
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		e := LeaderboardEntry{Rank: len(out) + 1}
		if err := rows.Scan(&e.Name, &e.HighestLevelReached, &e.BestAccuracy, &e.TotalSessions); err != nil {
			return nil, persistErr("leaderboard", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("leaderboard", err)
	}
	return out, nil
}

// SaveTimedResult stores a timed challenge outcome, assigning an id when
// the result has none.
func (s *Store) SaveTimedResult(ctx context.Context, r TimedResult) (TimedResult, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	ins := s.builder().Insert(tableTimed).
		Columns("id", "student_name", "questions_answered", "correct_answers", "accuracy", "timestamp").
		Values(r.ID, r.StudentName, r.QuestionsAnswered, r.CorrectAnswers, r.Accuracy, r.Timestamp.UTC())
	if err := execQ(ctx, s.db, ins); err != nil {
		return TimedResult{}, persistErr("save timed result", err)
	}
	return r, nil
}

// TimedResults returns a student's timed challenges, newest first. A
// non-positive limit returns all of them.
func (s *Store) TimedResults(ctx context.Context, name string, limit int) ([]TimedResult, error) {
	sel := s.builder().Select("id", "student_name", "questions_answered", "correct_answers", "accuracy", "timestamp").
		From(s.builder().Table(tableTimed)).
		Where(entsql.EQ("student_name", name)).
		OrderBy(entsql.Desc("timestamp"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("timed results", err)
	}
	defer rows.Close()

	var out []TimedResult
	for rows.Next() {
		var r TimedResult
		if err := rows.Scan(&r.ID, &r.StudentName, &r.QuestionsAnswered, &r.CorrectAnswers, &r.Accuracy, &r.Timestamp); err != nil {
			return nil, persistErr("timed results", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("timed results", err)
	}
	return out, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. TIMESTABLES_DB environment variable
// 2. $XDG_DATA_HOME/timestables/timestables.db
// 3. ~/.local/share/timestables/timestables.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("TIMESTABLES_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "timestables", "timestables.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
