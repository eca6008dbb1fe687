// Package recorder tracks one practice session at a time and persists it
// through a primary backend, degrading to a local store and finally to
// memory when persistence fails. Failures are reported in results and
// never abort gameplay.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/timestables/internal/store"
)

// ErrNoActiveSession is reported when answers or an end arrive with no
// session open.
var ErrNoActiveSession = errors.New("no active session")

// Mode says where a session or read was served from.
type Mode int

const (
	ModeRemote Mode = iota
	ModeLocal
	ModeMemory
)

func (m Mode) String() string {
	switch m {
	case ModeRemote:
		return "remote"
	case ModeLocal:
		return "local"
	case ModeMemory:
		return "memory"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// LocalStore is the fallback backend. Besides the shared contract it can
// adopt sessions recorded elsewhere and keeps timed challenge results.
type LocalStore interface {
	store.Backend
	ImportSession(ctx context.Context, rec store.SessionRecord, answers []store.AnswerLogEntry) error
	SaveTimedResult(ctx context.Context, r store.TimedResult) (store.TimedResult, error)
	TimedResults(ctx context.Context, name string, limit int) ([]store.TimedResult, error)
}

// Recorder owns the active session. Not safe for concurrent use.
type Recorder struct {
	local  LocalStore
	remote store.Backend
	log    *zap.Logger
	now    func() time.Time

	active   *activeSession
	degraded bool
}

type activeSession struct {
	record  store.SessionRecord
	mode    Mode
	answers []store.AnswerLogEntry
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithRemote sets the primary backend. Without it every session is local.
func WithRemote(b store.Backend) Option {
	return func(r *Recorder) {
		r.remote = b
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recorder) {
		r.log = l
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// New creates a Recorder. local may be nil, in which case failures of the
// remote backend degrade straight to memory.
func New(local LocalStore, opts ...Option) *Recorder {
	r := &Recorder{
		local: local,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartResult reports how a session was opened.
type StartResult struct {
	SessionID string
	Mode      Mode
	Degraded  bool
	Err       error
}

// Result reports the outcome of a best-effort write.
type Result struct {
	Mode     Mode
	Degraded bool
	Err      error
}

// EndResult reports the finalized session.
type EndResult struct {
	Record   store.SessionRecord
	Stats    store.SessionStats
	Mode     Mode
	Degraded bool
	Err      error
}

// StartSession opens a session for studentName at level. An already open
// session is discarded without being finalized.
func (r *Recorder) StartSession(ctx context.Context, studentName string, level int) StartResult {
	started := r.now()
	if r.active != nil {
		r.log.Warn("discarding unfinished session", zap.String("session_id", r.active.record.ID))
	}

	var errs []error
	if r.remote != nil {
		id, err := r.remote.CreateSession(ctx, studentName, level, started)
		if err == nil {
			r.degraded = false
			r.open(id, ModeRemote, studentName, level, started)
			return StartResult{SessionID: id, Mode: ModeRemote}
		}
		errs = append(errs, err)
		r.fallback("start_session", err)
	}

	if r.local != nil {
		id, err := r.local.CreateSession(ctx, studentName, level, started)
		if err == nil {
			r.open(id, ModeLocal, studentName, level, started)
			return StartResult{SessionID: id, Mode: ModeLocal, Degraded: len(errs) > 0, Err: errors.Join(errs...)}
		}
		errs = append(errs, err)
		r.log.Warn("local store unavailable, session kept in memory", zap.Error(err))
	}

	id := uuid.NewString()
	r.open(id, ModeMemory, studentName, level, started)
	return StartResult{SessionID: id, Mode: ModeMemory, Degraded: len(errs) > 0, Err: errors.Join(errs...)}
}

func (r *Recorder) open(id string, mode Mode, name string, level int, started time.Time) {
	r.active = &activeSession{
		record: store.SessionRecord{
			ID:          id,
			StudentName: name,
			Level:       level,
			StartTime:   started,
		},
		mode: mode,
	}
	r.log.Info("session started",
		zap.String("session_id", id),
		zap.String("student", name),
		zap.Int("level", level),
		zap.Stringer("mode", mode))
}

// LogAnswer appends entry to the active session and forwards it to the
// session's backend. Session id, student, level and timestamp are filled
// in from the session when unset.
func (r *Recorder) LogAnswer(ctx context.Context, entry store.AnswerLogEntry) Result {
	s := r.active
	if s == nil {
		return Result{Mode: ModeMemory, Err: ErrNoActiveSession}
	}

	entry.SessionID = s.record.ID
	if entry.StudentName == "" {
		entry.StudentName = s.record.StudentName
	}
	if entry.Level == 0 {
		entry.Level = s.record.Level
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now()
	}
	s.answers = append(s.answers, entry)

	var err error
	switch s.mode {
	case ModeRemote:
		err = r.remote.AppendAnswer(ctx, entry)
	case ModeLocal:
		err = r.local.AppendAnswer(ctx, entry)
	default:
		return Result{Mode: ModeMemory}
	}
	if err != nil {
		r.fallback("log_answer", err)
		return Result{Mode: s.mode, Degraded: true, Err: err}
	}
	return Result{Mode: s.mode}
}

// EndSession finalizes the active session from the answers logged in
// memory. If the session's backend refuses, the session and its answers
// are imported into the local store and finalized there. The session is
// closed whatever the outcome.
func (r *Recorder) EndSession(ctx context.Context, levelPassed bool) EndResult {
	s := r.active
	if s == nil {
		return EndResult{Mode: ModeMemory, Err: ErrNoActiveSession}
	}
	r.active = nil

	rec := s.record
	rec.Answers = slices.Clone(s.answers)
	rec.TotalQuestions = len(s.answers)
	for _, a := range s.answers {
		if a.IsCorrect {
			rec.CorrectAnswers++
		}
	}
	if rec.TotalQuestions > 0 {
		rec.Accuracy = float64(rec.CorrectAnswers) / float64(rec.TotalQuestions) * 100
	}
	rec.LevelPassed = levelPassed
	ended := r.now()
	rec.EndTime = &ended

	req := store.FinalizeRequest{
		SessionID:      rec.ID,
		TotalQuestions: rec.TotalQuestions,
		CorrectAnswers: rec.CorrectAnswers,
		Accuracy:       rec.Accuracy,
		LevelPassed:    levelPassed,
		EndTime:        ended,
	}
	res := EndResult{
		Record: rec,
		Stats: store.SessionStats{
			TotalQuestions: rec.TotalQuestions,
			CorrectAnswers: rec.CorrectAnswers,
			Accuracy:       rec.Accuracy,
		},
		Mode: s.mode,
	}

	var errs []error
	switch s.mode {
	case ModeRemote:
		_, err := r.remote.FinalizeSession(ctx, req)
		if err == nil {
			r.logEnded(res)
			return res
		}
		errs = append(errs, err)
		r.fallback("end_session", err)
		if err := r.importLocal(ctx, rec, s.answers); err != nil {
			errs = append(errs, err)
			return r.endInMemory(res, errs)
		}
	case ModeMemory:
		if r.local == nil {
			return r.endInMemory(res, nil)
		}
		if err := r.importLocal(ctx, rec, s.answers); err != nil {
			errs = append(errs, err)
			return r.endInMemory(res, errs)
		}
	}

	if _, err := r.local.FinalizeSession(ctx, req); err != nil {
		errs = append(errs, err)
		return r.endInMemory(res, errs)
	}
	res.Mode = ModeLocal
	res.Degraded = len(errs) > 0
	res.Err = errors.Join(errs...)
	r.logEnded(res)
	return res
}

func (r *Recorder) importLocal(ctx context.Context, rec store.SessionRecord, answers []store.AnswerLogEntry) error {
	if r.local == nil {
		return errors.New("no local store")
	}
	if err := r.local.ImportSession(ctx, rec, answers); err != nil {
		return fmt.Errorf("import session: %w", err)
	}
	return nil
}

func (r *Recorder) endInMemory(res EndResult, errs []error) EndResult {
	res.Mode = ModeMemory
	res.Degraded = len(errs) > 0
	res.Err = errors.Join(errs...)
	if res.Err != nil {
		r.log.Warn("session kept in memory only", zap.String("session_id", res.Record.ID), zap.Error(res.Err))
	}
	r.logEnded(res)
	return res
}

func (r *Recorder) logEnded(res EndResult) {
	r.log.Info("session ended",
		zap.String("session_id", res.Record.ID),
		zap.Int("total", res.Record.TotalQuestions),
		zap.Int("correct", res.Record.CorrectAnswers),
		zap.Float64("accuracy", res.Record.Accuracy),
		zap.Bool("passed", res.Record.LevelPassed),
		zap.Stringer("mode", res.Mode))
}

func (r *Recorder) fallback(op string, err error) {
	r.degraded = true
	FallbackCounter.WithLabelValues(op).Inc()
	r.log.Warn("remote persistence failed, falling back", zap.String("op", op), zap.Error(err))
}

// Active returns the open session's id and mode.
func (r *Recorder) Active() (string, Mode, bool) {
	if r.active == nil {
		return "", ModeMemory, false
	}
	return r.active.record.ID, r.active.mode, true
}

// Offline reports whether the last remote call failed. A recorder with no
// remote backend is never offline.
func (r *Recorder) Offline() bool {
	return r.degraded
}

// SaveTimed stores a timed challenge result locally.
func (r *Recorder) SaveTimed(ctx context.Context, res store.TimedResult) (store.TimedResult, error) {
	if r.local == nil {
		return res, &store.PersistenceError{Op: "save timed result", Err: errors.New("no local store")}
	}
	if res.Timestamp.IsZero() {
		res.Timestamp = r.now()
	}
	saved, err := r.local.SaveTimedResult(ctx, res)
	if err != nil {
		r.log.Warn("save timed result failed", zap.Error(err))
		return res, err
	}
	return saved, nil
}
