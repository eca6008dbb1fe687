package recorder

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/abhisek/timestables/internal/store"
)

// Read is a value served by one of the backends.
type Read[T any] struct {
	Value T
	Mode  Mode
	Err   error
}

// ListStudents returns known student names from the remote backend, or
// the local store when the remote one fails.
func (r *Recorder) ListStudents(ctx context.Context) Read[[]string] {
	return readThrough(r, "list_students", func(b store.Backend) ([]string, error) {
		return b.ListStudents(ctx)
	})
}

// Student returns a student's sessions and aggregate.
func (r *Recorder) Student(ctx context.Context, name string) Read[store.StudentDetail] {
	return readThrough(r, "get_student", func(b store.Backend) (store.StudentDetail, error) {
		return b.GetStudent(ctx, name)
	})
}

// Leaderboard returns the top limit students.
func (r *Recorder) Leaderboard(ctx context.Context, limit int) Read[[]store.LeaderboardEntry] {
	return readThrough(r, "leaderboard", func(b store.Backend) ([]store.LeaderboardEntry, error) {
		return b.Leaderboard(ctx, limit)
	})
}

// TimedResults returns a student's timed challenge history from the local
// store.
func (r *Recorder) TimedResults(ctx context.Context, name string, limit int) Read[[]store.TimedResult] {
	if r.local == nil {
		return Read[[]store.TimedResult]{Mode: ModeMemory}
	}
	v, err := r.local.TimedResults(ctx, name, limit)
	return Read[[]store.TimedResult]{Value: v, Mode: ModeLocal, Err: err}
}

func readThrough[T any](r *Recorder, op string, fn func(store.Backend) (T, error)) Read[T] {
	var errs []error
	if r.remote != nil {
		v, err := fn(r.remote)
		if err == nil {
			r.degraded = false
			return Read[T]{Value: v, Mode: ModeRemote}
		}
		errs = append(errs, err)
		r.fallback(op, err)
	}
	if r.local != nil {
		v, err := fn(r.local)
		if err == nil {
			return Read[T]{Value: v, Mode: ModeLocal}
		}
		errs = append(errs, err)
		r.log.Warn("local read failed", zap.String("op", op), zap.Error(err))
	}
	var zero T
	if len(errs) == 0 {
		errs = append(errs, errors.New("no backend configured"))
	}
	return Read[T]{Value: zero, Mode: ModeMemory, Err: errors.Join(errs...)}
}
