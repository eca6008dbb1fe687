package game

import (
	"context"
	"time"

	"github.com/abhisek/timestables/internal/levels"
	"github.com/abhisek/timestables/internal/problemgen"
	"github.com/abhisek/timestables/internal/recorder"
	"github.com/abhisek/timestables/internal/store"
)

// SessionRecorder is the persistence side a Runner reports to.
type SessionRecorder interface {
	StartSession(ctx context.Context, studentName string, level int) recorder.StartResult
	LogAnswer(ctx context.Context, entry store.AnswerLogEntry) recorder.Result
	EndSession(ctx context.Context, levelPassed bool) recorder.EndResult
	SaveTimed(ctx context.Context, res store.TimedResult) (store.TimedResult, error)
}

// Runner drives one player's games: it builds question sequences, steps
// the level state machine and forwards every submission to the recorder.
// One Runner per player; not safe for concurrent use.
type Runner struct {
	gen     *problemgen.Generator
	rec     SessionRecorder
	student string

	level   *Level
	timed   *Timed
	session recorder.StartResult
}

// NewRunner creates a Runner for studentName.
func NewRunner(gen *problemgen.Generator, rec SessionRecorder, studentName string) *Runner {
	return &Runner{gen: gen, rec: rec, student: studentName}
}

// Student returns the player's name.
func (r *Runner) Student() string { return r.student }

// LevelStart reports a freshly started level.
type LevelStart struct {
	View    View
	Session recorder.StartResult
}

// StartLevel generates questions for level n, starts the state machine and
// opens a recorder session.
func (r *Runner) StartLevel(ctx context.Context, n int) (LevelStart, error) {
	cfg, err := levels.Get(n)
	if err != nil {
		return LevelStart{}, err
	}
	qs, err := r.gen.Build(problemgen.ModeLeveled, cfg, levels.QuestionsPerLevel)
	if err != nil {
		return LevelStart{}, err
	}

	l := NewLevel(cfg, qs)
	if err := l.Start(); err != nil {
		return LevelStart{}, err
	}
	r.level = l
	r.session = r.rec.StartSession(ctx, r.student, n)
	return LevelStart{View: l.View(), Session: r.session}, nil
}

// Submission is a level submission plus what persistence made of it.
type Submission struct {
	SubmitResult
	Log recorder.Result
	End *recorder.EndResult
}

// Submit passes input to the level and logs the attempt. When the level
// completes the recorder session is finalized.
func (r *Runner) Submit(ctx context.Context, input string) (Submission, error) {
	if r.level == nil {
		return Submission{}, ErrNoLevel
	}
	res, err := r.level.Submit(input)
	if err != nil {
		return Submission{}, err
	}

	sub := Submission{SubmitResult: res}
	sub.Log = r.rec.LogAnswer(ctx, store.AnswerLogEntry{
		StudentName:    r.student,
		Level:          r.level.Config().Level,
		Question:       res.Question.Prompt,
		UserAnswer:     res.Answer,
		CorrectAnswer:  res.Question.Answer,
		IsCorrect:      res.Correct,
		IsFirstAttempt: res.FirstAttempt,
	})
	if res.Completed {
		end := r.rec.EndSession(ctx, res.Summary.Passed)
		sub.End = &end
	}
	return sub, nil
}

// Skip moves past the current question without answering. Skipping the
// last question completes the level. A completed level is left alone.
func (r *Runner) Skip(ctx context.Context) (View, *Summary, *recorder.EndResult) {
	if r.level == nil {
		return View{}, nil, nil
	}
	if r.level.Status() == StatusCompleted {
		return r.level.View(), nil, nil
	}
	r.level.Advance()
	return r.settle(ctx)
}

// Previous steps back one question.
func (r *Runner) Previous() View {
	if r.level == nil {
		return View{}
	}
	r.level.Previous()
	return r.level.View()
}

// Shuffle reorders the current level's questions.
func (r *Runner) Shuffle() View {
	if r.level == nil {
		return View{}
	}
	r.level.Shuffle(r.gen)
	return r.level.View()
}

// Quit ends the current level early and finalizes the session.
func (r *Runner) Quit(ctx context.Context) (Summary, *recorder.EndResult) {
	if r.level == nil {
		return Summary{}, nil
	}
	if r.level.Status() == StatusCompleted {
		return r.level.Summary(), nil
	}
	sum := r.level.Finish()
	end := r.rec.EndSession(ctx, sum.Passed)
	return sum, &end
}

func (r *Runner) settle(ctx context.Context) (View, *Summary, *recorder.EndResult) {
	v := r.level.View()
	if v.Status != StatusCompleted {
		return v, nil, nil
	}
	sum := r.level.Summary()
	end := r.rec.EndSession(ctx, sum.Passed)
	return v, &sum, &end
}

// NextLevel starts the level after the current one. Past the last level
// it replays the last.
func (r *Runner) NextLevel(ctx context.Context) (LevelStart, error) {
	n := levels.First
	if r.level != nil {
		n = min(r.level.Config().Level+1, levels.Last)
	}
	return r.StartLevel(ctx, n)
}

// Retry restarts the current level with fresh questions.
func (r *Runner) Retry(ctx context.Context) (LevelStart, error) {
	n := levels.First
	if r.level != nil {
		n = r.level.Config().Level
	}
	return r.StartLevel(ctx, n)
}

// Level returns the level in play, if any.
func (r *Runner) Level() *Level { return r.level }

// Session returns how the current recorder session was opened.
func (r *Runner) Session() recorder.StartResult { return r.session }

// Timed returns the timed challenge in play, if any.
func (r *Runner) Timed() *Timed { return r.timed }

// StartTimed begins a timed challenge.
func (r *Runner) StartTimed(now time.Time) *Timed {
	r.timed = NewTimed(r.gen)
	r.timed.Start(now)
	return r.timed
}

// FinishTimed saves the current timed challenge result locally.
func (r *Runner) FinishTimed(ctx context.Context) (store.TimedResult, error) {
	if r.timed == nil {
		return store.TimedResult{}, ErrNotInProgress
	}
	res := r.timed.Result()
	return r.rec.SaveTimed(ctx, store.TimedResult{
		StudentName:       r.student,
		QuestionsAnswered: res.Answered,
		CorrectAnswers:    res.Correct,
		Accuracy:          res.Accuracy,
	})
}
