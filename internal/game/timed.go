package game

import (
	"time"

	"github.com/abhisek/timestables/internal/problemgen"
)

const (
	// TimedDuration is the length of a timed challenge.
	TimedDuration = 30 * time.Second

	// TimedBatch is how many mixed questions are generated at a time. A new
	// batch is drawn when the previous one runs out.
	TimedBatch = 50
)

// TimedAnswer reports one submission in a timed challenge.
type TimedAnswer struct {
	Question problemgen.Question
	Answer   int
	Correct  bool
	Answered int
	Score    int
}

// TimedResult is the outcome of a finished challenge.
type TimedResult struct {
	Answered int
	Correct  int
	Accuracy float64
}

// Timed runs a countdown challenge over continuously generated mixed
// questions. Every submission moves on, right or wrong.
type Timed struct {
	gen       *problemgen.Generator
	pending   []problemgen.Question
	current   problemgen.Question
	startedAt time.Time
	deadline  time.Time
	answered  int
	correct   int
	active    bool
	over      bool
}

// NewTimed creates a challenge drawing questions from gen.
func NewTimed(gen *problemgen.Generator) *Timed {
	return &Timed{gen: gen}
}

// Start begins the countdown at now.
func (t *Timed) Start(now time.Time) {
	t.startedAt = now
	t.deadline = now.Add(TimedDuration)
	t.active = true
	t.over = false
	t.answered = 0
	t.correct = 0
	t.pending = nil
	t.next()
}

// Remaining returns the time left, never negative.
func (t *Timed) Remaining(now time.Time) time.Duration {
	if !t.active {
		return 0
	}
	return max(t.deadline.Sub(now), 0)
}

// Tick advances the clock and reports whether the challenge just ended.
func (t *Timed) Tick(now time.Time) bool {
	if !t.active || now.Before(t.deadline) {
		return false
	}
	t.active = false
	t.over = true
	return true
}

// Submit checks input against the current question and moves on.
func (t *Timed) Submit(input string, now time.Time) (TimedAnswer, error) {
	if t.Tick(now) || t.over {
		return TimedAnswer{}, ErrChallengeOver
	}
	if !t.active {
		return TimedAnswer{}, ErrNotInProgress
	}
	answer, err := problemgen.ParseAnswer(input)
	if err != nil {
		return TimedAnswer{}, err
	}

	q := t.current
	res := TimedAnswer{Question: q, Answer: answer, Correct: answer == q.Answer}
	t.answered++
	if res.Correct {
		t.correct++
	}
	res.Answered = t.answered
	res.Score = t.correct
	t.next()
	return res, nil
}

// Current returns the question awaiting an answer.
func (t *Timed) Current() problemgen.Question { return t.current }

// Over reports whether the countdown has reached zero.
func (t *Timed) Over() bool { return t.over }

// StartedAt returns when the challenge began.
func (t *Timed) StartedAt() time.Time { return t.startedAt }

// Result returns the tallies so far. Accuracy is 0 with no answers.
func (t *Timed) Result() TimedResult {
	r := TimedResult{Answered: t.answered, Correct: t.correct}
	if t.answered > 0 {
		r.Accuracy = float64(t.correct) / float64(t.answered) * 100
	}
	return r
}

func (t *Timed) next() {
	if len(t.pending) == 0 {
		t.pending = t.gen.Mixed(TimedBatch)
	}
	last := len(t.pending) - 1
	t.current = t.pending[last]
	t.pending = t.pending[:last]
}
