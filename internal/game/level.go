package game

import (
	"github.com/abhisek/timestables/internal/levels"
	"github.com/abhisek/timestables/internal/problemgen"
)

// StartingLives is the number of wrong answers a level tolerates.
const StartingLives = 4

// Status is the lifecycle state of a Level.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not started"
	case StatusInProgress:
		return "in progress"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Level steps a player through one generated question sequence. It never
// touches persistence or presentation; every mutation returns a result the
// caller can forward. Not safe for concurrent use.
type Level struct {
	cfg       levels.Config
	questions []problemgen.Question
	slots     []int // generated position of each question, follows Shuffle
	attempts  *AttemptTracker

	index        int
	score        int
	lives        int
	status       Status
	endedByLives bool
}

// NewLevel creates a level over the given questions.
func NewLevel(cfg levels.Config, questions []problemgen.Question) *Level {
	slots := make([]int, len(questions))
	for i := range slots {
		slots[i] = i
	}
	return &Level{
		cfg:       cfg,
		questions: questions,
		slots:     slots,
		attempts:  NewAttemptTracker(),
		lives:     StartingLives,
	}
}

// SubmitResult describes what a single submission changed.
type SubmitResult struct {
	Question     problemgen.Question
	Index        int
	Answer       int
	Correct      bool
	FirstAttempt bool
	Scored       bool
	Advanced     bool
	Lives        int
	Score        int
	Completed    bool
	Summary      *Summary
}

// View is a presentation snapshot of the level.
type View struct {
	Level       int
	Description string
	Prompt      string
	Index       int
	Total       int
	Lives       int
	Score       int
	Status      Status
}

// Start moves the level into play and clears attempt history.
func (l *Level) Start() error {
	if l.status != StatusNotStarted {
		return ErrNotInProgress
	}
	l.attempts.Reset()
	if len(l.questions) == 0 {
		l.status = StatusCompleted
		return nil
	}
	l.status = StatusInProgress
	return nil
}

// Submit checks the player's typed answer against the current question.
// A non-integer input returns *problemgen.InvalidInputError and leaves the
// level untouched.
func (l *Level) Submit(input string) (SubmitResult, error) {
	if l.status != StatusInProgress {
		return SubmitResult{}, ErrNotInProgress
	}
	answer, err := problemgen.ParseAnswer(input)
	if err != nil {
		return SubmitResult{}, err
	}

	q := l.questions[l.index]
	key := AttemptKey{Slot: l.slots[l.index], Prompt: q.Prompt}
	res := SubmitResult{
		Question:     q,
		Index:        l.index,
		Answer:       answer,
		Correct:      answer == q.Answer,
		FirstAttempt: l.attempts.IsFirstAttempt(key),
	}
	l.attempts.RecordAttempt(key)

	if res.Correct {
		if res.FirstAttempt {
			l.score++
			res.Scored = true
		}
		l.Advance()
		res.Advanced = true
	} else {
		l.lives--
		if l.lives <= 0 {
			l.lives = 0
			l.endedByLives = true
			l.status = StatusCompleted
		}
	}

	res.Lives = l.lives
	res.Score = l.score
	if l.status == StatusCompleted {
		res.Completed = true
		sum := l.Summary()
		res.Summary = &sum
	}
	return res, nil
}

// Advance moves to the next question, completing the level after the last.
// Skipping a question is an Advance without a submission.
func (l *Level) Advance() {
	if l.status != StatusInProgress {
		return
	}
	if l.index >= len(l.questions)-1 {
		l.status = StatusCompleted
		return
	}
	l.index++
}

// Previous steps back one question. It is a no-op on the first question.
func (l *Level) Previous() {
	if l.status != StatusInProgress || l.index == 0 {
		return
	}
	l.index--
}

// Shuffle reorders the whole sequence in place. The current index is kept,
// so the player sees whichever question lands there. Attempt history moves
// with each question, so a question answered before the shuffle cannot
// score again.
func (l *Level) Shuffle(g *problemgen.Generator) {
	if l.status != StatusInProgress {
		return
	}
	g.ShuffleFunc(len(l.questions), func(i, j int) {
		l.questions[i], l.questions[j] = l.questions[j], l.questions[i]
		l.slots[i], l.slots[j] = l.slots[j], l.slots[i]
	})
}

// Finish ends the level early, as when the player quits.
func (l *Level) Finish() Summary {
	l.status = StatusCompleted
	return l.Summary()
}

// Summary applies the finalization rule to the current score.
func (l *Level) Summary() Summary {
	return Summarize(l.cfg.Level, l.score, len(l.questions), l.lives, l.endedByLives)
}

// Current returns the question at the current index.
func (l *Level) Current() (problemgen.Question, bool) {
	if l.index >= len(l.questions) {
		return problemgen.Question{}, false
	}
	return l.questions[l.index], true
}

// View returns a snapshot for rendering.
func (l *Level) View() View {
	v := View{
		Level:       l.cfg.Level,
		Description: l.cfg.Description,
		Index:       l.index,
		Total:       len(l.questions),
		Lives:       l.lives,
		Score:       l.score,
		Status:      l.status,
	}
	if q, ok := l.Current(); ok {
		v.Prompt = q.Prompt
	}
	return v
}

// Config returns the level's configuration.
func (l *Level) Config() levels.Config { return l.cfg }

// Status returns the lifecycle state.
func (l *Level) Status() Status { return l.status }
