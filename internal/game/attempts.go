package game

// AttemptKey identifies one question of a level instance. Slot is the
// question's position in the generated sequence and does not change when
// the sequence is shuffled.
type AttemptKey struct {
	Slot   int
	Prompt string
}

// AttemptTracker remembers which questions have been submitted within one
// level instance. Only a question's first submission can score.
type AttemptTracker struct {
	seen map[AttemptKey]struct{}
}

// NewAttemptTracker returns an empty tracker.
func NewAttemptTracker() *AttemptTracker {
	return &AttemptTracker{seen: make(map[AttemptKey]struct{})}
}

// IsFirstAttempt reports whether nothing has been submitted for key yet.
func (t *AttemptTracker) IsFirstAttempt(key AttemptKey) bool {
	_, ok := t.seen[key]
	return !ok
}

// RecordAttempt marks key as submitted.
func (t *AttemptTracker) RecordAttempt(key AttemptKey) {
	t.seen[key] = struct{}{}
}

// Reset forgets every question. Called at the start of each level instance.
func (t *AttemptTracker) Reset() {
	clear(t.seen)
}
