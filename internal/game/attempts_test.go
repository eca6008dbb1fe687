package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttemptTracker(t *testing.T) {
	tr := NewAttemptTracker()
	k := AttemptKey{Slot: 3, Prompt: "6 × 7 = ?"}

	assert.True(t, tr.IsFirstAttempt(k))
	tr.RecordAttempt(k)
	assert.False(t, tr.IsFirstAttempt(k))

	// Same slot with a different prompt is a different question.
	assert.True(t, tr.IsFirstAttempt(AttemptKey{Slot: 3, Prompt: "8 × 9 = ?"}))

	tr.Reset()
	assert.True(t, tr.IsFirstAttempt(k))
}
