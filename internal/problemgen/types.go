package problemgen

import (
	"fmt"

	"github.com/abhisek/timestables/internal/levels"
)

// Question is a single arithmetic problem ready for display.
type Question struct {
	Operation levels.Operation

	// Left and Right are the operands as displayed. For division Left is
	// the dividend and Right the divisor.
	Left  int
	Right int

	// Prompt is the text shown to the player, e.g. "7 × 8 = ?".
	Prompt string

	// Answer is the correct integer answer.
	Answer int
}

// Mode selects how a question sequence is built.
type Mode int

const (
	// ModeLeveled splits questions evenly across a level's operations and
	// interleaves them round-robin.
	ModeLeveled Mode = iota

	// ModeContinuous draws every question independently from a wide fixed
	// range. Used by the timed challenge.
	ModeContinuous
)

func (m Mode) String() string {
	switch m {
	case ModeLeveled:
		return "leveled"
	case ModeContinuous:
		return "continuous"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func newQuestion(op levels.Operation, left, right, answer int) Question {
	return Question{
		Operation: op,
		Left:      left,
		Right:     right,
		Prompt:    fmt.Sprintf("%d %s %d = ?", left, op.Symbol(), right),
		Answer:    answer,
	}
}

// Compute evaluates the operation on the embedded operands. Division by
// zero yields 0.
func (q Question) Compute() int {
	switch q.Operation {
	case levels.Multiply:
		return q.Left * q.Right
	case levels.Divide:
		if q.Right == 0 {
			return 0
		}
		return q.Left / q.Right
	case levels.Add:
		return q.Left + q.Right
	case levels.Subtract:
		return q.Left - q.Right
	default:
		return 0
	}
}
