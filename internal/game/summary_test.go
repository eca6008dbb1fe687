package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_Threshold(t *testing.T) {
	tests := []struct {
		name        string
		score       int
		total       int
		wantAcc     int
		wantPassed  bool
		wantPerfect bool
	}{
		{"exactly 80", 16, 20, 80, true, false},
		{"79 rounds down and fails", 79, 100, 79, false, false},
		{"79.5 rounds up and passes", 159, 200, 80, true, false},
		{"perfect", 20, 20, 100, true, true},
		{"zero", 0, 20, 0, false, false},
		{"empty level", 0, 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(1, tt.score, tt.total, 2, false)
			assert.Equal(t, tt.wantAcc, s.Accuracy)
			assert.Equal(t, tt.wantPassed, s.Passed)
			assert.Equal(t, tt.wantPerfect, s.Perfect)
		})
	}
}

func TestSummary_Outcome(t *testing.T) {
	assert.Equal(t, "perfect", Summarize(1, 20, 20, 4, false).Outcome())
	assert.Equal(t, "passed", Summarize(1, 17, 20, 4, false).Outcome())
	assert.Equal(t, "failed", Summarize(1, 3, 20, 0, true).Outcome())
}
