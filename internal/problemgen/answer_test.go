package problemgen

import (
	"errors"
	"testing"

	"github.com/abhisek/timestables/internal/levels"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{" 42 ", 42, false},
		{"042", 42, false},
		{"-3", -3, false},
		{"+7", 7, false},
		{"0", 0, false},
		{"", 0, true},
		{"abc", 0, true},
		{"4.5", 0, true},
		{"12a", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseAnswer(tc.input)
		if tc.wantErr {
			var inv *InvalidInputError
			if !errors.As(err, &inv) {
				t.Errorf("ParseAnswer(%q) error = %v, want InvalidInputError", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAnswer(%q) unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAnswer(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestCheckAnswer(t *testing.T) {
	q := newQuestion(levels.Multiply, 6, 7, 42)

	tests := []struct {
		input string
		want  bool
	}{
		{"42", true},
		{" 42\n", true},
		{"43", false},
		{"", false},
		{"forty-two", false},
	}

	for _, tc := range tests {
		if got := CheckAnswer(tc.input, q); got != tc.want {
			t.Errorf("CheckAnswer(%q, 6×7) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestInvalidInputError_Unwrap(t *testing.T) {
	_, err := ParseAnswer("x")
	var inv *InvalidInputError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if inv.Unwrap() == nil {
		t.Error("expected wrapped strconv error")
	}
	if inv.Input != "x" {
		t.Errorf("Input = %q, want %q", inv.Input, "x")
	}
}
