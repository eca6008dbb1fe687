package problemgen

import (
	"fmt"
	"strconv"
	"strings"
)

// InvalidInputError reports player input that is not an integer.
type InvalidInputError struct {
	Input string
	Err   error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid answer %q: not a whole number", e.Input)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// ParseAnswer parses the player's typed answer as a base-10 integer.
// Surrounding whitespace and a leading sign are accepted.
func ParseAnswer(input string) (int, error) {
	s := strings.TrimSpace(input)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &InvalidInputError{Input: input, Err: err}
	}
	return n, nil
}

// CheckAnswer reports whether input parses and equals the question's answer.
func CheckAnswer(input string, q Question) bool {
	n, err := ParseAnswer(input)
	return err == nil && n == q.Answer
}
