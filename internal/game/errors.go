package game

import "errors"

var (
	// ErrNotInProgress is returned when input arrives before Start or
	// after the level has completed.
	ErrNotInProgress = errors.New("level is not in progress")

	// ErrChallengeOver is returned when an answer arrives after the timed
	// challenge countdown has reached zero.
	ErrChallengeOver = errors.New("timed challenge is over")

	// ErrNoLevel is returned by Runner operations that need a level
	// before one has been started.
	ErrNoLevel = errors.New("no level started")
)
