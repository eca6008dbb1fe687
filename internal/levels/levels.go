package levels

import (
	"fmt"
	"slices"
)

// Operation is an arithmetic operation a level can ask about.
type Operation string

const (
	Multiply Operation = "multiply"
	Divide   Operation = "divide"
	Add      Operation = "add"
	Subtract Operation = "subtract"
)

// Symbol returns the operator as shown in question prompts.
func (o Operation) Symbol() string {
	switch o {
	case Multiply:
		return "×"
	case Divide:
		return "÷"
	case Add:
		return "+"
	case Subtract:
		return "-"
	default:
		return "?"
	}
}

// Config describes one difficulty tier: which operations it mixes and the
// inclusive operand range the generator draws from.
type Config struct {
	Level       int
	Operations  []Operation
	Min         int
	Max         int
	Description string
}

// QuestionsPerLevel is the fixed length of every leveled question sequence.
const QuestionsPerLevel = 20

// First and Last bound the predefined level table.
const (
	First = 1
	Last  = 10
)

var table = map[int]Config{
	1:  {Level: 1, Operations: []Operation{Multiply}, Min: 0, Max: 5, Description: "Easy Multiplication (0-5)"},
	2:  {Level: 2, Operations: []Operation{Multiply}, Min: 0, Max: 7, Description: "Easy+ Multiplication (0-7)"},
	3:  {Level: 3, Operations: []Operation{Multiply, Add}, Min: 0, Max: 10, Description: "Mixed: × and + (0-10)"},
	4:  {Level: 4, Operations: []Operation{Multiply, Add, Subtract}, Min: 2, Max: 12, Description: "Mixed: ×, +, - (2-12)"},
	5:  {Level: 5, Operations: []Operation{Multiply, Add, Subtract}, Min: 5, Max: 12, Description: "Mixed: ×, +, - (5-12)"},
	6:  {Level: 6, Operations: []Operation{Multiply, Divide}, Min: 7, Max: 12, Description: "Mixed: × and ÷ (7-12)"},
	7:  {Level: 7, Operations: []Operation{Multiply, Divide, Add}, Min: 9, Max: 12, Description: "Mixed: ×, ÷, + (9-12)"},
	8:  {Level: 8, Operations: []Operation{Multiply, Divide, Subtract}, Min: 10, Max: 12, Description: "Mixed: ×, ÷, - (10-12)"},
	9:  {Level: 9, Operations: []Operation{Multiply, Divide, Add, Subtract}, Min: 11, Max: 12, Description: "All Operations (11-12)"},
	10: {Level: 10, Operations: []Operation{Multiply, Divide, Add, Subtract}, Min: 12, Max: 12, Description: "Master All Operations (12)"},
}

// Get returns the configuration for the given level number.
func Get(level int) (Config, error) {
	cfg, ok := table[level]
	if !ok {
		return Config{}, &ConfigurationError{Level: level, Reason: "unknown level"}
	}
	cfg.Operations = slices.Clone(cfg.Operations)
	return cfg, nil
}

// All returns every predefined level in ascending order.
func All() []Config {
	out := make([]Config, 0, len(table))
	for l := First; l <= Last; l++ {
		cfg, _ := Get(l)
		out = append(out, cfg)
	}
	return out
}

// Validate checks the structural invariants of a level configuration and
// whether the generator can satisfy it. A multiplication level whose range
// holds only zero could never produce a non-zero factor. Operands are never
// negative, so every answer is a non-negative integer.
func (c Config) Validate() error {
	if len(c.Operations) == 0 {
		return &ConfigurationError{Level: c.Level, Reason: "no operations"}
	}
	if c.Min < 0 {
		return &ConfigurationError{Level: c.Level, Reason: fmt.Sprintf("negative min %d", c.Min)}
	}
	if c.Min > c.Max {
		return &ConfigurationError{Level: c.Level, Reason: fmt.Sprintf("min %d exceeds max %d", c.Min, c.Max)}
	}
	for _, op := range c.Operations {
		switch op {
		case Multiply:
			if c.Min == 0 && c.Max == 0 {
				return &ConfigurationError{Level: c.Level, Reason: "multiplication range holds no non-zero factor"}
			}
		case Divide, Add, Subtract:
		default:
			return &ConfigurationError{Level: c.Level, Reason: fmt.Sprintf("unknown operation %q", op)}
		}
	}
	return nil
}

// ConfigurationError reports a level number or level configuration that
// cannot be played.
type ConfigurationError struct {
	Level  int
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("level %d: %s", e.Level, e.Reason)
}
