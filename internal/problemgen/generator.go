package problemgen

import (
	"math/rand/v2"
	"time"

	"github.com/abhisek/timestables/internal/levels"
)

// Mixed-mode operand bounds.
const (
	mixedFactorMin    = 1
	mixedFactorMax    = 12
	mixedAddendMin    = 1
	mixedAddendMax    = 50
	mixedMinuendMin   = 25
	mixedMinuendMax   = 50
	mixedSubtrahendLo = 1
	mixedSubtrahendHi = 25
)

var allOperations = []levels.Operation{levels.Multiply, levels.Divide, levels.Add, levels.Subtract}

// Generator builds arithmetic question sequences from a random source.
// It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source. Tests pass a seeded source for
// reproducible sequences.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = r
	}
}

// New creates a Generator. Without WithRand it seeds from the clock.
func New(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		seed := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return g
}

// Build produces count questions in the given mode. The level config is
// ignored in ModeContinuous.
func (g *Generator) Build(mode Mode, cfg levels.Config, count int) ([]Question, error) {
	if mode == ModeContinuous {
		if count < 0 {
			return nil, &levels.ConfigurationError{Level: cfg.Level, Reason: "negative question count"}
		}
		return g.Mixed(count), nil
	}
	return g.Generate(cfg, count)
}

// Generate builds count questions for a level. The count is split evenly
// across the level's operations with the remainder going to the first
// operations in listed order, then the per-operation lists are
// interleaved round-robin.
func (g *Generator) Generate(cfg levels.Config, count int) ([]Question, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, &levels.ConfigurationError{Level: cfg.Level, Reason: "negative question count"}
	}

	n := len(cfg.Operations)
	per := count / n
	rem := count % n

	buckets := make([][]Question, n)
	for i, op := range cfg.Operations {
		size := per
		if i < rem {
			size++
		}
		bucket := make([]Question, 0, size)
		for range size {
			bucket = append(bucket, g.leveled(op, cfg.Min, cfg.Max))
		}
		buckets[i] = bucket
	}

	return interleave(buckets, count), nil
}

// Mixed builds count independent questions for the timed challenge. The
// operation of each question is drawn uniformly and the result shuffled.
func (g *Generator) Mixed(count int) []Question {
	out := make([]Question, 0, max(count, 0))
	for range count {
		op := allOperations[g.rng.IntN(len(allOperations))]
		out = append(out, g.mixed(op))
	}
	g.Shuffle(out)
	return out
}

// Shuffle permutes qs in place (Fisher-Yates).
func (g *Generator) Shuffle(qs []Question) {
	g.ShuffleFunc(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}

// ShuffleFunc runs Fisher-Yates over n elements using swap, for callers
// that keep data parallel to a question slice.
func (g *Generator) ShuffleFunc(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := g.rng.IntN(i + 1)
		swap(i, j)
	}
}

func (g *Generator) leveled(op levels.Operation, lo, hi int) Question {
	switch op {
	case levels.Multiply:
		// Validate guarantees the range holds a non-zero value.
		a, b := g.between(lo, hi), g.between(lo, hi)
		for a == 0 || b == 0 {
			a, b = g.between(lo, hi), g.between(lo, hi)
		}
		return newQuestion(op, a, b, a*b)
	case levels.Divide:
		divisor, quotient := g.between(lo, hi), g.between(lo, hi)
		if divisor == 0 {
			divisor = 1
		}
		return newQuestion(op, divisor*quotient, divisor, quotient)
	case levels.Add:
		a, b := g.between(lo, hi), g.between(lo, hi)
		return newQuestion(op, a, b, a+b)
	default:
		minuend := g.between(lo, hi)
		subtrahend := g.between(0, minuend)
		return newQuestion(levels.Subtract, minuend, subtrahend, minuend-subtrahend)
	}
}

func (g *Generator) mixed(op levels.Operation) Question {
	switch op {
	case levels.Multiply:
		a, b := g.between(mixedFactorMin, mixedFactorMax), g.between(mixedFactorMin, mixedFactorMax)
		return newQuestion(op, a, b, a*b)
	case levels.Divide:
		divisor, quotient := g.between(mixedFactorMin, mixedFactorMax), g.between(mixedFactorMin, mixedFactorMax)
		return newQuestion(op, divisor*quotient, divisor, quotient)
	case levels.Add:
		a, b := g.between(mixedAddendMin, mixedAddendMax), g.between(mixedAddendMin, mixedAddendMax)
		return newQuestion(op, a, b, a+b)
	default:
		minuend := g.between(mixedMinuendMin, mixedMinuendMax)
		subtrahend := g.between(mixedSubtrahendLo, mixedSubtrahendHi)
		return newQuestion(levels.Subtract, minuend, subtrahend, minuend-subtrahend)
	}
}

// between returns a uniform value in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo+1)
}

func interleave(buckets [][]Question, count int) []Question {
	out := make([]Question, 0, count)
	for i := 0; len(out) < count; i++ {
		for _, b := range buckets {
			if i < len(b) {
				out = append(out, b[i])
			}
		}
	}
	return out
}
