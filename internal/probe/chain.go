// Package probe runs ordered capability-probe strategies.
package probe

import "github.com/standardbeagle/datamanager/internal/debug"

// Strategy is one named way of obtaining a result. It reports ok=false when its
// capability is missing, the host call failed, or the result was empty.
type Strategy[In, Out any] struct {
	Name string
	Try  func(In) (Out, bool)
}

// Chain tries strategies in order and stops at the first one that answers.
type Chain[In, Out any] struct {
	Label      string
	Strategies []Strategy[In, Out]
}

// New builds a chain.
func New[In, Out any](label string, strategies ...Strategy[In, Out]) Chain[In, Out] {
	return Chain[In, Out]{Label: label, Strategies: strategies}
}

// Run returns the first successful result, the name of the strategy that
// produced it, and whether any strategy succeeded.
func (c Chain[In, Out]) Run(in In) (Out, string, bool) {
	for _, s := range c.Strategies {
		if s.Try == nil {
			continue
		}
		if out, ok := s.Try(in); ok {
			debug.LogProbe("%s: answered by %s\n", c.Label, s.Name)
			return out, s.Name, true
		}
	}
	debug.LogProbe("%s: no strategy answered\n", c.Label)
	var zero Out
	return zero, "", false
}

// Value is Run without the strategy name.
func (c Chain[In, Out]) Value(in In) (Out, bool) {
	out, _, ok := c.Run(in)
	return out, ok
}

// NonEmptyMap adapts a map-returning function into a strategy body that
// fails on empty results.
func NonEmptyMap[In any, K comparable, V any](fn func(In) map[K]V) func(In) (map[K]V, bool) {
	return func(in In) (map[K]V, bool) {
		m := fn(in)
		return m, len(m) > 0
	}
}

// NonEmptySlice adapts a slice-returning function into a strategy body that
// fails on empty results.
func NonEmptySlice[In any, T any](fn func(In) []T) func(In) ([]T, bool) {
	return func(in In) ([]T, bool) {
		s := fn(in)
		return s, len(s) > 0
	}
}
