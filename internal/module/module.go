// Package module resolves optional units (configuration documents, hooks,
// drivers) by locator. A unit that does not exist is reported as Absent,
// never as an error; only real failures (a document that does not parse, a
// permission error) are returned as errors.
//
// A Resolver asks an ordered list of strategies. The compiled-in Registry is
// normally first, followed by on-disk probing.
package module

import (
	"context"
	"fmt"
)

// Result is the outcome of a lookup: either a found value or Absent.
type Result struct {
	value any
	found bool
}

// Absent is the result for a unit that does not exist.
var Absent = Result{}

// Found wraps v as a found result. A nil v is still Absent.
func Found(v any) Result {
	if v == nil {
		return Absent
	}
	return Result{value: v, found: true}
}

// IsAbsent reports whether the lookup found nothing.
func (r Result) IsAbsent() bool { return !r.found }

// Value returns the found value, or nil when absent.
func (r Result) Value() any { return r.value }

// Strategy looks up a single locator. Lookup returns Absent with a nil
// error when the unit does not exist.
type Strategy interface {
	Lookup(ctx context.Context, locator string) (Result, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, locator string) (Result, error)

func (f StrategyFunc) Lookup(ctx context.Context, locator string) (Result, error) {
	return f(ctx, locator)
}

// Resolver tries its strategies in order.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds a resolver; earlier strategies take precedence.
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: append([]Strategy(nil), strategies...)}
}

// TryLoad resolves locator, returning the first found result. A strategy
// error stops the search and is returned wrapped with the locator.
func (r *Resolver) TryLoad(ctx context.Context, locator string) (Result, error) {
	for _, s := range r.strategies {
		res, err := s.Lookup(ctx, locator)
		if err != nil {
			return Absent, &LoadError{Locator: locator, Err: err}
		}
		if !res.IsAbsent() {
			return res, nil
		}
	}
	return Absent, nil
}

// TryLoadFirst tries each locator in order and returns the first found
// result. Earlier locators are overrides for later ones.
func (r *Resolver) TryLoadFirst(ctx context.Context, locators ...string) (Result, error) {
	for _, loc := range locators {
		res, err := r.TryLoad(ctx, loc)
		if err != nil {
			return Absent, err
		}
		if !res.IsAbsent() {
			return res, nil
		}
	}
	return Absent, nil
}

// LoadError is a unit that exists but could not be loaded.
type LoadError struct {
	Locator string
	Err     error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Locator, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }
