// Package future provides a one-shot completion signal carrying an error.
package future

import (
	"context"
	"sync"
)

// Future resolves exactly once. Later Resolve calls are ignored.
type Future struct {
	once sync.Once
	done chan struct{}
	err  error
}

// New returns a pending Future.
func New() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve completes the future with err (nil for success). It reports
// whether this call was the one that resolved it.
func (f *Future) Resolve(err error) bool {
	resolved := false
	f.once.Do(func() {
		f.err = err
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done is closed when the future resolves.
func (f *Future) Done() <-chan struct{} { return f.done }

// Resolved reports whether the future has completed.
func (f *Future) Resolved() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Err returns the resolution error, or nil while pending or on success.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until the future resolves or ctx ends. Giving up on ctx does
// not affect the future itself.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
