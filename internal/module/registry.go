package module

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry is a compiled-in table of units keyed by locator. Path-like
// locators are cleaned so "a/b/" and "a/b" name the same unit; bare names
// such as "crystal-node-redis" are stored as given.
type Registry struct {
	mu    sync.RWMutex
	units map[string]any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[string]any)}
}

func key(locator string) string {
	if strings.ContainsAny(locator, `/\`) {
		return filepath.Clean(locator)
	}
	return locator
}

// Register stores v under locator, replacing any previous unit.
func (r *Registry) Register(locator string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[key(locator)] = v
}

// MustRegister is Register but panics if locator is already taken. Meant for
// init-time registration where a clash is a programming error.
func (r *Registry) MustRegister(locator string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(locator)
	if _, ok := r.units[k]; ok {
		panic(fmt.Sprintf("module: %q registered twice", k))
	}
	r.units[k] = v
}

// Unregister removes locator.
func (r *Registry) Unregister(locator string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.units, key(locator))
}

// Lookup implements Strategy.
func (r *Registry) Lookup(_ context.Context, locator string) (Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.units[key(locator)]
	if !ok {
		return Absent, nil
	}
	return Found(v), nil
}

// Locators lists registered locators, sorted.
func (r *Registry) Locators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.units))
	for k := range r.units {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
