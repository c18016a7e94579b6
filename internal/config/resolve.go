package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"crystal/internal/module"
)

// UnsetEnv is the path segment used for the override document when no
// environment name is configured. It is a literal carried over from the
// deployments this loader serves; a file named "undefined" is honoured.
const UnsetEnv = "undefined"

// LoadError is a configuration unit that exists but cannot be used.
type LoadError struct {
	Locator string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Locator, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader loads the base document and the environment override and merges
// them.
type Loader struct {
	Resolver *module.Resolver
}

// NewLoader returns a Loader backed by r.
func NewLoader(r *module.Resolver) *Loader {
	return &Loader{Resolver: r}
}

// Load returns Merge(base, override) where base lives at dir and override at
// dir/env. Either document may be missing.
func (l *Loader) Load(ctx context.Context, dir, env string) (*Map, error) {
	if env == "" {
		env = UnsetEnv
	}
	base, err := l.object(ctx, dir)
	if err != nil {
		return nil, err
	}
	override, err := l.object(ctx, filepath.Join(dir, env))
	if err != nil {
		return nil, err
	}
	return Merge(base, override), nil
}

func (l *Loader) object(ctx context.Context, locator string) (*Map, error) {
	res, err := l.Resolver.TryLoad(ctx, locator)
	if err != nil {
		var le *module.LoadError
		if errors.As(err, &le) {
			return nil, &LoadError{Locator: le.Locator, Err: le.Err}
		}
		return nil, &LoadError{Locator: locator, Err: err}
	}
	if res.IsAbsent() {
		return NewMap(), nil
	}
	m, err := AsMap(res.Value())
	if err != nil {
		return nil, &LoadError{Locator: locator, Err: err}
	}
	return m, nil
}

// AsMap accepts the shapes a configuration unit may take.
func AsMap(v any) (*Map, error) {
	switch t := v.(type) {
	case *Map:
		return t, nil
	case map[string]any:
		return FromStd(t), nil
	case func() *Map:
		return t(), nil
	default:
		return nil, fmt.Errorf("value is %T, want an object", v)
	}
}
