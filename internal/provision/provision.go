// Package provision connects the resources declared in configuration, one
// entry at a time in declaration order.
package provision

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"crystal/internal/config"
	"crystal/internal/driver"
	"crystal/internal/module"
)

// DefaultPrefix is the naming scheme for external drivers: a resource
// declared as "redis" falls back to the unit "crystal-node-redis".
const DefaultPrefix = "crystal-node"

// Factory builds a resource directly from the host application. A factory
// placed in the resource section bypasses driver lookup.
type Factory[H any] func(ctx context.Context, host H) (any, error)

// UnsupportedTypeError reports a resource with no usable driver.
type UnsupportedTypeError struct {
	Name string
	// Found is the non-callable value that was resolved, if any.
	Found any
}

func (e *UnsupportedTypeError) Error() string {
	if e.Found != nil {
		return fmt.Sprintf("resource type %q is not supported: driver is %T, not callable", e.Name, e.Found)
	}
	return fmt.Sprintf("resource type %q is not supported", e.Name)
}

// ConnectError reports a driver or factory that failed.
type ConnectError struct {
	Name string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect resource %q: %v", e.Name, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Provisioner walks a resource section. H is the host type handed to
// factories.
type Provisioner[H any] struct {
	Resolver *module.Resolver
	// DriverDir holds project-local drivers, looked up as DriverDir/<name>.
	DriverDir string
	// Prefix names external drivers as Prefix-<name>. Empty means DefaultPrefix.
	Prefix string
	Logger zerolog.Logger
	// Observe, when set, is told how each entry went.
	Observe func(name string, dur time.Duration, err error)
}

// Locators returns the driver candidates for name, most specific first.
func (p *Provisioner[H]) Locators(name string) []string {
	prefix := p.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return []string{filepath.Join(p.DriverDir, name), prefix + "-" + name}
}

// Provision connects every entry of section and stops at the first failure.
// A nil section yields an empty set.
func (p *Provisioner[H]) Provision(ctx context.Context, host H, section any) (*Resources, error) {
	out := NewResources()
	if err := p.ProvisionInto(ctx, host, section, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProvisionInto is Provision writing into out as it goes, so factories that
// read out see the entries declared before them. On failure out keeps what
// was connected so far.
func (p *Provisioner[H]) ProvisionInto(ctx context.Context, host H, section any, out *Resources) error {
	if section == nil {
		return nil
	}
	entries, err := config.AsMap(section)
	if err != nil {
		return fmt.Errorf("resource section: %w", err)
	}
	for _, name := range entries.Keys() {
		v, _ := entries.Get(name)
		start := time.Now()
		h, err := p.one(ctx, host, name, v)
		dur := time.Since(start)
		if p.Observe != nil {
			p.Observe(name, dur, err)
		}
		if err != nil {
			p.Logger.Error().Str("resource", name).Dur("dur", dur).Err(err).Msg("resource failed")
			return err
		}
		p.Logger.Info().Str("resource", name).Dur("dur", dur).Msg("resource ready")
		out.put(name, h)
	}
	return nil
}

func (p *Provisioner[H]) one(ctx context.Context, host H, name string, v any) (any, error) {
	if f, ok := asFactory[H](v); ok {
		p.Logger.Debug().Str("resource", name).Msg("invoking factory")
		h, err := guard(func() (any, error) { return f(ctx, host) })
		if err != nil {
			return nil, &ConnectError{Name: name, Err: err}
		}
		return h, nil
	}

	locs := p.Locators(name)
	res, err := p.Resolver.TryLoadFirst(ctx, locs...)
	if err != nil {
		return nil, fmt.Errorf("resolve driver for %q: %w", name, err)
	}
	if res.IsAbsent() {
		return nil, &UnsupportedTypeError{Name: name}
	}
	fn, ok := driver.As(res.Value())
	if !ok {
		return nil, &UnsupportedTypeError{Name: name, Found: res.Value()}
	}
	opts := v
	if m, ok := v.(*config.Map); ok {
		opts = m.Std()
	}
	p.Logger.Debug().Str("resource", name).Strs("candidates", locs).Msg("invoking driver")
	h, err := guard(func() (any, error) { return fn(ctx, opts) })
	if err != nil {
		return nil, &ConnectError{Name: name, Err: err}
	}
	return h, nil
}

func asFactory[H any](v any) (Factory[H], bool) {
	switch f := v.(type) {
	case Factory[H]:
		return f, true
	case func(context.Context, H) (any, error):
		return f, true
	case func(H) (any, error):
		return func(_ context.Context, h H) (any, error) { return f(h) }, true
	}
	return nil, false
}

// guard turns a panic in user code into an error.
func guard(fn func() (any, error)) (h any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
