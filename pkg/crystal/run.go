package crystal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"crystal/internal/config"
	"crystal/internal/provision"
)

// Phase names, in execution order.
const (
	PhaseConfig    = "config"
	PhasePreInit   = "pre-init"
	PhaseResources = "resources"
	PhasePostInit  = "post-init"
)

func (a *App) run() {
	start := time.Now()
	err := a.init()
	d := time.Since(start)
	bootstrapTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		a.fail(err, d)
		return
	}
	a.succeed(d)
}

func (a *App) init() error {
	if a.pathsErr != nil {
		return fmt.Errorf("resolve root: %w", a.pathsErr)
	}
	if err := a.phaseRun(PhaseConfig, a.loadConfig); err != nil {
		return err
	}
	if err := a.phaseRun(PhasePreInit, func() error {
		return a.runHook(PhasePreInit, filepath.Join(a.paths.Init, "pre-init"))
	}); err != nil {
		return err
	}
	if err := a.phaseRun(PhaseResources, a.provision); err != nil {
		return err
	}
	return a.phaseRun(PhasePostInit, func() error {
		return a.runHook(PhasePostInit, a.paths.Init)
	})
}

func (a *App) phaseRun(name string, fn func() error) error {
	a.mu.Lock()
	a.phase = name
	a.mu.Unlock()
	a.publish(Event{Name: EventPhaseStart, Phase: name})
	a.log.Debug().Str("phase", name).Msg("phase start")

	start := time.Now()
	err := fn()
	d := time.Since(start)
	phaseDuration.WithLabelValues(name, outcome(err)).Observe(d.Seconds())
	if err != nil {
		a.log.Error().Str("phase", name).Dur("dur", d).Err(err).Msg("phase failed")
		a.publish(Event{Name: EventPhaseFailed, Phase: name, Fields: map[string]any{"error": err.Error()}})
		return err
	}
	a.log.Debug().Str("phase", name).Dur("dur", d).Msg("phase done")
	a.publish(Event{Name: EventPhaseDone, Phase: name, Fields: map[string]any{"dur_ms": d.Milliseconds()}})
	return nil
}

func (a *App) loadConfig() error {
	cfg, err := config.NewLoader(a.resolver).Load(a.ctx, a.paths.Config, a.env)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
	a.log.Info().Strs("keys", cfg.Keys()).Msg("config loaded")
	return nil
}

func (a *App) provision() error {
	out := provision.NewResources()
	a.mu.Lock()
	a.resources = out
	section, _ := a.cfg.Get(ResourcesKey)
	a.mu.Unlock()

	p := &provision.Provisioner[*App]{
		Resolver:  a.resolver,
		DriverDir: a.paths.DB,
		Prefix:    a.prefix,
		Logger:    a.log,
		Observe: func(name string, d time.Duration, err error) {
			observeResource(name, d, err)
			if err != nil {
				a.publish(Event{Name: EventResourceFail, Phase: PhaseResources, Fields: map[string]any{"type": name, "error": err.Error()}})
				return
			}
			a.publish(Event{Name: EventResourceReady, Phase: PhaseResources, Fields: map[string]any{"type": name, "dur_ms": d.Milliseconds()}})
		},
	}
	return p.ProvisionInto(a.ctx, a, section, out)
}

// runHook loads the unit at locator and invokes it when callable. An absent
// or non-callable unit is skipped.
func (a *App) runHook(name, locator string) error {
	res, err := a.resolver.TryLoad(a.ctx, locator)
	if err != nil {
		return &HookError{Hook: name, Err: err}
	}
	if res.IsAbsent() {
		a.log.Debug().Str("hook", name).Str("locator", locator).Msg("hook absent")
		return nil
	}
	h, ok := asHook(res.Value())
	if !ok {
		a.log.Debug().Str("hook", name).Str("type", typeName(res.Value())).Msg("hook not callable, skipped")
		return nil
	}
	if err := callHook(a.ctx, a, h); err != nil {
		return &HookError{Hook: name, Err: err}
	}
	return nil
}

func asHook(v any) (Hook, bool) {
	switch h := v.(type) {
	case Hook:
		return h, true
	case func(context.Context, *App) error:
		return h, true
	case func(*App) error:
		return func(_ context.Context, a *App) error { return h(a) }, true
	}
	return nil, false
}

func callHook(ctx context.Context, a *App, h Hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx, a)
}

func (a *App) succeed(d time.Duration) {
	a.mu.Lock()
	a.state = StateReady
	a.phase = ""
	a.initDur = d
	fns := a.emitter.Take(EventReady)
	a.mu.Unlock()

	a.log.Info().Dur("dur", d).Strs("resources", a.resources.Names()).Msg("app ready")
	a.publish(Event{Name: EventAppReady, Fields: map[string]any{"dur_ms": d.Milliseconds()}})
	a.dispatch(EventReady, fns)
	a.ready.Resolve(nil)
}

func (a *App) fail(err error, d time.Duration) {
	a.mu.Lock()
	a.state = StateFailed
	a.err = err
	a.initDur = d
	fns := a.emitter.Take(EventError)
	a.mu.Unlock()

	a.log.Error().Err(err).Dur("dur", d).Msg("app failed")
	a.publish(Event{Name: EventAppFailed, Fields: map[string]any{"error": err.Error(), "kind": failureKind(err)}})
	a.dispatch(EventError, fns, err)
	a.ready.Resolve(err)
}

func failureKind(err error) string {
	switch {
	case IsConfigLoadFailure(err):
		return "config_load"
	case IsHookFailure(err):
		return "hook"
	case IsUnsupportedResourceType(err):
		return "unsupported_resource_type"
	case IsResourceConnectFailure(err):
		return "resource_connect"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "other"
}

func (a *App) publish(e Event) {
	e.AppID = a.id
	a.pub.Publish(e)
}

func typeName(v any) string { return fmt.Sprintf("%T", v) }
