package crystal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crystal/internal/config"
	"crystal/internal/driver"
	"crystal/internal/events"
	"crystal/internal/future"
	"crystal/internal/module"
	"crystal/internal/provision"
	"crystal/pkg/types"
)

// Re-exported building blocks so callers outside this module can name them.
type (
	Config     = config.Map
	Resources  = provision.Resources
	Future     = future.Future
	Listener   = events.Listener // see App.On for when lifecycle listeners run
	ListenerID = events.ListenerID
	Registry   = module.Registry
	Resolver   = module.Resolver
	Strategy   = module.Strategy
	Driver     = driver.Func
)

// Factory builds a resource from the application. Place one in the resource
// section of a registered configuration unit to bypass driver lookup.
type Factory = provision.Factory[*App]

// Hook runs during initialization. Register one at "src/init/pre-init" to run
// after configuration is loaded, or at "src/init" to run after resources are
// connected. func(context.Context, *App) error and func(*App) error are
// accepted too.
type Hook func(ctx context.Context, app *App) error

// NewRegistry returns an empty unit registry for WithRegistry.
func NewRegistry() *Registry { return module.NewRegistry() }

// NewResolver returns a resolver over strategies, for WithResolver.
func NewResolver(strategies ...Strategy) *Resolver { return module.NewResolver(strategies...) }

// FileStrategy reads configuration documents from disk.
func FileStrategy() Strategy { return config.Files{} }

// MapOf builds a configuration object from key/value pairs, keeping their
// order.
func MapOf(kv ...any) *Config { return config.MapOf(kv...) }

// State is the lifecycle state of an App.
type State string

const (
	StatePending State = "pending"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Event names understood by the listener API.
const (
	EventReady = "ready"
	EventError = "error"
)

// App is one bootstrapped application. It is safe for concurrent use.
type App struct {
	id       string
	paths    Paths
	pathsErr error
	env      string
	log      zerolog.Logger
	ctx      context.Context
	resolver *module.Resolver
	prefix   string
	pub      EventPublisher
	started  time.Time

	mu        sync.RWMutex
	state     State
	phase     string
	err       error
	cfg       *config.Map
	resources *provision.Resources
	initDur   time.Duration

	emitter events.Emitter
	ready   *future.Future
}

// New derives the paths for root and starts initialization in the
// background. It never blocks; use Ready or a "ready" listener to learn the
// outcome.
func New(root string, opts ...Option) *App {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{
		id:      uuid.NewString(),
		ctx:     context.WithoutCancel(o.ctx),
		prefix:  o.prefix,
		pub:     o.pub,
		started: time.Now(),
		state:   StatePending,
		ready:   future.New(),
	}
	if a.prefix == "" {
		a.prefix = provision.DefaultPrefix
	}
	a.paths, a.pathsErr = DerivePaths(root)
	if o.env != nil {
		a.env = *o.env
	} else if v, ok := o.lookupEnv(EnvVar); ok {
		a.env = v
	}
	a.log = o.log.With().Str("app_id", a.id).Str("root", a.paths.Root).Logger()
	a.resolver = o.resolver
	if a.resolver == nil {
		a.resolver = a.defaultResolver(o)
	}
	for _, l := range o.listeners {
		a.On(l.event, l.fn)
	}
	go a.run()
	return a
}

func (a *App) defaultResolver(o options) *module.Resolver {
	var strategies []module.Strategy
	if o.registry != nil {
		strategies = append(strategies, rooted(a.paths.Root, o.registry))
	}
	if o.builtins {
		builtin := module.NewRegistry()
		driver.RegisterBuiltins(builtin, a.prefix)
		strategies = append(strategies, builtin)
	}
	if o.files {
		strategies = append(strategies, config.Files{})
	}
	return module.NewResolver(strategies...)
}

// rooted lets registry locators be written relative to the application root.
func rooted(root string, r *module.Registry) module.Strategy {
	return module.StrategyFunc(func(ctx context.Context, locator string) (module.Result, error) {
		res, err := r.Lookup(ctx, locator)
		if err != nil || !res.IsAbsent() || root == "" || !filepath.IsAbs(locator) {
			return res, err
		}
		rel, err := filepath.Rel(root, locator)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return module.Absent, nil
		}
		return r.Lookup(ctx, rel)
	})
}

// ID identifies this instance.
func (a *App) ID() string { return a.id }

// Paths returns the directory layout.
func (a *App) Paths() Paths { return a.paths }

// Env returns the environment name, empty when none was configured.
func (a *App) Env() string { return a.env }

// Logger returns the application logger.
func (a *App) Logger() zerolog.Logger { return a.log }

// Ready returns the completion future. Every call returns the same instance.
func (a *App) Ready() *Future { return a.ready }

// Wait blocks until initialization finishes or ctx ends.
func (a *App) Wait(ctx context.Context) error { return a.ready.Wait(ctx) }

// IsReady reports whether initialization succeeded.
func (a *App) IsReady() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state == StateReady
}

// State returns the lifecycle state.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Err returns the initialization error once failed.
func (a *App) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

// Config returns the merged configuration, or nil before it is loaded.
// Callers must not modify it.
func (a *App) Config() *Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Resources returns the provisioned resources, or nil before provisioning
// starts. After a failed provisioning it holds the entries connected before
// the failure.
func (a *App) Resources() *Resources {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.resources
}

// Resource returns one provisioned handle.
func (a *App) Resource(name string) (any, bool) {
	return a.Resources().Get(name)
}

// Status snapshots the application for reporting.
func (a *App) Status() types.StatusResponse {
	a.mu.RLock()
	defer a.mu.RUnlock()
	now := time.Now()
	st := types.StatusResponse{
		ID:             a.id,
		State:          string(a.state),
		Ready:          a.state == StateReady,
		Env:            a.env,
		Phase:          a.phase,
		Paths:          a.paths.toAPI(),
		Resources:      []types.Resource{},
		InitDurationMs: a.initDur.Milliseconds(),
		UptimeSeconds:  int64(now.Sub(a.started).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
	for _, name := range a.resources.Names() {
		h, _ := a.resources.Get(name)
		st.Resources = append(st.Resources, types.Resource{Name: name, Handle: typeName(h)})
	}
	if a.err != nil {
		st.Error = a.err.Error()
	}
	return st
}

// Bootstrap is New followed by Wait. The App is returned even on failure so
// callers can inspect Status.
func Bootstrap(ctx context.Context, root string, opts ...Option) (*App, error) {
	a := New(root, opts...)
	return a, a.Wait(ctx)
}

// Close waits, bounded by ctx, for initialization to settle and then
// releases provisioned resources in reverse provisioning order. Handles with
// a Close or Disconnect method are closed; others are left alone. If ctx ends
// first, the handles connected so far are closed and the result wraps
// ErrInitInFlight. Do not call Close from a hook.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.ready.Wait(ctx); err != nil && !a.ready.Resolved() {
		a.log.Warn().Str("phase", a.Status().Phase).Msg("closing before initialization settled")
		errs = append(errs, fmt.Errorf("%w: %w", ErrInitInFlight, err))
	}
	res := a.Resources()
	names := res.Names()
	for i := len(names) - 1; i >= 0; i-- {
		h, _ := res.Get(names[i])
		if err := closeHandle(ctx, h); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", names[i], err))
		}
	}
	return errors.Join(errs...)
}

func closeHandle(ctx context.Context, h any) error {
	switch c := h.(type) {
	case interface{ Close() error }:
		return c.Close()
	case interface{ Close() }:
		c.Close()
	case interface{ Disconnect(context.Context) error }:
		return c.Disconnect(ctx)
	}
	return nil
}
