package crystal

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"crystal/internal/module"
)

// EnvVar is the environment variable naming the configuration override.
const EnvVar = "CRYSTAL_ENV"

// ResourcesKey is the configuration key holding the resource section.
const ResourcesKey = "db"

type options struct {
	log       zerolog.Logger
	env       *string
	lookupEnv func(string) (string, bool)
	resolver  *module.Resolver
	registry  *module.Registry
	prefix    string
	builtins  bool
	files     bool
	ctx       context.Context
	pub       EventPublisher
	listeners []pendingListener
}

type pendingListener struct {
	event string
	fn    Listener
}

func defaultOptions() options {
	return options{
		log:       zerolog.Nop(),
		lookupEnv: os.LookupEnv,
		builtins:  true,
		files:     true,
		ctx:       context.Background(),
		pub:       noopPublisher{},
	}
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithEnv fixes the environment name instead of reading CRYSTAL_ENV. An
// empty name behaves like an unset variable.
func WithEnv(env string) Option {
	return func(o *options) { o.env = &env }
}

// WithEnvLookup replaces os.LookupEnv when reading CRYSTAL_ENV.
func WithEnvLookup(fn func(string) (string, bool)) Option {
	return func(o *options) {
		if fn != nil {
			o.lookupEnv = fn
		}
	}
}

// WithRegistry adds compiled-in units. They take precedence over built-in
// drivers and files. Locators may be absolute or relative to the root, for
// example "src/init/pre-init" or "src/db/cache".
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithResolver replaces unit resolution entirely. WithRegistry,
// WithoutBuiltinDrivers and WithoutFiles are ignored when set.
func WithResolver(r *Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithDriverPrefix changes the external driver naming scheme from
// "crystal-node-<type>" to "<prefix>-<type>".
func WithDriverPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithoutBuiltinDrivers hides the drivers shipped with this package.
func WithoutBuiltinDrivers() Option {
	return func(o *options) { o.builtins = false }
}

// WithoutFiles stops configuration documents from being read from disk.
func WithoutFiles() Option {
	return func(o *options) { o.files = false }
}

// WithContext sets the context handed to hooks, factories and drivers. Its
// values are kept but cancellation is not: initialization always runs to an
// outcome.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithEventPublisher receives lifecycle events.
func WithEventPublisher(p EventPublisher) Option {
	return func(o *options) {
		if p != nil {
			o.pub = p
		}
	}
}

// WithListener registers fn for event before initialization starts, so an
// "error" listener cannot miss a fast failure.
func WithListener(event string, fn Listener) Option {
	return func(o *options) { o.listeners = append(o.listeners, pendingListener{event, fn}) }
}
