// Package driver holds the built-in resource drivers. Each driver turns the
// options found under its name in the resource section into a connected
// handle. Options are either a connection string or an object; objects are
// decoded strictly (unknown keys are errors) and validated.
//
// Drivers are exposed to the resolver under "<prefix>-<name>", the same
// naming scheme used for third-party drivers, so a project-local driver in
// the db directory still overrides them.
package driver

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"crystal/internal/module"
)

// Func connects a resource from its options.
type Func func(ctx context.Context, options any) (any, error)

// As reports whether v is usable as a driver and adapts it.
func As(v any) (Func, bool) {
	switch f := v.(type) {
	case Func:
		return f, true
	case func(context.Context, any) (any, error):
		return f, true
	case func(any) (any, error):
		return func(_ context.Context, o any) (any, error) { return f(o) }, true
	}
	return nil, false
}

var builtins = map[string]Func{
	"badger":     Badger,
	"clickhouse": ClickHouse,
	"mongodb":    MongoDB,
	"postgres":   Postgres,
	"redis":      Redis,
	"s3":         S3,
	"sqlite":     SQLite,
}

// Names lists the built-in driver names, sorted.
func Names() []string {
	out := make([]string, 0, len(builtins))
	for k := range builtins {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the built-in driver called name.
func Get(name string) (Func, bool) {
	f, ok := builtins[name]
	return f, ok
}

// RegisterBuiltins adds every built-in driver to reg as prefix-<name>.
func RegisterBuiltins(reg *module.Registry, prefix string) {
	for name, fn := range builtins {
		reg.Register(prefix+"-"+name, fn)
	}
}

var validate = validator.New()

// decode fills out from options. A bare string is shorthand for the field
// tagged shorthand; nil means "all defaults".
func decode(options any, shorthand string, out any) error {
	switch v := options.(type) {
	case nil:
		options = map[string]any{}
	case string:
		options = map[string]any{shorthand: v}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(options); err != nil {
		return err
	}
	return validate.Struct(out)
}

// optionsError tags a decode/validation failure with the driver name.
func optionsError(name string, err error) error {
	return fmt.Errorf("%s options: %w", name, err)
}
