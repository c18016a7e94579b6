package provision

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"crystal/internal/config"
	"crystal/internal/module"
)

func newProvisioner(reg *module.Registry) *Provisioner[string] {
	return &Provisioner[string]{
		Resolver:  module.NewResolver(reg),
		DriverDir: "/app/src/db",
		Logger:    zerolog.Nop(),
	}
}

func TestLocators(t *testing.T) {
	p := newProvisioner(module.NewRegistry())
	want := []string{"/app/src/db/redis", "crystal-node-redis"}
	if got := p.Locators("redis"); !reflect.DeepEqual(got, want) {
		t.Fatalf("locators=%v want %v", got, want)
	}
	p.Prefix = "acme"
	if got := p.Locators("redis")[1]; got != "acme-redis" {
		t.Fatalf("prefixed=%q", got)
	}
}

func TestProvision_NilSectionIsEmpty(t *testing.T) {
	res, err := newProvisioner(module.NewRegistry()).Provision(context.Background(), "host", nil)
	if err != nil || res.Len() != 0 {
		t.Fatalf("res=%v err=%v", res.Names(), err)
	}
}

func TestProvision_ExternalDriverGetsOptions(t *testing.T) {
	reg := module.NewRegistry()
	var got any
	reg.Register("crystal-node-mysql", func(_ context.Context, opts any) (any, error) {
		got = opts
		return "mysql-handle", nil
	})
	section := config.MapOf("mysql", config.MapOf("url", "x"))
	res, err := newProvisioner(reg).Provision(context.Background(), "host", section)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if h, _ := res.Get("mysql"); h != "mysql-handle" {
		t.Fatalf("handle=%v", h)
	}
	if !reflect.DeepEqual(got, map[string]any{"url": "x"}) {
		t.Fatalf("driver options=%#v", got)
	}
}

func TestProvision_LocalDriverWins(t *testing.T) {
	reg := module.NewRegistry()
	reg.Register("/app/src/db/redis", func(any) (any, error) { return "local", nil })
	reg.Register("crystal-node-redis", func(any) (any, error) { return "external", nil })
	res, err := newProvisioner(reg).Provision(context.Background(), "host", config.MapOf("redis", "redis://x"))
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if h, _ := res.Get("redis"); h != "local" {
		t.Fatalf("handle=%v want local", h)
	}
}

func TestProvision_FactoriesRunInDeclarationOrder(t *testing.T) {
	var trace []string
	mk := func(name string) Factory[string] {
		return func(_ context.Context, host string) (any, error) {
			trace = append(trace, name+" start")
			trace = append(trace, name+" end")
			return host + ":" + name, nil
		}
	}
	section := config.MapOf("b", mk("b"), "a", mk("a"), "c", func(host string) (any, error) { return "c", nil })
	res, err := newProvisioner(module.NewRegistry()).Provision(context.Background(), "h", section)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if want := []string{"b start", "b end", "a start", "a end"}; !reflect.DeepEqual(trace, want) {
		t.Fatalf("trace=%v", trace)
	}
	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(res.Names(), want) {
		t.Fatalf("names=%v", res.Names())
	}
	if h, _ := Lookup[string](res, "a"); h != "h:a" {
		t.Fatalf("a=%q", h)
	}
}

func TestProvision_FactoryBypassesDriver(t *testing.T) {
	reg := module.NewRegistry()
	reg.Register("crystal-node-redis", func(any) (any, error) {
		t.Fatalf("driver must not run")
		return nil, nil
	})
	section := config.MapOf("redis", Factory[string](func(context.Context, string) (any, error) { return "f", nil }))
	if _, err := newProvisioner(reg).Provision(context.Background(), "h", section); err != nil {
		t.Fatalf("Provision: %v", err)
	}
}

func TestProvision_Unsupported(t *testing.T) {
	reg := module.NewRegistry()
	reg.Register("crystal-node-notdriver", 42)
	calls := 0
	section := config.MapOf("foo", config.MapOf(), "never", Factory[string](func(context.Context, string) (any, error) {
		calls++
		return nil, nil
	}))
	_, err := newProvisioner(reg).Provision(context.Background(), "h", section)
	var ue *UnsupportedTypeError
	if !errors.As(err, &ue) || ue.Name != "foo" || ue.Found != nil {
		t.Fatalf("expected unsupported foo, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("provisioning must stop at the first failure")
	}

	_, err = newProvisioner(reg).Provision(context.Background(), "h", config.MapOf("notdriver", true))
	if !errors.As(err, &ue) || ue.Found != 42 || !strings.Contains(err.Error(), "not callable") {
		t.Fatalf("expected non-callable driver error, got %v", err)
	}
}

func TestProvision_ConnectErrorAndPanic(t *testing.T) {
	boom := errors.New("refused")
	reg := module.NewRegistry()
	reg.Register("crystal-node-pg", func(any) (any, error) { return nil, boom })
	out := NewResources()
	section := config.MapOf(
		"ok", func(string) (any, error) { return 1, nil },
		"pg", nil,
	)
	err := newProvisioner(reg).ProvisionInto(context.Background(), "h", section, out)
	var ce *ConnectError
	if !errors.As(err, &ce) || ce.Name != "pg" || !errors.Is(err, boom) {
		t.Fatalf("expected connect error, got %v", err)
	}
	if !reflect.DeepEqual(out.Names(), []string{"ok"}) {
		t.Fatalf("partial set=%v", out.Names())
	}

	section = config.MapOf("p", func(string) (any, error) { panic("kaboom") })
	_, err = newProvisioner(reg).Provision(context.Background(), "h", section)
	if !errors.As(err, &ce) || !strings.Contains(err.Error(), "kaboom") {
		t.Fatalf("expected recovered panic, got %v", err)
	}
}

func TestProvision_ResolverFailure(t *testing.T) {
	broken := module.StrategyFunc(func(context.Context, string) (module.Result, error) {
		return module.Absent, errors.New("disk on fire")
	})
	p := &Provisioner[string]{Resolver: module.NewResolver(broken), Logger: zerolog.Nop()}
	_, err := p.Provision(context.Background(), "h", config.MapOf("x", 1))
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("expected resolver error, got %v", err)
	}
	if errors.As(err, new(*UnsupportedTypeError)) {
		t.Fatalf("resolver failure is not unsupported type")
	}
}

func TestProvision_BadSection(t *testing.T) {
	_, err := newProvisioner(module.NewRegistry()).Provision(context.Background(), "h", "nope")
	if err == nil || !strings.Contains(err.Error(), "resource section") {
		t.Fatalf("expected section error, got %v", err)
	}
}

func TestProvision_Observe(t *testing.T) {
	var seen []string
	p := newProvisioner(module.NewRegistry())
	p.Observe = func(name string, _ time.Duration, err error) {
		seen = append(seen, name)
	}
	_, _ = p.Provision(context.Background(), "h", config.MapOf("a", func(string) (any, error) { return 1, nil }, "zzz", 1))
	if !reflect.DeepEqual(seen, []string{"a", "zzz"}) {
		t.Fatalf("observed=%v", seen)
	}
}
