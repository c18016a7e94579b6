package module

import (
	"context"
	"errors"
	"testing"
)

func TestFound_NilIsAbsent(t *testing.T) {
	if !Found(nil).IsAbsent() {
		t.Fatalf("Found(nil) must be absent")
	}
	r := Found(0)
	if r.IsAbsent() || r.Value() != 0 {
		t.Fatalf("Found(0) = %+v", r)
	}
}

func TestRegistry_CleansPathLocators(t *testing.T) {
	reg := NewRegistry()
	reg.Register("/app/src/init/", "hook")
	res, err := reg.Lookup(context.Background(), "/app/src/init")
	if err != nil || res.IsAbsent() || res.Value() != "hook" {
		t.Fatalf("lookup: res=%+v err=%v", res, err)
	}
	res, _ = reg.Lookup(context.Background(), "/app/src/init/pre-init")
	if !res.IsAbsent() {
		t.Fatalf("expected absent, got %+v", res)
	}
	reg.Unregister("/app/src/init")
	if got := reg.Locators(); len(got) != 0 {
		t.Fatalf("locators after unregister: %v", got)
	}
}

func TestRegistry_MustRegisterPanicsOnDuplicate(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("crystal-node-x", 1)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	reg.MustRegister("crystal-node-x", 2)
}

func TestResolver_StrategyOrder(t *testing.T) {
	first := NewRegistry()
	second := NewRegistry()
	first.Register("a", "from-first")
	second.Register("a", "from-second")
	second.Register("b", "only-second")
	r := NewResolver(first, second)

	res, err := r.TryLoad(context.Background(), "a")
	if err != nil || res.Value() != "from-first" {
		t.Fatalf("a: res=%+v err=%v", res, err)
	}
	res, err = r.TryLoad(context.Background(), "b")
	if err != nil || res.Value() != "only-second" {
		t.Fatalf("b: res=%+v err=%v", res, err)
	}
	res, err = r.TryLoad(context.Background(), "c")
	if err != nil || !res.IsAbsent() {
		t.Fatalf("c: res=%+v err=%v", res, err)
	}
}

func TestResolver_TryLoadFirst(t *testing.T) {
	reg := NewRegistry()
	reg.Register("/root/src/db/redis", "local")
	reg.Register("crystal-node-redis", "external")
	reg.Register("crystal-node-mongodb", "external-mongo")
	r := NewResolver(reg)
	ctx := context.Background()

	res, _ := r.TryLoadFirst(ctx, "/root/src/db/redis", "crystal-node-redis")
	if res.Value() != "local" {
		t.Fatalf("local override must win, got %v", res.Value())
	}
	res, _ = r.TryLoadFirst(ctx, "/root/src/db/mongodb", "crystal-node-mongodb")
	if res.Value() != "external-mongo" {
		t.Fatalf("expected fallback, got %v", res.Value())
	}
	res, _ = r.TryLoadFirst(ctx, "/root/src/db/foo", "crystal-node-foo")
	if !res.IsAbsent() {
		t.Fatalf("expected absent, got %v", res.Value())
	}
}

func TestResolver_ErrorsAreNotSwallowed(t *testing.T) {
	boom := errors.New("syntax error")
	broken := StrategyFunc(func(ctx context.Context, locator string) (Result, error) {
		if locator == "bad" {
			return Absent, boom
		}
		return Absent, nil
	})
	fallback := NewRegistry()
	fallback.Register("bad", "never reached")
	fallback.Register("good", "ok")
	r := NewResolver(broken, fallback)

	_, err := r.TryLoadFirst(context.Background(), "bad", "good")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	var le *LoadError
	if !errors.As(err, &le) || le.Locator != "bad" {
		t.Fatalf("expected LoadError for bad, got %#v", err)
	}
}
