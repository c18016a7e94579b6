package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	// Set a deterministic HOME for the duration of this test so we never skip.
	origHome, hadHome := os.LookupEnv("HOME")
	origUserProfile, hadUserProfile := os.LookupEnv("USERPROFILE")
	t.Cleanup(func() {
		if hadHome {
			_ = os.Setenv("HOME", origHome)
		} else {
			_ = os.Unsetenv("HOME")
		}
		if hadUserProfile {
			_ = os.Setenv("USERPROFILE", origUserProfile)
		} else {
			_ = os.Unsetenv("USERPROFILE")
		}
	})

	home := t.TempDir()
	// Configure both env vars for cross-platform behavior of os.UserHomeDir.
	_ = os.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		_ = os.Setenv("USERPROFILE", home)
	}
	// raw path unaffected
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// empty path
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// ~ expansion
	p, err := ExpandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	// ~/subdir
	sub := "test-sub"
	exp, err := ExpandHome("~/" + sub)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if runtime.GOOS == "windows" {
		if filepath.Base(exp) != sub {
			t.Fatalf("unexpected expanded path: %q", exp)
		}
	} else {
		expected := filepath.Join(home, sub)
		if exp != expected {
			t.Fatalf("expected %q, got %q", expected, exp)
		}
	}
}

func TestAbs(t *testing.T) {
	got, err := Abs("some/rel")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Fatalf("expected absolute path, got %q", got)
	}
	wd, _ := os.Getwd()
	if got != filepath.Join(wd, "some", "rel") {
		t.Fatalf("unexpected abs: %q", got)
	}
	if got, err := Abs(""); err != nil || got != wd {
		t.Fatalf("empty path: got %q err=%v", got, err)
	}
}

func TestProbe(t *testing.T) {
	d := t.TempDir()
	f := filepath.Join(d, "f.yaml")
	if err := os.WriteFile(f, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cases := []struct {
		path string
		want Kind
	}{
		{d, Dir},
		{f, File},
		{filepath.Join(d, "missing"), Missing},
		{filepath.Join(f, "under-a-file"), Missing},
	}
	for _, c := range cases {
		got, err := Probe(c.path)
		if err != nil {
			t.Fatalf("probe %s: %v", c.path, err)
		}
		if got != c.want {
			t.Fatalf("probe %s: got %v want %v", c.path, got, c.want)
		}
	}
	if !PathExists(d) || PathExists(filepath.Join(d, "missing")) {
		t.Fatalf("PathExists mismatch")
	}
}
