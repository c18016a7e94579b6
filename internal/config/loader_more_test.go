package config

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingAndUnsupported(t *testing.T) {
	d := t.TempDir()
	if _, err := Load(filepath.Join(d, "config.yaml")); err == nil {
		t.Fatalf("expected error for missing document")
	}
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	p := writeTempFile(t, d, "config.ini", "[db]\nredis=redis://h\n")
	if _, err := Load(p); err == nil || !strings.Contains(err.Error(), "unsupported config extension") {
		t.Fatalf("expected extension error, got %v", err)
	}
}

func TestDecode_NonObjectTopLevel(t *testing.T) {
	cases := map[string]string{
		"list.json":   `["redis","postgres"]`,
		"scalar.json": `"redis://h:6379"`,
		"list.yaml":   "- redis\n- postgres\n",
		"scalar.yml":  "redis://h:6379\n",
	}
	for name, body := range cases {
		if _, err := Decode(name, []byte(body)); err == nil || !strings.Contains(err.Error(), "want an object") {
			t.Fatalf("%s: expected non-object error, got %v", name, err)
		}
	}
	for _, name := range []string{"null.json", "null.yaml"} {
		body := "null"
		if strings.HasSuffix(name, ".yaml") {
			body = "~\n"
		}
		m, err := Decode(name, []byte(body))
		if err != nil || m.Len() != 0 {
			t.Fatalf("%s: null document should be empty, got %v err=%v", name, m, err)
		}
	}
}

func TestLoader_MalformedOverrideIsFatal(t *testing.T) {
	overrides := map[string]string{
		"production.yaml": "db:\n  redis: [redis://unclosed\n",
		"production.json": `{ "db": { "redis": } }`,
		"production.toml": "[db.redis\nurl = \"redis://h\"\n",
	}
	for file, body := range overrides {
		d := t.TempDir()
		writeTempFile(t, d, "src/config.yaml", "db:\n  redis: redis://base\n")
		writeTempFile(t, d, "src/config/"+file, body)
		dir := filepath.Join(d, "src", "config")

		_, err := newFileLoader(nil).Load(context.Background(), dir, "production")
		var le *LoadError
		if !errors.As(err, &le) {
			t.Fatalf("%s: expected LoadError, got %v", file, err)
		}
		if le.Locator != filepath.Join(dir, "production") {
			t.Fatalf("%s: locator=%s", file, le.Locator)
		}
	}
}

func TestLoader_NonObjectOverrideIsFatal(t *testing.T) {
	d := t.TempDir()
	writeTempFile(t, d, "src/config/staging.json", `["db"]`)
	_, err := newFileLoader(nil).Load(context.Background(), filepath.Join(d, "src", "config"), "staging")
	var le *LoadError
	if !errors.As(err, &le) || !strings.Contains(err.Error(), "want an object") {
		t.Fatalf("expected LoadError for non-object override, got %v", err)
	}
}

func TestLoader_ScalarResourceSectionLoads(t *testing.T) {
	// The loader does not interpret sections; a scalar "db" is reported
	// later by the provisioner.
	d := t.TempDir()
	writeTempFile(t, d, "src/config.toml", "db = \"redis\"\n")
	m, err := newFileLoader(nil).Load(context.Background(), filepath.Join(d, "src", "config"), "dev")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v, _ := m.Get("db"); v != "redis" {
		t.Fatalf("db=%v", v)
	}
}
