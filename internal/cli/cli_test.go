package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"crystal/pkg/types"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", name, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	code := run(args, &out, &errb)
	return code, out.String(), errb.String()
}

func TestPathsCommand(t *testing.T) {
	root := t.TempDir()
	code, out, stderr := runCLI(t, "paths", root)
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, stderr)
	}
	var p map[string]string
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("json: %v (%s)", err, out)
	}
	if p["root"] != root || p["db"] != filepath.Join(root, "src", "db") {
		t.Fatalf("paths=%v", p)
	}
}

func TestConfigCommand_EnvFromFlagAndVariable(t *testing.T) {
	root := t.TempDir()
	writeTempFile(t, root, "src/config/index.yaml", "name: base\nport: 1\n")
	writeTempFile(t, root, "src/config/production.yaml", "port: 2\n")
	writeTempFile(t, root, "src/config/staging.toml", "port = 3\n")

	code, out, stderr := runCLI(t, "config", root, "--env", "production")
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, stderr)
	}
	if !strings.Contains(out, `"port": 2`) || !strings.Contains(out, `"name": "base"`) {
		t.Fatalf("config=%s", out)
	}
	if strings.Index(out, `"name"`) > strings.Index(out, `"port"`) {
		t.Fatalf("declaration order lost: %s", out)
	}

	t.Setenv("CRYSTAL_ENV", "staging")
	code, out, _ = runCLI(t, "config", root)
	if code != 0 || !strings.Contains(out, `"port": 3`) {
		t.Fatalf("code=%d config=%s", code, out)
	}
}

func TestConfigCommand_BrokenDocument(t *testing.T) {
	root := t.TempDir()
	writeTempFile(t, root, "src/config.json", "{nope")
	code, _, stderr := runCLI(t, "config", root)
	if code != 1 || !strings.Contains(stderr, "config") {
		t.Fatalf("code=%d stderr=%s", code, stderr)
	}
}

func TestCheckCommand_Ready(t *testing.T) {
	root := t.TempDir()
	code, out, stderr := runCLI(t, "check", root, "--env", "test", "--log-level", "error")
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, stderr)
	}
	var st types.StatusResponse
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("json: %v (%s)", err, out)
	}
	if !st.Ready || st.Env != "test" || st.Paths.Root != root {
		t.Fatalf("status=%+v", st)
	}
}

func TestCheckCommand_Failure(t *testing.T) {
	root := t.TempDir()
	writeTempFile(t, root, "src/config.yaml", "db:\n  nope: {}\n")
	code, out, stderr := runCLI(t, "check", root, "--log-level", "error")
	if code != 1 {
		t.Fatalf("code=%d", code)
	}
	if !strings.Contains(stderr, "bootstrap failed") || !strings.Contains(stderr, `"nope"`) {
		t.Fatalf("stderr=%s", stderr)
	}
	var st types.StatusResponse
	if err := json.Unmarshal([]byte(out), &st); err != nil || st.State != "failed" || st.Phase != "resources" {
		t.Fatalf("status=%+v err=%v", st, err)
	}
}

func TestUnknownCommand(t *testing.T) {
	if code, _, _ := runCLI(t, "frobnicate"); code != 1 {
		t.Fatalf("code=%d", code)
	}
	if code, _, _ := runCLI(t, "paths", "a", "b"); code != 1 {
		t.Fatalf("extra args must fail, code=%d", code)
	}
}

func TestServe_StopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{Addr: "127.0.0.1:0", ReadyWait: time.Second, CORSOrigins: []string{"https://example.com"}}
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, t.TempDir(), newLogger("error", "json", &bytes.Buffer{})) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("serve did not stop")
	}
}

func TestServe_ListenError(t *testing.T) {
	cfg := &Config{Addr: "127.0.0.1:-1"}
	err := serve(context.Background(), cfg, t.TempDir(), newLogger("error", "json", &bytes.Buffer{}))
	if err == nil || !strings.Contains(err.Error(), "server error") {
		t.Fatalf("expected listen error, got %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("WARN", "json", &buf)
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, `"message":"shown"`) {
		t.Fatalf("json out=%q", out)
	}

	buf.Reset()
	l = newLogger("bogus", "console", &buf)
	l.Info().Msg("console line")
	if out := buf.String(); !strings.Contains(out, "console line") || strings.HasPrefix(out, "{") {
		t.Fatalf("console out=%q", out)
	}
}
