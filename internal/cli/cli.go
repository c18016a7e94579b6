// Package cli implements the crystal command: bootstrap an application root
// once (check), keep it up behind an HTTP status surface (serve), or inspect
// its layout and configuration (paths, config).
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Config holds the resolved command-line settings.
type Config struct {
	Env         string
	Addr        string
	LogLevel    string
	LogFormat   string
	CORSOrigins []string
	Timeout     time.Duration
	ReadyWait   time.Duration
}

// exitError carries a specific exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }

func (e exitError) Unwrap() error { return e.err }

// MainWithArgs runs the CLI with args and returns the process exit code.
func MainWithArgs(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/crystal.
func Main() int { return MainWithArgs(os.Args[1:]) }

func run(args []string, stdout, stderr io.Writer) int {
	cmd := buildRootCmd(&Config{}, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(stderr, err.Error())
		if ee, ok := err.(exitError); ok {
			return ee.code
		}
		return 1
	}
	return 0
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empty
// items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
