package config

import (
	"context"
	"path/filepath"

	"crystal/internal/common/fsutil"
	"crystal/internal/module"
)

// Files is a module.Strategy that finds configuration documents on disk.
// For a locator P it tries P+ext for each of Extensions, then, when P is a
// directory, P/index+ext. The first existing file is decoded; a file that
// fails to decode is an error, a missing one is Absent.
type Files struct{}

// Lookup implements module.Strategy.
func (Files) Lookup(_ context.Context, locator string) (module.Result, error) {
	if !filepath.IsAbs(locator) {
		// Bare names are package references, not files.
		return module.Absent, nil
	}
	if p, err := firstFile(locator); err != nil || p != "" {
		if err != nil {
			return module.Absent, err
		}
		return decodeFile(p)
	}
	kind, err := fsutil.Probe(locator)
	if err != nil {
		return module.Absent, err
	}
	if kind != fsutil.Dir {
		return module.Absent, nil
	}
	p, err := firstFile(filepath.Join(locator, "index"))
	if err != nil || p == "" {
		return module.Absent, err
	}
	return decodeFile(p)
}

func firstFile(base string) (string, error) {
	for _, ext := range Extensions {
		p := base + ext
		kind, err := fsutil.Probe(p)
		if err != nil {
			return "", err
		}
		if kind == fsutil.File {
			return p, nil
		}
	}
	return "", nil
}

func decodeFile(p string) (module.Result, error) {
	m, err := Load(p)
	if err != nil {
		return module.Absent, err
	}
	return module.Found(m), nil
}
