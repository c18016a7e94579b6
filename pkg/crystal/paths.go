package crystal

import (
	"path/filepath"
	"strings"

	"crystal/internal/common/fsutil"
	"crystal/pkg/types"
)

// Paths is the directory layout of an application. Every member is derived
// from Root.
type Paths struct {
	Root   string `json:"root"`
	Src    string `json:"src"`
	Config string `json:"config"`
	Init   string `json:"init"`
	DB     string `json:"db"`
}

// DerivePaths resolves root to an absolute path and lays out the standard
// directories beneath it. An empty root means the working directory.
func DerivePaths(root string) (Paths, error) {
	abs, err := fsutil.Abs(root)
	if err != nil {
		return Paths{}, err
	}
	src := filepath.Join(abs, "src")
	return Paths{
		Root:   abs,
		Src:    src,
		Config: filepath.Join(src, "config"),
		Init:   filepath.Join(src, "init"),
		DB:     filepath.Join(src, "db"),
	}, nil
}

// Rel returns p relative to Root with forward slashes, or p unchanged when it
// lies outside Root.
func (p Paths) Rel(path string) string {
	if p.Root == "" {
		return path
	}
	rel, err := filepath.Rel(p.Root, path)
	if err != nil {
		return path
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return path
	}
	return rel
}

func (p Paths) toAPI() types.Paths {
	return types.Paths{Root: p.Root, Src: p.Src, Config: p.Config, Init: p.Init, DB: p.DB}
}
