// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/convertd/pkg/types"
)

// Workspace is the per-request staging area on disk. Inputs are written
// under in/, handlers produce outputs under out/, and Close removes the
// whole tree. Every request gets its own workspace, so concurrent
// connections never collide.
type Workspace struct {
	dir    string
	inputs []string
}

// NewWorkspace creates a workspace under baseDir (the system temp
// directory when empty). The directory name carries a fresh UUID; request
// IDs come from the client and are not trusted for uniqueness.
func NewWorkspace(baseDir string) (*Workspace, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	dir := filepath.Join(baseDir, "convertd-"+uuid.NewString())
	for _, sub := range []string{"in", "out"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("creating workspace %s: %w", dir, err)
		}
	}
	return &Workspace{dir: dir}, nil
}

// Stage writes the request files into in/ and records their paths. File
// names are sanitized to a flat, safe form before touching the disk, and
// duplicates get a numeric suffix so no input overwrites another.
func (w *Workspace) Stage(files []types.File) error {
	seen := make(map[string]bool, len(files))
	for i, f := range files {
		name := sanitizeName(f.Name)
		if name == "" {
			name = fmt.Sprintf("input_%03d", i+1)
		}
		if seen[name] {
			ext := filepath.Ext(name)
			stem := strings.TrimSuffix(name, ext)
			for n := 2; seen[name]; n++ {
				name = fmt.Sprintf("%s_%d%s", stem, n, ext)
			}
		}
		seen[name] = true

		path := filepath.Join(w.dir, "in", name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return fmt.Errorf("staging %s: %w", f.Name, err)
		}
		w.inputs = append(w.inputs, path)
	}
	return nil
}

// Inputs returns the staged input paths in request order.
func (w *Workspace) Inputs() []string {
	return w.inputs
}

// Input returns the first staged input path.
func (w *Workspace) Input() string {
	return w.inputs[0]
}

// OutDir returns the output directory.
func (w *Workspace) OutDir() string {
	return filepath.Join(w.dir, "out")
}

// OutPath returns the path for a named output file.
func (w *Workspace) OutPath(name string) string {
	return filepath.Join(w.dir, "out", name)
}

// CollectFile reads one produced file back into memory under the given
// result name.
func (w *Workspace) CollectFile(path, name string) (types.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.File{}, fmt.Errorf("collecting %s: %w", name, err)
	}
	return types.File{Name: name, Data: data}, nil
}

// CollectGlob reads every file in out/ matching pattern, sorted by name.
func (w *Workspace) CollectGlob(pattern string) ([]types.File, error) {
	matches, err := filepath.Glob(filepath.Join(w.dir, "out", pattern))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}
	sort.Strings(matches)

	files := make([]types.File, 0, len(matches))
	for _, m := range matches {
		f, err := w.CollectFile(m, filepath.Base(m))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Close removes the workspace tree.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.dir)
}

// sanitizeName strips directory components and replaces every character
// outside [a-zA-Z0-9._-] with an underscore. Mirrors the treatment of
// client-supplied filenames required before writing them to disk.
func sanitizeName(name string) string {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	s := strings.TrimLeft(b.String(), ".")
	return s
}

// baseName returns a file name without its extension.
func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}
