package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starford/jotter/internal/checksum"
)

// FS implements Provider backed by a local directory.
type FS struct {
	root string // absolute path
	fsys fs.FS
}

// NewFS creates a provider rooted at dir, creating it if needed.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs, fsys: os.DirFS(abs)}, nil
}

// Root returns the absolute root directory.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the root and rejects any
// result that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes root: %s", rel)
	}
	return abs, nil
}

// Glob returns the regular files matching pattern, in lexical order.
func (f *FS) Glob(pattern string) ([]Entry, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("storage: invalid pattern %q", pattern)
	}
	matches, err := doublestar.Glob(f.fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("storage: glob: %w", err)
	}
	slices.Sort(matches)
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), ".jotter-tmp-") {
			continue
		}
		data, err := fs.ReadFile(f.fsys, m)
		if err != nil {
			return nil, fmt.Errorf("storage: read %s: %w", m, err)
		}
		info, err := fs.Stat(f.fsys, m)
		if err != nil {
			return nil, fmt.Errorf("storage: stat %s: %w", m, err)
		}
		out = append(out, Entry{
			Path:      m,
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// Read returns the raw bytes of a file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file, fsync, rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".jotter-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
