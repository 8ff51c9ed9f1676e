package tools

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// FileSystem is the filesystem collaborator used by /ls and /cat.
type FileSystem interface {
	ReadDir(name string) ([]fs.DirEntry, error)
	Stat(name string) (fs.FileInfo, error)
	Open(name string) (io.ReadCloser, error)
}

// OSFileSystem is the host filesystem.
type OSFileSystem struct{}

func (OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }
func (OSFileSystem) Stat(name string) (fs.FileInfo, error)      { return os.Stat(name) }
func (OSFileSystem) Open(name string) (io.ReadCloser, error)    { return os.Open(name) }

// ListDir lists at most the configured number of entries of path, sorted
// by name, each marked as a directory or a file with its size.
func (t *Toolbox) ListDir(path string) (string, error) {
	if path == "" {
		path = "."
	}

	info, err := t.fs.Stat(path)
	if err != nil {
		return "", describeFSError(path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", path)
	}

	entries, err := t.fs.ReadDir(path)
	if err != nil {
		return "", describeFSError(path, err)
	}
	if len(entries) == 0 {
		return fmt.Sprintf("Directory %s is empty.", path), nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	shown := entries
	if len(shown) > t.listLimit {
		shown = shown[:t.listLimit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Contents of %s:\n", path)
	for _, e := range shown {
		if e.IsDir() {
			fmt.Fprintf(&b, "  [DIR]  %s/\n", e.Name())
			continue
		}

		size := "? bytes"
		if fi, err := e.Info(); err == nil {
			size = fmt.Sprintf("%d bytes", fi.Size())
		}
		fmt.Fprintf(&b, "  [FILE] %s (%s)\n", e.Name(), size)
	}
	if rest := len(entries) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "  ... and %d more entries\n", rest)
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// ReadPrefix returns up to the configured byte budget from the start of the
// file at path. Truncated output ends with an explicit marker.
func (t *Toolbox) ReadPrefix(path string) (string, error) {
	info, err := t.fs.Stat(path)
	if err != nil {
		return "", describeFSError(path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, use %sls", path, Prefix)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", path)
	}

	f, err := t.fs.Open(path)
	if err != nil {
		return "", describeFSError(path, err)
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, int64(t.readLimit)))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s (%d bytes) ---\n", path, info.Size())
	b.Write(buf)
	if info.Size() > int64(len(buf)) {
		fmt.Fprintf(&b, "\n... (truncated, %d of %d bytes shown)", len(buf), info.Size())
	}
	return b.String(), nil
}

func describeFSError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("path not found: %s: %w", path, fs.ErrNotExist)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("permission denied: %s: %w", path, fs.ErrPermission)
	default:
		return err
	}
}
