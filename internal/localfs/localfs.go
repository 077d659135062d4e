// Package localfs holds the local file operations the CLI performs around transfers.
package localfs

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoMatch is returned when no file in a directory has the wanted extension.
var ErrNoMatch = errors.New("no matching file")

// expandTilde expands ~ to home directory.
// Returns the path unchanged if it doesn't start with ~/.
func expandTilde(p string) (string, error) {
	if !strings.HasPrefix(p, "~/") {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand home dir: %w", err)
	}

	return filepath.Join(home, p[2:]), nil
}

// ResolvePath expands ~/ and makes relative paths absolute against baseDir.
func ResolvePath(p, baseDir string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if strings.HasPrefix(p, "~/") {
		return expandTilde(p)
	}
	if filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Join(baseDir, p), nil
}

// ReadFile reads a whole local file.
func ReadFile(p string) ([]byte, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// WriteFile creates or overwrites a local file.
func WriteFile(p string, data []byte) error {
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// Entry is a local file with its modification time.
type Entry struct {
	Name    string
	ModTime time.Time
}

// List returns the regular files in dir whose name ends with ext.
func List(dir, ext string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !HasExt(de.Name(), ext) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", de.Name(), err)
		}
		entries = append(entries, Entry{Name: de.Name(), ModTime: info.ModTime()})
	}
	return entries, nil
}

// Newest returns the most recently modified file in dir ending with ext.
func Newest(dir, ext string) (Entry, error) {
	entries, err := List(dir, ext)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("%w: no %s file in %s", ErrNoMatch, ext, dir)
	}
	newest := entries[0]
	for _, e := range entries[1:] {
		if e.ModTime.After(newest.ModTime) {
			newest = e
		}
	}
	return newest, nil
}

// HasExt reports whether name ends with ext, ignoring case.
func HasExt(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext))
}

// RemoteJoin joins device path elements; device paths always use '/'.
func RemoteJoin(elem ...string) string {
	return path.Join(elem...)
}

// RemoteBase returns the last element of a device path.
func RemoteBase(p string) string {
	return path.Base(p)
}
