// Package safefile opens log and history files without following symlinks
// or blocking on special files.
package safefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotRegularFile is returned for symlinks, FIFOs, devices, sockets and
// directories.
var ErrNotRegularFile = errors.New("not a regular file")

// OpenRegular opens path read-only after checking, both before and after
// the open, that it names a regular file.
//
// The caller must close the returned file.
func OpenRegular(path string) (*os.File, os.FileInfo, error) {
	linkInfo, err := os.Lstat(path)
	if err != nil {
		return nil, nil, err
	}
	if !linkInfo.Mode().IsRegular() {
		return nil, nil, ErrNotRegularFile
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	// The path may have been swapped between Lstat and Open.
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotRegularFile
	}
	return f, info, nil
}

// OpenAppend opens path for appending, creating it and any missing parent
// directories. An existing path must be a regular file.
//
// The returned info describes the file after opening, so a zero Size means
// the caller is the first writer.
func OpenAppend(path string) (*os.File, os.FileInfo, error) {
	if linkInfo, err := os.Lstat(path); err == nil {
		if !linkInfo.Mode().IsRegular() {
			return nil, nil, ErrNotRegularFile
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, nil, err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotRegularFile
	}
	return f, info, nil
}
