// Package resource loads table text from local files and URLs and writes
// rendered output back to disk.
package resource

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Handle is scoped access to one local file. Callers must Close it.
type Handle struct {
	path string
	file *os.File
}

// Open acquires a handle on path. Missing files and permission failures
// are reported as KindInaccessibleLocal.
func Open(path string) (*Handle, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided by design
	if err != nil {
		return nil, &Error{Kind: KindInaccessibleLocal, Location: path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &Error{Kind: KindInaccessibleLocal, Location: path, Err: err}
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, &Error{Kind: KindInaccessibleLocal, Location: path, Err: errIsDir}
	}
	return &Handle{path: path, file: f}, nil
}

// Path returns the path the handle was opened with.
func (h *Handle) Path() string {
	return h.path
}

// Text reads the whole file and decodes it as UTF-8.
func (h *Handle) Text() (string, error) {
	if h.file == nil {
		return "", &Error{Kind: KindInaccessibleLocal, Location: h.path, Err: fs.ErrClosed}
	}
	data, err := io.ReadAll(h.file)
	if err != nil {
		return "", &Error{Kind: KindInaccessibleLocal, Location: h.path, Err: err}
	}
	text, ok := decode(data)
	if !ok {
		return "", &Error{Kind: KindInvalidLocal, Location: h.path, Raw: data, Err: errNotUTF8}
	}
	return text, nil
}

// Close releases the handle. It is safe to call more than once.
func (h *Handle) Close() error {
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	return err
}

// ReadFile opens path, decodes it and releases the handle.
func ReadFile(path string) (text string, err error) {
	h, err := Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return h.Text()
}

// WriteFile writes data to path through a temporary file in the same
// directory, so readers never observe a partial image.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil { //nolint:gosec // output images are meant to be readable
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// IsNotExist reports whether err means a local resource does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
