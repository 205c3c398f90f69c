package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fmuoria/resume-tailor/internal/models"
)

// Permission is the outcome of a permission request on a directory
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionPrompt  Permission = "prompt"
)

// Directory is a writable location behind a FolderHandle
type Directory interface {
	// RequestPermission asks for readwrite access. An error means the
	// handle itself is unusable, not that access was refused.
	RequestPermission(ctx context.Context) (Permission, error)
	// WriteFile creates or overwrites name inside the directory
	WriteFile(ctx context.Context, name string, data []byte) error
}

// DirectoryOpener resolves stored handles into directories
type DirectoryOpener interface {
	OpenDirectory(handle models.FolderHandle) (Directory, error)
}

// DirectoryPicker lets the user choose a directory. Dismissal returns an
// error matching models.ErrCancelled.
type DirectoryPicker interface {
	PickDirectory(ctx context.Context) (models.FolderHandle, error)
}

// SaveDialog asks the user where to save a file and writes it there.
// It returns the chosen file name. Dismissal returns an error matching
// models.ErrCancelled.
type SaveDialog interface {
	SaveFile(ctx context.Context, suggestedName string, data []byte) (string, error)
}

// ErrStaleHandle is returned when a stored directory no longer exists
var ErrStaleHandle = errors.New("directory handle is no longer valid")

// LocalFS opens handles as directories on the local file system
type LocalFS struct{}

// HandleForPath builds a folder handle for a local directory
func HandleForPath(path string) models.FolderHandle {
	path = filepath.Clean(path)
	return models.FolderHandle{Path: path, Name: filepath.Base(path)}
}

// OpenDirectory resolves a handle without touching the file system;
// problems surface on RequestPermission or WriteFile
func (LocalFS) OpenDirectory(handle models.FolderHandle) (Directory, error) {
	if handle.Path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrStaleHandle)
	}
	return &LocalDirectory{path: handle.Path}, nil
}

// LocalDirectory is a directory on the local file system
type LocalDirectory struct {
	path string
}

// NewLocalDirectory wraps a local path
func NewLocalDirectory(path string) *LocalDirectory {
	return &LocalDirectory{path: path}
}

// RequestPermission checks that the directory still exists and that a file
// can be created in it
func (d *LocalDirectory) RequestPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrStaleHandle, d.path)
		}
		if errors.Is(err, fs.ErrPermission) {
			return PermissionDenied, nil
		}
		return "", fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrStaleHandle, d.path)
	}

	probe, err := os.CreateTemp(d.path, ".resume-tailor-probe-*")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return PermissionDenied, nil
		}
		return "", fmt.Errorf("failed to probe directory: %w", err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	return PermissionGranted, nil
}

// WriteFile writes data to name inside the directory, replacing any existing file
func (d *LocalDirectory) WriteFile(ctx context.Context, name string, data []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("invalid file name %q", name)
	}

	file, err := os.Create(filepath.Join(d.path, name))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	if _, err := io.Copy(file, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
