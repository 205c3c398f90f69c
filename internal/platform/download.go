package platform

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Downloader is the plain download path: stage the bytes as a temporary
// object, hand it to the host under a file name, then revoke the object.
type Downloader interface {
	CreateObjectURL(data []byte) (string, error)
	Trigger(objectURL, filename string) error
	RevokeObjectURL(objectURL string)
}

// DirDownloader stages objects as temp files and delivers them by copying
// into a downloads directory
type DirDownloader struct {
	downloadsDir string
	tempDir      string

	mu      sync.Mutex
	objects map[string]string
}

// NewDirDownloader creates a downloader delivering into downloadsDir.
// Objects are staged under tempDir, or the system temp dir when empty.
func NewDirDownloader(downloadsDir, tempDir string) *DirDownloader {
	return &DirDownloader{
		downloadsDir: downloadsDir,
		tempDir:      tempDir,
		objects:      make(map[string]string),
	}
}

const objectScheme = "blob:"

// DeliveryError reports a staged object that could not be delivered. The
// staged file is still on disk at StagedPath until the object is revoked.
type DeliveryError struct {
	StagedPath string
	Err        error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("download not delivered, staged at %s: %v", e.StagedPath, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// CreateObjectURL stages data in a temporary file
func (d *DirDownloader) CreateObjectURL(data []byte) (string, error) {
	f, err := os.CreateTemp(d.tempDir, "resume-tailor-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp object: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp object: %w", err)
	}

	url := objectScheme + filepath.Base(f.Name())
	d.mu.Lock()
	d.objects[url] = f.Name()
	d.mu.Unlock()
	return url, nil
}

// Trigger copies the staged object into the downloads directory. An
// existing file with the same name gets a numeric suffix, as browsers do.
// Failures after staging are returned as *DeliveryError.
func (d *DirDownloader) Trigger(objectURL, filename string) error {
	d.mu.Lock()
	src, ok := d.objects[objectURL]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown object %s", objectURL)
	}

	dest, err := d.deliver(src, filename)
	if err != nil {
		return &DeliveryError{StagedPath: src, Err: err}
	}
	slog.Debug("download delivered", "object", objectURL, "path", dest)
	return nil
}

func (d *DirDownloader) deliver(src, filename string) (dest string, err error) {
	if d.downloadsDir == "" {
		return "", fmt.Errorf("no downloads directory configured")
	}
	if err := os.MkdirAll(d.downloadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create downloads directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open temp object: %w", err)
	}
	defer in.Close()

	out, dest, err := createUnique(d.downloadsDir, filename)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close download: %w", cerr)
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("failed to write download: %w", err)
	}
	return dest, nil
}

// RevokeObjectURL removes the staged temp file
func (d *DirDownloader) RevokeObjectURL(objectURL string) {
	d.mu.Lock()
	path, ok := d.objects[objectURL]
	delete(d.objects, objectURL)
	d.mu.Unlock()

	if !ok {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove temp object", "path", path, "error", err)
	}
}

// Pending returns the number of objects not yet revoked
func (d *DirDownloader) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.objects)
}

func createUnique(dir, filename string) (*os.File, string, error) {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for i := 0; i < 1000; i++ {
		name := filename
		if i > 0 {
			name = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", fmt.Errorf("failed to create download: %w", err)
		}
	}
	return nil, "", fmt.Errorf("too many downloads named %s", filename)
}
