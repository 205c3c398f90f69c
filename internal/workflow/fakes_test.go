package workflow

import (
	"context"
	"sync"

	"github.com/fmuoria/resume-tailor/internal/models"
	"github.com/fmuoria/resume-tailor/internal/platform"
)

type fakeBackend struct {
	mu       sync.Mutex
	profiles []models.Profile
	listErr  error
	pdf      []byte
	genErr   error
	calls    []models.JobSubmission
	block    chan struct{}
	started  chan struct{}
}

func (f *fakeBackend) Profiles(ctx context.Context) ([]models.Profile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.profiles, nil
}

func (f *fakeBackend) GeneratePDF(ctx context.Context, job models.JobSubmission) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, job)
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.genErr != nil {
		return nil, f.genErr
	}
	return f.pdf, nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeFolders struct {
	mu         sync.Mutex
	handles    map[string]models.FolderHandle
	getErr     error
	setErr     error
	loadAllIDs []string
}

func newFakeFolders() *fakeFolders {
	return &fakeFolders{handles: map[string]models.FolderHandle{}}
}

func (f *fakeFolders) Get(ctx context.Context, id string) (*models.FolderHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	h, ok := f.handles[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (f *fakeFolders) Set(ctx context.Context, id string, h models.FolderHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.handles[id] = h
	return nil
}

func (f *fakeFolders) Clear(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handles, id)
	return nil
}

func (f *fakeFolders) LoadAll(ctx context.Context, ids []string) map[string]*models.FolderHandle {
	f.mu.Lock()
	f.loadAllIDs = append([]string(nil), ids...)
	f.mu.Unlock()

	out := make(map[string]*models.FolderHandle, len(ids))
	for _, id := range ids {
		h, _ := f.Get(ctx, id)
		out[id] = h
	}
	return out
}

// fakeDirectory records writes in memory
type fakeDirectory struct {
	perm     platform.Permission
	permErr  error
	writeErr error
	files    map[string][]byte
}

func (d *fakeDirectory) RequestPermission(ctx context.Context) (platform.Permission, error) {
	return d.perm, d.permErr
}

func (d *fakeDirectory) WriteFile(ctx context.Context, name string, data []byte) error {
	if d.writeErr != nil {
		return d.writeErr
	}
	if d.files == nil {
		d.files = map[string][]byte{}
	}
	d.files[name] = append([]byte(nil), data...)
	return nil
}

type fakeOpener struct {
	dirs map[string]*fakeDirectory
	err  error
}

func (o *fakeOpener) OpenDirectory(h models.FolderHandle) (platform.Directory, error) {
	if o.err != nil {
		return nil, o.err
	}
	d, ok := o.dirs[h.Path]
	if !ok {
		return nil, platform.ErrStaleHandle
	}
	return d, nil
}

type fakePicker struct {
	handle models.FolderHandle
	err    error
}

func (p *fakePicker) PickDirectory(ctx context.Context) (models.FolderHandle, error) {
	return p.handle, p.err
}

type fakeSaveDialog struct {
	name   string
	err    error
	calls  int
	saved  []byte
	prompt string
}

func (s *fakeSaveDialog) SaveFile(ctx context.Context, suggested string, data []byte) (string, error) {
	s.calls++
	s.prompt = suggested
	if s.err != nil {
		return "", s.err
	}
	s.saved = data
	if s.name == "" {
		return suggested, nil
	}
	return s.name, nil
}

type fakeDownloader struct {
	mu        sync.Mutex
	created   int
	triggered []string
	revoked    chan string
	createErr  error
	triggerErr error
}

func newFakeDownloader() *fakeDownloader {
	return &fakeDownloader{revoked: make(chan string, 4)}
}

func (d *fakeDownloader) CreateObjectURL(data []byte) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.createErr != nil {
		return "", d.createErr
	}
	d.created++
	return "blob:test-object", nil
}

func (d *fakeDownloader) Trigger(url, filename string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.triggered = append(d.triggered, filename)
	return d.triggerErr
}

func (d *fakeDownloader) RevokeObjectURL(url string) {
	d.revoked <- url
}

func (d *fakeDownloader) createdCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []models.HistoryEntry
}

func (h *fakeHistory) Record(ctx context.Context, e models.HistoryEntry) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	return int64(len(h.entries)), nil
}
