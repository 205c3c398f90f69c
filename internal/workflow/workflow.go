package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fmuoria/resume-tailor/internal/logger"
	"github.com/fmuoria/resume-tailor/internal/models"
	"github.com/fmuoria/resume-tailor/internal/platform"
)

// DefaultRevokeDelay is how long a download object lives after being triggered
const DefaultRevokeDelay = 100 * time.Millisecond

const (
	msgSelectProfile   = "You must select a profile."
	msgBusy            = "A submission is already in progress."
	msgFolderSaved     = "PDF saved automatically to folder for this profile: %s"
	msgFolderDenied    = "No write permission for this profile's folder."
	msgFolderFallback  = "Failed to save to folder. Falling back to Save As/Download."
	msgDialogSaved     = "PDF saved: %s"
	msgDownloaded      = "PDF downloaded: %s"
	msgDownloadFailed  = "Failed to download PDF."
	msgDownloadKept    = "Could not copy the PDF to the downloads folder. It was kept at: %s"
	msgFolderSet       = "Save folder set for this profile."
	msgFolderNoPerm    = "No permission. Try again."
	msgFolderCancelled = "Folder selection cancelled."
	msgFolderNoSupport = "Choosing a save folder is not supported on this system."
	msgFolderStoreFail = "Failed to remember the save folder."
	msgFolderCleared   = "Save folder preference cleared for this profile."
	msgFolderClearFail = "Failed to clear the save folder preference."
	msgProfilesFailed  = "Could not load profiles. "
)

// Generator produces the tailored PDF for a submission
type Generator interface {
	GeneratePDF(ctx context.Context, job models.JobSubmission) ([]byte, error)
}

// ProfileSource lists the user's profiles
type ProfileSource interface {
	Profiles(ctx context.Context) ([]models.Profile, error)
}

// FolderStore persists per-profile folder preferences
type FolderStore interface {
	Get(ctx context.Context, profileID string) (*models.FolderHandle, error)
	Set(ctx context.Context, profileID string, handle models.FolderHandle) error
	Clear(ctx context.Context, profileID string) error
	LoadAll(ctx context.Context, profileIDs []string) map[string]*models.FolderHandle
}

// HistoryRecorder keeps a log of finished submissions
type HistoryRecorder interface {
	Record(ctx context.Context, entry models.HistoryEntry) (int64, error)
}

// Platform bundles the host features used to persist the generated file.
// Nil members count as unsupported.
type Platform struct {
	Capabilities platform.Capabilities
	Directories  platform.DirectoryOpener
	Picker       platform.DirectoryPicker
	SaveDialog   platform.SaveDialog
	Downloader   platform.Downloader
}

// Options configures a Workflow
type Options struct {
	Profiles  ProfileSource
	Generator Generator
	Folders   FolderStore
	History   HistoryRecorder
	Platform  Platform

	// RevokeDelay defaults to DefaultRevokeDelay
	RevokeDelay time.Duration
	// OnStateChange is called after every state transition, off the lock
	OnStateChange func(State)
}

// Request is the raw form input for a submission
type Request struct {
	ProfileID      string
	Company        string
	Role           string
	JobDescription string
}

// Workflow drives job submissions and the folder preferences they use
type Workflow struct {
	opts Options

	mu       sync.Mutex
	caps     platform.Capabilities
	profiles []models.Profile
	handles  map[string]*models.FolderHandle
	state    State
}

// New creates a workflow
func New(opts Options) *Workflow {
	if opts.RevokeDelay <= 0 {
		opts.RevokeDelay = DefaultRevokeDelay
	}
	caps := opts.Platform.Capabilities
	if opts.Platform.Directories == nil {
		caps.DirectoryAccess = platform.Unsupported
	}
	if opts.Platform.SaveDialog == nil {
		caps.SaveDialog = platform.Unsupported
	}
	return &Workflow{
		opts:    opts,
		caps:    caps,
		handles: make(map[string]*models.FolderHandle),
	}
}

// Capabilities returns the host capabilities in effect
func (w *Workflow) Capabilities() platform.Capabilities {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.caps
}

// State returns the current submission state
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Profiles returns the loaded profiles
func (w *Workflow) Profiles() []models.Profile {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Profile(nil), w.profiles...)
}

// Folder returns the remembered folder for a profile, or nil
func (w *Workflow) Folder(profileID string) *models.FolderHandle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handles[profileID]
}

// LoadProfiles fetches profiles and, when folders can be used, hydrates the
// remembered folder of every profile
func (w *Workflow) LoadProfiles(ctx context.Context) ([]models.Profile, error) {
	profiles, err := w.opts.Profiles.Profiles(ctx)
	if err != nil {
		kind := models.ErrNetwork
		if errors.Is(err, models.ErrAuth) {
			kind = models.ErrAuth
		}
		return nil, models.NewError(kind, msgProfilesFailed+models.UserMessage(err), err)
	}

	handles := make(map[string]*models.FolderHandle, len(profiles))
	if w.Capabilities().DirectoryAccess.Available() && w.opts.Folders != nil && len(profiles) > 0 {
		ids := make([]string, len(profiles))
		for i, p := range profiles {
			ids[i] = p.ID
		}
		handles = w.opts.Folders.LoadAll(ctx, ids)
	}

	w.mu.Lock()
	w.profiles = profiles
	w.handles = handles
	w.mu.Unlock()

	return append([]models.Profile(nil), profiles...), nil
}

// SetFolder lets the user pick a folder for a profile and remembers it once
// write access is granted
func (w *Workflow) SetFolder(ctx context.Context, profileID string) Feedback {
	p := w.opts.Platform
	if !w.Capabilities().DirectoryAccess.Available() || p.Picker == nil || w.opts.Folders == nil {
		return failed(msgFolderNoSupport)
	}

	handle, err := p.Picker.PickDirectory(ctx)
	if err != nil {
		slog.Info("folder selection ended", "profileId", profileID, "error", err)
		return failed(msgFolderCancelled)
	}

	dir, err := p.Directories.OpenDirectory(handle)
	if err != nil {
		slog.Warn("picked folder could not be opened", "profileId", profileID, "error", err)
		return failed(msgFolderCancelled)
	}
	perm, err := dir.RequestPermission(ctx)
	if err != nil {
		slog.Warn("permission request failed", "profileId", profileID, "error", err)
		return failed(msgFolderCancelled)
	}
	if perm != platform.PermissionGranted {
		return failed(msgFolderNoPerm)
	}

	if err := w.opts.Folders.Set(ctx, profileID, handle); err != nil {
		slog.Error("failed to store folder preference", "profileId", profileID, "error", err)
		return failed(msgFolderStoreFail)
	}

	w.mu.Lock()
	h := handle
	w.handles[profileID] = &h
	w.mu.Unlock()

	slog.Info("save folder set", "profileId", profileID, "path", handle.Path)
	return succeeded(msgFolderSet)
}

// ClearFolder forgets the folder preference of a profile
func (w *Workflow) ClearFolder(ctx context.Context, profileID string) Feedback {
	if w.opts.Folders != nil {
		if err := w.opts.Folders.Clear(ctx, profileID); err != nil {
			slog.Error("failed to clear folder preference", "profileId", profileID, "error", err)
			return failed(msgFolderClearFail)
		}
	}

	w.mu.Lock()
	w.handles[profileID] = nil
	w.mu.Unlock()

	return succeeded(msgFolderCleared)
}

// Submit runs one submission to completion. It never returns an error: every
// failure ends in the Failed state with a message.
func (w *Workflow) Submit(ctx context.Context, req Request) Result {
	if !w.begin() {
		return Result{State: Failed, Feedback: failed(msgBusy)}
	}

	log := logger.NewSubmissionLogger().With("profileId", req.ProfileID)
	w.notify(Validating)

	profile, ok := w.profile(req.ProfileID)
	if !ok || profile.Name == "" {
		log.Info("submission rejected", "reason", "no profile selected")
		err := models.NewError(models.ErrValidation, msgSelectProfile, nil)
		return w.finish(Result{State: Failed, Feedback: failed(msgSelectProfile), Err: err})
	}

	job := models.JobSubmission{
		ProfileName:    profile.Name,
		Company:        req.Company,
		Role:           req.Role,
		JobDescription: req.JobDescription,
	}
	filename := Filename(job)

	w.transition(Submitting)
	log.Info("generating PDF", "company", job.Company, "role", job.Role)
	pdf, err := w.opts.Generator.GeneratePDF(ctx, job)
	if err != nil {
		log.Warn("PDF generation failed", "error", err)
		res := Result{State: Failed, Feedback: failed(models.UserMessage(err)), Filename: filename, Err: err}
		return w.finish(w.record(ctx, log, job, res))
	}

	w.transition(ResolvingOutput)
	res := w.resolveOutput(ctx, log, req.ProfileID, filename, pdf)
	res.Filename = filename
	log.Info("submission finished", "state", res.State.String(), "location", res.Location)
	return w.finish(w.record(ctx, log, job, res))
}

// resolveOutput tries the remembered folder, then the save dialog, then a
// plain download
func (w *Workflow) resolveOutput(ctx context.Context, log *slog.Logger, profileID, filename string, pdf []byte) Result {
	var notice string

	if w.Capabilities().DirectoryAccess.Available() {
		if handle := w.folderFor(ctx, log, profileID); handle != nil {
			res, fallThrough := w.saveToFolder(ctx, log, *handle, filename, pdf)
			if !fallThrough {
				return res
			}
			notice = msgFolderFallback
		}
	}

	if w.Capabilities().SaveDialog.Available() {
		name, err := w.opts.Platform.SaveDialog.SaveFile(ctx, filename, pdf)
		if err == nil {
			w.confirm(func(c *platform.Capabilities) { c.SaveDialog = platform.Supported })
			return Result{State: Saved, Feedback: succeeded(fmt.Sprintf(msgDialogSaved, name)), Notice: notice, Location: name}
		}
		if errors.Is(err, models.ErrCancelled) {
			log.Info("save dialog dismissed, downloading instead")
		} else {
			log.Warn("save dialog failed, downloading instead", "error", err)
		}
	}

	res := w.download(log, filename, pdf)
	res.Notice = joinNotices(notice, res.Notice)
	return res
}

func joinNotices(notices ...string) string {
	var out []string
	for _, n := range notices {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

// saveToFolder writes into the remembered folder. fallThrough is true when
// the next strategy should be tried. A denied permission is final.
func (w *Workflow) saveToFolder(ctx context.Context, log *slog.Logger, handle models.FolderHandle, filename string, pdf []byte) (res Result, fallThrough bool) {
	dir, err := w.opts.Platform.Directories.OpenDirectory(handle)
	if err != nil {
		log.Warn("remembered folder unusable", "path", handle.Path, "error", err)
		return Result{}, true
	}

	perm, err := dir.RequestPermission(ctx)
	if err != nil {
		log.Warn("remembered folder permission check failed", "path", handle.Path, "error", err)
		return Result{}, true
	}
	if perm != platform.PermissionGranted {
		log.Warn("remembered folder permission denied", "path", handle.Path, "permission", string(perm))
		err := models.NewError(models.ErrPermission, msgFolderDenied, nil)
		return Result{State: Failed, Feedback: failed(msgFolderDenied), Location: handle.Path, Err: err}, false
	}

	if err := dir.WriteFile(ctx, filename, pdf); err != nil {
		log.Warn("writing to remembered folder failed", "path", handle.Path, "error", err)
		return Result{}, true
	}

	w.confirm(func(c *platform.Capabilities) { c.DirectoryAccess = platform.Supported })
	return Result{State: Saved, Feedback: succeeded(fmt.Sprintf(msgFolderSaved, filename)), Location: handle.Path}, false
}

// download hands the bytes to the downloader and revokes the object shortly
// after. An object the host could not deliver is kept and its path reported.
func (w *Workflow) download(log *slog.Logger, filename string, pdf []byte) Result {
	d := w.opts.Platform.Downloader
	if d == nil {
		log.Error("no downloader configured")
		return Result{State: Failed, Feedback: failed(msgDownloadFailed)}
	}

	url, err := d.CreateObjectURL(pdf)
	if err != nil {
		log.Error("failed to stage download", "error", err)
		return Result{State: Failed, Feedback: failed(msgDownloadFailed)}
	}

	res := Result{State: Downloaded, Feedback: succeeded(fmt.Sprintf(msgDownloaded, filename))}

	if err := d.Trigger(url, filename); err != nil {
		var delivery *platform.DeliveryError
		if errors.As(err, &delivery) {
			log.Error("download not delivered, keeping staged file", "path", delivery.StagedPath, "error", err)
			res.Notice = fmt.Sprintf(msgDownloadKept, delivery.StagedPath)
			res.Location = delivery.StagedPath
			return res
		}
		log.Warn("download trigger reported an error", "error", err)
	}
	time.AfterFunc(w.opts.RevokeDelay, func() { d.RevokeObjectURL(url) })

	return res
}

// folderFor returns the remembered folder, reading through to the store when
// the profile was not hydrated
func (w *Workflow) folderFor(ctx context.Context, log *slog.Logger, profileID string) *models.FolderHandle {
	w.mu.Lock()
	handle, known := w.handles[profileID]
	w.mu.Unlock()
	if known || w.opts.Folders == nil {
		return handle
	}

	handle, err := w.opts.Folders.Get(ctx, profileID)
	if err != nil {
		log.Warn("folder lookup failed, treating as unset", "error", err)
		return nil
	}
	w.mu.Lock()
	w.handles[profileID] = handle
	w.mu.Unlock()
	return handle
}

func (w *Workflow) record(ctx context.Context, log *slog.Logger, job models.JobSubmission, res Result) Result {
	if w.opts.History == nil {
		return res
	}

	outcome := models.OutcomeFailed
	msg := res.Error
	switch res.State {
	case Saved:
		outcome, msg = models.OutcomeSaved, res.Message
	case Downloaded:
		outcome, msg = models.OutcomeDownloaded, res.Message
	}

	entry := models.HistoryEntry{
		ProfileName: job.ProfileName,
		Company:     job.Company,
		Role:        job.Role,
		Filename:    res.Filename,
		Outcome:     outcome,
		Location:    res.Location,
		Message:     msg,
	}
	if _, err := w.opts.History.Record(ctx, entry); err != nil {
		log.Warn("failed to record history", "error", err)
	}
	return res
}

func (w *Workflow) profile(id string) (models.Profile, bool) {
	if id == "" {
		return models.Profile{}, false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return models.Profile{}, false
}

func (w *Workflow) confirm(update func(*platform.Capabilities)) {
	w.mu.Lock()
	update(&w.caps)
	w.mu.Unlock()
}

// begin claims the workflow for one submission by moving it to Validating
func (w *Workflow) begin() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.InFlight() {
		return false
	}
	w.state = Validating
	return true
}

func (w *Workflow) transition(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
	w.notify(s)
}

func (w *Workflow) notify(s State) {
	if w.opts.OnStateChange != nil {
		w.opts.OnStateChange(s)
	}
}

func (w *Workflow) finish(res Result) Result {
	w.transition(res.State)
	return res
}
