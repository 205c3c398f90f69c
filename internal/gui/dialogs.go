package gui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"github.com/fmuoria/resume-tailor/internal/models"
	"github.com/fmuoria/resume-tailor/internal/platform"
)

// folderPicker asks for a directory with the fyne folder dialog.
// It must be called off the UI goroutine.
type folderPicker struct {
	win fyne.Window
}

func (p folderPicker) PickDirectory(ctx context.Context) (models.FolderHandle, error) {
	type pick struct {
		uri fyne.ListableURI
		err error
	}
	done := make(chan pick, 1)

	fyne.Do(func() {
		d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			done <- pick{uri: uri, err: err}
		}, p.win)
		d.Show()
	})

	select {
	case <-ctx.Done():
		return models.FolderHandle{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return models.FolderHandle{}, fmt.Errorf("folder dialog failed: %w", r.err)
		}
		if r.uri == nil {
			return models.FolderHandle{}, models.NewError(models.ErrCancelled, "Folder selection cancelled.", nil)
		}
		return platform.HandleForPath(r.uri.Path()), nil
	}
}

// saveDialog writes the file wherever the user points the fyne save dialog.
// It must be called off the UI goroutine.
type saveDialog struct {
	win fyne.Window
}

func (s saveDialog) SaveFile(ctx context.Context, suggestedName string, data []byte) (string, error) {
	type saved struct {
		name string
		err  error
	}
	done := make(chan saved, 1)

	fyne.Do(func() {
		d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
			switch {
			case err != nil:
				done <- saved{err: fmt.Errorf("save dialog failed: %w", err)}
			case w == nil:
				done <- saved{err: models.NewError(models.ErrCancelled, "Save cancelled.", nil)}
			default:
				done <- saved{name: w.URI().Name(), err: writeAndClose(w, data)}
			}
		}, s.win)
		d.SetFileName(suggestedName)
		d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
		d.Show()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.name, r.err
	}
}

func writeAndClose(w fyne.URIWriteCloser, data []byte) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", w.URI().Name(), cerr)
		}
	}()

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", w.URI().Name(), err)
	}
	return nil
}
