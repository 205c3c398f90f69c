package gui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/fmuoria/resume-tailor/internal/models"
)

var errSettingsBusy = models.NewError(models.ErrValidation, "Settings cannot be changed while a submission is running.", nil)

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	backendEntry := widget.NewEntry()
	backendEntry.SetPlaceHolder("http://localhost:8000")
	backendEntry.SetText(a.config.BackendURL)

	downloadsEntry := widget.NewEntry()
	downloadsEntry.SetText(a.config.DownloadsDir)

	downloadsBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err == nil && uri != nil {
				downloadsEntry.SetText(uri.Path())
			}
		}, a.mainWindow)
	})

	form := widget.NewForm(
		widget.NewFormItem("Backend URL", backendEntry),
		widget.NewFormItem("Downloads Folder", container.NewBorder(nil, nil, nil, downloadsBtn, downloadsEntry)),
		widget.NewFormItem("Data Folder", widget.NewLabel(a.config.DataDir)),
	)

	a.saveSettingsBtn = widget.NewButton("Save Settings", func() {
		if err := a.applySettings(backendEntry.Text, downloadsEntry.Text); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if _, ok := a.session.Token(); ok {
			go a.reloadProfiles()
		}
		dialog.ShowInformation("Success", "Settings saved successfully", a.mainWindow)
	})

	testBtn := widget.NewButton("Test Connection", func() {
		if err := a.config.Validate(); err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}

		client := a.client
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := client.Health(ctx)
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(errors.New(models.UserMessage(err)), a.mainWindow)
					return
				}
				dialog.ShowInformation("Success", "Backend is reachable at "+client.BaseURL(), a.mainWindow)
			})
		}()
	})

	return container.NewVBox(
		form,
		container.NewHBox(a.saveSettingsBtn, testBtn),
	)
}

// applySettings validates and persists new settings, then rebuilds the
// client and workflow. It refuses while a submission is running.
func (a *App) applySettings(backendURL, downloadsDir string) error {
	if a.submitBtn.Disabled() || a.workflow.State().InFlight() {
		return errSettingsBusy
	}

	cfg := *a.config
	cfg.BackendURL = strings.TrimSpace(backendURL)
	cfg.DownloadsDir = strings.TrimSpace(downloadsDir)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	save := cfg.Save
	if a.configPath != "" {
		save = func() error { return cfg.SaveTo(a.configPath) }
	}
	if err := save(); err != nil {
		return err
	}

	*a.config = cfg
	a.buildBackend()
	a.updateFolderSection()
	return nil
}
