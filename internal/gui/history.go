package gui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/fmuoria/resume-tailor/internal/export"
	"github.com/fmuoria/resume-tailor/internal/models"
)

const historyLimit = 200

var historyColumns = []string{"Date", "Profile", "Company", "Role", "Outcome", "File"}

// createHistoryTab lists recent submissions with an export button
func (a *App) createHistoryTab() fyne.CanvasObject {
	a.historyTable = widget.NewTable(
		func() (int, int) {
			return len(a.history) + 1, len(historyColumns) // +1 for header
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.TableCellID, cell fyne.CanvasObject) {
			label := cell.(*widget.Label)
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
				label.SetText(historyColumns[id.Col])
				return
			}
			label.TextStyle = fyne.TextStyle{}
			if id.Row-1 < len(a.history) {
				label.SetText(historyCell(a.history[id.Row-1], id.Col))
			}
		},
	)
	for col, width := range []float32{150, 160, 160, 160, 100, 260} {
		a.historyTable.SetColumnWidth(col, width)
	}

	refreshBtn := widget.NewButton("Refresh", a.refreshHistory)
	a.exportBtn = widget.NewButton("Export to Excel", a.handleExport)
	a.exportBtn.Disable()

	return container.NewBorder(nil, container.NewHBox(refreshBtn, a.exportBtn), nil, nil, a.historyTable)
}

func historyCell(e models.HistoryEntry, col int) string {
	switch col {
	case 0:
		return e.CreatedAt.Local().Format("2006-01-02 15:04")
	case 1:
		return e.ProfileName
	case 2:
		return e.Company
	case 3:
		return e.Role
	case 4:
		return string(e.Outcome)
	case 5:
		return e.Filename
	}
	return ""
}

func (a *App) refreshHistory() {
	if a.db == nil {
		return
	}

	entries, err := a.db.History().List(context.Background(), historyLimit)
	if err != nil {
		slog.Error("failed to load history", "error", err)
		return
	}

	a.history = entries
	a.historyTable.Refresh()
	if len(entries) > 0 {
		a.exportBtn.Enable()
	} else {
		a.exportBtn.Disable()
	}
}

// handleExport handles exporting the history to Excel
func (a *App) handleExport() {
	if len(a.history) == 0 {
		dialog.ShowError(fmt.Errorf("no history to export"), a.mainWindow)
		return
	}
	entries := append([]models.HistoryEntry(nil), a.history...)

	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		defer uc.Close()

		if err := export.WriteHistory(entries, uc); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}

		dialog.ShowInformation("Success", "History exported successfully to "+uc.URI().Name(), a.mainWindow)
	}, a.mainWindow)
	d.SetFileName(fmt.Sprintf("Resume_History_%s.xlsx", time.Now().Format("2006-01-02_150405")))
	d.SetFilter(storage.NewExtensionFileFilter([]string{".xlsx"}))
	d.Show()
}
