package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fmuoria/resume-tailor/internal/models"
	"github.com/xuri/excelize/v2"
)

func sampleEntries() []models.HistoryEntry {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return []models.HistoryEntry{
		{ID: 2, ProfileName: "Jane Doe", Company: "Acme", Role: "SRE", Filename: "Jane_Doe_Acme_SRE.pdf", Outcome: models.OutcomeSaved, Location: "/home/jane/cv", Message: "PDF saved: Jane_Doe_Acme_SRE.pdf", CreatedAt: at},
		{ID: 1, ProfileName: "Data", Company: "Initech", Role: "Analyst", Filename: "Data_Initech_Analyst.pdf", Outcome: models.OutcomeFailed, Message: "Failed to generate PDF.", CreatedAt: at.Add(-time.Hour)},
	}
}

// TestExportHistory_EnsuresXlsxExtension tests that .xlsx extension is added if missing
func TestExportHistory_EnsuresXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()

	outputPath := filepath.Join(tmpDir, "history")
	if err := ExportHistory(sampleEntries(), outputPath); err != nil {
		t.Fatalf("ExportHistory() failed: %v", err)
	}

	if _, err := os.Stat(outputPath + ".xlsx"); os.IsNotExist(err) {
		t.Errorf("Expected file at %s.xlsx but it doesn't exist", outputPath)
	}
	if _, err := os.Stat(outputPath + ".xlsx.xlsx"); err == nil {
		t.Error("Should not have double .xlsx extension")
	}
}

// TestExportHistory_OneRowPerEntry checks the history sheet contents
func TestExportHistory_OneRowPerEntry(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "history.xlsx")
	entries := sampleEntries()
	if err := ExportHistory(entries, outputPath); err != nil {
		t.Fatalf("ExportHistory() failed: %v", err)
	}

	f, err := excelize.OpenFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to open exported file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	if err != nil {
		t.Fatalf("GetRows() failed: %v", err)
	}
	if len(rows) != len(entries)+1 {
		t.Fatalf("Expected %d rows, got %d", len(entries)+1, len(rows))
	}
	if rows[0][0] != "Date" || rows[0][5] != "Outcome" {
		t.Errorf("Unexpected header row %v", rows[0])
	}
	if rows[1][1] != "Jane Doe" || rows[1][4] != "Jane_Doe_Acme_SRE.pdf" || rows[1][5] != "saved" {
		t.Errorf("Unexpected first row %v", rows[1])
	}
	if rows[2][5] != "failed" || rows[2][7] != "Failed to generate PDF." {
		t.Errorf("Unexpected second row %v", rows[2])
	}

	total, err := f.GetCellValue(summarySheet, "B4")
	if err != nil || total != "2" {
		t.Errorf("Total submissions = %q, err %v", total, err)
	}
}

// TestExportHistory_EmptyHistory tests export with no entries
func TestExportHistory_EmptyHistory(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := ExportHistory(nil, outputPath); err != nil {
		t.Fatalf("ExportHistory() should handle empty history: %v", err)
	}
	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Errorf("Expected file at %s but it doesn't exist", outputPath)
	}
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(sampleEntries(), &buf); err != nil {
		t.Fatalf("WriteHistory() failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("Failed to read workbook: %v", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(historySheet); idx < 0 {
		t.Errorf("Expected sheet %q", historySheet)
	}
}
