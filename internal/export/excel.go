package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fmuoria/resume-tailor/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	historySheet = "Generated Resumes"
)

var historyHeaders = []string{"Date", "Profile", "Company", "Role", "Filename", "Outcome", "Location", "Message"}

// ExportHistory writes the generation history to an Excel file
func ExportHistory(entries []models.HistoryEntry, outputPath string) error {
	f, err := buildWorkbook(entries)
	if err != nil {
		return err
	}
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	if err := f.SaveAs(outputPath); err != nil {
		// Fall back to writing the buffer ourselves
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return nil
}

// WriteHistory streams the workbook to w, e.g. a writer from a save dialog
func WriteHistory(entries []models.HistoryEntry, w io.Writer) error {
	f, err := buildWorkbook(entries)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func buildWorkbook(entries []models.HistoryEntry) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(historySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create history sheet: %w", err)
	}

	if err := createSummarySheet(f, entries); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createHistorySheet(f, entries); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create history sheet: %w", err)
	}

	return f, nil
}

func createSummarySheet(f *excelize.File, entries []models.HistoryEntry) error {
	sheet := summarySheet
	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "B", 20)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	section := func(title string) {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), title)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
		f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
		row++
	}
	label := func(name string, value interface{}) {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), name)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), value)
		row++
	}

	section("Resume Generation Report")
	row++
	label("Generated:", time.Now().Format("2006-01-02 15:04:05"))
	label("Total Submissions:", len(entries))
	row++

	outcomes := map[models.Outcome]int{}
	perProfile := map[string]int{}
	for _, e := range entries {
		outcomes[e.Outcome]++
		perProfile[e.ProfileName]++
	}

	section("Outcomes")
	label("Saved:", outcomes[models.OutcomeSaved])
	label("Downloaded:", outcomes[models.OutcomeDownloaded])
	label("Failed:", outcomes[models.OutcomeFailed])

	if len(perProfile) > 0 {
		row++
		section("Per Profile")
		names := make([]string, 0, len(perProfile))
		for name := range perProfile {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			label(name, perProfile[name])
		}
	}

	return nil
}

func createHistorySheet(f *excelize.File, entries []models.HistoryEntry) error {
	sheet := historySheet
	widths := map[string]float64{"A": 20, "B": 22, "C": 22, "D": 22, "E": 40, "F": 12, "G": 40, "H": 60}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}

	// Row colour follows the outcome
	outcomeStyles := map[models.Outcome]int{}
	for outcome, color := range map[models.Outcome]string{
		models.OutcomeSaved:      "C6EFCE",
		models.OutcomeDownloaded: "FFEB9C",
		models.OutcomeFailed:     "FFC7CE",
	} {
		style, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: border,
		})
		if err != nil {
			return err
		}
		outcomeStyles[outcome] = style
	}

	for col, header := range historyHeaders {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, e := range entries {
		row := i + 2
		values := []interface{}{
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.ProfileName,
			e.Company,
			e.Role,
			e.Filename,
			string(e.Outcome),
			e.Location,
			e.Message,
		}
		for col, v := range values {
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", string(rune('A'+col)), row), v)
		}
		if style, ok := outcomeStyles[e.Outcome]; ok {
			f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), style)
		}
	}

	if len(entries) > 0 {
		f.AutoFilter(sheet, fmt.Sprintf("A1:H%d", len(entries)+1), []excelize.AutoFilterOptions{})
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}
