package backend

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 20.0
	lineHeight = 6.0
	titleSize  = 16
	bodySize   = 11
)

// RenderPDF lays out lines of text on A4 pages in Helvetica. The first line
// is set as a bold title. Long lines wrap and overflow continues on a new page.
func RenderPDF(lines []string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetCreator("resume-tailor stub backend", true)
	doc.AddPage()

	// Core fonts are cp1252. Runes outside it print as '.'
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "", bodySize)
	for i, line := range lines {
		switch {
		case i == 0:
			doc.SetFont("Helvetica", "B", titleSize)
			doc.MultiCell(0, lineHeight+2, tr(line), "", "L", false)
			doc.SetFont("Helvetica", "", bodySize)
		case line == "":
			doc.Ln(lineHeight)
		default:
			doc.MultiCell(0, lineHeight, tr(line), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
