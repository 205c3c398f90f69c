package ingestion

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	// MaxTextFileSize caps plain text job descriptions read from disk
	MaxTextFileSize = 1 << 20
	// MinExtractedTextLength is the minimum text length required for successful extraction
	MinExtractedTextLength = 20
	// BinarySampleSize is the number of bytes to sample for binary detection
	BinarySampleSize = 1000
	// BinaryThreshold is the proportion of non-printable characters that indicates binary data
	BinaryThreshold = 0.3
)

// SupportedExtensions lists the file types ExtractText understands
var SupportedExtensions = []string{".txt", ".md", ".pdf", ".docx", ".doc"}

// ErrEmptyDocument is returned when a file yields no usable text
var ErrEmptyDocument = errors.New("no text found in document")

// ExtractText reads a job description from a TXT, MD, PDF, DOCX or DOC file
func ExtractText(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	var text string
	var err error
	switch ext {
	case ".txt", ".md":
		text, err = readPlainText(filePath)
	case ".pdf":
		text, err = extractPDF(filePath)
	case ".docx":
		text, err = extractDOCX(filePath)
	case ".doc":
		text, err = extractDOC(filePath)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
	if err != nil {
		return "", err
	}

	text = normalize(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyDocument, filepath.Base(filePath))
	}
	return text, nil
}

func readPlainText(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxTextFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	if len(data) > MaxTextFileSize {
		return "", fmt.Errorf("%s is larger than %d bytes", filepath.Base(filePath), MaxTextFileSize)
	}

	content := string(data)
	if IsBinaryData(content) || !utf8.ValidString(content) {
		return "", fmt.Errorf("%s does not look like a text file", filepath.Base(filePath))
	}
	return content, nil
}

// extractPDF reads the text layer with the pure Go parser and falls back to
// pdftotext when that fails or finds too little text
func extractPDF(filePath string) (string, error) {
	text, err := readPDFText(filePath)
	if err == nil && len(strings.TrimSpace(text)) >= MinExtractedTextLength {
		return text, nil
	}
	if err != nil {
		slog.Debug("PDF parser failed, trying pdftotext", "file", filepath.Base(filePath), "error", err)
	}

	output, cmdErr := exec.Command("pdftotext", "-layout", filePath, "-").Output()
	if cmdErr != nil {
		if err != nil {
			return "", fmt.Errorf("failed to read PDF %s: %w", filepath.Base(filePath), err)
		}
		return "", fmt.Errorf("extracted text is too short (likely a scanned PDF): %s", filepath.Base(filePath))
	}

	text = string(output)
	if len(strings.TrimSpace(text)) < MinExtractedTextLength {
		return "", fmt.Errorf("extracted text is too short (likely a scanned PDF): %s", filepath.Base(filePath))
	}
	return text, nil
}

// readPDFText extracts the text layer. The parser panics on some malformed
// files, so panics are returned as errors.
func readPDFText(filePath string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// extractDOC extracts text from legacy Word files with antiword
func extractDOC(filePath string) (string, error) {
	cmd := exec.Command("antiword", filePath)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("DOC extraction requires 'antiword': %w", err)
	}
	return string(output), nil
}

// extractDOCX reads word/document.xml and keeps the text runs, one line
// per paragraph
func extractDOCX(filePath string) (string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX %s: %w", filepath.Base(filePath), err)
	}
	defer r.Close()

	return documentText(r.Editable().GetContent())
}

func documentText(documentXML string) (string, error) {
	var b strings.Builder
	dec := xml.NewDecoder(strings.NewReader(documentXML))
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}

// normalize trims trailing spaces and collapses runs of blank lines
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\f")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// IsBinaryData checks if content appears to be binary (PDF/ZIP markers)
func IsBinaryData(content string) bool {
	if len(content) == 0 {
		return false
	}

	// Check for PDF magic number
	if strings.HasPrefix(content, "%PDF-") {
		return true
	}

	// Check for ZIP magic number (DOCX files)
	if len(content) >= 2 && content[:2] == "PK" {
		return true
	}

	sampleSize := min(BinarySampleSize, len(content))
	nonPrintable := 0
	for i := 0; i < sampleSize; i++ {
		ch := content[i]
		if ch < 32 && ch != '\n' && ch != '\r' && ch != '\t' {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(sampleSize) > BinaryThreshold
}
