package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText converts an uploaded document to plain text by declared
// extension. Unsupported formats fall back to a best-effort lossy UTF-8
// decode rather than failing.
func ExtractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	default:
		return decodeRaw(data), nil
	}
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

var docxTagRe = regexp.MustCompile(`<[^>]+>`)

// extractDOCX pulls the main document part out of the zip container and
// strips the WordprocessingML markup. Paragraph ends become newlines.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open docx document part: %w", err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read docx document part: %w", err)
		}

		text := strings.ReplaceAll(string(raw), "</w:p>", "\n")
		text = docxTagRe.ReplaceAllString(text, "")
		return text, nil
	}

	return "", fmt.Errorf("docx has no word/document.xml")
}

func decodeRaw(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}
