package services

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

// SupportedExtensions lists the upload formats the extractor can read.
var SupportedExtensions = []string{".pdf", ".docx", ".doc", ".rtf", ".odt", ".txt"}

func IsSupportedExtension(filename string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(filename)))
}

type TextExtractor interface {
	ExtractText(filePath string) (string, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// ExtractText implements TextExtractor. The format is chosen by extension.
func (t *textExtractor) ExtractText(filePath string) (string, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return "", fmt.Errorf("file does not exist: %s", filePath)
	}

	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".pdf":
		text, err = extractPDF(filePath)
	case ".docx", ".doc", ".rtf", ".odt":
		var res *docconv.Response
		res, err = docconv.ConvertPath(filePath)
		if err == nil {
			text = res.Body
		}
	case ".txt":
		var content []byte
		content, err = os.ReadFile(filePath)
		text = string(content)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content found in %s", filepath.Base(filePath))
	}
	return text, nil
}

func extractPDF(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// unreadable page, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// CleanText collapses every run of whitespace into a single space.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
