package document

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"atscore/internal/errors"
	"atscore/internal/utils"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Extract converts raw document bytes to text, choosing the decoder from
// the name's extension. Unknown extensions are accepted when the bytes are
// valid UTF-8.
func Extract(name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch ext := utils.GetFileExtension(name); ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	case ".txt", ".md", ".markdown", ".text":
		text = string(data)
	default:
		if !utf8.Valid(data) {
			return "", errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
				fmt.Sprintf("Unsupported document type %q", ext), nil).WithContext("source", name)
		}
		text = string(data)
	}
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to extract text from %s", name), err)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.NewValidationError(errors.ErrCodeEmptyDocument,
			fmt.Sprintf("Document %s contains no text", name), nil)
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxText(doc.Editable().GetContent()), nil
}

// docxText flattens WordprocessingML to plain text, one paragraph per line.
func docxText(content string) string {
	content = docxParagraphEnd.ReplaceAllStringFunc(content, func(tag string) string {
		if tag == "<w:tab/>" {
			return "\t"
		}
		return "\n"
	})
	content = xmlTag.ReplaceAllString(content, "")
	return strings.TrimSpace(html.UnescapeString(content))
}
