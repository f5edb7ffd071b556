package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor pulls plain text out of uploaded PDF files.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF text extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract reads text from the PDF bytes. The filename is used as the
// title with its extension stripped. The parser panics on some malformed
// files, so those are recovered into ErrUnsupportedFormat.
func (e *PDFExtractor) Extract(ctx context.Context, filename string, data []byte) (result *Extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrUnsupportedFormat, r)
		}
	}()

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidSource)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: not a PDF file", ErrUnsupportedFormat)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages rather than failing the whole file.
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	content := collapseWhitespace(sb.String())
	if len(content) < minArticleChars {
		return nil, fmt.Errorf("%w: PDF contains no extractable text", ErrEmptyContent)
	}

	return &Extraction{Title: titleFromFilename(filename), Content: capContent(content)}, nil
}

func titleFromFilename(filename string) string {
	name := strings.TrimSpace(filename)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	if name == "" {
		return "Uploaded PDF"
	}
	return name
}
