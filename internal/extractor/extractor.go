// Package extractor turns external content sources into plain text
// suitable for summarization.
package extractor

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Common errors for extraction operations.
var (
	ErrInvalidSource     = errors.New("invalid source")
	ErrUnreachable       = errors.New("source unreachable")
	ErrEmptyContent      = errors.New("no usable content found")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// maxContentChars caps extracted content before it is handed to the
// summarizer. Longer inputs keep their tail since articles and
// transcripts usually front-load boilerplate.
const maxContentChars = 15000

// Extraction is the normalized result of pulling text from any source.
type Extraction struct {
	Title   string
	Content string
}

// browserUA avoids trivial bot blocks on article fetches.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// collapseWhitespace normalizes runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// capContent trims content to maxContentChars, keeping the tail.
func capContent(s string) string {
	if len(s) <= maxContentChars {
		return s
	}
	cut := len(s) - maxContentChars
	// Move forward so the cut lands on a rune boundary.
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return "..." + s[cut:]
}
