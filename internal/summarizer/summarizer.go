// Package summarizer produces AI summaries of extracted content.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rapidread/rapidread/internal/model"
)

// Common errors for summarization operations.
var (
	ErrEmptyInput     = errors.New("no content to summarize")
	ErrQuotaExceeded  = errors.New("summarization quota exceeded")
	ErrEmptyResponse  = errors.New("model returned no summary")
	ErrUpstreamFailed = errors.New("summarization request failed")
)

// maxInputChars caps input text sent to the model. Inputs beyond this
// keep their tail since intros rarely carry the substance.
const maxInputChars = 15000

// Summarizer generates a summary for extracted text.
type Summarizer interface {
	Summarize(ctx context.Context, text string, sourceType model.SourceType) (string, error)
}

// truncateInput trims text to maxInputChars, keeping the tail and
// marking the cut with a leading ellipsis.
func truncateInput(text string) string {
	if len(text) <= maxInputChars {
		return text
	}
	cut := len(text) - maxInputChars
	// Move forward so the cut lands on a rune boundary.
	for cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut++
	}
	return "..." + text[cut:]
}

// repairTruncation cuts an output that ran out of tokens back to its
// last complete sentence so users never see a summary ending mid-word.
func repairTruncation(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	last := strings.LastIndexAny(text, ".!?")
	if last <= 0 {
		return text
	}
	return text[:last+1]
}

// buildPrompt selects the prompt template for the source type and
// embeds the content.
func buildPrompt(text string, sourceType model.SourceType) string {
	var instructions string
	switch sourceType {
	case model.SourceYouTube:
		instructions = `Summarize this video transcript. Structure the summary as:
1. Main topic and purpose of the video
2. Key points discussed, in order
3. Important facts, figures, or examples mentioned
4. Conclusions or takeaways
5. Who would benefit from watching

Transcript:`
	case model.SourcePDF:
		instructions = `Summarize this document. Structure the summary as:
1. Document type and main subject
2. Key sections and their content
3. Important data, findings, or arguments
4. Conclusions or recommendations
5. Intended audience and relevance

Document text:`
	case model.SourceGitHub:
		instructions = `Summarize this software repository. Structure the summary as:
1. What the project does and the problem it solves
2. Main features and capabilities
3. Technology stack and architecture
4. How to get started with it
5. Who would find it useful

Repository information:`
	default:
		instructions = `Summarize this article. Structure the summary as:
1. Main topic and thesis
2. Key points and supporting arguments
3. Important facts, figures, or quotes
4. Conclusions drawn by the author
5. Why this matters to readers

Article:`
	}

	return fmt.Sprintf("%s\n\n%s", instructions, truncateInput(text))
}
