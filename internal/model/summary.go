package model

import "time"

// SourceType identifies where summarized content came from.
type SourceType string

const (
	SourceArticle SourceType = "article"
	SourceYouTube SourceType = "youtube"
	SourcePDF     SourceType = "pdf"
	SourceGitHub  SourceType = "github"
)

// IsValid checks if the source type is one of the supported kinds.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceArticle, SourceYouTube, SourcePDF, SourceGitHub:
		return true
	}
	return false
}

// Summary is an immutable record of one summarization run.
// Source is a URL for article/youtube/github sources and the uploaded
// filename for pdf sources. OriginalExcerpt keeps the first portion of
// the extracted text for display alongside the summary.
type Summary struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	SourceType      SourceType `json:"source_type"`
	Source          string     `json:"source"`
	Title           string     `json:"title,omitempty"`
	OriginalExcerpt string     `json:"original_excerpt,omitempty"`
	SummaryText     string     `json:"summary"`
	CreatedAt       time.Time  `json:"created_at"`
}
