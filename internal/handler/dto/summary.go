package dto

import (
	"time"

	"github.com/rapidread/rapidread/internal/model"
)

// SummarizeURLRequest represents the request body for summarizing a
// URL-addressed source (article, YouTube video, GitHub repository).
// The GitHub endpoint also accepts "repo_url" as the field name.
type SummarizeURLRequest struct {
	URL     string `json:"url"`
	RepoURL string `json:"repo_url,omitempty"`
}

// SummaryResponse represents a summary in API responses.
type SummaryResponse struct {
	ID              string    `json:"id"`
	SourceType      string    `json:"source_type"`
	Source          string    `json:"source"`
	Title           string    `json:"title,omitempty"`
	OriginalExcerpt string    `json:"original_excerpt,omitempty"`
	Summary         string    `json:"summary"`
	CreatedAt       time.Time `json:"created_at"`
}

// SummaryListResponse represents a list of summaries, newest first.
type SummaryListResponse struct {
	Data  []SummaryResponse `json:"data"`
	Count int               `json:"count"`
}

// ToSummaryResponse converts a Summary model to SummaryResponse DTO.
func ToSummaryResponse(s *model.Summary) SummaryResponse {
	return SummaryResponse{
		ID:              s.ID,
		SourceType:      string(s.SourceType),
		Source:          s.Source,
		Title:           s.Title,
		OriginalExcerpt: s.OriginalExcerpt,
		Summary:         s.SummaryText,
		CreatedAt:       s.CreatedAt,
	}
}

// ToSummaryListResponse converts a slice of Summary models.
func ToSummaryListResponse(summaries []*model.Summary) SummaryListResponse {
	responses := make([]SummaryResponse, len(summaries))
	for i, s := range summaries {
		responses[i] = ToSummaryResponse(s)
	}
	return SummaryListResponse{
		Data:  responses,
		Count: len(responses),
	}
}
