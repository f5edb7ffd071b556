package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/rapidread/rapidread/internal/extractor"
	"github.com/rapidread/rapidread/internal/metrics"
	"github.com/rapidread/rapidread/internal/model"
	"github.com/rapidread/rapidread/internal/repository"
	"github.com/rapidread/rapidread/internal/summarizer"
)

// Summary service errors.
var (
	ErrSummaryNotFound = errors.New("summary not found")
	ErrForbidden       = errors.New("summary belongs to another user")
	ErrUnsupportedType = errors.New("unsupported source type")
)

const (
	// excerptLength is how much of the original content is stored
	// alongside the summary.
	excerptLength = 1000

	defaultListLimit = 50
	maxListLimit     = 200
)

// URLExtractor pulls text content from a URL-addressed source.
type URLExtractor interface {
	Extract(ctx context.Context, rawURL string) (*extractor.Extraction, error)
}

// FileExtractor pulls text content from an uploaded file.
type FileExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (*extractor.Extraction, error)
}

// SummaryStore persists summaries.
type SummaryStore interface {
	CreateSummary(ctx context.Context, s *model.Summary) error
	GetSummaryByID(ctx context.Context, id string) (*model.Summary, error)
	ListSummariesByUser(ctx context.Context, userID string, limit int) ([]*model.Summary, error)
	DeleteSummary(ctx context.Context, id string) error
}

// SummaryService runs the extract-summarize-persist pipeline.
type SummaryService struct {
	store      SummaryStore
	extractors map[model.SourceType]URLExtractor
	pdf        FileExtractor
	summarizer summarizer.Summarizer
	metrics    metrics.Recorder
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(
	store SummaryStore,
	article, youtube, github URLExtractor,
	pdf FileExtractor,
	sum summarizer.Summarizer,
	recorder metrics.Recorder,
) *SummaryService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SummaryService{
		store: store,
		extractors: map[model.SourceType]URLExtractor{
			model.SourceArticle: article,
			model.SourceYouTube: youtube,
			model.SourceGitHub:  github,
		},
		pdf:        pdf,
		summarizer: sum,
		metrics:    recorder,
	}
}

// SummarizeURL extracts content from a URL-addressed source, summarizes
// it, and persists the result for the user.
func (s *SummaryService) SummarizeURL(ctx context.Context, userID string, sourceType model.SourceType, rawURL string) (*model.Summary, error) {
	ext, ok := s.extractors[sourceType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	extraction, err := ext.Extract(ctx, rawURL)
	if err != nil {
		s.metrics.IncExtractionError(string(sourceType))
		return nil, err
	}

	return s.summarizeAndStore(ctx, userID, sourceType, rawURL, extraction)
}

// SummarizePDF summarizes an uploaded PDF file.
func (s *SummaryService) SummarizePDF(ctx context.Context, userID, filename string, data []byte) (*model.Summary, error) {
	extraction, err := s.pdf.Extract(ctx, filename, data)
	if err != nil {
		s.metrics.IncExtractionError(string(model.SourcePDF))
		return nil, err
	}

	return s.summarizeAndStore(ctx, userID, model.SourcePDF, filename, extraction)
}

func (s *SummaryService) summarizeAndStore(ctx context.Context, userID string, sourceType model.SourceType, source string, extraction *extractor.Extraction) (*model.Summary, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveSummarizeDuration(time.Since(start))
	}()

	summaryText, err := s.summarizer.Summarize(ctx, extraction.Content, sourceType)
	if err != nil {
		s.metrics.IncSummarizationError()
		return nil, err
	}

	summary := &model.Summary{
		ID:              ulid.Make().String(),
		UserID:          userID,
		SourceType:      sourceType,
		Source:          source,
		Title:           extraction.Title,
		OriginalExcerpt: excerpt(extraction.Content),
		SummaryText:     summaryText,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.CreateSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to store summary: %w", err)
	}

	s.metrics.IncSummaryCreated(string(sourceType))

	return summary, nil
}

// List returns the user's summaries, newest first.
func (s *SummaryService) List(ctx context.Context, userID string, limit int) ([]*model.Summary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	summaries, err := s.store.ListSummariesByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []*model.Summary{}
	}
	return summaries, nil
}

// Get returns a single summary, enforcing ownership.
func (s *SummaryService) Get(ctx context.Context, userID, id string) (*model.Summary, error) {
	summary, err := s.store.GetSummaryByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSummaryNotFound) {
			return nil, ErrSummaryNotFound
		}
		return nil, err
	}

	if summary.UserID != userID {
		return nil, ErrForbidden
	}

	return summary, nil
}

// Delete removes a summary, enforcing ownership.
func (s *SummaryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	if err := s.store.DeleteSummary(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSummaryNotFound) {
			return ErrSummaryNotFound
		}
		return err
	}

	s.metrics.IncSummaryDeleted()

	return nil
}

func excerpt(content string) string {
	if len(content) <= excerptLength {
		return content
	}
	cut := excerptLength
	// Back up so the cut lands on a rune boundary.
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
