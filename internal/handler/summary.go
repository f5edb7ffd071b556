package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rapidread/rapidread/internal/auth"
	"github.com/rapidread/rapidread/internal/extractor"
	"github.com/rapidread/rapidread/internal/handler/dto"
	"github.com/rapidread/rapidread/internal/model"
	"github.com/rapidread/rapidread/internal/service"
	"github.com/rapidread/rapidread/internal/summarizer"
)

// SummaryService is the summarization surface the handler needs.
type SummaryService interface {
	SummarizeURL(ctx context.Context, userID string, sourceType model.SourceType, rawURL string) (*model.Summary, error)
	SummarizePDF(ctx context.Context, userID, filename string, data []byte) (*model.Summary, error)
	List(ctx context.Context, userID string, limit int) ([]*model.Summary, error)
	Get(ctx context.Context, userID, id string) (*model.Summary, error)
	Delete(ctx context.Context, userID, id string) error
}

// SummaryHandler handles HTTP requests for summarization operations.
type SummaryHandler struct {
	svc           SummaryService
	logger        *slog.Logger
	maxUploadSize int64
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(svc SummaryService, logger *slog.Logger, maxUploadSize int64) *SummaryHandler {
	return &SummaryHandler{
		svc:           svc,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

// SummarizeArticle handles POST /article/summarize.
func (h *SummaryHandler) SummarizeArticle(w http.ResponseWriter, r *http.Request) {
	h.summarizeURL(w, r, model.SourceArticle)
}

// SummarizeYouTube handles POST /youtube/summarize.
func (h *SummaryHandler) SummarizeYouTube(w http.ResponseWriter, r *http.Request) {
	h.summarizeURL(w, r, model.SourceYouTube)
}

// SummarizeGitHub handles POST /github/summarize.
func (h *SummaryHandler) SummarizeGitHub(w http.ResponseWriter, r *http.Request) {
	h.summarizeURL(w, r, model.SourceGitHub)
}

func (h *SummaryHandler) summarizeURL(w http.ResponseWriter, r *http.Request, sourceType model.SourceType) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.SummarizeURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" && sourceType == model.SourceGitHub {
		rawURL = strings.TrimSpace(req.RepoURL)
	}
	if rawURL == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_URL", "URL is required")
		return
	}

	summary, err := h.svc.SummarizeURL(r.Context(), sess.UserID, sourceType, rawURL)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("summary_created",
		"summary_id", summary.ID,
		"user_id", sess.UserID,
		"source_type", string(sourceType),
	)

	writeJSON(w, http.StatusCreated, dto.ToSummaryResponse(summary))
}

// SummarizePDF handles POST /pdf/summarize (multipart upload, field "file").
func (h *SummaryHandler) SummarizePDF(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Expected a multipart PDF upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "MISSING_FILE", "File field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Failed to read uploaded file")
		return
	}

	summary, err := h.svc.SummarizePDF(r.Context(), sess.UserID, header.Filename, data)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("summary_created",
		"summary_id", summary.ID,
		"user_id", sess.UserID,
		"source_type", string(model.SourcePDF),
	)

	writeJSON(w, http.StatusCreated, dto.ToSummaryResponse(summary))
}

// List handles GET /summaries/.
func (h *SummaryHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	summaries, err := h.svc.List(r.Context(), sess.UserID, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSummaryListResponse(summaries))
}

// Get handles GET /summaries/{id}.
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Summary ID is required")
		return
	}

	summary, err := h.svc.Get(r.Context(), sess.UserID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSummaryResponse(summary))
}

// Delete handles DELETE /summaries/{id}.
func (h *SummaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Summary ID is required")
		return
	}

	if err := h.svc.Delete(r.Context(), sess.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("summary_deleted", "summary_id", id, "user_id", sess.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps pipeline errors to HTTP responses.
func (h *SummaryHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSummaryNotFound):
		h.writeError(w, http.StatusNotFound, "SUMMARY_NOT_FOUND", "Summary not found")
	case errors.Is(err, service.ErrForbidden):
		h.writeError(w, http.StatusForbidden, "FORBIDDEN", "Summary belongs to another user")
	case errors.Is(err, extractor.ErrInvalidSource):
		h.writeError(w, http.StatusUnprocessableEntity, "INVALID_SOURCE", "Source could not be recognized")
	case errors.Is(err, extractor.ErrUnsupportedFormat):
		h.writeError(w, http.StatusUnprocessableEntity, "UNSUPPORTED_FORMAT", "File format is not supported")
	case errors.Is(err, extractor.ErrEmptyContent):
		h.writeError(w, http.StatusUnprocessableEntity, "NO_CONTENT", "No usable content found in source")
	case errors.Is(err, extractor.ErrUnreachable):
		h.writeError(w, http.StatusUnprocessableEntity, "SOURCE_UNREACHABLE", "Source could not be fetched")
	case errors.Is(err, summarizer.ErrQuotaExceeded):
		h.writeError(w, http.StatusTooManyRequests, "QUOTA_EXCEEDED", "Summarization quota exceeded, try again later")
	case errors.Is(err, summarizer.ErrEmptyInput), errors.Is(err, summarizer.ErrEmptyResponse):
		h.writeError(w, http.StatusBadGateway, "SUMMARIZATION_FAILED", "Summarizer returned no result")
	case errors.Is(err, summarizer.ErrUpstreamFailed):
		h.writeError(w, http.StatusBadGateway, "SUMMARIZATION_FAILED", "Summarization service is unavailable")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *SummaryHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
