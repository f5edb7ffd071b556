package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rapidread/rapidread/internal/model"
)

func newTestSummarizer(t *testing.T, handler http.HandlerFunc) *GeminiSummarizer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewGeminiSummarizer("test-key", "gemini-1.5-flash", 5*time.Second)
	s.baseURL = srv.URL
	return s
}

func TestGeminiSummarizer_Summarize(t *testing.T) {
	t.Parallel()

	var gotReq geminiRequest
	var gotPath, gotKey string
	s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "A tidy summary of the article."}]},
				"finishReason": "STOP"
			}]
		}`))
	})

	summary, err := s.Summarize(context.Background(), "long article text", model.SourceArticle)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary != "A tidy summary of the article." {
		t.Errorf("Summary mismatch: got %q", summary)
	}
	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("Path mismatch: got %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("API key mismatch: got %q", gotKey)
	}
	if gotReq.GenerationConfig.Temperature != 0.3 {
		t.Errorf("Temperature mismatch: got %v", gotReq.GenerationConfig.Temperature)
	}
	if gotReq.GenerationConfig.MaxOutputTokens != 3000 {
		t.Errorf("MaxOutputTokens mismatch: got %d", gotReq.GenerationConfig.MaxOutputTokens)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 {
		t.Fatal("Request should carry a single content part")
	}
	if !strings.Contains(gotReq.Contents[0].Parts[0].Text, "long article text") {
		t.Error("Prompt should embed the input text")
	}
}

func TestGeminiSummarizer_Summarize_RepairsMaxTokens(t *testing.T) {
	t.Parallel()

	s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "First point. Second point. And then the model ran ou"}]},
				"finishReason": "MAX_TOKENS"
			}]
		}`))
	})

	summary, err := s.Summarize(context.Background(), "text", model.SourceYouTube)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "First point. Second point." {
		t.Errorf("Expected truncation repair, got %q", summary)
	}
}

func TestGeminiSummarizer_Summarize_QuotaExceeded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http 429", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"resource exhausted", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error": {"code": 403, "status": "RESOURCE_EXHAUSTED", "message": "quota"}}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestSummarizer(t, tt.handler)

			_, err := s.Summarize(context.Background(), "text", model.SourceArticle)
			if !errors.Is(err, ErrQuotaExceeded) {
				t.Errorf("Expected ErrQuotaExceeded, got: %v", err)
			}
		})
	}
}

func TestGeminiSummarizer_Summarize_APIError(t *testing.T) {
	t.Parallel()

	s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "status": "INVALID_ARGUMENT", "message": "bad key"}}`))
	})

	_, err := s.Summarize(context.Background(), "text", model.SourceArticle)
	if !errors.Is(err, ErrUpstreamFailed) {
		t.Errorf("Expected ErrUpstreamFailed, got: %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "INVALID_ARGUMENT") {
		t.Errorf("Error should carry API status, got: %v", err)
	}
}

func TestGeminiSummarizer_Summarize_EmptyCandidates(t *testing.T) {
	t.Parallel()

	s := newTestSummarizer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	_, err := s.Summarize(context.Background(), "text", model.SourceArticle)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got: %v", err)
	}
}

func TestGeminiSummarizer_Summarize_EmptyInput(t *testing.T) {
	t.Parallel()

	s := NewGeminiSummarizer("test-key", "gemini-1.5-flash", time.Second)

	_, err := s.Summarize(context.Background(), "   ", model.SourceArticle)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got: %v", err)
	}
}
