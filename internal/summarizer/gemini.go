package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rapidread/rapidread/internal/model"
)

// GeminiSummarizer calls the Gemini generateContent API.
type GeminiSummarizer struct {
	apiKey string
	model  string
	client *http.Client

	// baseURL is overridable for tests.
	baseURL string
}

// NewGeminiSummarizer creates a summarizer backed by the given Gemini model.
func NewGeminiSummarizer(apiKey, modelName string, timeout time.Duration) *GeminiSummarizer {
	return &GeminiSummarizer{
		apiKey:  apiKey,
		model:   modelName,
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
	}
}

// Gemini API request/response types

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Summarize sends the text to Gemini and returns the generated summary.
func (s *GeminiSummarizer) Summarize(ctx context.Context, text string, sourceType model.SourceType) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: buildPrompt(text, sourceType)}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.3,
			MaxOutputTokens: 3000,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("gemini: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrUpstreamFailed, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrQuotaExceeded
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("%w: malformed response", ErrUpstreamFailed)
	}

	if apiResp.Error != nil {
		if apiResp.Error.Status == "RESOURCE_EXHAUSTED" {
			return "", ErrQuotaExceeded
		}
		return "", fmt.Errorf("%w: %s: %s", ErrUpstreamFailed, apiResp.Error.Status, apiResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUpstreamFailed, resp.StatusCode)
	}

	if len(apiResp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	candidate := apiResp.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	summary := strings.TrimSpace(sb.String())
	if summary == "" {
		return "", ErrEmptyResponse
	}

	if candidate.FinishReason == "MAX_TOKENS" {
		summary = repairTruncation(summary)
	}

	return summary, nil
}
