package extractor

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// videoIDPatterns cover the URL shapes YouTube serves videos under.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:[^&]*&)*v=)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/embed/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/shorts/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/v/)([A-Za-z0-9_-]{11})`),
}

// transcriptLangs is the caption language preference order. Videos with
// none of these fall back to whatever track the timedtext list reports.
var transcriptLangs = []string{"en", "en-US", "en-GB"}

// transcript artifacts like [Music] or (applause) carry no meaning.
var (
	bracketRe = regexp.MustCompile(`\[[^\]]*\]`)
	parenRe   = regexp.MustCompile(`\([^)]*\)`)
)

// YouTubeExtractor fetches video captions via the timedtext endpoint.
type YouTubeExtractor struct {
	client *http.Client

	// baseURL and oembedURL are overridable for tests.
	baseURL   string
	oembedURL string
}

// NewYouTubeExtractor creates a YouTube transcript extractor.
func NewYouTubeExtractor(timeout time.Duration) *YouTubeExtractor {
	return &YouTubeExtractor{
		client:    newHTTPClient(timeout),
		baseURL:   "https://www.youtube.com/api/timedtext",
		oembedURL: "https://www.youtube.com/oembed",
	}
}

// ExtractVideoID pulls the 11-character video ID out of a YouTube URL.
func ExtractVideoID(rawURL string) (string, error) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(rawURL); len(m) > 1 {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: not a recognized YouTube URL: %q", ErrInvalidSource, rawURL)
}

// Extract fetches the transcript for the video at rawURL.
func (e *YouTubeExtractor) Extract(ctx context.Context, rawURL string) (*Extraction, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	var transcript string
	var lastErr error
	tried := make(map[string]bool, len(transcriptLangs))
	for _, lang := range transcriptLangs {
		tried[lang] = true
		transcript, lastErr = e.fetchTranscript(ctx, videoID, lang)
		if lastErr == nil && transcript != "" {
			break
		}
	}
	if transcript == "" {
		// No English track; take whatever languages the video has.
		langs, listErr := e.listTrackLangs(ctx, videoID)
		if listErr == nil {
			for _, lang := range langs {
				if tried[lang] {
					continue
				}
				transcript, lastErr = e.fetchTranscript(ctx, videoID, lang)
				if lastErr == nil && transcript != "" {
					break
				}
			}
		}
	}
	if transcript == "" {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("%w: no captions available for video %s", ErrEmptyContent, videoID)
	}

	title := e.fetchTitle(ctx, videoID)
	if title == "" {
		title = "YouTube video " + videoID
	}

	return &Extraction{Title: title, Content: capContent(transcript)}, nil
}

// timedtext XML: <transcript><text start="..." dur="...">...</text></transcript>
type timedtextDoc struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

func (e *YouTubeExtractor) fetchTranscript(ctx context.Context, videoID, lang string) (string, error) {
	endpoint := fmt.Sprintf("%s?lang=%s&v=%s", e.baseURL, url.QueryEscape(lang), url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: timedtext returned status %d", ErrUnreachable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if len(body) == 0 {
		return "", nil
	}

	var doc timedtextDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("%w: malformed caption XML", ErrEmptyContent)
	}

	parts := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		line := html.UnescapeString(t.Value)
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}

	return cleanTranscript(strings.Join(parts, " ")), nil
}

// track list XML: <transcript_list><track lang_code="de" .../></transcript_list>
type trackListDoc struct {
	Tracks []struct {
		LangCode string `xml:"lang_code,attr"`
	} `xml:"track"`
}

// listTrackLangs asks timedtext which caption tracks the video carries.
func (e *YouTubeExtractor) listTrackLangs(ctx context.Context, videoID string) ([]string, error) {
	endpoint := fmt.Sprintf("%s?type=list&v=%s", e.baseURL, url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: track list returned status %d", ErrUnreachable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if len(body) == 0 {
		return nil, nil
	}

	var doc trackListDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed track list XML", ErrEmptyContent)
	}

	langs := make([]string, 0, len(doc.Tracks))
	for _, t := range doc.Tracks {
		if t.LangCode != "" {
			langs = append(langs, t.LangCode)
		}
	}
	return langs, nil
}

// fetchTitle asks the oEmbed endpoint for the video title. Best effort;
// an empty string means the caller should fall back to a placeholder.
func (e *YouTubeExtractor) fetchTitle(ctx context.Context, videoID string) string {
	videoURL := "https://www.youtube.com/watch?v=" + videoID
	endpoint := fmt.Sprintf("%s?url=%s&format=json", e.oembedURL, url.QueryEscape(videoURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ""
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Title)
}

// cleanTranscript strips caption artifacts and normalizes whitespace.
func cleanTranscript(s string) string {
	s = bracketRe.ReplaceAllString(s, "")
	s = parenRe.ReplaceAllString(s, "")
	return collapseWhitespace(s)
}
