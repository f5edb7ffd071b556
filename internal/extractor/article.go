package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// minArticleChars is the floor below which a page is considered to have
// no real article body (paywalls, consent walls, JS-only shells).
const minArticleChars = 50

// ArticleExtractor fetches a web page and extracts its readable text.
type ArticleExtractor struct {
	client *http.Client
}

// NewArticleExtractor creates an article extractor with the given fetch timeout.
func NewArticleExtractor(timeout time.Duration) *ArticleExtractor {
	return &ArticleExtractor{client: newHTTPClient(timeout)}
}

// Extract downloads the page at rawURL and returns its title and main text.
// Readability is tried first; goquery-based scraping is the fallback.
func (e *ArticleExtractor) Extract(ctx context.Context, rawURL string) (*Extraction, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: not a valid URL: %q", ErrInvalidSource, rawURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidSource, parsed.Scheme)
	}

	body, err := e.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	title, content := extractReadable(body, parsed)
	if content == "" {
		title, content = extractWithGoquery(body, title)
	}

	if len(content) < minArticleChars {
		return nil, fmt.Errorf("%w: article body too short", ErrEmptyContent)
	}

	return &Extraction{Title: title, Content: capContent(content)}, nil
}

func (e *ArticleExtractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch returned status %d", ErrUnreachable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return body, nil
}

// extractReadable runs readability over the page and converts the result
// to markdown. Returns empty content when readability finds nothing.
func extractReadable(body []byte, pageURL *url.URL) (title, content string) {
	article, err := readability.FromReader(strings.NewReader(string(body)), pageURL)
	if err != nil {
		return "", ""
	}

	md, err := htmltomarkdown.ConvertString(article.Content)
	if err != nil {
		md = article.TextContent
	}

	return article.Title, strings.TrimSpace(md)
}

// extractWithGoquery scrapes the page directly when readability fails.
func extractWithGoquery(body []byte, title string) (string, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return title, ""
	}

	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		if og, ok := doc.Find("meta[property='og:title']").First().Attr("content"); ok {
			title = strings.TrimSpace(og)
		}
	}

	doc.Find("script, style, noscript, iframe, svg, header, footer, nav, aside").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	contentSel := doc.Find("article, main, .content, .post-content, .article-content, #content").First()
	if contentSel.Length() == 0 {
		contentSel = doc.Find("body")
	}

	return title, collapseWhitespace(contentSel.Text())
}
