package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var githubRepoRe = regexp.MustCompile(`github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?(?:[/?#].*)?$`)

// GitHubExtractor summarizes repositories from their metadata and README.
type GitHubExtractor struct {
	client *http.Client
	token  string

	// apiURL is overridable for tests.
	apiURL string
}

// NewGitHubExtractor creates a GitHub repository extractor. The token is
// optional; without it requests count against the unauthenticated rate limit.
func NewGitHubExtractor(timeout time.Duration, token string) *GitHubExtractor {
	return &GitHubExtractor{
		client: newHTTPClient(timeout),
		token:  token,
		apiURL: "https://api.github.com",
	}
}

// ParseRepoURL extracts owner and repo from a GitHub URL.
func ParseRepoURL(rawURL string) (owner, repo string, err error) {
	m := githubRepoRe.FindStringSubmatch(rawURL)
	if len(m) < 3 {
		return "", "", fmt.Errorf("%w: not a GitHub repository URL: %q", ErrInvalidSource, rawURL)
	}
	return m[1], m[2], nil
}

type repoMetadata struct {
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	Topics      []string `json:"topics"`
}

// Extract fetches repository metadata and README text for rawURL.
func (e *GitHubExtractor) Extract(ctx context.Context, rawURL string) (*Extraction, error) {
	owner, repo, err := ParseRepoURL(rawURL)
	if err != nil {
		return nil, err
	}

	meta, err := e.fetchMetadata(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	// README is best effort; metadata alone can still be summarized.
	readme, _ := e.fetchReadme(ctx, owner, repo)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Repository: %s\n", meta.FullName)
	if meta.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", meta.Description)
	}
	if meta.Language != "" {
		fmt.Fprintf(&sb, "Primary language: %s\n", meta.Language)
	}
	fmt.Fprintf(&sb, "Stars: %d, Forks: %d\n", meta.Stars, meta.Forks)
	if len(meta.Topics) > 0 {
		fmt.Fprintf(&sb, "Topics: %s\n", strings.Join(meta.Topics, ", "))
	}
	if readme != "" {
		sb.WriteString("\nREADME:\n")
		sb.WriteString(readme)
	}

	content := strings.TrimSpace(sb.String())
	if len(content) < minArticleChars {
		return nil, fmt.Errorf("%w: repository has no description or README", ErrEmptyContent)
	}

	title := meta.FullName
	if title == "" {
		title = owner + "/" + repo
	}

	return &Extraction{Title: title, Content: capContent(content)}, nil
}

func (e *GitHubExtractor) fetchMetadata(ctx context.Context, owner, repo string) (*repoMetadata, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s", e.apiURL, owner, repo)

	body, status, err := e.get(ctx, endpoint, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: repository %s/%s not found", ErrInvalidSource, owner, repo)
	default:
		return nil, fmt.Errorf("%w: GitHub API returned status %d", ErrUnreachable, status)
	}

	var meta repoMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("%w: malformed API response", ErrUnreachable)
	}
	return &meta, nil
}

func (e *GitHubExtractor) fetchReadme(ctx context.Context, owner, repo string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/readme", e.apiURL, owner, repo)

	body, status, err := e.get(ctx, endpoint, "application/vnd.github.raw+json")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: readme returned status %d", ErrUnreachable, status)
	}
	return strings.TrimSpace(string(body)), nil
}

func (e *GitHubExtractor) get(ctx context.Context, endpoint, accept string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return body, resp.StatusCode, nil
}
