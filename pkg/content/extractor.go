package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// MaxBodyBytes bounds how much of a page is read.
const MaxBodyBytes = 5 << 20

// Article is the readable content extracted from a page.
type Article struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	TextContent   string `json:"textContent"`
	Length        int    `json:"length"`
	Excerpt       string `json:"excerpt"`
	Byline        string `json:"byline"`
	SiteName      string `json:"siteName"`
	PublishedTime string `json:"publishedTime"`
	RawHTML       string `json:"rawHtml"`
}

// FetchError is returned when a page cannot be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Cause      error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Failed to extract content: %v", e.Cause)
	}
	return fmt.Sprintf("Failed to extract content: HTTP %d: %s", e.StatusCode, e.Status)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Extractor fetches pages and extracts their article content.
type Extractor struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	logger    *slog.Logger
}

// NewExtractor creates an Extractor. A nil client gets a 30 second timeout.
func NewExtractor(client *http.Client, version string) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Extractor{
		client:    client,
		userAgent: "voygen-api/" + version,
		maxBytes:  MaxBodyBytes,
		logger:    slog.Default().With("component", "content.extractor"),
	}
}

// Extract fetches url and returns its article. Pages larger than
// MaxBodyBytes are rejected rather than parsed partially.
func (e *Extractor) Extract(ctx context.Context, url string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Cause: err}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		status := strings.TrimPrefix(resp.Status, fmt.Sprintf("%d ", resp.StatusCode))
		if status == "" || status == resp.Status {
			status = http.StatusText(resp.StatusCode)
		}
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Status: status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return nil, &FetchError{URL: url, Cause: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > e.maxBytes {
		return nil, &FetchError{URL: url, Cause: fmt.Errorf("page exceeds %d bytes", e.maxBytes)}
	}

	article := Parse(body, resp.Request.URL)

	e.logger.Debug("content extracted",
		"url", url,
		"title", article.Title,
		"length", article.Length,
		"bytes", len(body),
	)
	return article, nil
}

// Parse runs readability over an HTML document. pageURL resolves relative
// links and may be nil. A page with no readable content yields an Article
// holding only RawHTML.
func Parse(raw []byte, pageURL *nurl.URL) *Article {
	if pageURL == nil {
		pageURL = &nurl.URL{}
	}
	article := &Article{RawHTML: string(raw)}

	parsed, err := readability.FromReader(bytes.NewReader(raw), pageURL)
	if err != nil {
		slog.Debug("no readable content", "url", pageURL.String(), "error", err)
		return article
	}

	article.Title = parsed.Title
	article.Content = parsed.Content
	article.TextContent = parsed.TextContent
	article.Length = parsed.Length
	article.Excerpt = parsed.Excerpt
	article.Byline = parsed.Byline
	article.SiteName = parsed.SiteName
	if parsed.PublishedTime != nil {
		article.PublishedTime = parsed.PublishedTime.Format(time.RFC3339)
	}
	return article
}
