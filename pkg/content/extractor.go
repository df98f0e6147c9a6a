// Package content pulls the readable text of a linked page, used to give the writer more to work with
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/markusmobius/go-trafilatura"
)

// ErrTooShort is returned when the extracted text is shorter than the configured minimum
var ErrTooShort = errors.New("extracted text too short")

const maxPageSize = 5 << 20

// ExtractorParams configures HTTPExtractor
type ExtractorParams struct {
	Timeout       time.Duration
	UserAgent     string
	MinTextLength int
}

// HTTPExtractor downloads a page and extracts its main text with trafilatura
type HTTPExtractor struct {
	ExtractorParams
	client *http.Client
}

// NewHTTPExtractor creates a new content extractor
func NewHTTPExtractor(params ExtractorParams) *HTTPExtractor {
	return &HTTPExtractor{ExtractorParams: params, client: &http.Client{Timeout: params.Timeout}}
}

// Extract retrieves the page at urlStr and returns its main text
func (e *HTTPExtractor) Extract(ctx context.Context, urlStr string) (string, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	if (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return "", fmt.Errorf("invalid URL: %s", urlStr)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch URL %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for URL %s", resp.StatusCode, urlStr)
	}

	// the link may land on a different page after redirects
	if resp.Request != nil && resp.Request.URL != nil {
		parsedURL = resp.Request.URL
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		IncludeImages:   false,
		IncludeLinks:    false,
		Deduplicate:     true,
		OriginalURL:     parsedURL,
	}
	result, err := trafilatura.Extract(io.LimitReader(resp.Body, maxPageSize), opts)
	if err != nil {
		return "", fmt.Errorf("extract content from %s: %w", urlStr, err)
	}
	if result == nil {
		return "", fmt.Errorf("no content extracted from %s", urlStr)
	}

	text := strings.TrimSpace(result.ContentText)
	if len([]rune(text)) < e.MinTextLength {
		return "", fmt.Errorf("%s, %d chars: %w", urlStr, len([]rune(text)), ErrTooShort)
	}
	return text, nil
}
