package sheets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/634252452/Sheets2Website/internal/csvparse"
	"github.com/634252452/Sheets2Website/internal/logging"
)

// ErrBodyTooLarge is returned when a response exceeds the configured limit.
var ErrBodyTooLarge = errors.New("response body too large")

// Fetcher retrieves the raw text of a remote resource.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// FetchError reports a non-success HTTP status.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("CSV fetch failed (%d) for %s", e.Status, e.URL)
}

// HTTPFetcher downloads resources over HTTP. Requests are never retried.
type HTTPFetcher struct {
	Client      *http.Client
	UserAgent   string
	MaxBodySize int64 // 0 means unlimited
}

// NewHTTPFetcher creates a fetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string, maxBodySize int64) *HTTPFetcher {
	return &HTTPFetcher{
		Client:      &http.Client{Timeout: timeout},
		UserAgent:   userAgent,
		MaxBodySize: maxBodySize,
	}
}

// Fetch performs a GET and returns the body as sanitized UTF-8 text.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("CSV fetch failed for %s: %w", url, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("CSV fetch failed for %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &FetchError{URL: url, Status: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if f.MaxBodySize > 0 {
		body = io.LimitReader(resp.Body, f.MaxBodySize+1)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("CSV fetch failed for %s: read body: %w", url, err)
	}
	if f.MaxBodySize > 0 && int64(len(raw)) > f.MaxBodySize {
		return "", fmt.Errorf("CSV fetch failed for %s: %w (limit %d bytes)", url, ErrBodyTooLarge, f.MaxBodySize)
	}
	text, err := csvparse.ReadText(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("CSV fetch failed for %s: decode body: %w", url, err)
	}

	logger.Debug("fetched sheet",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// FetchTable fetches url and parses the body as CSV.
func FetchTable(ctx context.Context, f Fetcher, url string) (csvparse.Table, error) {
	text, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	table := csvparse.Parse(text)
	logging.FromContext(ctx).Debug("parsed sheet", "url", url, "rows", len(table))
	return table, nil
}
