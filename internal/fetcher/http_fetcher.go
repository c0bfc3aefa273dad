// Package fetcher retrieves the raw bytes of source pages over HTTP.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/north-cloud/headlines/internal/logger"
)

// Fetcher returns the body of the document at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Config tunes the HTTP fetcher.
type Config struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// HTTPFetcher implements Fetcher with net/http.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	log          logger.Logger
}

// NewHTTPFetcher builds a fetcher with its own tuned client.
func NewHTTPFetcher(cfg Config, log logger.Logger) *HTTPFetcher {
	return NewHTTPFetcherWithClient(NewClient(cfg.Timeout), cfg, log)
}

// NewHTTPFetcherWithClient uses client as is, which lets tests pass an
// httptest server's client.
func NewHTTPFetcherWithClient(client *http.Client, cfg Config, log logger.Logger) *HTTPFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &HTTPFetcher{
		client:       client,
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
		log:          log,
	}
}

// Fetch performs a GET and returns the body of a 2xx response. Failures are
// returned as *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ClassifyNetworkError(err, url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, ClassifyHTTPStatus(resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, ClassifyReadError(err, url)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, &FetchError{
			Type:  ErrTypeTooLarge,
			Level: LevelWarn,
			URL:   url,
			Cause: fmt.Errorf("body exceeds %d bytes", f.maxBodyBytes),
		}
	}

	f.log.Debug("Fetched page",
		logger.String("url", url),
		logger.Int("status", resp.StatusCode),
		logger.Int("bytes", len(body)),
		logger.Duration("duration", time.Since(start)),
	)

	return body, nil
}
