// Package storage resolves document references into raw bytes.
//
// The extraction core never assumes HTTP specifics beyond "fetch bytes,
// with timeout, yielding success/failure"; this package owns those
// specifics.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrFetchTimeout is returned when the fetch exceeds its time budget.
// Distinguishable from ErrFetchFailed so the orchestrator can report
// the failure reason.
var ErrFetchTimeout = errors.New("document fetch timed out")

// ErrFetchFailed is returned on a network error or non-2xx response.
var ErrFetchFailed = errors.New("document fetch failed")

// ErrDocumentTooLarge is returned when the response body exceeds the
// configured size cap.
var ErrDocumentTooLarge = errors.New("document exceeds maximum size")

// Fetcher resolves a document reference into its raw bytes.
type Fetcher interface {
	// Fetch retrieves the document under the primary time budget.
	Fetch(ctx context.Context, url string) ([]byte, error)

	// FetchFallback retrieves the document under the narrower secondary
	// budget. Used only to recover a page count after the primary
	// fetch/extraction path failed.
	FetchFallback(ctx context.Context, url string) ([]byte, error)
}

// FetcherConfig holds configuration for HTTP document retrieval.
type FetcherConfig struct {
	// PrimaryTimeout is the hard budget for the primary fetch
	PrimaryTimeout time.Duration

	// FallbackTimeout is the narrower budget for the best-effort retry
	FallbackTimeout time.Duration

	// MaxBytes caps the response body size (0 means 100 MB)
	MaxBytes int64
}

// DefaultFetcherConfig returns sensible default configuration.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		PrimaryTimeout:  30 * time.Second,
		FallbackTimeout: 10 * time.Second,
		MaxBytes:        100 << 20,
	}
}

// HTTPFetcher fetches document bytes over HTTP with bounded timeouts.
type HTTPFetcher struct {
	config FetcherConfig
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher with the given configuration.
// Timeouts are enforced per call via context, so the underlying client
// carries no timeout of its own.
func NewHTTPFetcher(config FetcherConfig) *HTTPFetcher {
	if config.PrimaryTimeout <= 0 {
		config.PrimaryTimeout = 30 * time.Second
	}
	if config.FallbackTimeout <= 0 {
		config.FallbackTimeout = 10 * time.Second
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = 100 << 20
	}
	return &HTTPFetcher{
		config: config,
		client: &http.Client{},
	}
}

// NewDefaultHTTPFetcher creates an HTTPFetcher with default configuration.
func NewDefaultHTTPFetcher() *HTTPFetcher {
	return NewHTTPFetcher(DefaultFetcherConfig())
}

// Fetch retrieves the document bytes under the primary time budget.
//
// Example:
//
//	data, err := fetcher.Fetch(ctx, "https://files.example.com/doc.pdf")
//	if errors.Is(err, storage.ErrFetchTimeout) {
//	    // fall back to the secondary fetch
//	}
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.fetch(ctx, url, f.config.PrimaryTimeout)
}

// FetchFallback retrieves the document bytes under the narrower
// secondary budget.
func (f *HTTPFetcher) FetchFallback(ctx context.Context, url string) ([]byte, error) {
	return f.fetch(ctx, url, f.config.FallbackTimeout)
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request: %v", ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("%w: %s", ErrFetchTimeout, url)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	// Read one byte past the cap to detect oversized bodies.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes+1))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("%w: body read: %s", ErrFetchTimeout, url)
		}
		return nil, fmt.Errorf("%w: body read: %v", ErrFetchFailed, err)
	}
	if int64(len(data)) > f.config.MaxBytes {
		return nil, fmt.Errorf("%w: cap %d bytes", ErrDocumentTooLarge, f.config.MaxBytes)
	}
	return data, nil
}

// isTimeout reports whether the failure was the time budget elapsing
// rather than a network or protocol error.
func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() == context.DeadlineExceeded {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
