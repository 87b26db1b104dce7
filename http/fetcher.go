// Package http provides an HTTP-based implementation of lawofone.Fetcher
// for the static pages scraped into the corpus.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/lawofone"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies the scraper to remote hosts.
const DefaultUserAgent = "lawofone-indexer/1.0 (+https://github.com/fwojciec/lawofone)"

// DefaultMaxBodyBytes caps the size of a response body read into memory.
const DefaultMaxBodyBytes = 10 << 20

// Ensure Fetcher implements lawofone.Fetcher at compile time.
var _ lawofone.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves documents with plain GET requests. It does not retry
// and never treats an HTTP status as an error.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	maxBytes  int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodyBytes caps how much of each response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the document at url and returns its status and body.
// Transport failures return an ETRANSPORT error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", lawofone.Errorf(lawofone.EINVALID, "invalid request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", lawofone.Errorf(lawofone.ETRANSPORT, "GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return resp.StatusCode, "", lawofone.Errorf(lawofone.ETRANSPORT, "read %s: %v", url, err)
	}

	return resp.StatusCode, string(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
