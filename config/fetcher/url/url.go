// Package url provides an HTTP DataFetcher implementation for the config package.
//
// Unlike the file fetcher, the document is downloaded on every Fetch, so a
// loader stage always sees the current remote state. FetchContext ties the
// request to a context; cancelling it fails that single fetch.
//
// Usage:
//
//	fetcher := url.New("https://config.internal/app.yaml", url.WithTimeout(5*time.Second))
//	data, err := fetcher.FetchContext(ctx)
package url

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a whole request when no client timeout is configured.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBytes is the largest response body accepted by default.
	DefaultMaxBytes int64 = 10 << 20
)

var (
	// ErrUnexpectedStatus is returned for responses outside the 2xx range.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrBodyTooLarge is returned when the response body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("response body too large")
	// ErrEmptyURL is returned when the fetcher has no URL.
	ErrEmptyURL = errors.New("url must not be empty")
)

// Fetcher implements config.DataFetcher for documents served over HTTP(S).
type Fetcher struct {
	url      string
	client   *http.Client
	maxBytes int64
	header   http.Header
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client used for requests.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTimeout sets a per-request timeout on a dedicated client.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.client = &http.Client{Timeout: timeout} //nolint:exhaustruct // zero-value defaults are fine
	}
}

// WithMaxBytes limits the size of the accepted response body.
func WithMaxBytes(limit int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = limit
	}
}

// WithHeader adds a request header, e.g. an Authorization token.
func WithHeader(key, value string) Option {
	return func(f *Fetcher) {
		f.header.Add(key, value)
	}
}

// New creates a Fetcher for rawURL.
func New(rawURL string, opts ...Option) *Fetcher {
	fetcher := &Fetcher{
		url:      rawURL,
		client:   &http.Client{Timeout: DefaultTimeout}, //nolint:exhaustruct // zero-value defaults are fine
		maxBytes: DefaultMaxBytes,
		header:   http.Header{},
	}

	for _, apply := range opts {
		apply(fetcher)
	}

	return fetcher
}

// URL returns the address the Fetcher downloads from.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch downloads the document using a background context.
func (f *Fetcher) Fetch() ([]byte, error) {
	return f.FetchContext(context.Background())
}

// FetchContext downloads the document, honouring ctx cancellation.
func (f *Fetcher) FetchContext(ctx context.Context) ([]byte, error) {
	if f.url == "" {
		return nil, ErrEmptyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %q: %w", f.url, err)
	}

	for key, values := range f.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %q: %w", f.url, err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("requesting %q: %w: %s", f.url, ErrUnexpectedStatus, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body of %q: %w", f.url, err)
	}

	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("reading body of %q: %w (limit %d bytes)", f.url, ErrBodyTooLarge, f.maxBytes)
	}

	return data, nil
}
