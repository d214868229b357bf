// Package fetch provides the demo page-collection collaborator: work values
// that fetch a URL and report a small summary. The scheduling engine never
// sees any of this — it receives the work as an opaque callable.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NewClient returns an HTTP client tuned for fetching many pages from a
// small set of hosts. One client is shared across all page work.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// PageSummary is the success value of a page-fetch task.
type PageSummary struct {
	URL        string
	StatusCode int
	Bytes      int64
}

// PageWork fetches one URL. It implements the engine's Work interface.
type PageWork struct {
	Client *http.Client
	URL    string
}

// Invoke performs the fetch. Non-2xx responses are errors so the engine's
// retry policy applies to them.
func (w PageWork) Invoke(ctx context.Context) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", w.URL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", w.URL, resp.StatusCode)
	}

	return PageSummary{URL: w.URL, StatusCode: resp.StatusCode, Bytes: n}, nil
}
