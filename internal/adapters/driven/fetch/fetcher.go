// Package fetch downloads web-referenced documents during ingestion.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/corpora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpora-cli/internal/logger"
)

const defaultTimeout = 5 * time.Minute

// HTTPFetcher implements driven.Fetcher over net/http.
type HTTPFetcher struct {
	client *http.Client
}

var _ driven.Fetcher = (*HTTPFetcher)(nil)

// New returns a fetcher with a default client. Per-request deadlines come
// from the caller's context; the client timeout is a backstop.
func New() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: defaultTimeout}}
}

// NewWithClient returns a fetcher using the given client. Useful for tests.
func NewWithClient(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

// Fetch downloads url into dest. The body is streamed to a temp file and
// renamed into place so an interrupted download never leaves a partial dest.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download_*")
	if err != nil {
		return fmt.Errorf("creating temp download: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.ReadFrom(resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing download: %w", err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("moving download into place: %w", err)
	}

	logger.Debug("fetched %s -> %s", url, dest)
	return nil
}
