// Package fetcher downloads remote documents over HTTP and decodes JSON
// payloads.
package fetcher

import (
	"context"
	"fmt"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download issues a GET for url and returns the response body of a 2xx
	// response. The caller must close the body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// StatusError is returned when the remote answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}
