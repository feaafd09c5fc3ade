package engine

import (
	"context"
	"fmt"
	"time"
)

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier (e.g. "http", "browserless", "rod").
	Name() string

	// Fetch retrieves the page content for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// Fetcher obtains the HTML of a URL. Chain is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
}

// FetchError reports that every configured engine failed for a URL.
type FetchError struct {
	URL      string
	Primary  error // nil when no rendering engine is configured
	Fallback error
}

func (e *FetchError) Error() string {
	if e.Primary != nil {
		return fmt.Sprintf("fetch %s: primary: %v; fallback: %v", e.URL, e.Primary, e.Fallback)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Fallback)
}

// Unwrap exposes the fallback cause, the last error observed.
func (e *FetchError) Unwrap() error { return e.Fallback }

// Reason is the human-readable cause string surfaced to callers.
func (e *FetchError) Reason() string { return e.Error() }

// StatusError is returned by engines when the target answered with a
// non-success status code.
type StatusError struct {
	Engine     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: non-success status %d", e.Engine, e.StatusCode)
}
