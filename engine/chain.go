package engine

import (
	"context"
	"log/slog"
	"time"
)

// Chain fetches with a rendering-capable primary engine and, if that fails
// for any reason, makes exactly one fallback attempt with a plain HTTP
// engine. There are no retries and no state carried across calls.
type Chain struct {
	primary         Engine // nil disables the rendering path
	fallback        Engine
	primaryTimeout  time.Duration
	fallbackTimeout time.Duration
}

// NewChain creates a Chain. primary may be nil.
func NewChain(primary, fallback Engine, primaryTimeout, fallbackTimeout time.Duration) *Chain {
	return &Chain{
		primary:         primary,
		fallback:        fallback,
		primaryTimeout:  primaryTimeout,
		fallbackTimeout: fallbackTimeout,
	}
}

// PrimaryName returns the primary engine name, or "off".
func (c *Chain) PrimaryName() string {
	if c.primary == nil {
		return "off"
	}
	return c.primary.Name()
}

// Fetch implements Fetcher.
func (c *Chain) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	var primaryErr error
	if c.primary != nil {
		result, err := c.attempt(ctx, c.primary, url, c.primaryTimeout)
		if err == nil {
			return result, nil
		}
		primaryErr = err
		slog.Warn("primary engine failed, falling back to plain HTTP",
			"engine", c.primary.Name(), "url", url, "error", err)
	}

	result, err := c.attempt(ctx, c.fallback, url, c.fallbackTimeout)
	if err == nil {
		return result, nil
	}
	slog.Error("fetch failed", "url", url, "engine", c.fallback.Name(), "error", err)
	return nil, &FetchError{URL: url, Primary: primaryErr, Fallback: err}
}

// attempt runs one engine under its own deadline.
func (c *Chain) attempt(ctx context.Context, e Engine, url string, timeout time.Duration) (*FetchResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := e.Fetch(attemptCtx, &FetchRequest{URL: url, Timeout: timeout})
	if err != nil {
		return nil, err
	}
	slog.Debug("engine fetched page",
		"engine", result.EngineName,
		"url", url,
		"status", result.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
