package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubEngine struct {
	name   string
	result *FetchResult
	err    error
	calls  int
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	r := *s.result
	r.EngineName = s.name
	return &r, nil
}

func TestChain_PrimarySuccess(t *testing.T) {
	primary := &stubEngine{name: "browserless", result: &FetchResult{HTML: "<p>rendered</p>", StatusCode: 200}}
	fallback := &stubEngine{name: "http", result: &FetchResult{HTML: "<p>plain</p>", StatusCode: 200}}

	c := NewChain(primary, fallback, time.Second, time.Second)
	got, err := c.Fetch(context.Background(), "https://acme.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HTML != "<p>rendered</p>" || got.EngineName != "browserless" {
		t.Errorf("got %+v, want primary result", got)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestChain_FallbackOnPrimaryFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"transport error", errors.New("connection refused")},
		{"non-success status", &StatusError{Engine: "browserless", StatusCode: 502}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &stubEngine{name: "browserless", err: tt.err}
			fallback := &stubEngine{name: "http", result: &FetchResult{HTML: "<p>plain</p>", StatusCode: 200}}

			c := NewChain(primary, fallback, time.Second, time.Second)
			got, err := c.Fetch(context.Background(), "https://acme.com")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.EngineName != "http" {
				t.Errorf("EngineName = %q, want http", got.EngineName)
			}
			if primary.calls != 1 || fallback.calls != 1 {
				t.Errorf("calls primary=%d fallback=%d, want 1 and 1", primary.calls, fallback.calls)
			}
		})
	}
}

func TestChain_BothFail(t *testing.T) {
	primary := &stubEngine{name: "browserless", err: errors.New("timeout")}
	fallback := &stubEngine{name: "http", err: &StatusError{Engine: "http", StatusCode: 404}}

	c := NewChain(primary, fallback, time.Second, time.Second)
	_, err := c.Fetch(context.Background(), "https://acme.com/missing")

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T (%v)", err, err)
	}
	if fe.Primary == nil || fe.Fallback == nil {
		t.Errorf("FetchError should carry both causes: %+v", fe)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != 404 {
		t.Errorf("expected wrapped StatusError 404, got %v", err)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("no retries expected: primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestChain_NoPrimary(t *testing.T) {
	fallback := &stubEngine{name: "http", err: errors.New("dns failure")}

	c := NewChain(nil, fallback, time.Second, time.Second)
	if c.PrimaryName() != "off" {
		t.Errorf("PrimaryName() = %q, want off", c.PrimaryName())
	}

	_, err := c.Fetch(context.Background(), "https://acme.com")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Primary != nil {
		t.Errorf("Primary should be nil without a rendering engine, got %v", fe.Primary)
	}
}
