package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPEngine_FetchFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != ChromeUA {
			t.Errorf("User-Agent = %q, want browser UA", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><head><title> Acme Corp </title></head><body>hi</body></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := NewHTTPEngine(5 * time.Second)
	got, err := e.Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/old"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Acme Corp" {
		t.Errorf("Title = %q, want %q", got.Title, "Acme Corp")
	}
	if got.FinalURL != srv.URL+"/new" {
		t.Errorf("FinalURL = %q, want %q", got.FinalURL, srv.URL+"/new")
	}
	if got.StatusCode != http.StatusOK || got.EngineName != "http" {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestHTTPEngine_FetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	e := NewHTTPEngine(5 * time.Second)
	_, err := e.Fetch(context.Background(), &FetchRequest{URL: srv.URL})

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusForbidden {
		t.Fatalf("expected StatusError 403, got %v", err)
	}
}

func TestHTTPEngine_GetPassesThroughAnyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	e := NewHTTPEngine(5 * time.Second)
	raw, err := e.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.StatusCode != http.StatusNotFound || raw.ContentType != "image/png" || len(raw.Body) != 4 {
		t.Errorf("unexpected raw response %+v", raw)
	}
}

func TestHTTPEngine_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	e := NewHTTPEngine(100 * time.Millisecond)
	if _, err := e.Fetch(context.Background(), &FetchRequest{URL: srv.URL}); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"simple", "<title>Hello</title>", "Hello"},
		{"empty", "<title></title><p>x</p>", ""},
		{"missing", "<p>no title</p>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle(tt.html); got != tt.want {
				t.Errorf("extractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
