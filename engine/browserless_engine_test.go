package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestBrowserlessEngine_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/content" {
			t.Errorf("path = %q, want /content", r.URL.Path)
		}
		if tok := r.URL.Query().Get("token"); tok != "secret" {
			t.Errorf("token = %q, want secret", tok)
		}
		var body contentRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.URL != "https://acme.com" || body.WaitFor != 3000 || body.GotoOptions.WaitUntil != "networkidle2" {
			t.Errorf("unexpected payload %+v", body)
		}
		_, _ = w.Write([]byte("<html><head><title>Rendered</title></head></html>"))
	}))
	defer srv.Close()

	e := NewBrowserlessEngine(srv.URL+"/", "secret", 3*time.Second, 5*time.Second)
	got, err := e.Fetch(context.Background(), &FetchRequest{URL: "https://acme.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Rendered" || got.EngineName != "browserless" || got.StatusCode != 200 {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestBrowserlessEngine_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := NewBrowserlessEngine(srv.URL, "", time.Second, 5*time.Second)
	_, err := e.Fetch(context.Background(), &FetchRequest{URL: "https://acme.com"})

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected StatusError 429, got %v", err)
	}
}

func TestLiveViewURL(t *testing.T) {
	got, err := LiveViewURL("https://chrome.example.io/", "tok en")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://chrome.example.io/?token=tok+en" {
		t.Errorf("LiveViewURL = %q", got)
	}
	if _, err := LiveViewURL("chrome.example.io", "t"); err == nil {
		t.Error("expected error for relative base url")
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"abcdefghijklmnopqrstuvwxyz", "abcdefghij..."},
		{"abcdefgh", "abcd..."},
		{"a", "..."},
		{"", "..."},
	}
	for _, tt := range tests {
		if got := MaskToken(tt.token); got != tt.want {
			t.Errorf("MaskToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}
