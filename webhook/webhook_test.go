package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/harvest/models"
)

func testSession() *models.Session {
	return &models.Session{
		SessionID:  "s-1",
		Name:       "demo",
		Pages:      []models.Page{{PageID: "p-1", URL: "https://acme.com", Title: "Acme"}},
		TotalPages: 1,
		Status:     models.SessionCompleted,
	}
}

func TestDeliver_PostsSessionJSON(t *testing.T) {
	var got models.Session
	var sig, ctype string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		ctype = r.Header.Get("Content-Type")
		sig = r.Header.Get(SignatureHeader)
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if want := "sha256=" + Sign("s3cret", body); sig != want {
			t.Errorf("signature = %q, want %q", sig, want)
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	res := NewDispatcher(5*time.Second, "s3cret").Deliver(context.Background(), srv.URL, testSession())

	if !res.Sent || res.StatusCode != http.StatusOK || res.BodySnippet != "ok" {
		t.Errorf("result = %+v", res)
	}
	if ctype != "application/json" {
		t.Errorf("Content-Type = %q", ctype)
	}
	if got.SessionID != "s-1" || got.TotalPages != 1 || len(got.Pages) != 1 {
		t.Errorf("payload = %+v", got)
	}
}

func TestDeliver_NonSuccessStatusStillSent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer srv.Close()

	res := NewDispatcher(5*time.Second, "").Deliver(context.Background(), srv.URL, testSession())

	if !res.Sent || res.StatusCode != http.StatusInternalServerError {
		t.Errorf("result = %+v", res)
	}
	if len(res.BodySnippet) != maxSnippet {
		t.Errorf("snippet length = %d, want %d", len(res.BodySnippet), maxSnippet)
	}
}

func TestDeliver_UnsignedWithoutSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get(SignatureHeader); h != "" {
			t.Errorf("unexpected signature %q", h)
		}
	}))
	defer srv.Close()

	if res := NewDispatcher(5*time.Second, "").Deliver(context.Background(), srv.URL, testSession()); !res.Sent {
		t.Errorf("result = %+v", res)
	}
}

func TestDeliver_TransportFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	res := NewDispatcher(2*time.Second, "").Deliver(context.Background(), "http://"+addr+"/hook", testSession())

	if res.Sent {
		t.Errorf("Sent = true for unreachable endpoint")
	}
	if res.Error == "" || res.StatusCode != 0 {
		t.Errorf("result = %+v, want error only", res)
	}
}

func TestDeliver_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	res := NewDispatcher(50*time.Millisecond, "").Deliver(context.Background(), srv.URL, testSession())
	if res.Sent || res.Error == "" {
		t.Errorf("result = %+v, want timeout failure", res)
	}
}
