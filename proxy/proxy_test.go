package proxy

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/models"
)

func TestInjectBase_FirstChildOfHead(t *testing.T) {
	out, err := InjectBase([]byte(`<html><head><title>T</title></head><body><img src="/a.png"></body></html>`), "https://acme.com/page")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `<head><base href="https://acme.com/page"/><title>T</title>`) {
		t.Errorf("output = %s", out)
	}
}

func TestInjectBase_CreatesHead(t *testing.T) {
	out, err := InjectBase([]byte(`<p>bare fragment</p>`), "https://acme.com/")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `<head><base href="https://acme.com/"/></head>`) {
		t.Errorf("output = %s", out)
	}
}

func TestProxy_RewritesHTMLOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(`<html><head></head><body>hi</body></html>`))
		case "/data.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"a":1}`))
		default:
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("nope"))
		}
	}))
	defer srv.Close()

	rw := NewRewriter(engine.NewHTTPEngine(5 * time.Second))
	ctx := context.Background()

	page, err := rw.Proxy(ctx, srv.URL+"/page")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page.Content), `<base href="`+srv.URL+`/page"/>`) {
		t.Errorf("html content = %s", page.Content)
	}

	data, err := rw.Proxy(ctx, srv.URL+"/data.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(data.Content) != `{"a":1}` || data.ContentType != "application/json" {
		t.Errorf("json passthrough = %+v", data)
	}

	missing, err := rw.Proxy(ctx, srv.URL+"/missing")
	if err != nil {
		t.Fatal(err)
	}
	if missing.StatusCode != http.StatusNotFound || string(missing.Content) != "nope" {
		t.Errorf("404 passthrough = %+v", missing)
	}
}

func TestProxy_FetchFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewRewriter(engine.NewHTTPEngine(2*time.Second)).Proxy(context.Background(), "http://"+addr+"/")
	if got := models.CodeOf(err); got != models.ErrCodeProxy {
		t.Errorf("CodeOf(err) = %q, want %q", got, models.ErrCodeProxy)
	}
}

type stubGetter struct {
	resp *engine.RawResponse
}

func (g stubGetter) Get(context.Context, string, map[string]string) (*engine.RawResponse, error) {
	return g.resp, nil
}

func TestProxy_MissingContentTypeTreatedAsHTML(t *testing.T) {
	rw := NewRewriter(stubGetter{resp: &engine.RawResponse{
		Body:       []byte(`<html><head></head><body>hi</body></html>`),
		StatusCode: http.StatusOK,
	}})

	res, err := rw.Proxy(context.Background(), "https://acme.com/page")
	if err != nil {
		t.Fatal(err)
	}
	if res.ContentType != "text/html" {
		t.Errorf("ContentType = %q, want text/html", res.ContentType)
	}
	if !strings.Contains(string(res.Content), `<base href="https://acme.com/page"/>`) {
		t.Errorf("content = %s", res.Content)
	}
}
