// Package proxy relays a page so it can be embedded by a third-party
// origin, pinning relative references to the upstream with <base>.
package proxy

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/models"
)

// Getter performs the upstream GET.
type Getter interface {
	Get(ctx context.Context, url string, headers map[string]string) (*engine.RawResponse, error)
}

// Rewriter fetches pages and rewrites HTML responses.
type Rewriter struct {
	getter Getter
}

// NewRewriter returns a Rewriter using getter for upstream requests.
func NewRewriter(getter Getter) *Rewriter {
	return &Rewriter{getter: getter}
}

// Proxy fetches url. HTML bodies get <base href="url"> as the first child
// of <head>; any other content type passes through untouched. Upstream
// error statuses are relayed, not treated as failures.
func (r *Rewriter) Proxy(ctx context.Context, url string) (*models.ProxyResult, error) {
	raw, err := r.getter.Get(ctx, url, nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeProxy, "failed to fetch "+url, err)
	}

	contentType := raw.ContentType
	if contentType == "" {
		contentType = "text/html"
	}
	res := &models.ProxyResult{
		Content:     raw.Body,
		StatusCode:  raw.StatusCode,
		ContentType: contentType,
	}
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return res, nil
	}

	rewritten, err := InjectBase(raw.Body, url)
	if err != nil {
		slog.Warn("proxy: html rewrite failed, passing body through", "url", url, "error", err)
		return res, nil
	}
	res.Content = rewritten
	return res, nil
}

// InjectBase parses body and inserts <base href> as the first child of
// <head>, creating <head> under <html> when it is missing.
func InjectBase(body []byte, href string) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("proxy: parse html: %w", err)
	}

	root := findElement(doc, atom.Html)
	if root == nil {
		root = &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
		doc.AppendChild(root)
	}
	head := findElement(root, atom.Head)
	if head == nil {
		head = &html.Node{Type: html.ElementNode, Data: "head", DataAtom: atom.Head}
		root.InsertBefore(head, root.FirstChild)
	}

	base := &html.Node{
		Type:     html.ElementNode,
		Data:     "base",
		DataAtom: atom.Base,
		Attr:     []html.Attribute{{Key: "href", Val: href}},
	}
	head.InsertBefore(base, head.FirstChild)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("proxy: render html: %w", err)
	}
	return buf.Bytes(), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
