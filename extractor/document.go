// Package extractor turns a fetched HTML page into typed lead, site and
// video records. Every extraction function is pure: it reads an already
// parsed Document and performs no I/O.
package extractor

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a page parsed once and shared by every extraction function.
type Document struct {
	Doc  *goquery.Document
	HTML string   // raw HTML as fetched
	Text string   // flattened visible text
	Base *url.URL // resolution base for relative URLs
}

// Parse parses rawHTML and flattens its visible text.
func Parse(rawHTML, baseURL string) (*Document, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("extractor: parse base url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("extractor: parse html: %w", err)
	}
	return &Document{
		Doc:  doc,
		HTML: rawHTML,
		Text: VisibleText(doc),
		Base: base,
	}, nil
}

// Title returns the trimmed text of the first <title> element.
func (d *Document) Title() string {
	return strings.TrimSpace(d.Doc.Find("title").First().Text())
}

// invisible lists elements whose text never renders.
var invisible = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// VisibleText joins every non-blank text node of doc with single spaces,
// skipping script, style, noscript and template content.
func VisibleText(doc *goquery.Document) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && invisible[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

// collapse trims s and squeezes internal whitespace runs to one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// resolve turns ref into an absolute URL against base.
func resolve(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	u, err := base.Parse(ref)
	if err != nil {
		return "", false
	}
	return u.String(), true
}
