package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/harvest/models"
)

const (
	maxImages  = 100
	maxLinks   = 200
	maxLinkTxt = 100

	// MaxSiteText bounds the flattened text kept for text_only requests.
	MaxSiteText = 10000
)

var styleURLRe = regexp.MustCompile(`url\(["']?([^"')\s]+)["']?\)`)

// Images returns <img> sources (src, then data-src) followed by inline
// style url(...) references, resolved absolute.
func Images(d *Document) []models.Image {
	out := make([]models.Image, 0)

	imgRule.find(d.Doc).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := s.AttrOr("src", "")
		if strings.TrimSpace(src) == "" {
			src = s.AttrOr("data-src", "")
		}
		abs, ok := resolve(d.Base, src)
		if !ok {
			return true
		}
		out = append(out, models.Image{
			URL:    abs,
			Alt:    s.AttrOr("alt", ""),
			Width:  s.AttrOr("width", ""),
			Height: s.AttrOr("height", ""),
		})
		return len(out) < maxImages
	})

	if len(out) < maxImages {
		styledRule.find(d.Doc).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, m := range styleURLRe.FindAllStringSubmatch(s.AttrOr("style", ""), -1) {
				abs, ok := resolve(d.Base, m[1])
				if !ok {
					continue
				}
				out = append(out, models.Image{URL: abs, Alt: "background-image", Type: "background"})
				if len(out) >= maxImages {
					return false
				}
			}
			return true
		})
	}
	return out
}

// Links returns anchors other than fragment-only and javascript: hrefs.
func Links(d *Document) []models.Link {
	out := make([]models.Link, 0)
	anchorRule.find(d.Doc).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return true
		}
		abs, ok := resolve(d.Base, href)
		if !ok {
			return true
		}
		out = append(out, models.Link{
			URL:        abs,
			Text:       truncate(collapse(s.Text()), maxLinkTxt),
			IsExternal: !sameHost(d, abs),
		})
		return len(out) < maxLinks
	})
	return out
}

func sameHost(d *Document, abs string) bool {
	u, err := d.Base.Parse(abs)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, d.Base.Host)
}

// CSS collects non-empty <style> blocks and linked stylesheet URLs.
func CSS(d *Document) *models.CSSBundle {
	b := &models.CSSBundle{
		InlineStyles:        make([]string, 0),
		ExternalStylesheets: make([]string, 0),
	}
	styleTagRule.find(d.Doc).Each(func(_ int, s *goquery.Selection) {
		if css := s.Text(); strings.TrimSpace(css) != "" {
			b.InlineStyles = append(b.InlineStyles, css)
		}
	})
	stylesheetRule.find(d.Doc).Each(func(_ int, s *goquery.Selection) {
		if abs, ok := resolve(d.Base, s.AttrOr("href", "")); ok {
			b.ExternalStylesheets = append(b.ExternalStylesheets, abs)
		}
	})
	b.TotalCSS = strings.Join(b.InlineStyles, "\n\n")
	return b
}

// PlainText returns the visible text capped for storage.
func PlainText(d *Document) string {
	return truncate(d.Text, MaxSiteText)
}
