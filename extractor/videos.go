package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/harvest/models"
)

const maxVideos = 30

var (
	youTubeRe = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`)
	vimeoRe   = regexp.MustCompile(`(?:player\.vimeo\.com/video/|vimeo\.com/)(\d+)`)
)

// Videos finds YouTube and Vimeo ids anywhere in the raw HTML, then
// <video>/<source> elements and player-like iframes, in that order.
// YouTube and Vimeo entries are unique per id and always carry canonical
// watch and embed URLs.
func Videos(d *Document, f models.VideoFilter) []models.VideoRef {
	out := make([]models.VideoRef, 0)
	seen := newOrderedSet()
	full := func() bool { return len(out) >= maxVideos }

	if f.YouTube {
		for _, m := range youTubeRe.FindAllStringSubmatch(d.HTML, -1) {
			if full() {
				break
			}
			id := m[1]
			if !seen.Add(models.PlatformYouTube + ":" + id) {
				continue
			}
			out = append(out, models.VideoRef{
				Platform: models.PlatformYouTube,
				URL:      "https://www.youtube.com/watch?v=" + id,
				VideoID:  id,
				EmbedURL: "https://www.youtube.com/embed/" + id,
			})
		}
	}

	if f.Vimeo {
		for _, m := range vimeoRe.FindAllStringSubmatch(d.HTML, -1) {
			if full() {
				break
			}
			id := m[1]
			if !seen.Add(models.PlatformVimeo + ":" + id) {
				continue
			}
			out = append(out, models.VideoRef{
				Platform: models.PlatformVimeo,
				URL:      "https://vimeo.com/" + id,
				VideoID:  id,
				EmbedURL: "https://player.vimeo.com/video/" + id,
			})
		}
	}

	if !f.Other {
		return out
	}

	videoRule.find(d.Doc).EachWithBreak(func(_ int, v *goquery.Selection) bool {
		if abs, ok := resolve(d.Base, v.AttrOr("src", "")); ok {
			out = append(out, models.VideoRef{Platform: models.PlatformDirect, URL: abs, Type: "video"})
			if full() {
				return false
			}
		}
		stop := false
		v.Find("source[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			abs, ok := resolve(d.Base, s.AttrOr("src", ""))
			if !ok {
				return true
			}
			out = append(out, models.VideoRef{
				Platform: models.PlatformDirect,
				URL:      abs,
				Type:     s.AttrOr("type", "video"),
			})
			stop = full()
			return !stop
		})
		return !stop
	})

	if full() {
		return out
	}

	iframeRule.find(d.Doc).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := s.AttrOr("src", "")
		lower := strings.ToLower(src)
		if !strings.Contains(lower, "video") && !strings.Contains(lower, "embed") &&
			!strings.Contains(lower, "player") {
			return true
		}
		abs, ok := resolve(d.Base, src)
		if !ok {
			return true
		}
		out = append(out, models.VideoRef{Platform: models.PlatformEmbedded, URL: abs, Type: "iframe"})
		return !full()
	})
	return out
}
