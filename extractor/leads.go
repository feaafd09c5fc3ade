package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/harvest/models"
)

const (
	maxEmails           = 50
	maxPhones           = 30
	maxNames            = 20
	maxNamesPerSelector = 20
	maxCompanies        = 15
	maxCompaniesPerRule = 10
	maxCompanyMatches   = 10
	maxSocialLinks      = 20
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`\+?1?\s*\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`),
		regexp.MustCompile(`\+?[0-9]{1,3}[-.\s]?[0-9]{3,4}[-.\s]?[0-9]{3,4}[-.\s]?[0-9]{3,4}`),
		regexp.MustCompile(`\([0-9]{3}\)\s*[0-9]{3}[-.\s]?[0-9]{4}`),
	}

	companyRe = regexp.MustCompile(`[A-Z][A-Za-z\s&]+(?:LLC|Inc|Corp|Ltd|Company|Co\.|Limited)\.?`)

	digitRe = regexp.MustCompile(`[0-9]`)
)

// emailDenylist holds placeholder domains and image extensions that show
// up in markup but are never real contacts.
var emailDenylist = []string{"example.com", "test.com", "email.com", ".png", ".jpg", ".gif"}

// socialPlatforms maps a host substring to its platform. The first match
// wins, so more specific entries must come first.
var socialPlatforms = []struct {
	domain   string
	platform string
}{
	{"facebook.com", "Facebook"},
	{"twitter.com", "Twitter"},
	{"x.com", "Twitter/X"},
	{"linkedin.com", "LinkedIn"},
	{"instagram.com", "Instagram"},
	{"youtube.com", "YouTube"},
	{"tiktok.com", "TikTok"},
	{"pinterest.com", "Pinterest"},
	{"github.com", "GitHub"},
}

// Emails finds addresses in the visible text and the raw HTML.
func Emails(d *Document) []string {
	set := newOrderedSet()
	for _, src := range []string{d.Text, d.HTML} {
		for _, m := range emailRe.FindAllString(src, -1) {
			if deniedEmail(m) {
				continue
			}
			set.Add(m)
		}
	}
	return set.Slice(maxEmails)
}

func deniedEmail(addr string) bool {
	lower := strings.ToLower(addr)
	for _, bad := range emailDenylist {
		if strings.Contains(lower, bad) {
			return true
		}
	}
	return false
}

// Phones applies each phone pattern to the visible text and returns the
// union of the matches.
func Phones(d *Document) []string {
	set := newOrderedSet()
	for _, re := range phoneRes {
		for _, m := range re.FindAllString(d.Text, -1) {
			if m = strings.TrimSpace(m); m != "" {
				set.Add(m)
			}
		}
	}
	return set.Slice(maxPhones)
}

// Names scans the name selectors in priority order and keeps text that
// looks like a person's name.
func Names(d *Document) []models.NameLead {
	out := make([]models.NameLead, 0)
	for _, r := range nameRules {
		r.find(d.Doc).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= maxNamesPerSelector {
				return false
			}
			if text := collapse(s.Text()); looksLikeName(text) {
				out = append(out, models.NameLead{Name: text, Source: r.source})
			}
			return true
		})
	}
	if len(out) > maxNames {
		out = out[:maxNames]
	}
	return out
}

func looksLikeName(s string) bool {
	n := utf8.RuneCountInString(s)
	if n <= 3 || n >= 50 {
		return false
	}
	spaces := strings.Count(s, " ")
	if spaces < 1 || spaces > 3 {
		return false
	}
	return !digitRe.MatchString(s)
}

// Companies combines the company selectors with legal-suffix matches over
// the visible text.
func Companies(d *Document) []string {
	set := newOrderedSet()
	for _, r := range companyRules {
		r.find(d.Doc).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= maxCompaniesPerRule {
				return false
			}
			text := collapse(s.Text())
			if n := utf8.RuneCountInString(text); n > 2 && n < 100 {
				set.Add(text)
			}
			return true
		})
	}
	for _, m := range companyRe.FindAllString(d.Text, maxCompanyMatches) {
		if m = strings.TrimSpace(m); m != "" {
			set.Add(m)
		}
	}
	return set.Slice(maxCompanies)
}

// SocialLinks matches every anchor href against the platform table.
func SocialLinks(d *Document) []models.SocialLink {
	set := newOrderedSet()
	out := make([]models.SocialLink, 0)
	anchorRule.find(d.Doc).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		platform := socialPlatform(href)
		if platform == "" {
			return true
		}
		abs, ok := resolve(d.Base, href)
		if !ok || !set.Add(abs) {
			return true
		}
		out = append(out, models.SocialLink{Platform: platform, URL: abs})
		return len(out) < maxSocialLinks
	})
	return out
}

func socialPlatform(href string) string {
	lower := strings.ToLower(href)
	for _, p := range socialPlatforms {
		if strings.Contains(lower, p.domain) {
			return p.platform
		}
	}
	return ""
}
