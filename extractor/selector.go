package extractor

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// rule is a CSS selector compiled once, remembered with its source text.
type rule struct {
	source  string
	matcher cascadia.Selector
}

func compileRules(selectors ...string) []rule {
	rules := make([]rule, len(selectors))
	for i, s := range selectors {
		rules[i] = rule{source: s, matcher: cascadia.MustCompile(s)}
	}
	return rules
}

// find returns the elements matching r in document order.
func (r rule) find(doc *goquery.Document) *goquery.Selection {
	return doc.FindMatcher(r.matcher)
}

var (
	nameRules = compileRules(
		"h1", "h2", "h3",
		`[class*="name"]`, `[class*="author"]`, `[class*="contact"]`,
		`[class*="team"]`, `[class*="staff"]`, `[class*="person"]`,
		`[itemprop="name"]`, "[data-name]",
	)

	companyRules = compileRules(
		`[class*="company"]`, `[class*="business"]`, `[class*="organization"]`,
		`[itemprop="organization"]`, `[class*="brand"]`,
	)

	anchorRule     = compileRules("a[href]")[0]
	imgRule        = compileRules("img")[0]
	styledRule     = compileRules("[style]")[0]
	styleTagRule   = compileRules("style")[0]
	stylesheetRule = compileRules(`link[rel~="stylesheet"]`)[0]
	videoRule      = compileRules("video")[0]
	iframeRule     = compileRules("iframe")[0]
)
