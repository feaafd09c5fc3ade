package extractor

import (
	"reflect"
	"strings"
	"testing"

	"github.com/use-agent/harvest/models"
)

func mustParse(t *testing.T, rawHTML, base string) *Document {
	t.Helper()
	d, err := Parse(rawHTML, base)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return d
}

func TestEmails_FiltersPlaceholderDomains(t *testing.T) {
	d := mustParse(t, `<p>Contact alice@test.com or bob@realcompany.io</p>`, "https://acme.com")

	got := Emails(d)
	want := []string{"bob@realcompany.io"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Emails = %v, want %v", got, want)
	}
}

func TestEmails_NeverReturnsDenylisted(t *testing.T) {
	inputs := []string{
		`<img src="logo@2x.png"><p>sales@acme.io</p>`,
		`<p>Jane@EXAMPLE.COM, ops@Test.Com, me@email.com</p>`,
		`<a href="mailto:team@acme.io">team@acme.io</a><img src="icon@3x.JPG"><img src="a@b.gif">`,
		`<p>nothing here</p>`,
	}
	for _, in := range inputs {
		d := mustParse(t, in, "https://acme.com")
		for _, e := range Emails(d) {
			lower := strings.ToLower(e)
			for _, bad := range emailDenylist {
				if strings.Contains(lower, bad) {
					t.Errorf("input %q: returned denylisted email %q", in, e)
				}
			}
		}
	}
}

func TestEmails_DedupesTextAndMarkup(t *testing.T) {
	d := mustParse(t, `<a href="mailto:hi@acme.io">hi@acme.io</a>`, "https://acme.com")

	got := Emails(d)
	if len(got) != 1 || got[0] != "hi@acme.io" {
		t.Errorf("Emails = %v, want [hi@acme.io]", got)
	}
}

func TestEmails_EmptyIsNotNil(t *testing.T) {
	d := mustParse(t, `<p>no contacts</p>`, "https://acme.com")
	if got := Emails(d); got == nil || len(got) != 0 {
		t.Errorf("Emails = %#v, want empty non-nil slice", got)
	}
}

func TestPhones_UnionAcrossPatterns(t *testing.T) {
	d := mustParse(t, `<p>Call (555) 123-4567 today</p>`, "https://acme.com")

	got := Phones(d)
	want := []string{"(555) 123-4567"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Phones = %v, want %v", got, want)
	}
}

func TestNames_SelectorPriorityAndFilters(t *testing.T) {
	d := mustParse(t, `
		<h1>Jane Doe</h1>
		<h2>Call 555 1234</h2>
		<h3>Al</h3>
		<div class="team-member"><span class="name">John Smith</span></div>`, "https://acme.com")

	got := Names(d)
	want := []models.NameLead{
		{Name: "Jane Doe", Source: "h1"},
		{Name: "John Smith", Source: `[class*="name"]`},
		{Name: "John Smith", Source: `[class*="team"]`},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %+v, want %+v", got, want)
	}
}

func TestNames_CappedAtTwenty(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("<h2>Jane Doe</h2><h3>John Roe</h3>")
	}
	d := mustParse(t, b.String(), "https://acme.com")

	got := Names(d)
	if len(got) != maxNames {
		t.Fatalf("len(Names) = %d, want %d", len(got), maxNames)
	}
	for _, n := range got {
		if n.Source != "h2" {
			t.Errorf("name %+v: want every kept entry from h2", n)
		}
	}
}

func TestLooksLikeName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Jane Doe", true},
		{"Mary Anne Van Dyke", true},
		{"Mary Anne Van Der Berg", false},
		{"Jane", false},
		{"A B", false},
		{"Agent 007", false},
		{strings.Repeat("a", 30) + " " + strings.Repeat("b", 30), false},
	}
	for _, tt := range tests {
		if got := looksLikeName(tt.in); got != tt.want {
			t.Errorf("looksLikeName(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCompanies_SelectorsThenLegalSuffix(t *testing.T) {
	d := mustParse(t, `
		<div class="company-name">Acme Widgets</div>
		<div class="brand">Acme Widgets</div>
		<p>Globex Inc.</p>`, "https://acme.com")

	got := Companies(d)
	if len(got) != 2 {
		t.Fatalf("Companies = %v, want 2 entries", got)
	}
	if got[0] != "Acme Widgets" {
		t.Errorf("Companies[0] = %q, want %q", got[0], "Acme Widgets")
	}
	if !strings.HasSuffix(got[1], "Globex Inc.") {
		t.Errorf("Companies[1] = %q, want a legal-suffix match ending in %q", got[1], "Globex Inc.")
	}
}

func TestSocialLinks_DocumentOrder(t *testing.T) {
	d := mustParse(t,
		`<a href="https://facebook.com/acme">FB</a><a href="https://twitter.com/acme">TW</a>`,
		"https://acme.com")

	got := SocialLinks(d)
	want := []models.SocialLink{
		{Platform: "Facebook", URL: "https://facebook.com/acme"},
		{Platform: "Twitter", URL: "https://twitter.com/acme"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SocialLinks = %+v, want %+v", got, want)
	}
}

func TestSocialLinks_DedupByResolvedURL(t *testing.T) {
	d := mustParse(t, `
		<a href="https://github.com/acme">one</a>
		<a href="https://github.com/acme">two</a>
		<a href="https://x.com/acme">x</a>
		<a href="/about">about</a>`, "https://acme.com")

	got := SocialLinks(d)
	want := []models.SocialLink{
		{Platform: "GitHub", URL: "https://github.com/acme"},
		{Platform: "Twitter/X", URL: "https://x.com/acme"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SocialLinks = %+v, want %+v", got, want)
	}
}
