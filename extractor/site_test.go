package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/use-agent/harvest/models"
)

func TestVisibleText_SkipsScripts(t *testing.T) {
	d := mustParse(t, `<html><head><title>T</title><script>var x=1</script></head>
		<body><p>Hello <b>world</b></p><noscript>enable js</noscript><style>p{}</style></body></html>`,
		"https://acme.com")

	if d.Text != "T Hello world" {
		t.Errorf("Text = %q, want %q", d.Text, "T Hello world")
	}
}

func TestImages_SourcesAndBackgrounds(t *testing.T) {
	d := mustParse(t, `
		<img src="/a.png" alt="A" width="10">
		<img data-src="lazy.jpg">
		<img alt="no source">
		<div style="background: url('/bg.jpg')"></div>`, "https://acme.com/page/")

	got := Images(d)
	want := []models.Image{
		{URL: "https://acme.com/a.png", Alt: "A", Width: "10"},
		{URL: "https://acme.com/page/lazy.jpg"},
		{URL: "https://acme.com/bg.jpg", Alt: "background-image", Type: "background"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Images = %+v, want %+v", got, want)
	}
}

func TestLinks_SkipsFragmentsAndScripts(t *testing.T) {
	d := mustParse(t, `
		<a href="#top">top</a>
		<a href="javascript:void(0)">js</a>
		<a href="/contact">  Contact
			us </a>
		<a href="https://other.org/x">Other</a>`, "https://acme.com/about")

	got := Links(d)
	want := []models.Link{
		{URL: "https://acme.com/contact", Text: "Contact us", IsExternal: false},
		{URL: "https://other.org/x", Text: "Other", IsExternal: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Links = %+v, want %+v", got, want)
	}
}

func TestLinks_TextTruncated(t *testing.T) {
	d := mustParse(t, `<a href="/x">`+strings.Repeat("é", 150)+`</a>`, "https://acme.com")

	got := Links(d)
	if len(got) != 1 {
		t.Fatalf("len(Links) = %d, want 1", len(got))
	}
	if n := len([]rune(got[0].Text)); n != maxLinkTxt {
		t.Errorf("link text runes = %d, want %d", n, maxLinkTxt)
	}
}

func TestCSS_InlineAndExternal(t *testing.T) {
	d := mustParse(t, `<html><head>
		<style>body{}</style><style>   </style>
		<link rel="stylesheet" href="/s.css"><link rel="icon" href="/f.ico">
		</head><body></body></html>`, "https://acme.com")

	got := CSS(d)
	if !reflect.DeepEqual(got.InlineStyles, []string{"body{}"}) {
		t.Errorf("InlineStyles = %v", got.InlineStyles)
	}
	if !reflect.DeepEqual(got.ExternalStylesheets, []string{"https://acme.com/s.css"}) {
		t.Errorf("ExternalStylesheets = %v", got.ExternalStylesheets)
	}
	if got.TotalCSS != "body{}" {
		t.Errorf("TotalCSS = %q", got.TotalCSS)
	}
}

func TestInlineExternalCSS_PartialOnFailure(t *testing.T) {
	b := &models.CSSBundle{
		InlineStyles:        []string{"body{}"},
		ExternalStylesheets: []string{"https://acme.com/a.css", "https://acme.com/missing.css", "https://acme.com/b.css"},
		TotalCSS:            "body{}",
	}
	get := func(_ context.Context, url string) (string, error) {
		switch url {
		case "https://acme.com/a.css":
			return "a{}", nil
		case "https://acme.com/b.css":
			return "b{}", nil
		}
		return "", errors.New("404")
	}

	InlineExternalCSS(context.Background(), b, get, InlineOptions{Concurrency: 2})

	if b.TotalCSS != "body{}\n\na{}\n\nb{}" {
		t.Errorf("TotalCSS = %q", b.TotalCSS)
	}
	if !b.Partial {
		t.Error("Partial = false, want true")
	}
	want := []string{"https://acme.com/a.css", "https://acme.com/b.css"}
	if !reflect.DeepEqual(b.FetchedStylesheets, want) {
		t.Errorf("FetchedStylesheets = %v, want %v", b.FetchedStylesheets, want)
	}
}

func TestSite_TextOnlySuppressesHTML(t *testing.T) {
	d := mustParse(t, `<p>Hello there</p>`, "https://acme.com")

	got := Site(d, models.ExtractionConfig{HTML: true, TextOnly: true}, nil)
	if got.HTML != "" {
		t.Errorf("HTML = %q, want empty", got.HTML)
	}
	if got.Text != "Hello there" {
		t.Errorf("Text = %q, want %q", got.Text, "Hello there")
	}
	if got.Images != nil || got.Links != nil || got.CSS != nil {
		t.Errorf("unrequested categories present: %+v", got)
	}
}

func TestSite_HTMLCarriesText(t *testing.T) {
	d := mustParse(t, `<html><body><p>Hello visible world</p><script>var x = 1;</script></body></html>`, "https://acme.com")

	got := Site(d, models.DefaultExtractionConfig(), nil)
	if got.HTML == "" {
		t.Error("HTML empty, want raw page")
	}
	if got.Text != "Hello visible world" {
		t.Errorf("Text = %q, want %q", got.Text, "Hello visible world")
	}
}

func TestImage_WidthHeightAlwaysEncoded(t *testing.T) {
	b, err := json.Marshal(models.Image{URL: "https://acme.com/a.png"})
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"width":""`, `"height":""`} {
		if !strings.Contains(string(b), field) {
			t.Errorf("encoded image %s missing %s", b, field)
		}
	}
}

func TestLeads_OnlyRequestedCategories(t *testing.T) {
	d := mustParse(t, `<p>nothing</p>`, "https://acme.com")

	if got := Leads(d, models.ExtractionConfig{HTML: true}); got != nil {
		t.Errorf("Leads = %+v, want nil", got)
	}

	got := Leads(d, models.ExtractionConfig{Emails: true})
	if got == nil {
		t.Fatal("Leads = nil, want bundle")
	}
	if got.Emails == nil || len(got.Emails) != 0 {
		t.Errorf("Emails = %#v, want empty non-nil", got.Emails)
	}
	if got.Phones != nil || got.Names != nil || got.Companies != nil || got.SocialLinks != nil {
		t.Errorf("unrequested lead categories present: %+v", got)
	}
}

func TestMarkdowner_ShortPageFallsBackToFullHTML(t *testing.T) {
	d := mustParse(t, `<html><body><h1>Hello</h1><p>World</p></body></html>`, "https://acme.com")

	md, err := NewMarkdowner().Markdown(d)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(md, "# Hello") || !strings.Contains(md, "World") {
		t.Errorf("Markdown = %q", md)
	}
}
