package extractor

import (
	"log/slog"

	"github.com/use-agent/harvest/models"
)

// Leads runs the requested lead categories. It returns nil when none is
// requested; an unrequested category stays nil inside the bundle.
func Leads(d *Document, cfg models.ExtractionConfig) *models.LeadBundle {
	if !cfg.WantsLeads() {
		return nil
	}
	b := &models.LeadBundle{}
	if cfg.Emails {
		b.Emails = Emails(d)
	}
	if cfg.Phones {
		b.Phones = Phones(d)
	}
	if cfg.Names {
		b.Names = Names(d)
	}
	if cfg.Companies {
		b.Companies = Companies(d)
	}
	if cfg.SocialLinks {
		b.SocialLinks = SocialLinks(d)
	}
	return b
}

// Site runs the requested site categories. html captures the raw HTML
// together with the flattened text; text_only keeps only the text. md may
// be nil when Markdown is not requested.
func Site(d *Document, cfg models.ExtractionConfig, md *Markdowner) *models.SiteBundle {
	if !cfg.WantsSite() {
		return nil
	}
	b := &models.SiteBundle{}
	switch {
	case cfg.TextOnly:
		b.Text = PlainText(d)
	case cfg.HTML:
		b.HTML = d.HTML
		b.Text = PlainText(d)
	}
	if cfg.CSS {
		b.CSS = CSS(d)
	}
	if cfg.Images {
		b.Images = Images(d)
	}
	if cfg.Links {
		b.Links = Links(d)
	}
	if cfg.Markdown && md != nil {
		out, err := md.Markdown(d)
		if err != nil {
			slog.Warn("markdown conversion failed", "url", d.Base.String(), "error", err)
		}
		b.Markdown = out
	}
	return b
}

// VideoRefs runs the video grabber when any platform is enabled.
func VideoRefs(d *Document, cfg models.ExtractionConfig) []models.VideoRef {
	f := cfg.VideoFilter()
	if !f.Any() {
		return nil
	}
	return Videos(d, f)
}
