package models

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// URL is the target page to scrape. Required.
	URL string `json:"url" binding:"required,url"`

	// Options selects the extraction categories. When omitted, every
	// lead, site and video category is extracted.
	Options *ExtractionConfig `json:"options,omitempty"`

	// MaxAge allows serving a cached result younger than MaxAge
	// milliseconds. Zero disables the cache for this request.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.Options == nil {
		cfg := DefaultExtractionConfig()
		r.Options = &cfg
	}
}

// StartSessionRequest is the payload for POST /api/v1/session/start.
type StartSessionRequest struct {
	// Name is a human label. Default: "Session YYYY-MM-DD HH:MM".
	Name string `json:"name,omitempty"`

	// WebhookURL is captured at start and used on completion unless the
	// complete call supplies its own.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`
}

// SessionScrapeRequest is the payload for POST /api/v1/session/scrape.
type SessionScrapeRequest struct {
	SessionID string            `json:"session_id" binding:"required"`
	URL       string            `json:"url" binding:"required,url"`
	Options   *ExtractionConfig `json:"options,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *SessionScrapeRequest) Defaults() {
	if r.Options == nil {
		cfg := DefaultExtractionConfig()
		r.Options = &cfg
	}
}

// CompleteSessionRequest is the payload for POST /api/v1/session/complete.
type CompleteSessionRequest struct {
	SessionID  string `json:"session_id" binding:"required"`
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`
}

// ExtractionConfig holds one switch per extraction category.
type ExtractionConfig struct {
	// Lead categories.
	Emails      bool `json:"emails" bson:"emails"`
	Phones      bool `json:"phones" bson:"phones"`
	Names       bool `json:"names" bson:"names"`
	Companies   bool `json:"companies" bson:"companies"`
	SocialLinks bool `json:"social_links" bson:"social_links"`

	// Site categories.
	HTML   bool `json:"html" bson:"html"`
	CSS    bool `json:"css" bson:"css"`
	Images bool `json:"images" bson:"images"`
	Links  bool `json:"links" bson:"links"`

	// TextOnly replaces raw HTML capture with the flattened page text.
	TextOnly bool `json:"text_only" bson:"text_only"`

	// Markdown adds the readable main content rendered as Markdown.
	Markdown bool `json:"markdown" bson:"markdown"`

	// InlineExternalCSS fetches linked stylesheets and appends their bodies
	// to total_css. Best-effort; requires CSS.
	InlineExternalCSS bool `json:"inline_external_css" bson:"inline_external_css"`

	// Videos enables the video grabber. The platform filters below narrow
	// it; nil means enabled.
	Videos    bool  `json:"videos" bson:"videos"`
	YouTube   *bool `json:"youtube,omitempty" bson:"youtube,omitempty"`
	Vimeo     *bool `json:"vimeo,omitempty" bson:"vimeo,omitempty"`
	AllVideos *bool `json:"all_videos,omitempty" bson:"all_videos,omitempty"`
}

// DefaultExtractionConfig returns the configuration used when a request
// carries no options: every lead, site and video category enabled.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		Emails:      true,
		Phones:      true,
		Names:       true,
		Companies:   true,
		SocialLinks: true,
		HTML:        true,
		CSS:         true,
		Images:      true,
		Links:       true,
		Videos:      true,
	}
}

// WantsLeads reports whether any lead category is requested.
func (c ExtractionConfig) WantsLeads() bool {
	return c.Emails || c.Phones || c.Names || c.Companies || c.SocialLinks
}

// WantsSite reports whether any site category is requested.
func (c ExtractionConfig) WantsSite() bool {
	return c.HTML || c.TextOnly || c.CSS || c.Images || c.Links || c.Markdown
}

// VideoFilter resolves the platform sub-switches.
func (c ExtractionConfig) VideoFilter() VideoFilter {
	return VideoFilter{
		YouTube: c.Videos && enabled(c.YouTube),
		Vimeo:   c.Videos && enabled(c.Vimeo),
		Other:   c.Videos && enabled(c.AllVideos),
	}
}

// VideoFilter selects which video sources the grabber reports.
type VideoFilter struct {
	YouTube bool
	Vimeo   bool
	Other   bool // <video>, <source> and embedded iframes
}

// Any reports whether at least one source is enabled.
func (f VideoFilter) Any() bool { return f.YouTube || f.Vimeo || f.Other }

func enabled(b *bool) bool { return b == nil || *b }
