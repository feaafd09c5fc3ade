package models

import "time"

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	// Success indicates whether the scrape completed without errors.
	Success bool `json:"success"`

	*ExtractionResult

	// ScrapeID identifies the stored history record of this scrape.
	ScrapeID string `json:"scrape_id,omitempty"`

	// CacheStatus indicates whether the result was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing *TimingInfo `json:"timing,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// ExtractionResult is the outcome of running the requested extraction
// categories against one fetched page.
//
// Leads, Site and Videos are present iff one of their categories was
// requested. A requested category that found nothing is an empty list,
// never absent.
type ExtractionResult struct {
	URL       string      `json:"url" bson:"url"`
	Title     string      `json:"title" bson:"title"`
	ScrapedAt time.Time   `json:"scraped_at" bson:"scraped_at"`
	Leads     *LeadBundle `json:"leads,omitempty" bson:"leads,omitempty"`
	Site      *SiteBundle `json:"site,omitempty" bson:"site,omitempty"`
	Videos    []VideoRef  `json:"videos,omitzero" bson:"videos"`
}

// LeadBundle groups contact leads by category.
type LeadBundle struct {
	Emails      []string     `json:"emails,omitzero" bson:"emails"`
	Phones      []string     `json:"phones,omitzero" bson:"phones"`
	Names       []NameLead   `json:"names,omitzero" bson:"names"`
	Companies   []string     `json:"companies,omitzero" bson:"companies"`
	SocialLinks []SocialLink `json:"social_links,omitzero" bson:"social_links"`
}

// Count returns the total number of leads across categories.
func (b *LeadBundle) Count() int {
	if b == nil {
		return 0
	}
	return len(b.Emails) + len(b.Phones) + len(b.Names) + len(b.Companies) + len(b.SocialLinks)
}

// NameLead is a probable person name and the selector that produced it.
type NameLead struct {
	Name   string `json:"name" bson:"name"`
	Source string `json:"source" bson:"source"`
}

// SocialLink is a link to a known social platform.
type SocialLink struct {
	Platform string `json:"platform" bson:"platform"`
	URL      string `json:"url" bson:"url"`
}

// SiteBundle holds the site-cloning assets of a page.
type SiteBundle struct {
	HTML     string     `json:"html,omitempty" bson:"html,omitempty"`
	Text     string     `json:"text,omitempty" bson:"text,omitempty"`
	Markdown string     `json:"markdown,omitempty" bson:"markdown,omitempty"`
	CSS      *CSSBundle `json:"css,omitempty" bson:"css,omitempty"`
	Images   []Image    `json:"images,omitzero" bson:"images"`
	Links    []Link     `json:"links,omitzero" bson:"links"`
}

// CSSBundle holds inline styles and external stylesheet references.
type CSSBundle struct {
	InlineStyles        []string `json:"inline_styles" bson:"inline_styles"`
	ExternalStylesheets []string `json:"external_stylesheets" bson:"external_stylesheets"`
	TotalCSS            string   `json:"total_css" bson:"total_css"`

	// FetchedStylesheets lists the external stylesheets whose bodies were
	// appended to TotalCSS.
	FetchedStylesheets []string `json:"fetched_stylesheets,omitempty" bson:"fetched_stylesheets,omitempty"`

	// Partial is true when external stylesheet inlining was requested and
	// at least one stylesheet could not be fetched.
	Partial bool `json:"partial" bson:"partial"`
}

// Image is an image reference found on the page.
type Image struct {
	URL    string `json:"url" bson:"url"`
	Alt    string `json:"alt" bson:"alt"`
	Width  string `json:"width" bson:"width"`
	Height string `json:"height" bson:"height"`
	Type   string `json:"type,omitempty" bson:"type,omitempty"` // "background" for style url(...)
}

// Link is an anchor found on the page.
type Link struct {
	URL        string `json:"url" bson:"url"`
	Text       string `json:"text" bson:"text"`
	IsExternal bool   `json:"is_external" bson:"is_external"`
}

// Video platforms.
const (
	PlatformYouTube  = "YouTube"
	PlatformVimeo    = "Vimeo"
	PlatformDirect   = "Direct"
	PlatformEmbedded = "Embedded"
)

// VideoRef is an embedded or linked video.
type VideoRef struct {
	Platform string `json:"platform" bson:"platform"`
	URL      string `json:"url" bson:"url"`
	VideoID  string `json:"video_id,omitempty" bson:"video_id,omitempty"`
	EmbedURL string `json:"embed_url,omitempty" bson:"embed_url,omitempty"`
	Type     string `json:"type,omitempty" bson:"type,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Store   string `json:"store"`
	Render  string `json:"render"`
	Version string `json:"version"`
}

// ProxyResult is the upstream response after rewriting.
type ProxyResult struct {
	Content     []byte
	StatusCode  int
	ContentType string
}
