package models

import "time"

// SessionStatus is the lifecycle state of a session.
// It only advances: active → completed → sent.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionSent      SessionStatus = "sent"
)

func (s SessionStatus) rank() int {
	switch s {
	case SessionActive:
		return 1
	case SessionCompleted:
		return 2
	case SessionSent:
		return 3
	default:
		return 0
	}
}

// Valid reports whether s is a known status.
func (s SessionStatus) Valid() bool { return s.rank() > 0 }

// CanAdvanceTo reports whether moving from s to next is a forward transition.
func (s SessionStatus) CanAdvanceTo(next SessionStatus) bool {
	return s.Valid() && next.Valid() && next.rank() > s.rank()
}

// Predecessors returns every status that may advance to s.
func (s SessionStatus) Predecessors() []SessionStatus {
	var out []SessionStatus
	for _, st := range []SessionStatus{SessionActive, SessionCompleted, SessionSent} {
		if st.CanAdvanceTo(s) {
			out = append(out, st)
		}
	}
	return out
}

// Session is a multi-page scrape job. It exclusively owns its pages.
// TotalPages always equals len(Pages).
type Session struct {
	SessionID   string        `json:"session_id" bson:"session_id"`
	Name        string        `json:"name" bson:"name"`
	Pages       []Page        `json:"pages" bson:"pages"`
	TotalPages  int           `json:"total_pages" bson:"total_pages"`
	Status      SessionStatus `json:"status" bson:"status"`
	WebhookURL  string        `json:"webhook_url,omitempty" bson:"webhook_url,omitempty"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// Page is one URL's extraction result inside a session.
type Page struct {
	PageID    string            `json:"page_id" bson:"page_id"`
	URL       string            `json:"url" bson:"url"`
	Title     string            `json:"title" bson:"title"`
	Data      *ExtractionResult `json:"data" bson:"data"`
	ScrapedAt time.Time         `json:"scraped_at" bson:"scraped_at"`
}

// SessionLite is a session without its pages, used in listings.
type SessionLite struct {
	SessionID   string        `json:"session_id" bson:"session_id"`
	Name        string        `json:"name" bson:"name"`
	TotalPages  int           `json:"total_pages" bson:"total_pages"`
	Status      SessionStatus `json:"status" bson:"status"`
	WebhookURL  string        `json:"webhook_url,omitempty" bson:"webhook_url,omitempty"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// Lite strips the pages from s.
func (s *Session) Lite() SessionLite {
	return SessionLite{
		SessionID:   s.SessionID,
		Name:        s.Name,
		TotalPages:  s.TotalPages,
		Status:      s.Status,
		WebhookURL:  s.WebhookURL,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		CompletedAt: s.CompletedAt,
	}
}

// PageSummary describes a page without its extraction bodies.
type PageSummary struct {
	PageID     string    `json:"page_id"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	ScrapedAt  time.Time `json:"scraped_at"`
	LeadCount  int       `json:"lead_count"`
	ImageCount int       `json:"image_count"`
	LinkCount  int       `json:"link_count"`
	VideoCount int       `json:"video_count"`
}

// Summarize builds the lightweight description of p.
func (p *Page) Summarize() PageSummary {
	ps := PageSummary{
		PageID:    p.PageID,
		URL:       p.URL,
		Title:     p.Title,
		ScrapedAt: p.ScrapedAt,
	}
	if p.Data != nil {
		ps.LeadCount = p.Data.Leads.Count()
		ps.VideoCount = len(p.Data.Videos)
		if p.Data.Site != nil {
			ps.ImageCount = len(p.Data.Site.Images)
			ps.LinkCount = len(p.Data.Site.Links)
		}
	}
	return ps
}

// SessionSummary is a session with a lightweight page list.
type SessionSummary struct {
	SessionLite
	Pages []PageSummary `json:"pages"`
}

// Summarize builds the lightweight description of s.
func (s *Session) Summarize() SessionSummary {
	pages := make([]PageSummary, 0, len(s.Pages))
	for i := range s.Pages {
		pages = append(pages, s.Pages[i].Summarize())
	}
	return SessionSummary{SessionLite: s.Lite(), Pages: pages}
}

// StartSessionResponse is the response for POST /api/v1/session/start.
type StartSessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
}

// SessionScrapeResponse is the response for POST /api/v1/session/scrape.
type SessionScrapeResponse struct {
	Success   bool              `json:"success"`
	SessionID string            `json:"session_id"`
	ScrapeID  string            `json:"scrape_id"`
	Page      PageSummary       `json:"page"`
	Result    *ExtractionResult `json:"scrape_result"`
}

// CompleteSessionResponse is the response for POST /api/v1/session/complete.
// Webhook is nil when no webhook URL was resolved.
type CompleteSessionResponse struct {
	Success bool           `json:"success"`
	Session *Session       `json:"session"`
	Webhook *WebhookResult `json:"webhook"`
}

// WebhookResult describes one delivery attempt. Sent is true whenever the
// endpoint answered, whatever its HTTP status.
type WebhookResult struct {
	Sent        bool   `json:"sent"`
	StatusCode  int    `json:"status_code,omitempty"`
	BodySnippet string `json:"body_snippet,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SessionListResponse is the response for GET /api/v1/sessions.
type SessionListResponse struct {
	Success  bool          `json:"success"`
	Sessions []SessionLite `json:"sessions"`
	Total    int           `json:"total"`
}

// SessionResponse is the response for GET /api/v1/session/:id.
type SessionResponse struct {
	Success bool     `json:"success"`
	Session *Session `json:"session"`
}

// SessionSummaryResponse is the response for GET /api/v1/session/:id/summary.
type SessionSummaryResponse struct {
	Success bool            `json:"success"`
	Summary *SessionSummary `json:"summary"`
}

// RemovePageResponse acknowledges DELETE /api/v1/session/:id/page/:page_id.
type RemovePageResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
	PageID    string `json:"page_id"`
}
