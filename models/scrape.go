package models

import "time"

// ScrapeRecord is the stored history entry of one extraction. Every
// single-page scrape and every session page produces one; a session
// page's page_id is the record's ScrapeID.
type ScrapeRecord struct {
	ScrapeID  string            `json:"scrape_id" bson:"scrape_id"`
	URL       string            `json:"url" bson:"url"`
	Options   ExtractionConfig  `json:"options" bson:"options"`
	Result    *ExtractionResult `json:"result" bson:"result"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
}

// ScrapeRecordResponse is the response for GET /api/v1/scrapes/:id.
type ScrapeRecordResponse struct {
	Success bool          `json:"success"`
	Scrape  *ScrapeRecord `json:"scrape"`
}

// BrowserEmbedResponse is the response for GET /api/v1/browser/embed.
type BrowserEmbedResponse struct {
	Success  bool   `json:"success"`
	EmbedURL string `json:"embed_url"`
	APIKey   string `json:"api_key"`
}
