package scraper

import "github.com/use-agent/harvest/models"

// Cache status values reported in ScrapeResponse.CacheStatus.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Outcome is the result of one Scrape call.
type Outcome struct {
	Result *models.ExtractionResult

	// CacheStatus is CacheHit or CacheMiss when a max age was supplied,
	// empty otherwise.
	CacheStatus string

	// Engine names the engine that produced the HTML; empty on a cache hit.
	Engine string
}
