// Package store persists sessions and the scrape history. Every backend applies page appends and
// removals together with the total_pages counter as one atomic update, so
// concurrent scrapes into the same session never lose a page.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/use-agent/harvest/models"
)

var (
	// ErrNotFound means no session has the given id.
	ErrNotFound = errors.New("session not found")

	// ErrPageNotFound means the session exists but holds no such page.
	ErrPageNotFound = errors.New("page not found")

	// ErrNotActive means the session no longer accepts pages.
	ErrNotActive = errors.New("session is not active")

	// ErrScrapeNotFound means no scrape record has the given id.
	ErrScrapeNotFound = errors.New("scrape not found")

	// ErrConflict means an optimistic transaction kept losing races.
	ErrConflict = errors.New("too many concurrent updates")
)

// ListFilter narrows List. A zero Status matches every status.
type ListFilter struct {
	Status models.SessionStatus
	Limit  int
}

// Store is the persistence boundary for sessions and scrape records.
type Store interface {
	// Name identifies the backend in logs and health output.
	Name() string

	// Insert stores a new session.
	Insert(ctx context.Context, s *models.Session) error

	// Get returns a snapshot of the session.
	Get(ctx context.Context, id string) (*models.Session, error)

	// AppendPage adds p and increments total_pages in one step, only while
	// the session is active.
	AppendPage(ctx context.Context, id string, p models.Page, now time.Time) error

	// RemovePage deletes the page and decrements total_pages in one step.
	RemovePage(ctx context.Context, id, pageID string, now time.Time) error

	// Advance moves the session forward to status. A session already at or
	// past status is left untouched. Reaching completed stamps completed_at.
	// The returned session reflects the stored state after the call.
	Advance(ctx context.Context, id string, status models.SessionStatus, now time.Time) (*models.Session, error)

	// List returns sessions newest first, without their pages.
	List(ctx context.Context, f ListFilter) ([]models.SessionLite, error)

	// InsertScrape stores a scrape history record.
	InsertScrape(ctx context.Context, rec *models.ScrapeRecord) error

	// GetScrape returns a stored scrape record.
	GetScrape(ctx context.Context, id string) (*models.ScrapeRecord, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// advance applies a forward-only transition to s in place and reports
// whether anything changed. Backends that hold the whole document share it.
func advance(s *models.Session, status models.SessionStatus, now time.Time) bool {
	if !s.Status.CanAdvanceTo(status) {
		return false
	}
	s.Status = status
	s.UpdatedAt = now
	if status == models.SessionCompleted || (status == models.SessionSent && s.CompletedAt == nil) {
		t := now
		s.CompletedAt = &t
	}
	return true
}

// removePage drops pageID from s in place.
func removePage(s *models.Session, pageID string, now time.Time) bool {
	for i := range s.Pages {
		if s.Pages[i].PageID == pageID {
			s.Pages = append(s.Pages[:i:i], s.Pages[i+1:]...)
			s.TotalPages = len(s.Pages)
			s.UpdatedAt = now
			return true
		}
	}
	return false
}
