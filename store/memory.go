package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/use-agent/harvest/models"
)

// Memory keeps sessions in process memory. Pages are immutable once
// appended, so snapshots copy the page slice but share page bodies.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	scrapes  map[string]*models.ScrapeRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]*models.Session),
		scrapes:  make(map[string]*models.ScrapeRecord),
	}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Insert(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = snapshot(s)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(s), nil
}

func (m *Memory) AppendPage(_ context.Context, id string, p models.Page, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.Status != models.SessionActive {
		return ErrNotActive
	}
	s.Pages = append(s.Pages, p)
	s.TotalPages = len(s.Pages)
	s.UpdatedAt = now
	return nil
}

func (m *Memory) RemovePage(_ context.Context, id, pageID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if !removePage(s, pageID, now) {
		return ErrPageNotFound
	}
	return nil
}

func (m *Memory) Advance(_ context.Context, id string, status models.SessionStatus, now time.Time) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	advance(s, status, now)
	return snapshot(s), nil
}

func (m *Memory) List(_ context.Context, f ListFilter) ([]models.SessionLite, error) {
	m.mu.RLock()
	out := make([]models.SessionLite, 0, len(m.sessions))
	for _, s := range m.sessions {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		out = append(out, s.Lite())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].SessionID > out[j].SessionID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) InsertScrape(_ context.Context, rec *models.ScrapeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *rec
	m.scrapes[rec.ScrapeID] = &c
	return nil
}

func (m *Memory) GetScrape(_ context.Context, id string) (*models.ScrapeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.scrapes[id]
	if !ok {
		return nil, ErrScrapeNotFound
	}
	c := *rec
	return &c, nil
}

func (m *Memory) Ping(context.Context) error  { return nil }
func (m *Memory) Close(context.Context) error { return nil }

func snapshot(s *models.Session) *models.Session {
	c := *s
	c.Pages = slices.Clone(s.Pages)
	if c.Pages == nil {
		c.Pages = []models.Page{}
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
