// Package session aggregates per-page extraction results into sessions
// and delivers completed sessions to a webhook.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/store"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Extractor produces an extraction result for one URL.
type Extractor interface {
	Extract(ctx context.Context, url string, cfg models.ExtractionConfig) (*models.ExtractionResult, error)
}

// Deliverer posts a session to a webhook and reports the outcome.
type Deliverer interface {
	Deliver(ctx context.Context, url string, sess *models.Session) *models.WebhookResult
}

// Service implements the session lifecycle: active → completed → sent.
// It holds no locks; all mutations are single atomic store operations.
type Service struct {
	store     store.Store
	extractor Extractor
	webhook   Deliverer
	now       func() time.Time
	newID     func() string
}

// NewService wires a Service.
func NewService(st store.Store, ex Extractor, wh Deliverer) *Service {
	return &Service{
		store:     st,
		extractor: ex,
		webhook:   wh,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Start creates an active session with no pages.
func (s *Service) Start(ctx context.Context, name, webhookURL string) (*models.Session, error) {
	now := s.now()
	if name == "" {
		name = "Session " + now.Format("2006-01-02 15:04")
	}
	sess := &models.Session{
		SessionID:  s.newID(),
		Name:       name,
		Pages:      []models.Page{},
		Status:     models.SessionActive,
		WebhookURL: webhookURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Insert(ctx, sess); err != nil {
		return nil, storeError(err)
	}
	slog.Info("session started", "session_id", sess.SessionID, "name", name)
	return sess, nil
}

// Scrape extracts url and appends it to the session as a new page. A
// failed fetch leaves the session unchanged.
func (s *Service) Scrape(ctx context.Context, id, url string, cfg models.ExtractionConfig) (*models.Page, error) {
	if err := required("session_id", id, "url", url); err != nil {
		return nil, err
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if sess.Status != models.SessionActive {
		return nil, notActive(sess.Status)
	}

	res, err := s.extractor.Extract(ctx, url, cfg)
	if err != nil {
		return nil, err
	}
	rec, err := s.Record(ctx, url, cfg, res)
	if err != nil {
		return nil, err
	}

	page := models.Page{
		PageID:    rec.ScrapeID,
		URL:       url,
		Title:     res.Title,
		Data:      res,
		ScrapedAt: res.ScrapedAt,
	}
	if err := s.store.AppendPage(ctx, id, page, s.now()); err != nil {
		if errors.Is(err, store.ErrNotActive) {
			return nil, notActive("")
		}
		return nil, storeError(err)
	}
	slog.Info("page added to session", "session_id", id, "page_id", page.PageID, "url", url)
	return &page, nil
}

// Record stores res in the scrape history under a new scrape id.
func (s *Service) Record(ctx context.Context, url string, cfg models.ExtractionConfig, res *models.ExtractionResult) (*models.ScrapeRecord, error) {
	rec := &models.ScrapeRecord{
		ScrapeID:  s.newID(),
		URL:       url,
		Options:   cfg,
		Result:    res,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertScrape(ctx, rec); err != nil {
		return nil, storeError(err)
	}
	return rec, nil
}

// GetScrape returns one scrape history record.
func (s *Service) GetScrape(ctx context.Context, id string) (*models.ScrapeRecord, error) {
	if err := required("scrape_id", id); err != nil {
		return nil, err
	}
	rec, err := s.store.GetScrape(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return rec, nil
}

// RemovePage deletes one page from the session.
func (s *Service) RemovePage(ctx context.Context, id, pageID string) error {
	if err := required("session_id", id, "page_id", pageID); err != nil {
		return err
	}
	if err := s.store.RemovePage(ctx, id, pageID, s.now()); err != nil {
		return storeError(err)
	}
	slog.Info("page removed from session", "session_id", id, "page_id", pageID)
	return nil
}

// Complete marks the session completed and, when a webhook URL resolves,
// delivers it. Delivery failure is reported in the response, never as an
// error. Repeated calls re-attempt delivery.
func (s *Service) Complete(ctx context.Context, id, webhookURL string) (*models.CompleteSessionResponse, error) {
	if err := required("session_id", id); err != nil {
		return nil, err
	}
	sess, err := s.store.Advance(ctx, id, models.SessionCompleted, s.now())
	if err != nil {
		return nil, storeError(err)
	}

	target := webhookURL
	if target == "" {
		target = sess.WebhookURL
	}
	resp := &models.CompleteSessionResponse{Success: true, Session: sess}
	if target == "" || s.webhook == nil {
		slog.Info("session completed", "session_id", id, "pages", sess.TotalPages)
		return resp, nil
	}

	result := s.webhook.Deliver(ctx, target, sess)
	resp.Webhook = result
	if result.Sent {
		sent, err := s.store.Advance(ctx, id, models.SessionSent, s.now())
		if err != nil {
			return nil, storeError(err)
		}
		resp.Session = sent
	}
	slog.Info("session completed",
		"session_id", id,
		"pages", sess.TotalPages,
		"webhook_sent", result.Sent,
		"status", resp.Session.Status,
	)
	return resp, nil
}

// Get returns the full session.
func (s *Service) Get(ctx context.Context, id string) (*models.Session, error) {
	if err := required("session_id", id); err != nil {
		return nil, err
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return sess, nil
}

// Summary returns the session with per-page counts instead of bodies.
func (s *Service) Summary(ctx context.Context, id string) (*models.SessionSummary, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sum := sess.Summarize()
	return &sum, nil
}

// List returns sessions newest first. An empty status matches all;
// limit <= 0 means DefaultListLimit and is capped at MaxListLimit.
func (s *Service) List(ctx context.Context, status string, limit int) ([]models.SessionLite, error) {
	st := models.SessionStatus(status)
	if status != "" && !st.Valid() {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "unknown session status "+status, nil)
	}
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	out, err := s.store.List(ctx, store.ListFilter{Status: st, Limit: limit})
	if err != nil {
		return nil, storeError(err)
	}
	return out, nil
}

// required takes name/value pairs and rejects the first empty value.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return models.NewScrapeError(models.ErrCodeInvalidInput, pairs[i]+" is required", nil)
		}
	}
	return nil
}

func notActive(status models.SessionStatus) error {
	msg := "session is not active"
	if status != "" {
		msg = "session is " + string(status)
	}
	return models.NewScrapeError(models.ErrCodeInvalidState, msg, nil)
}

// storeError maps store sentinels onto API error codes.
func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return models.NewScrapeError(models.ErrCodeNotFound, "session not found", nil)
	case errors.Is(err, store.ErrPageNotFound):
		return models.NewScrapeError(models.ErrCodeNotFound, "page not found", nil)
	case errors.Is(err, store.ErrScrapeNotFound):
		return models.NewScrapeError(models.ErrCodeNotFound, "scrape not found", nil)
	case errors.Is(err, store.ErrNotActive):
		return notActive("")
	default:
		return models.NewScrapeError(models.ErrCodeStore, "session store failure", err)
	}
}
