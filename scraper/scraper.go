package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/harvest/cache"
	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/extractor"
	"github.com/use-agent/harvest/models"
)

// Options tunes a Scraper.
type Options struct {
	// Stylesheets downloads external CSS when a request asks for it to be
	// inlined. Nil disables inlining.
	Stylesheets extractor.StylesheetGetter
	Inline      extractor.InlineOptions

	// Cache serves repeat requests that carry a max age. Nil disables it.
	Cache *cache.Cache
}

// Scraper fetches a page once and runs the requested extractors over it.
// It is safe for concurrent use.
type Scraper struct {
	fetcher engine.Fetcher
	md      *extractor.Markdowner
	opts    Options
	now     func() time.Time
}

// New creates a Scraper backed by fetcher.
func New(fetcher engine.Fetcher, opts Options) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		md:      extractor.NewMarkdowner(),
		opts:    opts,
		now:     time.Now,
	}
}

// Scrape is Extract with an optional cache lookup. maxAgeMs <= 0 always
// fetches and leaves CacheStatus empty.
func (s *Scraper) Scrape(ctx context.Context, url string, cfg models.ExtractionConfig, maxAgeMs int) (*Outcome, error) {
	if s.opts.Cache == nil || maxAgeMs <= 0 {
		res, name, err := s.extract(ctx, url, cfg)
		if err != nil {
			return nil, err
		}
		return &Outcome{Result: res, Engine: name}, nil
	}

	key := cache.Key(url, cfg)
	if res, ok := s.opts.Cache.Get(key, maxAgeMs); ok {
		slog.Debug("cache hit", "url", url)
		return &Outcome{Result: res, CacheStatus: CacheHit}, nil
	}
	res, name, err := s.extract(ctx, url, cfg)
	if err != nil {
		return nil, err
	}
	s.opts.Cache.Set(key, res)
	return &Outcome{Result: res, CacheStatus: CacheMiss, Engine: name}, nil
}

// Extract fetches url and runs every category enabled in cfg. Fetch
// failures are returned as a FETCH_FAILED ScrapeError.
func (s *Scraper) Extract(ctx context.Context, url string, cfg models.ExtractionConfig) (*models.ExtractionResult, error) {
	res, _, err := s.extract(ctx, url, cfg)
	return res, err
}

func (s *Scraper) extract(ctx context.Context, url string, cfg models.ExtractionConfig) (*models.ExtractionResult, string, error) {
	start := s.now()

	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, "", models.NewScrapeError(models.ErrCodeFetch, "failed to fetch "+url, err)
	}

	doc, err := extractor.Parse(page.HTML, url)
	if err != nil {
		return nil, "", models.NewScrapeError(models.ErrCodeInternal, "failed to parse page", err)
	}

	title := page.Title
	if title == "" {
		title = doc.Title()
	}
	if title == "" {
		title = url
	}

	res := &models.ExtractionResult{
		URL:       url,
		Title:     title,
		ScrapedAt: s.now().UTC(),
		Leads:     extractor.Leads(doc, cfg),
		Site:      extractor.Site(doc, cfg, s.md),
		Videos:    extractor.VideoRefs(doc, cfg),
	}

	if cfg.InlineExternalCSS && s.opts.Stylesheets != nil && res.Site != nil && res.Site.CSS != nil {
		extractor.InlineExternalCSS(ctx, res.Site.CSS, s.opts.Stylesheets, s.opts.Inline)
	}

	slog.Info("page extracted",
		"url", url,
		"engine", page.EngineName,
		"leads", res.Leads.Count(),
		"videos", len(res.Videos),
		"elapsed", time.Since(start).String(),
	)
	return res, page.EngineName, nil
}

// HTTPStylesheets adapts an HTTPEngine into a StylesheetGetter. Error
// statuses count as failures.
func HTTPStylesheets(h *engine.HTTPEngine) extractor.StylesheetGetter {
	return func(ctx context.Context, url string) (string, error) {
		resp, err := h.Get(ctx, url, map[string]string{"Accept": "text/css,*/*;q=0.1"})
		if err != nil {
			return "", err
		}
		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("stylesheet %s: HTTP %d", url, resp.StatusCode)
		}
		return string(resp.Body), nil
	}
}
