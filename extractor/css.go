package extractor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/use-agent/harvest/models"
)

// StylesheetGetter downloads one stylesheet body.
type StylesheetGetter func(ctx context.Context, url string) (string, error)

// InlineOptions bounds external stylesheet inlining.
type InlineOptions struct {
	Timeout     time.Duration // per stylesheet
	Concurrency int
	MaxSheets   int
}

// InlineExternalCSS fetches the bundle's external stylesheets and appends
// their bodies to TotalCSS in link order. Failures are skipped and mark
// the bundle Partial; the bundle itself is always usable.
func InlineExternalCSS(ctx context.Context, b *models.CSSBundle, get StylesheetGetter, opts InlineOptions) {
	if b == nil || len(b.ExternalStylesheets) == 0 {
		return
	}
	sheets := b.ExternalStylesheets
	if opts.MaxSheets > 0 && len(sheets) > opts.MaxSheets {
		sheets = sheets[:opts.MaxSheets]
		b.Partial = true
	}

	bodies := make([]string, len(sheets))
	failed := make([]bool, len(sheets))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, href := range sheets {
		g.Go(func() error {
			fctx := gctx
			if opts.Timeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(gctx, opts.Timeout)
				defer cancel()
			}
			body, err := get(fctx, href)
			if err != nil {
				slog.Debug("stylesheet fetch failed", "url", href, "error", err)
				failed[i] = true
				return nil
			}
			bodies[i] = body
			return nil
		})
	}
	_ = g.Wait()

	parts := make([]string, 0, len(sheets)+1)
	if b.TotalCSS != "" {
		parts = append(parts, b.TotalCSS)
	}
	for i, href := range sheets {
		if failed[i] {
			b.Partial = true
			continue
		}
		parts = append(parts, bodies[i])
		b.FetchedStylesheets = append(b.FetchedStylesheets, href)
	}
	b.TotalCSS = strings.Join(parts, "\n\n")
}
