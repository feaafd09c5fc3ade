package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// RodEngine renders pages in a remote Chrome reached over the DevTools
// protocol (a hosted headless-browser websocket endpoint). Each fetch opens
// its own connection and tab and closes both afterwards.
type RodEngine struct {
	controlURL string
	settle     time.Duration
	stealth    bool
}

// NewRodEngine creates a RodEngine for the DevTools websocket at controlURL.
// settle bounds the wait for the DOM to stop changing after load.
func NewRodEngine(controlURL string, settle time.Duration, useStealth bool) *RodEngine {
	return &RodEngine{controlURL: controlURL, settle: settle, stealth: useStealth}
}

func (e *RodEngine) Name() string {
	if e.stealth {
		return "rod-stealth"
	}
	return "rod"
}

func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	browser := rod.New().Context(ctx).ControlURL(e.controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%s: connect: %w", e.Name(), err)
	}
	defer func() {
		_ = browser.Close()
	}()

	var page *rod.Page
	var err error
	if e.stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, fmt.Errorf("%s: create page: %w", e.Name(), err)
	}
	defer func() {
		_ = page.Close()
	}()

	p := page.Context(ctx)

	if err := (proto.NetworkSetUserAgentOverride{UserAgent: ChromeUA}).Call(p); err != nil {
		slog.Debug("user agent override failed", "engine", e.Name(), "error", err)
	}
	headers := map[string]string{"Accept-Language": "en-US,en;q=0.9"}
	for k, v := range req.Headers {
		headers[k] = v
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(p)

	if err := p.Navigate(req.URL); err != nil {
		return nil, fmt.Errorf("%s: navigate: %w", e.Name(), err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%s: wait load: %w", e.Name(), err)
	}

	// Give client-side scripts a bounded window to settle.
	if err := p.Timeout(e.settle).WaitDOMStable(300*time.Millisecond, 0.1); err != nil &&
		!errors.Is(err, context.DeadlineExceeded) {
		slog.Debug("DOM did not settle, proceeding with current DOM", "url", req.URL, "error", err)
	}

	statusCode := navigationStatus(p)
	if statusCode >= 400 {
		return nil, &StatusError{Engine: e.Name(), StatusCode: statusCode}
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("%s: read html: %w", e.Name(), err)
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &FetchResult{
		HTML:       rawHTML,
		Title:      evalStringOrEmpty(p, `() => document.title`),
		StatusCode: statusCode,
		FinalURL:   finalURL,
		EngineName: e.Name(),
	}, nil
}

// navigationStatus reads the document's HTTP status from the Navigation
// Timing API. Returns 200 when the browser does not expose it.
func navigationStatus(p *rod.Page) int {
	res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`)
	if err != nil || res.Value.Int() == 0 {
		return 200
	}
	return res.Value.Int()
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
