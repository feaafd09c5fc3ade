package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// BrowserlessEngine renders pages through a remote headless-browser
// service's REST /content endpoint, so client-side scripts run before the
// HTML is captured.
type BrowserlessEngine struct {
	endpoint string
	token    string
	settle   time.Duration
	client   *http.Client
}

// NewBrowserlessEngine creates a BrowserlessEngine for the service at
// baseURL. settle is how long the service waits for scripts after
// navigation; timeout bounds the whole request.
func NewBrowserlessEngine(baseURL, token string, settle, timeout time.Duration) *BrowserlessEngine {
	return &BrowserlessEngine{
		endpoint: strings.TrimRight(baseURL, "/") + "/content",
		token:    token,
		settle:   settle,
		client:   &http.Client{Timeout: timeout},
	}
}

func (e *BrowserlessEngine) Name() string { return "browserless" }

type contentRequest struct {
	URL         string      `json:"url"`
	WaitFor     int64       `json:"waitFor,omitempty"`
	GotoOptions gotoOptions `json:"gotoOptions"`
}

type gotoOptions struct {
	WaitUntil string `json:"waitUntil"`
}

func (e *BrowserlessEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	payload, err := json.Marshal(contentRequest{
		URL:         req.URL,
		WaitFor:     e.settle.Milliseconds(),
		GotoOptions: gotoOptions{WaitUntil: "networkidle2"},
	})
	if err != nil {
		return nil, fmt.Errorf("browserless: marshal request: %w", err)
	}

	endpoint := e.endpoint
	if e.token != "" {
		endpoint += "?token=" + url.QueryEscape(e.token)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("browserless: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("browserless: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Engine: e.Name(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("browserless: read body: %w", err)
	}

	bodyStr := string(body)
	return &FetchResult{
		HTML:       bodyStr,
		Title:      extractTitle(bodyStr),
		StatusCode: resp.StatusCode,
		FinalURL:   req.URL,
		EngineName: e.Name(),
	}, nil
}

// LiveViewURL returns the rendering service's live browser view for
// baseURL, authenticated with token.
func LiveViewURL(baseURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("browserless: parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("browserless: base url %q is not absolute", baseURL)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// MaskToken keeps at most the first ten characters of token, and never
// more than half of it.
func MaskToken(token string) string {
	keep := min(10, len(token)/2)
	return token[:keep] + "..."
}
