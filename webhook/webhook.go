package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/use-agent/harvest/models"
)

const (
	// SignatureHeader carries "sha256=<hex>" of the body when a secret is set.
	SignatureHeader = "X-Harvest-Signature"

	maxSnippet = 500
	maxRead    = 64 << 10
)

// Dispatcher posts a completed session to a caller-supplied endpoint.
// One attempt per call; the outcome is always returned as data.
type Dispatcher struct {
	client *http.Client
	secret string
}

// NewDispatcher returns a Dispatcher whose requests time out after timeout.
// A non-empty secret signs every body with HMAC-SHA256.
func NewDispatcher(timeout time.Duration, secret string) *Dispatcher {
	return &Dispatcher{
		client: &http.Client{Timeout: timeout},
		secret: secret,
	}
}

// Deliver POSTs sess as JSON to url. Sent is true whenever the endpoint
// answered, including non-2xx statuses.
func (d *Dispatcher) Deliver(ctx context.Context, url string, sess *models.Session) *models.WebhookResult {
	body, err := json.Marshal(sess)
	if err != nil {
		return &models.WebhookResult{Error: fmt.Sprintf("webhook: marshal session: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &models.WebhookResult{Error: fmt.Sprintf("webhook: create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Harvest-Webhook/1.0")

	if d.secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(d.secret, body))
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		slog.Warn("webhook delivery failed",
			"url", url,
			"session_id", sess.SessionID,
			"error", err,
		)
		return &models.WebhookResult{Error: fmt.Sprintf("webhook: deliver: %v", err)}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxRead))
	slog.Info("webhook delivered",
		"url", url,
		"session_id", sess.SessionID,
		"status", resp.StatusCode,
		"pages", sess.TotalPages,
		"elapsed", time.Since(start).String(),
	)
	return &models.WebhookResult{
		Sent:        true,
		StatusCode:  resp.StatusCode,
		BodySnippet: snippet(raw),
	}
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// snippet returns at most maxSnippet runes of b.
func snippet(b []byte) string {
	s := string(b)
	if utf8.RuneCountInString(s) <= maxSnippet {
		return s
	}
	return string([]rune(s)[:maxSnippet])
}
