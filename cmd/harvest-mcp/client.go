package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/use-agent/harvest/models"
)

// categoryNames lists the switches accepted in a tool's "categories".
var categoryNames = []string{
	"emails", "phones", "names", "companies", "social_links",
	"html", "css", "images", "links", "text_only", "markdown",
	"inline_external_css", "videos",
}

// client calls the Harvest HTTP API on behalf of MCP tools.
type client struct {
	http   *http.Client
	apiURL string
	apiKey string
}

func newClient(apiURL, apiKey string) *client {
	return &client{
		http:   &http.Client{Timeout: 180 * time.Second},
		apiURL: apiURL,
		apiKey: apiKey,
	}
}

// do sends one API request and returns the body. Error envelopes become
// Go errors carrying the API's code and message.
func (c *client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var e models.ErrorResponse
		if json.Unmarshal(respBody, &e) == nil && e.Error != nil {
			return nil, fmt.Errorf("[%s] %s", e.Error.Code, e.Error.Message)
		}
		return nil, fmt.Errorf("API returned HTTP %d", resp.StatusCode)
	}
	return respBody, nil
}

// options converts tool categories into an extraction config. No
// categories means the server default.
func options(categories []string) (*models.ExtractionConfig, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	set := make(map[string]bool, len(categories))
	for _, name := range categories {
		set[name] = true
	}
	raw, err := json.Marshal(set)
	if err != nil {
		return nil, err
	}
	var cfg models.ExtractionConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// toolResult renders an API body as indented JSON text.
func toolResult(body []byte, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if json.Indent(&buf, body, "", "  ") != nil {
		return mcp.NewToolResultText(string(body)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (c *client) handleScrapePage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}
	opts, err := options(request.GetStringSlice("categories", nil))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid categories: %v", err)), nil
	}
	return toolResult(c.do(ctx, http.MethodPost, "/api/v1/scrape", models.ScrapeRequest{URL: target, Options: opts}))
}

func (c *client) handleStartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(c.do(ctx, http.MethodPost, "/api/v1/session/start", models.StartSessionRequest{
		Name:       request.GetString("name", ""),
		WebhookURL: request.GetString("webhook_url", ""),
	}))
}

func (c *client) handleScrapeIntoSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	target, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}
	opts, err := options(request.GetStringSlice("categories", nil))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid categories: %v", err)), nil
	}
	return toolResult(c.do(ctx, http.MethodPost, "/api/v1/session/scrape", models.SessionScrapeRequest{
		SessionID: id,
		URL:       target,
		Options:   opts,
	}))
}

func (c *client) handleSessionSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	return toolResult(c.do(ctx, http.MethodGet, "/api/v1/session/"+url.PathEscape(id)+"/summary", nil))
}

func (c *client) handleCompleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	return toolResult(c.do(ctx, http.MethodPost, "/api/v1/session/complete", models.CompleteSessionRequest{
		SessionID:  id,
		WebhookURL: request.GetString("webhook_url", ""),
	}))
}
