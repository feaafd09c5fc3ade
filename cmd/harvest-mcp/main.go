package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("HARVEST_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	c := newClient(apiURL, os.Getenv("HARVEST_API_KEY"))

	s := server.NewMCPServer(
		"harvest",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("scrape_page",
		mcp.WithDescription("Fetch a web page and extract marketing data: contact leads (emails, phones, names, companies, social links), site assets (HTML, CSS, images, links) and embedded videos."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
		mcp.WithArray("categories",
			mcp.Description("Extraction categories to run. Default: every lead, site and video category."),
			mcp.WithStringEnumItems(categoryNames),
		),
	), c.handleScrapePage)

	s.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a multi-page session that accumulates extraction results until it is completed."),
		mcp.WithString("name",
			mcp.Description("Human label for the session (default: 'Session YYYY-MM-DD HH:MM')"),
		),
		mcp.WithString("webhook_url",
			mcp.Description("Endpoint that receives the full session as JSON on completion"),
		),
	), c.handleStartSession)

	s.AddTool(mcp.NewTool("scrape_into_session",
		mcp.WithDescription("Scrape a page and append its extraction result to an active session."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session returned by start_session"),
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
		mcp.WithArray("categories",
			mcp.Description("Extraction categories to run. Default: every lead, site and video category."),
			mcp.WithStringEnumItems(categoryNames),
		),
	), c.handleScrapeIntoSession)

	s.AddTool(mcp.NewTool("get_session_summary",
		mcp.WithDescription("List the pages of a session with per-page lead, image, link and video counts."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session to summarize"),
		),
	), c.handleSessionSummary)

	s.AddTool(mcp.NewTool("complete_session",
		mcp.WithDescription("Complete a session and deliver it to its webhook. Delivery failures are reported, not raised."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session to complete"),
		),
		mcp.WithString("webhook_url",
			mcp.Description("Overrides the webhook captured at start"),
		),
	), c.handleCompleteSession)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
