package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/harvest/api/handler"
	"github.com/use-agent/harvest/api/middleware"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/proxy"
	"github.com/use-agent/harvest/scraper"
	"github.com/use-agent/harvest/session"
	"github.com/use-agent/harvest/store"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → CORS
//	API:     Auth (if enabled)
//
// Health endpoints sit outside auth so monitoring always reaches them.
func NewRouter(cfg *config.Config, sc *scraper.Scraper, svc *session.Service, rw *proxy.Rewriter, st store.Store, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.CORS())

	health := handler.Health(st, cfg.Render.Mode, startTime)
	r.GET("/health", health)

	v1 := r.Group("/api/v1")
	v1.GET("/health", health)

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}

	// Single-page extraction
	protected.POST("/scrape", handler.Scrape(sc, svc))
	protected.GET("/scrapes/:id", handler.GetScrape(svc))

	// Sessions
	protected.POST("/session/start", handler.StartSession(svc))
	protected.POST("/session/scrape", handler.ScrapeIntoSession(svc))
	protected.POST("/session/complete", handler.CompleteSession(svc))
	protected.GET("/session/:id", handler.GetSession(svc))
	protected.GET("/session/:id/summary", handler.SessionSummary(svc))
	protected.DELETE("/session/:id/page/:page_id", handler.RemovePage(svc))
	protected.GET("/sessions", handler.ListSessions(svc))

	// Embeddable proxy and live browser view
	protected.GET("/proxy", handler.Proxy(rw))
	protected.GET("/browser/embed", handler.BrowserEmbed(cfg.Render))

	return r
}
