package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/models"
)

// BrowserEmbed returns a handler for GET /api/v1/browser/embed. It hands
// out the rendering service's live view URL; only a masked form of the
// token is reported on its own.
func BrowserEmbed(cfg config.RenderConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Mode != config.RenderBrowserless || cfg.Token == "" {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidState,
				"live browser view requires browserless rendering with a token", nil))
			return
		}
		embedURL, err := engine.LiveViewURL(cfg.BrowserlessURL, cfg.Token)
		if err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInternal, "invalid browserless url", err))
			return
		}
		c.JSON(http.StatusOK, models.BrowserEmbedResponse{
			Success:  true,
			EmbedURL: embedURL,
			APIKey:   engine.MaskToken(cfg.Token),
		})
	}
}
