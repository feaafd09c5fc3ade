package handler

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/proxy"
)

// Proxy returns a handler for GET /api/v1/proxy?url=. The upstream status
// and content type are relayed as-is.
func Proxy(rw *proxy.Rewriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := c.Query("url")
		u, err := url.Parse(target)
		if target == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, "url must be an absolute http(s) URL", nil))
			return
		}

		res, err := rw.Proxy(c.Request.Context(), target)
		if err != nil {
			respondError(c, err)
			return
		}
		contentType := res.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(res.StatusCode, contentType, res.Content)
	}
}
