package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/store"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /health.
//
// Degrades status when the session store does not answer a ping.
func Health(st store.Store, renderMode string, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		storeState := st.Name()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			status = "degraded"
			storeState += ": " + err.Error()
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Store:   storeState,
			Render:  renderMode,
			Version: Version,
		})
	}
}
