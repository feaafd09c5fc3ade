package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/session"
)

// StartSession returns a handler for POST /api/v1/session/start.
func StartSession(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StartSessionRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), nil))
				return
			}
		}

		sess, err := svc.Start(c.Request.Context(), req.Name, req.WebhookURL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.StartSessionResponse{
			Success:   true,
			SessionID: sess.SessionID,
			Name:      sess.Name,
		})
	}
}

// ScrapeIntoSession returns a handler for POST /api/v1/session/scrape.
func ScrapeIntoSession(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SessionScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), nil))
			return
		}
		req.Defaults()

		page, err := svc.Scrape(c.Request.Context(), req.SessionID, req.URL, *req.Options)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SessionScrapeResponse{
			Success:   true,
			SessionID: req.SessionID,
			ScrapeID:  page.PageID,
			Page:      page.Summarize(),
			Result:    page.Data,
		})
	}
}

// GetSession returns a handler for GET /api/v1/session/:id.
func GetSession(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SessionResponse{Success: true, Session: sess})
	}
}

// SessionSummary returns a handler for GET /api/v1/session/:id/summary.
func SessionSummary(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := svc.Summary(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SessionSummaryResponse{Success: true, Summary: sum})
	}
}

// RemovePage returns a handler for DELETE /api/v1/session/:id/page/:page_id.
func RemovePage(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, pageID := c.Param("id"), c.Param("page_id")
		if err := svc.RemovePage(c.Request.Context(), id, pageID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.RemovePageResponse{Success: true, SessionID: id, PageID: pageID})
	}
}

// CompleteSession returns a handler for POST /api/v1/session/complete.
// Webhook delivery failures come back inside a 200 response.
func CompleteSession(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CompleteSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), nil))
			return
		}

		resp, err := svc.Complete(c.Request.Context(), req.SessionID, req.WebhookURL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ListSessions returns a handler for GET /api/v1/sessions?status=&limit=.
func ListSessions(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, "limit must be a non-negative integer", nil))
				return
			}
			limit = n
		}

		sessions, err := svc.List(c.Request.Context(), c.Query("status"), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SessionListResponse{
			Success:  true,
			Sessions: sessions,
			Total:    len(sessions),
		})
	}
}
