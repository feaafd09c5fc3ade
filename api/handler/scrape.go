package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/scraper"
	"github.com/use-agent/harvest/session"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// Flow:
//  1. Parse & validate request, apply defaults.
//  2. Scraper.Scrape → cache lookup, or one fetch plus every requested
//     extractor over the same document.
//  3. Record the result in the scrape history.
//  4. Fill scrape id, timing and cache status, return 200.
func Scrape(sc *scraper.Scraper, svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), nil))
			return
		}
		req.Defaults()

		out, err := sc.Scrape(c.Request.Context(), req.URL, *req.Options, req.MaxAge)
		if err != nil {
			respondError(c, err)
			return
		}
		rec, err := svc.Record(c.Request.Context(), req.URL, *req.Options, out.Result)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success:          true,
			ExtractionResult: out.Result,
			ScrapeID:         rec.ScrapeID,
			CacheStatus:      out.CacheStatus,
			Timing:           &models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
		})
	}
}

// GetScrape returns a handler for GET /api/v1/scrapes/:id.
func GetScrape(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := svc.GetScrape(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ScrapeRecordResponse{Success: true, Scrape: rec})
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, "internal error", err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ErrorResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeInvalidState:
		return http.StatusConflict // 409
	default:
		return http.StatusInternalServerError // 500
	}
}
