package availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/edupricing/availability-go/internal/errors"
	"github.com/edupricing/availability-go/internal/logger"
	"github.com/edupricing/availability-go/internal/metrics"
)

// Handler exposes the availability service over HTTP.
type Handler struct {
	service *Service
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewHandler creates the HTTP handler for availability endpoints.
func NewHandler(service *Service, m *metrics.Metrics, log *logger.Logger) *Handler {
	return &Handler{service: service, metrics: m, log: log.WithModule("handler")}
}

// GetAvailability handles GET /availability?slug=&debug=0|1&refresh=0|1&cache=0|1.
func (h *Handler) GetAvailability(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		h.metrics.RecordHTTPError("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug is required"})
		return
	}

	req := Request{
		Slug:      slug,
		Debug:     c.Query("debug") == "1",
		Refresh:   c.Query("refresh") == "1",
		CacheOnly: c.Query("cache") == "1",
	}

	result, err := h.service.Get(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, req, err)
		return
	}

	body := gin.H{
		"availability": result.Payload.Availability,
		"updatedAt":    result.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if req.Debug {
		body["debug"] = result.Payload.Debug
	}
	if result.Stale {
		body["stale"] = true
		body["warning"] = result.Warning
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) respondError(c *gin.Context, req Request, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNoCache):
		h.metrics.RecordHTTPError("no_cache")
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached availability for slug"})

	case apperrors.IsQuotaExceeded(err):
		h.metrics.RecordHTTPError("quota")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "upstream quota exceeded and no cache available"})

	default:
		h.metrics.RecordHTTPError("ingestion")
		h.log.WithError(err).WithField("slug", req.Slug).Error("ingestion failed")
		body := gin.H{"error": "ingestion failed"}
		if req.Debug {
			body["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

// GetHistory handles GET /availability/history?slug=&n=. Diagnostic only;
// the serving path never reads history.
func (h *Handler) GetHistory(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		h.metrics.RecordHTTPError("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug is required"})
		return
	}

	n, _ := strconv.Atoi(c.DefaultQuery("n", "3"))
	records, err := h.service.History(c.Request.Context(), slug, n)
	if err != nil {
		h.log.WithError(err).WithField("slug", slug).Error("history read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history read failed"})
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, rec := range records {
		items = append(items, gin.H{
			"createdAt":    rec.CreatedAt.UTC().Format(time.RFC3339),
			"availability": rec.Payload.Availability,
		})
	}
	c.JSON(http.StatusOK, gin.H{"slug": slug, "history": items})
}
