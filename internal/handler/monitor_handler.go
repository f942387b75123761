package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"url-monitor-go/internal/monitor"
	"url-monitor-go/internal/urls"
	"url-monitor-go/pkg/model"
)

// MonitorHandler exposes the scheduler over HTTP
type MonitorHandler struct {
	scheduler *monitor.Scheduler
}

// NewMonitorHandler creates a new monitor handler
func NewMonitorHandler(scheduler *monitor.Scheduler) *MonitorHandler {
	return &MonitorHandler{
		scheduler: scheduler,
	}
}

// GetStatus handles GET /api/monitor/status
func (h *MonitorHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Status())
}

// PingNow handles POST /api/monitor/ping - probes all of the caller's URLs
// immediately and reports the results.
func (h *MonitorHandler) PingNow(c *gin.Context) {
	ownerID := c.GetInt64("chat_id")
	if ownerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	results, err := h.scheduler.PingOwnerURLs(ownerID)
	if err != nil {
		log.Printf("Error during on-demand ping for owner %d: %v", ownerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete ping"})
		return
	}

	online := 0
	for _, r := range results {
		if r.Success {
			online++
		}
	}

	c.JSON(http.StatusOK, model.PingOwnerResponse{
		Results: results,
		Total:   len(results),
		Online:  online,
	})
}

// TestURL handles POST /api/monitor/test - probes one URL without storing
// anything, for ad-hoc connectivity checks.
func (h *MonitorHandler) TestURL(c *gin.Context) {
	var req model.PingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	normalized := urls.NormalizeURL(req.URL)
	if !urls.ValidateURL(normalized) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL format"})
		return
	}

	c.JSON(http.StatusOK, h.scheduler.PingOne(normalized))
}
