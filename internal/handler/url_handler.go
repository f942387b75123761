package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"url-monitor-go/internal/urls"
	"url-monitor-go/pkg/model"
)

// URLHandler handles URL-related HTTP requests
type URLHandler struct {
	urlService *urls.URLService
}

// NewURLHandler creates a new URL handler
func NewURLHandler(urlService *urls.URLService) *URLHandler {
	return &URLHandler{
		urlService: urlService,
	}
}

// GetURLs handles GET /api/urls
func (h *URLHandler) GetURLs(c *gin.Context) {
	ownerID := c.GetInt64("chat_id") // Set by auth middleware
	if ownerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.urlService.GetURLs(ownerID)
	if err != nil {
		log.Printf("Error fetching urls for owner %d: %v", ownerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch urls"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// AddURL handles POST /api/urls
func (h *URLHandler) AddURL(c *gin.Context) {
	ownerID := c.GetInt64("chat_id")
	if ownerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req model.URLAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.urlService.AddURL(ownerID, req.URL)
	if err != nil {
		switch err {
		case urls.ErrInvalidURL:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL format"})
		case urls.ErrAlreadyExists:
			c.JSON(http.StatusConflict, gin.H{"error": "This URL is already being monitored"})
		case urls.ErrLimitReached:
			c.JSON(http.StatusForbidden, gin.H{"error": "URL limit reached"})
		default:
			log.Printf("Error adding url: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add url"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "URL added to monitoring",
		"url":     stored,
	})
}

// RemoveURL handles DELETE /api/urls
func (h *URLHandler) RemoveURL(c *gin.Context) {
	ownerID := c.GetInt64("chat_id")
	if ownerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req model.URLRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.urlService.RemoveURL(ownerID, req.URL); err != nil {
		if err == urls.ErrNotRegistered {
			c.JSON(http.StatusNotFound, gin.H{"error": "URL not found"})
			return
		}
		log.Printf("Error removing url: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove url"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "URL removed from monitoring"})
}

// GetUptimeStats handles GET /api/urls/stats?url=...&hours=24
func (h *URLHandler) GetUptimeStats(c *gin.Context) {
	ownerID := c.GetInt64("chat_id")
	if ownerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter required"})
		return
	}

	hours := 24
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be a positive integer"})
			return
		}
		hours = parsed
	}

	stats, err := h.urlService.GetUptimeStats(ownerID, url, hours)
	if err != nil {
		if err == urls.ErrNotRegistered {
			c.JSON(http.StatusNotFound, gin.H{"error": "URL not found"})
			return
		}
		log.Printf("Error computing uptime stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute uptime stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
