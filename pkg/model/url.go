package model

import (
	"time"
)

// URL status values. A URL stays pending until its first check completes.
const (
	StatusPending = "pending"
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// MonitoredURL represents a URL registered for monitoring by one owner.
// The same URL string may be monitored independently by several owners;
// identity is the (owner_id, url) pair.
type MonitoredURL struct {
	ID               int        `json:"id" db:"id"`
	OwnerID          int64      `json:"owner_id" db:"owner_id"`
	URL              string     `json:"url" db:"url"`
	Status           string     `json:"status" db:"status"`
	LastCheck        *time.Time `json:"last_check,omitempty" db:"last_check"`
	LastResponseTime *float64   `json:"last_response_time,omitempty" db:"last_response_time"`
	LastStatusCode   *int       `json:"last_status_code,omitempty" db:"last_status_code"`
	AddedAt          time.Time  `json:"added_at" db:"added_at"`
}

// Online reports whether the URL is currently considered up based on its
// last recorded status.
func (u MonitoredURL) Online() bool {
	return u.Status == StatusOnline
}

// URLAddRequest represents the request to register a new URL
type URLAddRequest struct {
	URL string `json:"url" binding:"required"`
}

// URLRemoveRequest represents the request to stop monitoring a URL
type URLRemoveRequest struct {
	URL string `json:"url" binding:"required"`
}

// URLListResponse represents the response for URL listing
type URLListResponse struct {
	URLs      []MonitoredURL `json:"urls"`
	TotalURLs int            `json:"total_urls"`
	URLLimit  int            `json:"url_limit"`
}

// MonitoringStatus describes the scheduler's current state
type MonitoringStatus struct {
	IsRunning      bool `json:"is_running"`
	TotalURLs      int  `json:"total_urls"`
	PingInterval   int  `json:"ping_interval"`   // seconds
	RequestTimeout int  `json:"request_timeout"` // seconds
}
