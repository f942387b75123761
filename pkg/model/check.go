package model

import (
	"time"
)

// PingResult represents the outcome of a single probe against one URL.
// All failure modes are captured in the result; a probe never errors out.
type PingResult struct {
	URL          string    `json:"url"`
	StatusCode   int       `json:"status_code"`   // 0 means the request never reached a server
	ResponseTime float64   `json:"response_time"` // seconds
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"` // request start
}

// CheckRecord is one persisted, append-only historical check for a URL.
type CheckRecord struct {
	ID           int       `json:"id" db:"id"`
	URLID        int       `json:"url_id" db:"url_id"`
	CheckedAt    time.Time `json:"checked_at" db:"checked_at"`
	Success      bool      `json:"success" db:"success"`
	StatusCode   int       `json:"status_code" db:"status_code"`
	ResponseTime float64   `json:"response_time" db:"response_time"` // seconds
}

// UptimeStats summarizes check history for a URL over a trailing window.
// A URL with no checks in the window reports zero values, never an error.
type UptimeStats struct {
	URL                 string  `json:"url"`
	WindowHours         int     `json:"window_hours"`
	UptimePercentage    float64 `json:"uptime_percentage"`
	TotalChecks         int     `json:"total_checks"`
	SuccessfulChecks    int     `json:"successful_checks"`
	AverageResponseTime float64 `json:"average_response_time"` // seconds
}

// PingRequest represents a request to probe a single URL on demand
type PingRequest struct {
	URL string `json:"url" binding:"required"`
}

// PingOwnerResponse represents the outcome of an owner-scoped ping-now
type PingOwnerResponse struct {
	Results map[string]PingResult `json:"results"`
	Total   int                   `json:"total"`
	Online  int                   `json:"online"`
}
