package store

import (
	"errors"
	"time"

	"url-monitor-go/pkg/model"
)

// ErrNotFound is returned when a requested URL is not registered
var ErrNotFound = errors.New("url not found")

// Store is the persistence contract the monitoring core depends on.
// Implementations must allow concurrent reads and writes; atomicity is
// required per (owner, url) key only, never across keys.
type Store interface {
	// AddURL registers a URL for an owner. Returns false when the
	// (owner, url) pair already exists.
	AddURL(ownerID int64, url string) (bool, error)

	// RemoveURL deletes the (owner, url) pair and its check history.
	// Returns false when the pair was not registered.
	RemoveURL(ownerID int64, url string) (bool, error)

	// GetURL fetches one monitored URL, or ErrNotFound.
	GetURL(ownerID int64, url string) (*model.MonitoredURL, error)

	// GetURLByID fetches one monitored URL by its stable ID, or ErrNotFound.
	GetURLByID(id int) (*model.MonitoredURL, error)

	// GetURLs lists all URLs registered by one owner.
	GetURLs(ownerID int64) ([]model.MonitoredURL, error)

	// GetAllURLs lists every registered (owner, url) pair across all
	// owners. A URL monitored by two owners appears twice.
	GetAllURLs() ([]model.MonitoredURL, error)

	// UpdateStatus atomically updates the current-state fields of one
	// (owner, url) pair and appends a CheckRecord.
	UpdateStatus(ownerID int64, url string, statusCode int, responseTime float64, success bool) error

	// GetUptimeStats computes windowed uptime for one (owner, url) pair.
	// An empty window yields zero stats, never a division error.
	GetUptimeStats(ownerID int64, url string, windowHours int) (model.UptimeStats, error)

	// PruneCheckRecords deletes check history older than the cutoff and
	// reports how many records were removed.
	PruneCheckRecords(olderThan time.Time) (int64, error)
}
