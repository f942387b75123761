package memory

import (
	"sort"
	"sync"
	"time"

	"url-monitor-go/internal/store"
	"url-monitor-go/pkg/model"
)

type key struct {
	ownerID int64
	url     string
}

// URLStore is an in-memory store implementation. It backs deployments
// without a database and doubles as the test store.
type URLStore struct {
	mu      sync.RWMutex
	urls    map[key]*model.MonitoredURL
	records map[int][]model.CheckRecord
	nextID  int
}

// NewURLStore creates an empty in-memory store
func NewURLStore() *URLStore {
	return &URLStore{
		urls:    make(map[key]*model.MonitoredURL),
		records: make(map[int][]model.CheckRecord),
		nextID:  1,
	}
}

// AddURL registers a URL for an owner
func (s *URLStore) AddURL(ownerID int64, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{ownerID, url}
	if _, exists := s.urls[k]; exists {
		return false, nil
	}

	s.urls[k] = &model.MonitoredURL{
		ID:      s.nextID,
		OwnerID: ownerID,
		URL:     url,
		Status:  model.StatusPending,
		AddedAt: time.Now(),
	}
	s.nextID++
	return true, nil
}

// RemoveURL deletes the (owner, url) pair and its check history
func (s *URLStore) RemoveURL(ownerID int64, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{ownerID, url}
	u, exists := s.urls[k]
	if !exists {
		return false, nil
	}

	delete(s.urls, k)
	delete(s.records, u.ID)
	return true, nil
}

// GetURL fetches one monitored URL
func (s *URLStore) GetURL(ownerID int64, url string) (*model.MonitoredURL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.urls[key{ownerID, url}]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// GetURLByID fetches one monitored URL by its stable ID
func (s *URLStore) GetURLByID(id int) (*model.MonitoredURL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.urls {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

// GetURLs lists all URLs registered by one owner
func (s *URLStore) GetURLs(ownerID int64) ([]model.MonitoredURL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	urls := make([]model.MonitoredURL, 0)
	for k, u := range s.urls {
		if k.ownerID == ownerID {
			urls = append(urls, *u)
		}
	}
	sortByAdded(urls)
	return urls, nil
}

// GetAllURLs lists every registered (owner, url) pair across all owners
func (s *URLStore) GetAllURLs() ([]model.MonitoredURL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	urls := make([]model.MonitoredURL, 0, len(s.urls))
	for _, u := range s.urls {
		urls = append(urls, *u)
	}
	sortByAdded(urls)
	return urls, nil
}

// UpdateStatus updates the current-state fields and appends a CheckRecord
// under a single lock hold, so readers never observe a partial update.
func (s *URLStore) UpdateStatus(ownerID int64, url string, statusCode int, responseTime float64, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.urls[key{ownerID, url}]
	if !exists {
		return store.ErrNotFound
	}

	now := time.Now()
	status := model.StatusOffline
	if success {
		status = model.StatusOnline
	}

	u.Status = status
	u.LastCheck = &now
	u.LastResponseTime = &responseTime
	u.LastStatusCode = &statusCode

	s.records[u.ID] = append(s.records[u.ID], model.CheckRecord{
		ID:           len(s.records[u.ID]) + 1,
		URLID:        u.ID,
		CheckedAt:    now,
		Success:      success,
		StatusCode:   statusCode,
		ResponseTime: responseTime,
	})
	return nil
}

// GetUptimeStats computes windowed uptime for one (owner, url) pair
func (s *URLStore) GetUptimeStats(ownerID int64, url string, windowHours int) (model.UptimeStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := model.UptimeStats{URL: url, WindowHours: windowHours}

	u, exists := s.urls[key{ownerID, url}]
	if !exists {
		return stats, store.ErrNotFound
	}

	cutoff := time.Now().Add(-time.Duration(windowHours) * time.Hour)
	var totalTime float64
	for _, rec := range s.records[u.ID] {
		if rec.CheckedAt.Before(cutoff) {
			continue
		}
		stats.TotalChecks++
		totalTime += rec.ResponseTime
		if rec.Success {
			stats.SuccessfulChecks++
		}
	}

	if stats.TotalChecks > 0 {
		stats.UptimePercentage = float64(stats.SuccessfulChecks) / float64(stats.TotalChecks) * 100
		stats.AverageResponseTime = totalTime / float64(stats.TotalChecks)
	}
	return stats, nil
}

// PruneCheckRecords deletes check history older than the cutoff
func (s *URLStore) PruneCheckRecords(olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pruned int64
	for id, recs := range s.records {
		kept := recs[:0]
		for _, rec := range recs {
			if rec.CheckedAt.Before(olderThan) {
				pruned++
				continue
			}
			kept = append(kept, rec)
		}
		s.records[id] = kept
	}
	return pruned, nil
}

func sortByAdded(urls []model.MonitoredURL) {
	sort.Slice(urls, func(i, j int) bool {
		if urls[i].AddedAt.Equal(urls[j].AddedAt) {
			return urls[i].ID < urls[j].ID
		}
		return urls[i].AddedAt.Before(urls[j].AddedAt)
	})
}
