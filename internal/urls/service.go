package urls

import (
	"errors"
	"net/url"
	"strings"

	"url-monitor-go/internal/store"
	"url-monitor-go/pkg/model"
)

// DEFAULT_URL_LIMIT defines how many URLs a single owner may register
const DEFAULT_URL_LIMIT = 100

var (
	ErrInvalidURL    = errors.New("invalid url format")
	ErrLimitReached  = errors.New("url limit reached")
	ErrAlreadyExists = errors.New("url already exists")
	ErrNotRegistered = errors.New("url not registered")
)

// URLService handles URL registration on top of the store
type URLService struct {
	store    store.Store
	urlLimit int
}

// NewURLService creates a new URL service
func NewURLService(st store.Store) *URLService {
	return &URLService{
		store:    st,
		urlLimit: DEFAULT_URL_LIMIT,
	}
}

// NormalizeURL puts a raw chat-supplied address into canonical form.
// Bare hostnames get an https:// scheme so "example.com" is accepted.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return strings.TrimSuffix(raw, "/")
}

// ValidateURL checks that a normalized URL is something we can probe
func ValidateURL(normalized string) bool {
	parsed, err := url.ParseRequestURI(normalized)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	if parsed.Host == "" || !strings.Contains(parsed.Host, ".") {
		return false
	}
	return true
}

// AddURL normalizes, validates and registers a URL for an owner.
// The returned string is the canonical form that was stored.
func (s *URLService) AddURL(ownerID int64, raw string) (string, error) {
	normalized := NormalizeURL(raw)
	if !ValidateURL(normalized) {
		return "", ErrInvalidURL
	}

	existing, err := s.store.GetURLs(ownerID)
	if err != nil {
		return "", err
	}
	if len(existing) >= s.urlLimit {
		return "", ErrLimitReached
	}

	added, err := s.store.AddURL(ownerID, normalized)
	if err != nil {
		return "", err
	}
	if !added {
		return "", ErrAlreadyExists
	}
	return normalized, nil
}

// RemoveURL unregisters a URL for an owner
func (s *URLService) RemoveURL(ownerID int64, raw string) error {
	removed, err := s.store.RemoveURL(ownerID, NormalizeURL(raw))
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotRegistered
	}
	return nil
}

// GetURLs lists an owner's monitored URLs with limit metadata
func (s *URLService) GetURLs(ownerID int64) (model.URLListResponse, error) {
	urls, err := s.store.GetURLs(ownerID)
	if err != nil {
		return model.URLListResponse{}, err
	}
	return model.URLListResponse{
		URLs:      urls,
		TotalURLs: len(urls),
		URLLimit:  s.urlLimit,
	}, nil
}

// GetURL fetches one monitored URL for an owner
func (s *URLService) GetURL(ownerID int64, raw string) (*model.MonitoredURL, error) {
	u, err := s.store.GetURL(ownerID, NormalizeURL(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return u, nil
}

// GetURLByID fetches one monitored URL by its stable ID. Used by the chat
// layer to resolve callback buttons.
func (s *URLService) GetURLByID(id int) (*model.MonitoredURL, error) {
	u, err := s.store.GetURLByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return u, nil
}

// GetUptimeStats computes windowed uptime for one of the owner's URLs
func (s *URLService) GetUptimeStats(ownerID int64, raw string, windowHours int) (model.UptimeStats, error) {
	stats, err := s.store.GetUptimeStats(ownerID, NormalizeURL(raw), windowHours)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return stats, ErrNotRegistered
		}
		return stats, err
	}
	return stats, nil
}
