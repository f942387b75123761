package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"url-monitor-go/internal/store"
	"url-monitor-go/pkg/model"
)

// URLStore is the Postgres-backed store implementation
type URLStore struct {
	db *sqlx.DB
}

// NewURLStore creates a Postgres store and ensures its schema exists
func NewURLStore(db *sqlx.DB) (*URLStore, error) {
	s := &URLStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to prepare url store schema: %w", err)
	}
	return s, nil
}

func (s *URLStore) migrate() error {
	_, err := s.db.Exec(`
        CREATE TABLE IF NOT EXISTS monitored_urls (
            id SERIAL PRIMARY KEY,
            owner_id BIGINT NOT NULL,
            url TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            last_check TIMESTAMPTZ,
            last_response_time DOUBLE PRECISION,
            last_status_code INTEGER,
            added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (owner_id, url)
        )`)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
        CREATE TABLE IF NOT EXISTS check_records (
            id SERIAL PRIMARY KEY,
            url_id INTEGER NOT NULL REFERENCES monitored_urls(id) ON DELETE CASCADE,
            checked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            success BOOLEAN NOT NULL,
            status_code INTEGER NOT NULL,
            response_time DOUBLE PRECISION NOT NULL
        )`)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_check_records_url_time
        ON check_records (url_id, checked_at)`)
	return err
}

// AddURL registers a URL for an owner
func (s *URLStore) AddURL(ownerID int64, url string) (bool, error) {
	res, err := s.db.Exec(`
        INSERT INTO monitored_urls (owner_id, url, status, added_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (owner_id, url) DO NOTHING
    `, ownerID, url, model.StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to add url: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// RemoveURL deletes the (owner, url) pair; check history goes with it
func (s *URLStore) RemoveURL(ownerID int64, url string) (bool, error) {
	res, err := s.db.Exec(`
        DELETE FROM monitored_urls WHERE owner_id = $1 AND url = $2
    `, ownerID, url)
	if err != nil {
		return false, fmt.Errorf("failed to remove url: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// GetURL fetches one monitored URL
func (s *URLStore) GetURL(ownerID int64, url string) (*model.MonitoredURL, error) {
	var u model.MonitoredURL
	err := s.db.Get(&u, `
        SELECT id, owner_id, url, status, last_check, last_response_time,
               last_status_code, added_at
        FROM monitored_urls
        WHERE owner_id = $1 AND url = $2
    `, ownerID, url)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetURLByID fetches one monitored URL by its stable ID
func (s *URLStore) GetURLByID(id int) (*model.MonitoredURL, error) {
	var u model.MonitoredURL
	err := s.db.Get(&u, `
        SELECT id, owner_id, url, status, last_check, last_response_time,
               last_status_code, added_at
        FROM monitored_urls
        WHERE id = $1
    `, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetURLs lists all URLs registered by one owner
func (s *URLStore) GetURLs(ownerID int64) ([]model.MonitoredURL, error) {
	var urls []model.MonitoredURL
	err := s.db.Select(&urls, `
        SELECT id, owner_id, url, status, last_check, last_response_time,
               last_status_code, added_at
        FROM monitored_urls
        WHERE owner_id = $1
        ORDER BY added_at
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls for owner %d: %w", ownerID, err)
	}
	return urls, nil
}

// GetAllURLs lists every registered (owner, url) pair across all owners
func (s *URLStore) GetAllURLs() ([]model.MonitoredURL, error) {
	var urls []model.MonitoredURL
	err := s.db.Select(&urls, `
        SELECT id, owner_id, url, status, last_check, last_response_time,
               last_status_code, added_at
        FROM monitored_urls
        ORDER BY owner_id, added_at
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	return urls, nil
}

// UpdateStatus updates the current-state fields and appends a CheckRecord
// in one transaction.
func (s *URLStore) UpdateStatus(ownerID int64, url string, statusCode int, responseTime float64, success bool) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin status update: %w", err)
	}
	defer tx.Rollback()

	status := model.StatusOffline
	if success {
		status = model.StatusOnline
	}

	var urlID int
	err = tx.QueryRow(`
        UPDATE monitored_urls
        SET status = $1, last_check = NOW(), last_response_time = $2,
            last_status_code = $3
        WHERE owner_id = $4 AND url = $5
        RETURNING id
    `, status, responseTime, statusCode, ownerID, url).Scan(&urlID)
	if err != nil {
		if err == sql.ErrNoRows {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to update url status: %w", err)
	}

	_, err = tx.Exec(`
        INSERT INTO check_records (url_id, checked_at, success, status_code, response_time)
        VALUES ($1, NOW(), $2, $3, $4)
    `, urlID, success, statusCode, responseTime)
	if err != nil {
		return fmt.Errorf("failed to append check record: %w", err)
	}

	return tx.Commit()
}

// GetUptimeStats computes windowed uptime for one (owner, url) pair
func (s *URLStore) GetUptimeStats(ownerID int64, url string, windowHours int) (model.UptimeStats, error) {
	stats := model.UptimeStats{URL: url, WindowHours: windowHours}

	u, err := s.GetURL(ownerID, url)
	if err != nil {
		return stats, err
	}

	cutoff := time.Now().Add(-time.Duration(windowHours) * time.Hour)

	var row struct {
		Total      int     `db:"total"`
		Successful int     `db:"successful"`
		AvgTime    float64 `db:"avg_time"`
	}
	err = s.db.Get(&row, `
        SELECT COUNT(*) AS total,
               COUNT(*) FILTER (WHERE success) AS successful,
               COALESCE(AVG(response_time), 0) AS avg_time
        FROM check_records
        WHERE url_id = $1 AND checked_at >= $2
    `, u.ID, cutoff)
	if err != nil {
		return stats, fmt.Errorf("failed to compute uptime stats: %w", err)
	}

	stats.TotalChecks = row.Total
	stats.SuccessfulChecks = row.Successful
	stats.AverageResponseTime = row.AvgTime
	if row.Total > 0 {
		stats.UptimePercentage = float64(row.Successful) / float64(row.Total) * 100
	}
	return stats, nil
}

// PruneCheckRecords deletes check history older than the cutoff
func (s *URLStore) PruneCheckRecords(olderThan time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM check_records WHERE checked_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune check records: %w", err)
	}
	return res.RowsAffected()
}
