package admin

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"
)

// Persister stores the admin list durably between restarts
type Persister interface {
	LoadAdmins() ([]int64, error)
	SaveAdmin(chatID int64) error
	DeleteAdmin(chatID int64) error
}

// Registry tracks which Telegram chat IDs are admins. The primary admin
// comes from configuration, is always a member and can never be removed.
type Registry struct {
	mu        sync.RWMutex
	primary   int64
	admins    map[int64]bool
	persister Persister
}

// NewRegistry creates a registry seeded with the primary admin. A nil
// persister keeps the list in memory only.
func NewRegistry(primaryAdmin int64, persister Persister) *Registry {
	r := &Registry{
		primary:   primaryAdmin,
		admins:    map[int64]bool{primaryAdmin: true},
		persister: persister,
	}

	if persister != nil {
		stored, err := persister.LoadAdmins()
		if err != nil {
			log.Printf("Error loading stored admins: %v", err)
		}
		for _, chatID := range stored {
			r.admins[chatID] = true
		}
	}
	return r
}

// IsAdmin checks if the given chat ID is an admin
func (r *Registry) IsAdmin(chatID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.admins[chatID]
}

// IsPrimaryAdmin checks if the given chat ID is the primary admin
func (r *Registry) IsPrimaryAdmin(chatID int64) bool {
	return chatID == r.primary
}

// AddAdmin registers a new admin chat ID. Returns false if already present.
func (r *Registry) AddAdmin(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.admins[chatID] {
		return false
	}
	r.admins[chatID] = true

	if r.persister != nil {
		if err := r.persister.SaveAdmin(chatID); err != nil {
			log.Printf("Error persisting admin %d: %v", chatID, err)
		}
	}
	log.Printf("Added new admin: %d", chatID)
	return true
}

// RemoveAdmin drops an admin chat ID. The primary admin cannot be removed;
// removing an unknown ID returns false.
func (r *Registry) RemoveAdmin(chatID int64) bool {
	if chatID == r.primary {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.admins[chatID] {
		return false
	}
	delete(r.admins, chatID)

	if r.persister != nil {
		if err := r.persister.DeleteAdmin(chatID); err != nil {
			log.Printf("Error deleting persisted admin %d: %v", chatID, err)
		}
	}
	log.Printf("Removed admin: %d", chatID)
	return true
}

// ListAdmins returns all admin chat IDs in stable order
func (r *Registry) ListAdmins() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0, len(r.admins))
	for chatID := range r.admins {
		out = append(out, chatID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PostgresPersister keeps the admin list in the database
type PostgresPersister struct {
	db *sqlx.DB
}

// NewPostgresPersister creates a persister and ensures its table exists
func NewPostgresPersister(db *sqlx.DB) (*PostgresPersister, error) {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS admins (
            chat_id BIGINT PRIMARY KEY,
            added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare admins table: %w", err)
	}
	return &PostgresPersister{db: db}, nil
}

// LoadAdmins returns every stored admin chat ID
func (p *PostgresPersister) LoadAdmins() ([]int64, error) {
	var ids []int64
	if err := p.db.Select(&ids, `SELECT chat_id FROM admins ORDER BY chat_id`); err != nil {
		return nil, fmt.Errorf("failed to load admins: %w", err)
	}
	return ids, nil
}

// SaveAdmin stores one admin chat ID
func (p *PostgresPersister) SaveAdmin(chatID int64) error {
	_, err := p.db.Exec(`
        INSERT INTO admins (chat_id) VALUES ($1)
        ON CONFLICT (chat_id) DO NOTHING
    `, chatID)
	if err != nil {
		return fmt.Errorf("failed to save admin: %w", err)
	}
	return nil
}

// DeleteAdmin removes one admin chat ID
func (p *PostgresPersister) DeleteAdmin(chatID int64) error {
	_, err := p.db.Exec(`DELETE FROM admins WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	return nil
}
