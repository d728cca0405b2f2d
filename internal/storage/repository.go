// ABOUTME: Repository interfaces for entry and profile storage.
// ABOUTME: Every backend (SQLite, Charm KV, Badger) implements Repository.
package storage

import "github.com/harperreed/coach/internal/models"

// EntryStore persists one entry per (user, date).
type EntryStore interface {
	// UpsertEntry replaces the whole entry for its (user, date) key. It sets
	// Timestamp, and keeps the ID of any entry it replaces.
	UpsertEntry(e *models.Entry) error
	// GetEntry returns nil, nil when no entry exists.
	GetEntry(userID, date string) (*models.Entry, error)
	// ListEntries returns entries with date >= since (all when since is
	// empty), most recent date first.
	ListEntries(userID, since string) ([]*models.Entry, error)
	DeleteEntry(userID, date string) (bool, error)
	EntryStats(userID string) (*models.EntryStats, error)
}

// ProfileStore persists one profile per user.
type ProfileStore interface {
	// GetProfile creates and stores a default profile on first access.
	GetProfile(userID string) (*models.Profile, error)
	// SaveProfile replaces the stored profile and sets UpdatedAt.
	SaveProfile(p *models.Profile) error
}

// Repository is the full storage contract.
type Repository interface {
	EntryStore
	ProfileStore

	// ListUsers returns every user with an entry or a profile, sorted.
	ListUsers() ([]string, error)
	Close() error
}
