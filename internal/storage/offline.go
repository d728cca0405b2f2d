// ABOUTME: Repository stand-in for a store that failed to open.
// ABOUTME: Every call fails with ErrStorageUnavailable so callers fall back to the snapshot for reads.
package storage

import (
	"errors"
	"fmt"

	"github.com/harperreed/coach/internal/models"
)

type offlineRepo struct {
	cause error
}

// Offline returns a Repository whose every operation fails with
// ErrStorageUnavailable wrapping cause. Close succeeds.
func Offline(cause error) Repository {
	if cause == nil {
		cause = errors.New("store not opened")
	}
	return &offlineRepo{cause: cause}
}

func (o *offlineRepo) err(op string) error {
	if errors.Is(o.cause, ErrStorageUnavailable) {
		return fmt.Errorf("%s: %w", op, o.cause)
	}
	return unavailable(op, o.cause)
}

func (o *offlineRepo) UpsertEntry(*models.Entry) error { return o.err("upsert entry") }

func (o *offlineRepo) GetEntry(string, string) (*models.Entry, error) {
	return nil, o.err("get entry")
}

func (o *offlineRepo) ListEntries(string, string) ([]*models.Entry, error) {
	return nil, o.err("list entries")
}

func (o *offlineRepo) DeleteEntry(string, string) (bool, error) {
	return false, o.err("delete entry")
}

func (o *offlineRepo) EntryStats(string) (*models.EntryStats, error) {
	return nil, o.err("entry stats")
}

func (o *offlineRepo) GetProfile(string) (*models.Profile, error) {
	return nil, o.err("get profile")
}

func (o *offlineRepo) SaveProfile(*models.Profile) error { return o.err("save profile") }

func (o *offlineRepo) ListUsers() ([]string, error) { return nil, o.err("list users") }

func (o *offlineRepo) Close() error { return nil }
