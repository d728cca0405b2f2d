// ABOUTME: Repository decorator that reports successful writes per user.
// ABOUTME: Used to invalidate read caches synchronously in the write path.
package storage

import "github.com/harperreed/coach/internal/models"

type notifyingRepo struct {
	Repository
	hook func(userID string)
}

// Notify wraps repo so hook runs after every successful upsert, delete or
// profile save, before the write call returns.
func Notify(repo Repository, hook func(userID string)) Repository {
	return &notifyingRepo{Repository: repo, hook: hook}
}

// Unwrap returns the wrapped repository.
func (n *notifyingRepo) Unwrap() Repository {
	return n.Repository
}

// IsReadOnly reports whether repo rejects writes. Wrapped repositories are
// unwrapped first; backends without a read-only mode report false.
func IsReadOnly(repo Repository) bool {
	for repo != nil {
		if ro, ok := repo.(interface{ IsReadOnly() bool }); ok {
			return ro.IsReadOnly()
		}
		u, ok := repo.(interface{ Unwrap() Repository })
		if !ok {
			return false
		}
		repo = u.Unwrap()
	}
	return false
}

func (n *notifyingRepo) UpsertEntry(e *models.Entry) error {
	if err := n.Repository.UpsertEntry(e); err != nil {
		return err
	}
	n.hook(e.UserID)
	return nil
}

func (n *notifyingRepo) DeleteEntry(userID, date string) (bool, error) {
	deleted, err := n.Repository.DeleteEntry(userID, date)
	if err != nil {
		return false, err
	}
	if deleted {
		n.hook(userID)
	}
	return deleted, nil
}

func (n *notifyingRepo) SaveProfile(p *models.Profile) error {
	if err := n.Repository.SaveProfile(p); err != nil {
		return err
	}
	n.hook(p.UserID)
	return nil
}
