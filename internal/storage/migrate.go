// ABOUTME: Data migration between coach storage backends.
// ABOUTME: Copies every user's profile and entries from source to destination.

package storage

import (
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Users    int
	Profiles int
	Entries  int
}

// MigrateData copies all data from src to dst storage through the normal
// write path, so existing destination entries for the same dates are replaced.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	users, err := src.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list source users: %w", err)
	}

	for _, userID := range users {
		summary.Users++

		profile, err := src.GetProfile(userID)
		if err != nil {
			return nil, fmt.Errorf("get profile %s: %w", userID, err)
		}
		if err := dst.SaveProfile(profile); err != nil {
			return nil, fmt.Errorf("save profile %s: %w", userID, err)
		}
		summary.Profiles++

		entries, err := src.ListEntries(userID, "")
		if err != nil {
			return nil, fmt.Errorf("list entries %s: %w", userID, err)
		}
		for _, e := range entries {
			if err := dst.UpsertEntry(e); err != nil {
				return nil, fmt.Errorf("upsert entry %s/%s: %w", userID, e.Date, err)
			}
			summary.Entries++
		}
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
