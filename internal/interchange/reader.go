// ABOUTME: Read-only view of a snapshot file used when the primary store is down.
// ABOUTME: Serves entries and the profile for reads; it has no write methods at all.
package interchange

import (
	"sort"
	"time"

	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/validate"
)

// SnapshotReader answers reads from a snapshot file.
type SnapshotReader struct {
	path string
}

// NewSnapshotReader creates a reader for the snapshot at path.
func NewSnapshotReader(path string) *SnapshotReader {
	return &SnapshotReader{path: path}
}

// load returns the snapshot's entries for userID, newest date first.
// A snapshot written for another user yields nothing.
func (r *SnapshotReader) load(userID string) (*Snapshot, []*models.Entry, error) {
	snap, err := ReadFile(r.path)
	if err != nil {
		return nil, nil, err
	}
	if snap.UserID != "" && snap.UserID != userID {
		return snap, nil, nil
	}

	byDate := make(map[string]*models.Entry)
	for _, rec := range snap.Entries {
		e, _, err := validate.Validate(userID, rec)
		if err != nil {
			continue
		}
		if ts, ok := parseTimestamp(rec.Timestamp); ok {
			e.Timestamp = ts
		}
		byDate[e.Date] = e
	}

	entries := make([]*models.Entry, 0, len(byDate))
	for _, e := range byDate {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
	return snap, entries, nil
}

// GetEntry returns the snapshot entry for (user, date), or nil.
func (r *SnapshotReader) GetEntry(userID, date string) (*models.Entry, error) {
	_, entries, err := r.load(userID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Date == date {
			return e, nil
		}
	}
	return nil, nil
}

// ListEntries returns snapshot entries on or after since, newest first.
func (r *SnapshotReader) ListEntries(userID, since string) ([]*models.Entry, error) {
	_, entries, err := r.load(userID)
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Date >= since {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetProfile returns the snapshot profile, or defaults when it has none.
func (r *SnapshotReader) GetProfile(userID string) (*models.Profile, error) {
	snap, _, err := r.load(userID)
	if err != nil {
		return nil, err
	}
	if snap.Profile == nil || (snap.UserID != "" && snap.UserID != userID) {
		return models.NewProfile(userID), nil
	}
	p := snap.Profile.Clone()
	p.UserID = userID
	return p, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	return t, err == nil
}
