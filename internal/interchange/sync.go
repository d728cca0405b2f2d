// ABOUTME: Export, import and diff between the primary store and a snapshot file.
// ABOUTME: Import goes through validation and the normal upsert path, one record at a time.
package interchange

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
	"github.com/harperreed/coach/internal/validate"
)

// Syncer moves one user's data between the store and snapshot files.
type Syncer struct {
	repo storage.Repository
	path string
}

// NewSyncer creates a Syncer. path is the snapshot file Diff compares against.
func NewSyncer(repo storage.Repository, path string) *Syncer {
	return &Syncer{repo: repo, path: path}
}

// Path returns the configured snapshot path.
func (s *Syncer) Path() string {
	return s.path
}

// ImportResult reports what an import did.
type ImportResult struct {
	Applied      int         `json:"applied"`
	Skipped      int         `json:"skipped"`
	Warnings     int         `json:"warnings"`
	ProfileSaved bool        `json:"profile_saved"`
	Rejections   []Rejection `json:"rejections,omitempty"`
}

// SyncStatus compares the store with a snapshot file.
type SyncStatus struct {
	UserID              string   `json:"user_id"`
	SnapshotPath        string   `json:"snapshot_path"`
	SnapshotExists      bool     `json:"snapshot_exists"`
	ProfileInSync       bool     `json:"profile_in_sync"`
	EntriesInSync       bool     `json:"entries_in_sync"`
	StoreCount          int      `json:"store_count"`
	SnapshotCount       int      `json:"snapshot_count"`
	MissingFromSnapshot []string `json:"missing_from_snapshot,omitempty"`
	MissingFromStore    []string `json:"missing_from_store,omitempty"`
	Unreadable          int      `json:"unreadable,omitempty"`
}

// InSync reports whether both profile and entry dates match.
func (s *SyncStatus) InSync() bool {
	return s.SnapshotExists && s.ProfileInSync && s.EntriesInSync
}

// Export dumps the user's profile and every entry, newest date first.
func (s *Syncer) Export(userID string) (*Snapshot, error) {
	profile, err := s.repo.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("export profile: %w", err)
	}
	entries, err := s.repo.ListEntries(userID, "")
	if err != nil {
		return nil, fmt.Errorf("export entries: %w", err)
	}

	snap := &Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       SnapshotTool,
		UserID:     userID,
		Profile:    profile,
		Entries:    make([]models.Record, 0, len(entries)),
	}
	for _, e := range entries {
		snap.Entries = append(snap.Entries, models.RecordFromEntry(e))
	}
	return snap, nil
}

// Import applies a snapshot to userID (the snapshot's own user when empty).
// Records failing validation are skipped and counted; a storage failure
// aborts and returns the partial result alongside the error.
func (s *Syncer) Import(snap *Snapshot, userID string) (*ImportResult, error) {
	if userID == "" {
		userID = snap.UserID
	}
	res := &ImportResult{}
	for _, r := range snap.Rejected {
		res.Skipped++
		res.Rejections = append(res.Rejections, r)
	}

	if snap.Profile != nil {
		p := snap.Profile.Clone()
		p.UserID = userID
		if err := s.importProfile(p); err != nil {
			if errors.Is(err, storage.ErrStorageUnavailable) {
				return res, fmt.Errorf("import profile: %w", err)
			}
			res.Skipped++
			res.Rejections = append(res.Rejections, Rejection{Index: -1, Reason: "profile: " + err.Error()})
		} else {
			res.ProfileSaved = true
		}
	}

	for i, rec := range snap.Entries {
		e, warnings, err := validate.Validate(userID, rec)
		if err != nil {
			res.Skipped++
			res.Rejections = append(res.Rejections, Rejection{Index: i, Date: rec.Date, Reason: err.Error()})
			continue
		}
		res.Warnings += len(warnings)

		if err := s.repo.UpsertEntry(e); err != nil {
			if errors.Is(err, storage.ErrStorageUnavailable) {
				return res, fmt.Errorf("import aborted after %d entries: %w", res.Applied, err)
			}
			res.Skipped++
			res.Rejections = append(res.Rejections, Rejection{Index: i, Date: rec.Date, Reason: err.Error()})
			continue
		}
		res.Applied++
	}
	return res, nil
}

func (s *Syncer) importProfile(p *models.Profile) error {
	if err := validate.Profile(p); err != nil {
		return err
	}
	return s.repo.SaveProfile(p)
}

// Diff compares the store with the configured snapshot file.
func (s *Syncer) Diff(userID string) (*SyncStatus, error) {
	status := &SyncStatus{UserID: userID, SnapshotPath: s.path}

	profile, err := s.repo.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("diff profile: %w", err)
	}
	entries, err := s.repo.ListEntries(userID, "")
	if err != nil {
		return nil, fmt.Errorf("diff entries: %w", err)
	}
	status.StoreCount = len(entries)

	snap, err := ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		status.MissingFromSnapshot = entryDates(entries)
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	status.SnapshotExists = true
	compare(status, userID, profile, entries, snap)
	return status, nil
}

// compare fills status from a store view and a snapshot. Entries match by
// the set of dates present, not by count.
func compare(status *SyncStatus, userID string, profile *models.Profile, entries []*models.Entry, snap *Snapshot) {
	if snap.Profile != nil {
		theirs := snap.Profile.Clone()
		theirs.UserID = userID
		status.ProfileInSync = profile.Equal(theirs)
	}

	status.Unreadable = len(snap.Rejected)
	snapDates := make(map[string]bool)
	for _, rec := range snap.Entries {
		date, err := validate.ParseDate(rec.Date)
		if err != nil {
			status.Unreadable++
			continue
		}
		snapDates[date] = true
	}
	status.SnapshotCount = len(snapDates)

	storeDates := make(map[string]bool, len(entries))
	for _, e := range entries {
		storeDates[e.Date] = true
		if !snapDates[e.Date] {
			status.MissingFromSnapshot = append(status.MissingFromSnapshot, e.Date)
		}
	}
	for date := range snapDates {
		if !storeDates[date] {
			status.MissingFromStore = append(status.MissingFromStore, date)
		}
	}
	slices.Sort(status.MissingFromSnapshot)
	slices.Sort(status.MissingFromStore)
	status.EntriesInSync = len(status.MissingFromSnapshot) == 0 && len(status.MissingFromStore) == 0
}

// ExportFile exports userID and writes the snapshot to path atomically.
func (s *Syncer) ExportFile(userID, path string) (*Snapshot, error) {
	snap, err := s.Export(userID)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(path, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// ImportFile reads a snapshot file and imports it for userID.
func (s *Syncer) ImportFile(path, userID string) (*ImportResult, error) {
	snap, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.Import(snap, userID)
}

// ReadFile reads and decodes a snapshot, choosing the format by extension.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	snap, err := Decode(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// WriteFile encodes snap by extension and replaces path via a temp file rename.
func WriteFile(path string, snap *Snapshot) error {
	data, err := snap.Encode(FormatForPath(path))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("set snapshot permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func entryDates(entries []*models.Entry) []string {
	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		dates = append(dates, e.Date)
	}
	slices.Sort(dates)
	return dates
}
