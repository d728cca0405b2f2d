// ABOUTME: Tests for data migration between storage backends.
// ABOUTME: Covers sqlite-to-badger migration and replacement of existing dates.
package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/coach/internal/models"
)

func TestMigrateDataSQLiteToBadger(t *testing.T) {
	src, err := Open(filepath.Join(t.TempDir(), "coach.db"))
	if err != nil {
		t.Fatalf("Failed to open source DB: %v", err)
	}
	defer src.Close()

	p := models.NewProfile("yoel")
	p.Goals = []string{"handstand"}
	if err := src.SaveProfile(p); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
	for _, date := range []string{"2025-01-12", "2025-01-13"} {
		if err := src.UpsertEntry(newEntry("yoel", date, "Push Day - Heavy", 7)); err != nil {
			t.Fatalf("UpsertEntry failed: %v", err)
		}
	}
	if err := src.UpsertEntry(newEntry("ana", "2025-01-13", "Yoga", 6)); err != nil {
		t.Fatalf("UpsertEntry failed: %v", err)
	}

	dst, err := OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger failed: %v", err)
	}
	defer dst.Close()

	// Existing destination data for the same date is replaced, not duplicated.
	if err := dst.UpsertEntry(newEntry("yoel", "2025-01-13", "rest", 2)); err != nil {
		t.Fatalf("UpsertEntry failed: %v", err)
	}

	summary, err := MigrateData(src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}

	if summary.Users != 2 {
		t.Errorf("Expected 2 migrated users, got %d", summary.Users)
	}
	if summary.Profiles != 2 {
		t.Errorf("Expected 2 migrated profiles, got %d", summary.Profiles)
	}
	if summary.Entries != 3 {
		t.Errorf("Expected 3 migrated entries, got %d", summary.Entries)
	}

	entries, err := dst.ListEntries("yoel", "")
	if err != nil {
		t.Fatalf("ListEntries from dst failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries in dst, got %d", len(entries))
	}
	if entries[0].Split != models.SplitPush || *entries[0].Energy != 7 {
		t.Errorf("destination entry not replaced: %+v", entries[0])
	}

	gotProfile, err := dst.GetProfile("yoel")
	if err != nil {
		t.Fatalf("GetProfile from dst failed: %v", err)
	}
	if !gotProfile.Equal(p) {
		t.Errorf("profile mismatch: got %+v, want %+v", gotProfile, p)
	}
}

func TestIsDirNonEmpty(t *testing.T) {
	dir := t.TempDir()

	nonEmpty, err := IsDirNonEmpty(filepath.Join(dir, "missing"))
	if err != nil || nonEmpty {
		t.Errorf("missing dir: got %v, %v", nonEmpty, err)
	}

	nonEmpty, err = IsDirNonEmpty(dir)
	if err != nil || nonEmpty {
		t.Errorf("empty dir: got %v, %v", nonEmpty, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	nonEmpty, err = IsDirNonEmpty(dir)
	if err != nil || !nonEmpty {
		t.Errorf("non-empty dir: got %v, %v", nonEmpty, err)
	}
}
