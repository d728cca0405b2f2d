// ABOUTME: Profile lookup and save for SQLite storage.
// ABOUTME: Profiles are created lazily with defaults and replaced whole on save.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/coach/internal/models"
)

// GetProfile returns the user's profile, storing a default one on first access.
func (d *DB) GetProfile(userID string) (*models.Profile, error) {
	p, err := d.selectProfile(userID)
	if err != nil {
		return nil, unavailable("get profile", err)
	}
	if p != nil {
		return p, nil
	}

	unlock := d.locks.Lock(profileKey(userID))
	defer unlock()

	p = models.NewProfile(userID)
	p.UpdatedAt = d.now()
	// DO NOTHING keeps a profile saved concurrently since the select above.
	if err := d.writeProfile(p, "DO NOTHING"); err != nil {
		return nil, unavailable("create default profile", err)
	}

	stored, err := d.selectProfile(userID)
	if err != nil {
		return nil, unavailable("get profile", err)
	}
	return stored, nil
}

// SaveProfile replaces the user's profile.
func (d *DB) SaveProfile(p *models.Profile) error {
	if p.UserID == "" {
		return fmt.Errorf("save profile: user_id is required")
	}

	unlock := d.locks.Lock(profileKey(p.UserID))
	defer unlock()

	p.UpdatedAt = d.now()
	update := `DO UPDATE SET
		name = excluded.name,
		training_split = excluded.training_split,
		days_per_week = excluded.days_per_week,
		goals = excluded.goals,
		injury_notes = excluded.injury_notes,
		dietary_notes = excluded.dietary_notes,
		updated_at = excluded.updated_at`
	if err := d.writeProfile(p, update); err != nil {
		return unavailable("save profile", err)
	}
	return nil
}

func (d *DB) writeProfile(p *models.Profile, onConflict string) error {
	goals, err := json.Marshal(nonNil(p.Goals))
	if err != nil {
		return fmt.Errorf("encode goals: %w", err)
	}

	query := `
		INSERT INTO profiles (user_id, name, training_split, days_per_week, goals,
			injury_notes, dietary_notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) ` + onConflict
	_, err = d.db.Exec(query,
		p.UserID,
		p.Name,
		p.TrainingSplit,
		p.DaysPerWeek,
		string(goals),
		p.InjuryNotes,
		p.DietaryNotes,
		p.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// selectProfile returns nil, nil when the user has no profile row.
func (d *DB) selectProfile(userID string) (*models.Profile, error) {
	query := `
		SELECT user_id, name, training_split, days_per_week, goals,
			injury_notes, dietary_notes, updated_at
		FROM profiles
		WHERE user_id = ?
	`
	var p models.Profile
	var goals, updatedAt string
	err := d.db.QueryRow(query, userID).Scan(
		&p.UserID, &p.Name, &p.TrainingSplit, &p.DaysPerWeek, &goals,
		&p.InjuryNotes, &p.DietaryNotes, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(goals), &p.Goals); err != nil {
		return nil, fmt.Errorf("corrupt goals %q: %w", goals, err)
	}
	if len(p.Goals) == 0 {
		p.Goals = nil
	}
	p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt updated_at %q: %w", updatedAt, err)
	}
	return &p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
