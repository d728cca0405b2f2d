// ABOUTME: Entry upsert, lookup, range, delete and stats for SQLite storage.
// ABOUTME: Upsert is a single INSERT ... ON CONFLICT statement under a per-key lock.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/coach/internal/models"
)

const entryColumns = `id, user_id, date, timestamp, mood, energy, sleep_hours, sleep_quality,
	stress_level, soreness, training_done, training_quality, nutrition, hydration, notes,
	recovery_score, training_volume, split`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// UpsertEntry stores e, replacing every field of any entry with the same
// (user, date). e.Timestamp and e.ID are updated to the stored values.
func (d *DB) UpsertEntry(e *models.Entry) error {
	unlock := d.locks.Lock(entryKey(e.UserID, e.Date))
	defer unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Timestamp = d.now()

	soreness, err := encodeTags(e.Soreness)
	if err != nil {
		return fmt.Errorf("encode soreness: %w", err)
	}

	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			timestamp = excluded.timestamp,
			mood = excluded.mood,
			energy = excluded.energy,
			sleep_hours = excluded.sleep_hours,
			sleep_quality = excluded.sleep_quality,
			stress_level = excluded.stress_level,
			soreness = excluded.soreness,
			training_done = excluded.training_done,
			training_quality = excluded.training_quality,
			nutrition = excluded.nutrition,
			hydration = excluded.hydration,
			notes = excluded.notes,
			recovery_score = excluded.recovery_score,
			training_volume = excluded.training_volume,
			split = excluded.split
		RETURNING id
	`
	var idStr string
	err = d.db.QueryRow(query,
		e.ID.String(),
		e.UserID,
		e.Date,
		e.Timestamp.Format(time.RFC3339Nano),
		e.Mood,
		nullFloat(e.Energy),
		nullFloat(e.SleepHours),
		nullFloat(e.SleepQuality),
		nullFloat(e.StressLevel),
		soreness,
		e.TrainingDone,
		nullFloat(e.TrainingQuality),
		e.Nutrition,
		nullFloat(e.Hydration),
		e.Notes,
		e.RecoveryScore,
		string(e.TrainingVolume),
		string(e.Split),
	).Scan(&idStr)
	if err != nil {
		return unavailable("upsert entry", err)
	}

	if id, err := uuid.Parse(idStr); err == nil {
		e.ID = id
	}
	return nil
}

// GetEntry returns the entry for (user, date), or nil if there is none.
func (d *DB) GetEntry(userID, date string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = ? AND date = ?`
	e, err := scanEntry(d.db.QueryRow(query, userID, date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get entry", err)
	}
	return e, nil
}

// ListEntries returns a user's entries on or after since, newest date first.
func (d *DB) ListEntries(userID, since string) ([]*models.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE user_id = ? AND date >= ?
		ORDER BY date DESC
	`
	rows, err := d.db.Query(query, userID, since)
	if err != nil {
		return nil, unavailable("list entries", err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, unavailable("list entries", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list entries", err)
	}
	return entries, nil
}

// DeleteEntry hard-deletes the entry for (user, date) and reports whether one existed.
func (d *DB) DeleteEntry(userID, date string) (bool, error) {
	unlock := d.locks.Lock(entryKey(userID, date))
	defer unlock()

	result, err := d.db.Exec("DELETE FROM entries WHERE user_id = ? AND date = ?", userID, date)
	if err != nil {
		return false, unavailable("delete entry", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, unavailable("delete entry", err)
	}
	return affected > 0, nil
}

// EntryStats summarises a user's entries. The 7-day count includes today,
// taken in the local time zone.
func (d *DB) EntryStats(userID string) (*models.EntryStats, error) {
	weekStart := models.WeekStart(models.LocalDate(d.now()))

	query := `
		SELECT COUNT(*), MIN(date), MAX(date),
			COALESCE(SUM(CASE WHEN date >= ? THEN 1 ELSE 0 END), 0)
		FROM entries
		WHERE user_id = ?
	`
	var stats models.EntryStats
	var minDate, maxDate sql.NullString
	err := d.db.QueryRow(query, weekStart, userID).Scan(&stats.TotalCount, &minDate, &maxDate, &stats.CountLast7Days)
	if err != nil {
		return nil, unavailable("entry stats", err)
	}
	stats.MinDate = minDate.String
	stats.MaxDate = maxDate.String
	return &stats, nil
}

// ListUsers returns every user with an entry or a profile.
func (d *DB) ListUsers() ([]string, error) {
	rows, err := d.db.Query(`
		SELECT user_id FROM entries
		UNION
		SELECT user_id FROM profiles
		ORDER BY 1
	`)
	if err != nil {
		return nil, unavailable("list users", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, unavailable("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list users", err)
	}
	return users, nil
}

// scanEntry scans a single row into an Entry.
func scanEntry(row rowScanner) (*models.Entry, error) {
	var e models.Entry
	var idStr, timestamp, volume, split string
	var energy, sleepHours, sleepQuality, stress, trainingQuality, hydration sql.NullFloat64
	var soreness sql.NullString

	err := row.Scan(
		&idStr, &e.UserID, &e.Date, &timestamp, &e.Mood,
		&energy, &sleepHours, &sleepQuality, &stress, &soreness,
		&e.TrainingDone, &trainingQuality, &e.Nutrition, &hydration, &e.Notes,
		&e.RecoveryScore, &volume, &split,
	)
	if err != nil {
		return nil, err
	}

	e.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt entry id %q: %w", idStr, err)
	}
	e.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return nil, fmt.Errorf("corrupt entry timestamp %q: %w", timestamp, err)
	}
	e.Energy = floatPtr(energy)
	e.SleepHours = floatPtr(sleepHours)
	e.SleepQuality = floatPtr(sleepQuality)
	e.StressLevel = floatPtr(stress)
	e.TrainingQuality = floatPtr(trainingQuality)
	e.Hydration = floatPtr(hydration)
	e.TrainingVolume = models.TrainingVolume(volume)
	e.Split = models.Split(split)

	if soreness.Valid {
		e.Soreness, err = decodeTags(soreness.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt soreness %q: %w", soreness.String, err)
		}
	}
	return &e, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// encodeTags stores nil as NULL and an empty slice as "[]".
func encodeTags(tags []string) (sql.NullString, error) {
	if tags == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeTags(s string) ([]string, error) {
	tags := []string{}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
