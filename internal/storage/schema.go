// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines the entries table keyed by (user_id, date) and the profiles table.
package storage

// initSchema creates or updates the database schema.
// Soreness and goals are JSON arrays; a NULL soreness means not reported.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		mood TEXT NOT NULL DEFAULT '',
		energy REAL,
		sleep_hours REAL,
		sleep_quality REAL,
		stress_level REAL,
		soreness TEXT,
		training_done TEXT NOT NULL DEFAULT '',
		training_quality REAL,
		nutrition TEXT NOT NULL DEFAULT '',
		hydration REAL,
		notes TEXT NOT NULL DEFAULT '',
		recovery_score REAL NOT NULL,
		training_volume TEXT NOT NULL,
		split TEXT NOT NULL,
		PRIMARY KEY (user_id, date)
	);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		training_split TEXT NOT NULL,
		days_per_week INTEGER NOT NULL,
		goals TEXT NOT NULL DEFAULT '[]',
		injury_notes TEXT NOT NULL DEFAULT '',
		dietary_notes TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_id ON entries(id);
	CREATE INDEX IF NOT EXISTS idx_entries_user_date ON entries(user_id, date DESC);
	`

	_, err := d.db.Exec(schema)
	return err
}
