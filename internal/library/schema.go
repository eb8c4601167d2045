package library

import (
	"database/sql"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS hymns (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS hymn_blocks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hymn_id TEXT NOT NULL REFERENCES hymns(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			label TEXT,
			body TEXT NOT NULL,
			UNIQUE(hymn_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_hymn_blocks_hymn ON hymn_blocks(hymn_id, position);

		CREATE TABLE IF NOT EXISTS services (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			active INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS service_hymns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			service_id INTEGER NOT NULL REFERENCES services(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			hymn_id TEXT NOT NULL REFERENCES hymns(id) ON DELETE CASCADE,
			UNIQUE(service_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_service_hymns_service ON service_hymns(service_id, position);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
