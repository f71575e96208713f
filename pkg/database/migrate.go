package database

import (
	"database/sql"
	"fmt"
)

// schema is applied on startup; idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS anime (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	en_title TEXT,
	description TEXT NOT NULL,
	rating REAL,
	start_date TEXT,
	end_date TEXT,
	subtype TEXT NOT NULL,
	status TEXT NOT NULL,
	poster_image TEXT NOT NULL,
	cover_image TEXT,
	episode_count INTEGER,
	categories TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_anime_title ON anime(title);
CREATE INDEX IF NOT EXISTS idx_anime_status ON anime(status);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
