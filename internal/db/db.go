package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS drafts (
    id           INTEGER PRIMARY KEY CHECK(id = 1),
    name         TEXT NOT NULL DEFAULT '',
    address      TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    latitude     TEXT NOT NULL DEFAULT '',
    longitude    TEXT NOT NULL DEFAULT '',
    cuisine      TEXT NOT NULL DEFAULT '',
    price_range  TEXT NOT NULL DEFAULT '',
    image_path   TEXT NOT NULL DEFAULT '',
    image_url    TEXT NOT NULL DEFAULT '',
    updated_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE TABLE IF NOT EXISTS recent_views (
    restaurant_id TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    address       TEXT,
    cuisine       TEXT,
    price_range   TEXT,
    latitude      REAL,
    longitude     REAL,
    viewed_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recent_views_viewed_at ON recent_views(viewed_at DESC);
`

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Open opens or creates the SQLite database and initializes the schema.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: every caller sees the same :memory: database and
	// writes never contend.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
