package db

import (
	"database/sql"
	"fmt"
	"time"
)

// OpenPostgres opens and verifies a pooled Postgres connection for the
// shared geocode cache.
func OpenPostgres(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify postgres connection: %w", err)
	}

	return db, nil
}

// OpenSQLite opens the file-backed local cache and makes sure its schema
// exists. Single-instance installs default to this.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection: %w", err)
	}

	if _, err := db.Exec(SQLiteSchema); err != nil {
		return nil, fmt.Errorf("openDB: ensure sqlite schema: %w", err)
	}

	return db, nil
}

// SQLiteSchema creates the geocode cache table. The Postgres equivalent is
// applied by the dbtool binary.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS geocode_cache (
    coord_key TEXT PRIMARY KEY,
    lat       REAL NOT NULL,
    lon       REAL NOT NULL,
    address   TEXT NOT NULL
);
`
