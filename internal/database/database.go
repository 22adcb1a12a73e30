package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// DBPath returns the path to the single shared database
func DBPath() string {
	return filepath.Join("data", "surf-spotter.db")
}

// Open opens the sqlite database at dbPath, creating its directory and the
// schema when missing.
func Open(dbPath string) (*sql.DB, error) {
	inMemory := dbPath == MemoryPath || strings.HasPrefix(dbPath, "file::memory:")
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if inMemory {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		// Set pragmas for performance
		_, _ = db.Exec("PRAGMA journal_mode=WAL")
		_, _ = db.Exec("PRAGMA synchronous=NORMAL")
		_, _ = db.Exec("PRAGMA cache_size=10000")
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the spots table if it doesn't exist. Profile
// sub-structures are stored as JSON text.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS spots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			city TEXT NOT NULL DEFAULT '',
			latitude REAL,
			longitude REAL,
			forecast_source_id TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			orientation TEXT NOT NULL DEFAULT '',
			best_season TEXT NOT NULL DEFAULT '',
			swell_compat TEXT NOT NULL,
			wind_compat TEXT NOT NULL,
			tide_behavior TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_spots_name_city ON spots(name, city);
		CREATE INDEX IF NOT EXISTS idx_spots_location ON spots(latitude, longitude);
	`)
	if err != nil {
		return fmt.Errorf("creating spots table: %w", err)
	}
	return nil
}
