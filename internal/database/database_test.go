package database

import (
	"path/filepath"
	"testing"
)

func TestDBPath(t *testing.T) {
	expected := filepath.Join("data", "surf-spotter.db")
	if got := DBPath(); got != expected {
		t.Errorf("DBPath() = %v, want %v", got, expected)
	}
}

func TestOpen_InMemory(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM spots").Scan(&count); err != nil {
		t.Fatalf("spots table missing: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestEnsureSchema_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	// 1. Initialize schema and insert a record
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	_, err = db.Exec(`INSERT INTO spots (name, swell_compat, wind_compat, tide_behavior) VALUES ('Test Spot', '{}', '{}', '{}')`)
	db.Close()
	if err != nil {
		t.Fatalf("Failed to insert record: %v", err)
	}

	// 2. Open again (should not drop table)
	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM spots WHERE name = 'Test Spot'").Scan(&count); err != nil {
		t.Fatalf("Failed to query record: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 record, got %d. Data was likely lost due to table drop.", count)
	}
}
