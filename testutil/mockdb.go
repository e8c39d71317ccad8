package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

const localStorageSchema = `
CREATE TABLE IF NOT EXISTS localStorage (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// CreateInMemoryDB creates an in-memory SQLite database with the localStorage table
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// every pooled connection would otherwise get its own empty database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(localStorageSchema); err != nil {
		db.Close()
		t.Fatalf("Failed to create localStorage table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateSQLiteFixture creates a state database on disk holding one key/value pair
func CreateSQLiteFixture(t *testing.T, dbPath, key, value string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(localStorageSchema); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO localStorage (key, value) VALUES (?, ?)", key, value); err != nil {
		t.Fatalf("Failed to insert fixture row: %v", err)
	}
}
