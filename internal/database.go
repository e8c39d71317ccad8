package internal

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const localStorageSchema = `
CREATE TABLE IF NOT EXISTS localStorage (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// OpenDatabase opens (creating if needed) the SQLite state database
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := db.Exec(localStorageSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create localStorage table: %w", err)
	}

	return db, nil
}

// GetItem reads a value from the localStorage table
func GetItem(db *sql.DB, key string) (string, bool, error) {
	var value sql.NullString
	err := db.QueryRow("SELECT value FROM localStorage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query failed: %w", err)
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// SetItem upserts a value in the localStorage table
func SetItem(db *sql.DB, key, value string) error {
	query := "INSERT INTO localStorage (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"
	if _, err := db.Exec(query, key, value); err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

// RemoveItem deletes a key from the localStorage table
func RemoveItem(db *sql.DB, key string) error {
	if _, err := db.Exec("DELETE FROM localStorage WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}
