package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotKey is the fixed key the session snapshot lives under
const SnapshotKey = "neuralguard_user"

const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// SnapshotStore persists the single serialized session snapshot
type SnapshotStore interface {
	// Load returns the snapshot bytes; found is false when nothing is stored.
	Load() (data []byte, found bool, err error)
	Save(data []byte) error
	Clear() error
}

// NewSnapshotStore picks a backend by name ("file" or "sqlite") rooted at dir
func NewSnapshotStore(kind, dir string) (SnapshotStore, error) {
	switch kind {
	case StorageFile, "":
		return NewFileSnapshotStore(dir), nil
	case StorageSQLite:
		return NewSQLiteSnapshotStore(filepath.Join(dir, "state.db")), nil
	default:
		return nil, fmt.Errorf("unsupported storage: %s (supported: file, sqlite)", kind)
	}
}

// FileSnapshotStore keeps the snapshot as a JSON file in a state directory
type FileSnapshotStore struct {
	dir string
}

// NewFileSnapshotStore creates a file-backed snapshot store
func NewFileSnapshotStore(dir string) *FileSnapshotStore {
	return &FileSnapshotStore{dir: dir}
}

// Path returns the snapshot file location
func (s *FileSnapshotStore) Path() string {
	return filepath.Join(s.dir, SnapshotKey+".json")
}

func (s *FileSnapshotStore) Load() ([]byte, bool, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Path: s.Path(), Op: "read", Err: err}
	}
	return data, true, nil
}

// Save writes to a temp file and renames it over the snapshot, so a crash
// never leaves a half-written file behind.
func (s *FileSnapshotStore) Save(data []byte) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return &StorageError{Path: s.dir, Op: "open", Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, SnapshotKey+"-*.tmp")
	if err != nil {
		return &StorageError{Path: s.dir, Op: "open", Err: err}
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &StorageError{Path: tmpPath, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StorageError{Path: tmpPath, Op: "write", Err: err}
	}

	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return &StorageError{Path: s.Path(), Op: "write", Err: err}
	}
	return nil
}

func (s *FileSnapshotStore) Clear() error {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return &StorageError{Path: s.Path(), Op: "remove", Err: err}
	}
	return nil
}

// SQLiteSnapshotStore keeps the snapshot in a localStorage table. The
// database is opened per call and closed before returning.
type SQLiteSnapshotStore struct {
	path string
}

// NewSQLiteSnapshotStore creates a SQLite-backed snapshot store
func NewSQLiteSnapshotStore(path string) *SQLiteSnapshotStore {
	return &SQLiteSnapshotStore{path: path}
}

// Path returns the database file location
func (s *SQLiteSnapshotStore) Path() string {
	return s.path
}

func (s *SQLiteSnapshotStore) withDB(op string, fn func(db *sql.DB) error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return &StorageError{Path: s.path, Op: "open", Err: err}
	}
	db, err := OpenDatabase(s.path)
	if err != nil {
		return &StorageError{Path: s.path, Op: "open", Err: err}
	}
	defer func() {
		if err := db.Close(); err != nil {
			LogWarn("Failed to close database %s: %v", s.path, err)
		}
	}()

	if err := fn(db); err != nil {
		return &StorageError{Path: s.path, Op: op, Err: err}
	}
	return nil
}

// exists reports whether the database file is there; reads and removals
// skip opening a database that would only be created empty.
func (s *SQLiteSnapshotStore) exists() (bool, error) {
	_, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Path: s.path, Op: "open", Err: err}
	}
	return true, nil
}

func (s *SQLiteSnapshotStore) Load() ([]byte, bool, error) {
	if ok, err := s.exists(); !ok {
		return nil, false, err
	}

	var (
		value string
		found bool
	)
	err := s.withDB("read", func(db *sql.DB) error {
		var err error
		value, found, err = GetItem(db, SnapshotKey)
		return err
	})
	if err != nil || !found {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (s *SQLiteSnapshotStore) Save(data []byte) error {
	return s.withDB("write", func(db *sql.DB) error {
		return SetItem(db, SnapshotKey, string(data))
	})
}

func (s *SQLiteSnapshotStore) Clear() error {
	if ok, err := s.exists(); !ok {
		return err
	}
	return s.withDB("remove", func(db *sql.DB) error {
		return RemoveItem(db, SnapshotKey)
	})
}
