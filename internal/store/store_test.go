package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	columns := getTableColumns(t, s.db, "profiles")
	for _, col := range []string{"participant", "record", "digest", "revision"} {
		if !contains(columns, col) {
			t.Errorf("profiles table missing column %q", col)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(MemoryPath, WithOwnerLock())
	if err != nil {
		t.Fatalf("Open(memory) failed: %v", err)
	}
	defer s.Close()

	if s.lock != nil {
		t.Error("in-memory stores are never locked")
	}
	if err := s.DB().Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

func TestOpen_OwnerLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "owned.db")

	owner, err := Open(path, WithOwnerLock())
	if err != nil {
		t.Fatalf("first owner Open() failed: %v", err)
	}

	_, err = Open(path, WithOwnerLock())
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("second owner Open() error = %v, want ErrLocked", err)
	}

	// Readers do not take the lock.
	reader, err := Open(path)
	if err != nil {
		t.Fatalf("reader Open() failed: %v", err)
	}
	reader.Close()

	if err := owner.Close(); err != nil {
		t.Fatalf("owner Close() failed: %v", err)
	}

	next, err := Open(path, WithOwnerLock())
	if err != nil {
		t.Fatalf("Open() after release failed: %v", err)
	}
	next.Close()
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)
	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_UserVersion(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

func TestMigrateToV1_AddsRevision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE profiles (
			participant TEXT PRIMARY KEY,
			record      TEXT NOT NULL,
			digest      TEXT NOT NULL
		);
		INSERT INTO profiles VALUES ('00000000-0000-0000-0000-000000000001', '{}', 'd');
	`)
	if err != nil {
		t.Fatalf("create legacy schema: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	var revision int
	if err := s.db.QueryRow(`SELECT revision FROM profiles`).Scan(&revision); err != nil {
		t.Fatalf("query revision: %v", err)
	}
	if revision != 1 {
		t.Errorf("revision = %d, want 1", revision)
	}
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
