package storage

import "testing"

func TestNewAndMigrate(t *testing.T) {
	db, err := New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Migrate is idempotent
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('documents', 'chunks')").Scan(&count)
	if err != nil {
		t.Fatalf("schema query error = %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 tables, got %d", count)
	}
}

func TestNewInvalidPath(t *testing.T) {
	if _, err := New("/nonexistent-dir/sub/test.db"); err == nil {
		t.Error("New() with invalid path should error")
	}
}
