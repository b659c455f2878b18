package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDBAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "portal.db")

	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// Running twice is a no-op.
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v < 1 {
		t.Errorf("SchemaVersion = %d, want >= 1", v)
	}
}

func TestCheckAndCountSessions(t *testing.T) {
	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	ctx := context.Background()
	if err := Check(ctx, db); err != nil {
		t.Fatalf("Check: %v", err)
	}

	now := float64(time.Now().UnixNano()) / 1e9
	if _, err := db.Exec(`INSERT INTO sessions (token, data, expiry) VALUES
		('live', x'00', ?), ('stale', x'00', ?)`, now+3600, now-3600); err != nil {
		t.Fatalf("insert: %v", err)
	}

	n, err := CountSessions(ctx, db)
	if err != nil {
		t.Fatalf("CountSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("CountSessions = %d, want 1", n)
	}
}

func TestCheckFailsOnClosedDB(t *testing.T) {
	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	_ = db.Close()

	if err := Check(context.Background(), db); err == nil {
		t.Error("expected Check to fail on a closed database")
	}
}
