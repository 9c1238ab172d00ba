package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"inventory-api/internal/adapters/storage"
)

func TestBackupManager_BackupPruneRestore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()

	cfg := testConfig(t)
	cfg.Backups = store
	cfg.BackupKeep = 2
	cm := NewConnectionManager(cfg)
	if err := cm.Connect(ctx); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer cm.Close()

	if _, err := cm.GetDB().ExecContext(ctx,
		`INSERT INTO categories (id, name, slug, created_at, updated_at) VALUES ('c1', 'Snapshot', 'snapshot', datetime('now'), datetime('now'))`); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	bm := cm.GetBackupManager()
	if bm == nil {
		t.Fatal("GetBackupManager() should not be nil with backups configured")
	}

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var keys []string
	for i := 0; i < 3; i++ {
		bm.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		key, err := bm.Backup(ctx)
		if err != nil {
			t.Fatalf("Backup() failed: %v", err)
		}
		if !strings.HasPrefix(key, "backups/inventory_") {
			t.Errorf("Backup() key = %s", key)
		}
		keys = append(keys, key)
	}

	files, err := bm.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("List() returned %d backups, want 2 after pruning", len(files))
	}
	for _, f := range files {
		if f.Key == keys[0] {
			t.Error("oldest backup should have been pruned")
		}
	}

	restored := filepath.Join(t.TempDir(), "restored.db")
	if err := bm.Restore(ctx, keys[2], restored); err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}

	db, err := sql.Open("sqlite3", restored)
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	defer db.Close()

	var name string
	if err := db.QueryRow(`SELECT name FROM categories WHERE id = 'c1'`).Scan(&name); err != nil {
		t.Fatalf("restored snapshot missing data: %v", err)
	}
	if name != "Snapshot" {
		t.Errorf("restored name = %s, want Snapshot", name)
	}
}

func TestConnectionManager_NoBackupsByDefault(t *testing.T) {
	cm := NewConnectionManager(testConfig(t))
	if err := cm.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer cm.Close()

	if cm.GetBackupManager() != nil {
		t.Error("GetBackupManager() should be nil without backup storage")
	}
}
