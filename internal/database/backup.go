package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"inventory-api/internal/adapters/storage"
)

const backupPrefix = "backups/"

// BackupManager snapshots a SQLite database into a FileStorage
type BackupManager struct {
	db     *sql.DB
	store  storage.FileStorage
	keep   int
	logger *logrus.Logger
	now    func() time.Time
}

// NewBackupManager creates a backup manager. keep <= 0 keeps every snapshot.
func NewBackupManager(db *sql.DB, store storage.FileStorage, keep int, logger *logrus.Logger) *BackupManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &BackupManager{db: db, store: store, keep: keep, logger: logger, now: time.Now}
}

// Backup writes a consistent snapshot of the database and prunes old ones.
// It returns the snapshot key, or "" for an in-memory or empty database.
func (b *BackupManager) Backup(ctx context.Context) (string, error) {
	dbPath, err := mainDatabasePath(ctx, b.db)
	if err != nil {
		return "", err
	}
	if dbPath == "" || dbPath == ":memory:" {
		b.logger.Debug("Skipping backup for in-memory database")
		return "", nil
	}
	if info, err := os.Stat(dbPath); err != nil || info.Size() == 0 {
		return "", nil
	}

	tmp, err := os.CreateTemp("", "inventory-snapshot-*.db")
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	os.Remove(tmpPath) // VACUUM INTO refuses to overwrite
	defer os.Remove(tmpPath)

	if _, err := b.db.ExecContext(ctx, "VACUUM INTO ?", tmpPath); err != nil {
		return "", fmt.Errorf("failed to snapshot database: %w", err)
	}
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))
	key := fmt.Sprintf("%s%s_%s.db", backupPrefix, name, b.now().UTC().Format("20060102T150405.000Z"))
	if err := b.store.Store(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to store backup: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"key":  key,
		"size": len(data),
	}).Info("Database backup created")

	if err := b.prune(ctx); err != nil {
		b.logger.WithError(err).Warn("Failed to prune old backups")
	}
	return key, nil
}

// List returns stored snapshots, oldest first
func (b *BackupManager) List(ctx context.Context) ([]storage.FileMetadata, error) {
	return b.store.List(ctx, backupPrefix)
}

// Restore writes the snapshot stored under key to path. The target must not
// be open by a running server.
func (b *BackupManager) Restore(ctx context.Context, key, path string) error {
	data, err := b.store.Retrieve(ctx, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create restore directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	b.logger.WithFields(logrus.Fields{"key": key, "path": path}).Info("Database backup restored")
	return nil
}

func (b *BackupManager) prune(ctx context.Context) error {
	if b.keep <= 0 {
		return nil
	}
	files, err := b.List(ctx)
	if err != nil {
		return err
	}
	for len(files) > b.keep {
		if err := b.store.Delete(ctx, files[0].Key); err != nil && !storage.IsNotFound(err) {
			return err
		}
		b.logger.WithField("key", files[0].Key).Debug("Pruned database backup")
		files = files[1:]
	}
	return nil
}

func mainDatabasePath(ctx context.Context, db *sql.DB) (string, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return "", fmt.Errorf("failed to query database list: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seq int
		var name, path string
		if err := rows.Scan(&seq, &name, &path); err != nil {
			return "", fmt.Errorf("failed to scan database path: %w", err)
		}
		if name == "main" {
			return path, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("no database found")
}
