package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"inventory-api/internal/adapters/storage"
)

// ConnectionConfig holds database connection configuration
type ConnectionConfig struct {
	DatabasePath    string
	MigrationsPath  string // empty uses the embedded migrations
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
	AutoMigrate     bool
	// Backups, when set, receives a snapshot before each migration run
	Backups    storage.FileStorage
	BackupKeep int
	Logger     *logrus.Logger
}

// DefaultConnectionConfig returns a default configuration
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		DatabasePath:    "./data/inventory.db",
		MaxOpenConns:    1, // SQLite works best with single connection
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		BusyTimeout:     5 * time.Second,
		AutoMigrate:     true,
		Logger:          logrus.New(),
	}
}

// ConnectionManager manages database connections
type ConnectionManager struct {
	config *ConnectionConfig
	db     *sql.DB
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(config *ConnectionConfig) *ConnectionManager {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	return &ConnectionManager{
		config: config,
	}
}

// Connect opens the database and, when AutoMigrate is set, applies pending migrations
func (cm *ConnectionManager) Connect(ctx context.Context) error {
	if cm.db != nil {
		return fmt.Errorf("database connection already established")
	}

	db, err := OpenSQLite(ctx, cm.config)
	if err != nil {
		return err
	}

	if cm.config.AutoMigrate {
		mm := cm.newMigrationManager(db)
		if err := mm.RunMigrations(); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	cm.db = db
	return nil
}

// GetDB returns the database connection
func (cm *ConnectionManager) GetDB() *sql.DB {
	return cm.db
}

// Close closes the database connection
func (cm *ConnectionManager) Close() error {
	if cm.db == nil {
		return nil
	}

	err := cm.db.Close()
	cm.db = nil

	if err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	cm.config.Logger.Info("Database connection closed")
	return nil
}

// Ping tests the database connection
func (cm *ConnectionManager) Ping(ctx context.Context) error {
	if cm.db == nil {
		return fmt.Errorf("database connection not established")
	}

	if err := cm.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// GetMigrationManager returns a migration manager for this connection
func (cm *ConnectionManager) GetMigrationManager() *MigrationManager {
	if cm.db == nil {
		return nil
	}

	return cm.newMigrationManager(cm.db)
}

// GetBackupManager returns nil when no backup storage is configured
func (cm *ConnectionManager) GetBackupManager() *BackupManager {
	if cm.db == nil || cm.config.Backups == nil {
		return nil
	}
	return NewBackupManager(cm.db, cm.config.Backups, cm.config.BackupKeep, cm.config.Logger)
}

func (cm *ConnectionManager) newMigrationManager(db *sql.DB) *MigrationManager {
	mm := NewMigrationManager(db, cm.config.MigrationsPath, cm.config.Logger)
	if cm.config.Backups != nil {
		mm.WithBackups(NewBackupManager(db, cm.config.Backups, cm.config.BackupKeep, cm.config.Logger))
	}
	return mm
}

// HealthCheck performs a comprehensive health check
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var result int
	if err := cm.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	if result != 1 {
		return fmt.Errorf("test query returned unexpected result: %d", result)
	}

	var fkEnabled int
	if err := cm.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		return fmt.Errorf("failed to check foreign key status: %w", err)
	}

	if fkEnabled != 1 {
		return fmt.Errorf("foreign keys are not enabled")
	}

	return nil
}

// LogStats logs connection pool statistics
func (cm *ConnectionManager) LogStats() {
	if cm.db == nil {
		return
	}
	stats := cm.db.Stats()
	cm.config.Logger.WithFields(logrus.Fields{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"wait_duration":    stats.WaitDuration,
	}).Debug("Database connection pool stats")
}

// OpenSQLite opens and configures a SQLite database with foreign keys and WAL enabled
func OpenSQLite(ctx context.Context, config *ConnectionConfig) (*sql.DB, error) {
	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}

	absPath, err := filepath.Abs(config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute database path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := buildSQLiteDSN(absPath, config.BusyTimeout)

	logger.WithFields(logrus.Fields{
		"driver": "sqlite3",
		"path":   absPath,
	}).Info("Opening SQLite database")

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, pragma := range []string{"PRAGMA temp_store = MEMORY", "PRAGMA optimize"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			logger.WithError(err).WithField("setting", pragma).Warn("Failed to apply SQLite setting")
		}
	}

	logger.WithField("path", absPath).Info("SQLite connection established")
	return db, nil
}

func buildSQLiteDSN(path string, busyTimeout time.Duration) string {
	options := []string{"_foreign_keys=on", "_journal_mode=WAL"}
	if busyTimeout > 0 {
		options = append(options, fmt.Sprintf("_busy_timeout=%d", busyTimeout.Milliseconds()))
	}
	return fmt.Sprintf("%s?%s", path, strings.Join(options, "&"))
}
