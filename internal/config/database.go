package config

import (
	"fmt"
	"os"
	"time"

	"inventory-api/internal/adapters/storage"
	"inventory-api/internal/database"

	"github.com/sirupsen/logrus"
)

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
	// MigrationsPath points at a directory of SQL migrations; empty uses
	// the migrations embedded in the binary
	MigrationsPath  string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
	AutoMigrate     bool
	// BackupDir receives a snapshot before each migration run; empty disables backups
	BackupDir  string
	BackupKeep int
}

// Validate validates the database configuration
func (c *DatabaseConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.MaxOpenConns < 1 {
		return fmt.Errorf("max open connections must be at least 1")
	}

	if c.MaxIdleConns < 1 {
		return fmt.Errorf("max idle connections must be at least 1")
	}

	if c.ConnMaxLifetime < time.Minute {
		return fmt.Errorf("connection max lifetime must be at least 1 minute")
	}

	if c.BackupKeep < 0 {
		return fmt.Errorf("backup keep count cannot be negative")
	}

	if c.MigrationsPath != "" {
		if _, err := os.Stat(c.MigrationsPath); os.IsNotExist(err) {
			return fmt.Errorf("migrations directory does not exist: %s", c.MigrationsPath)
		}
	}

	return nil
}

// ToConnectionConfig converts DatabaseConfig to database.ConnectionConfig
func (c *DatabaseConfig) ToConnectionConfig(logger *logrus.Logger) *database.ConnectionConfig {
	return &database.ConnectionConfig{
		DatabasePath:    c.Path,
		MigrationsPath:  c.MigrationsPath,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		BusyTimeout:     c.BusyTimeout,
		AutoMigrate:     c.AutoMigrate,
		Backups:         c.backupStorage(logger),
		BackupKeep:      c.BackupKeep,
		Logger:          logger,
	}
}

func (c *DatabaseConfig) backupStorage(logger *logrus.Logger) storage.FileStorage {
	if c.BackupDir == "" {
		return nil
	}
	store, err := storage.New("local", c.BackupDir, storage.DefaultRetryConfig())
	if err != nil {
		if logger != nil {
			logger.WithError(err).WithField("dir", c.BackupDir).Warn("Database backups disabled")
		}
		return nil
	}
	return store
}
