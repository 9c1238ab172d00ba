package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"inventory-api/internal/adapters/storage"
	"inventory-api/internal/config"
	"inventory-api/internal/database"
	"inventory-api/internal/migration"
	"inventory-api/internal/repositories/sqlite"
	"inventory-api/internal/services"
)

func main() {
	var (
		dbPath         = flag.String("db", config.GetEnv("DB_PATH", "./data/inventory.db"), "Database file path")
		migrationsPath = flag.String("migrations", config.GetEnv("DB_MIGRATIONS_PATH", ""), "Migrations directory path; empty uses the embedded migrations")
		backupDir      = flag.String("backup-dir", config.GetEnv("DB_BACKUP_DIR", "./data/backups"), "Backup directory; empty disables backups")
		backupKeep     = flag.Int("backup-keep", config.GetEnvAsInt("DB_BACKUP_KEEP", 5), "Number of backups to keep; 0 keeps all")
		action         = flag.String("action", "up", "Migration action: up, down, status, validate, force, backup, backups, restore, import")
		version        = flag.Int("version", -1, "Version for the force action")
		key            = flag.String("key", "", "Backup key for the restore action")
		seedFile       = flag.String("file", "", "Seed file for the import action")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	absMigrationsPath := ""
	if *migrationsPath != "" {
		if absMigrationsPath, err = filepath.Abs(*migrationsPath); err != nil {
			logger.WithError(err).Fatal("Failed to get absolute migrations path")
		}
	}

	logger.WithFields(logrus.Fields{
		"db_path":         absDBPath,
		"migrations_path": absMigrationsPath,
		"backup_dir":      *backupDir,
		"action":          *action,
	}).Info("Starting migration tool")

	var backups storage.FileStorage
	if *backupDir != "" {
		if backups, err = storage.New("local", *backupDir, storage.DefaultRetryConfig()); err != nil {
			logger.WithError(err).Fatal("Failed to open backup directory")
		}
	}

	// restore replaces the database file, so it must run without an open connection
	if *action == "restore" {
		if err := restore(backups, *key, absDBPath, logger); err != nil {
			logger.WithError(err).Fatal("Restore failed")
		}
		logger.Info("Migration tool completed successfully")
		return
	}

	cm := database.NewConnectionManager(&database.ConnectionConfig{
		DatabasePath:   absDBPath,
		MigrationsPath: absMigrationsPath,
		MaxOpenConns:   1,
		MaxIdleConns:   1,
		Backups:        backups,
		BackupKeep:     *backupKeep,
		Logger:         logger,
	})
	if err := cm.Connect(context.Background()); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer cm.Close()

	if *action == "import" {
		if err := importSeed(cm, *seedFile, logger); err != nil {
			logger.WithError(err).Fatal("Import failed")
		}
		logger.Info("Migration tool completed successfully")
		return
	}

	if err := run(cm, *action, *version); err != nil {
		logger.WithError(err).Fatalf("Migration %s failed", *action)
	}

	logger.Info("Migration tool completed successfully")
}

func run(cm *database.ConnectionManager, action string, version int) error {
	mm := cm.GetMigrationManager()
	switch action {
	case "up":
		return mm.RunMigrations()
	case "down":
		return mm.RollbackMigration()
	case "status", "version":
		return showMigrationStatus(mm)
	case "validate":
		if err := mm.ValidateSchema(); err != nil {
			return err
		}
		fmt.Println("Schema validation passed successfully")
		return nil
	case "force":
		if version < 0 {
			return fmt.Errorf("force requires -version")
		}
		return mm.Force(version)
	case "backup":
		bm := cm.GetBackupManager()
		if bm == nil {
			return fmt.Errorf("backup requires -backup-dir")
		}
		key, err := bm.Backup(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Backup stored as %s\n", key)
		return nil
	case "backups":
		return listBackups(cm.GetBackupManager())
	}
	return fmt.Errorf("unknown action %q, use: up, down, status, validate, force, backup, backups, restore, import", action)
}

// importSeed migrates the schema and loads a catalog seed file
func importSeed(cm *database.ConnectionManager, path string, logger *logrus.Logger) error {
	if path == "" {
		return fmt.Errorf("import requires -file")
	}
	if err := cm.GetMigrationManager().RunMigrations(); err != nil {
		return err
	}

	repos := sqlite.NewSQLiteRepositoryManager(cm.GetDB(), logger).Repositories()
	importer := migration.NewImporter(
		services.NewCategoryService(repos, logger),
		services.NewSupplierService(repos.SupplierRepo, logger),
		services.NewProductService(repos.ProductRepo, repos.CategoryRepo, repos.SupplierRepo, logger),
		logger,
	)

	result, err := importer.ImportFile(context.Background(), path)
	if err != nil {
		return err
	}

	fmt.Printf("Import Result:\n")
	fmt.Printf("  Categories created: %d\n", result.CategoriesCreated)
	fmt.Printf("  Suppliers created: %d\n", result.SuppliersCreated)
	fmt.Printf("  Products created: %d\n", result.ProductsCreated)
	fmt.Printf("  Skipped: %d\n", result.Skipped)
	for _, e := range result.Errors {
		fmt.Printf("  Error: %s\n", e)
	}
	return nil
}

func restore(backups storage.FileStorage, key, dbPath string, logger *logrus.Logger) error {
	if backups == nil {
		return fmt.Errorf("restore requires -backup-dir")
	}
	if key == "" {
		return fmt.Errorf("restore requires -key")
	}
	return database.NewBackupManager(nil, backups, 0, logger).Restore(context.Background(), key, dbPath)
}

func listBackups(bm *database.BackupManager) error {
	if bm == nil {
		return fmt.Errorf("backups requires -backup-dir")
	}
	files, err := bm.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	fmt.Printf("Backups (%d):\n", len(files))
	for _, f := range files {
		fmt.Printf("  %s  %8d bytes  %s\n", f.Key, f.Size, f.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func showMigrationStatus(mm *database.MigrationManager) error {
	status, err := mm.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	fmt.Printf("  Timestamp: %s\n", status.Timestamp.Format("2006-01-02 15:04:05"))

	return nil
}
