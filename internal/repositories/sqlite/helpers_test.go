package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"inventory-api/internal/database"
	"inventory-api/internal/models"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

// setupTestDB opens a migrated database in a temp directory
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cm := database.NewConnectionManager(&database.ConnectionConfig{
		DatabasePath:    filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		AutoMigrate:     true,
		Logger:          testLogger(),
	})
	if err := cm.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to set up test database: %v", err)
	}
	t.Cleanup(func() { cm.Close() })

	return cm.GetDB()
}

func createTestCategory(t *testing.T, db *sql.DB, name string) *models.Category {
	t.Helper()
	category := models.NewCategory(name)
	if err := NewCategoryRepository(db, testLogger()).Create(context.Background(), category); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	return category
}

func createTestProduct(t *testing.T, db *sql.DB, categoryID, name string, stock, max int) *models.Product {
	t.Helper()
	product := models.NewProduct(name, categoryID, 10, 15)
	product.CurrentStock = stock
	product.MaxStockLevel = max
	product.GenerateSKU(time.Now())
	product.SKU = product.SKU + "-" + product.ID[:4]
	if err := NewProductRepository(db, testLogger()).Create(context.Background(), product); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return product
}

func createTestSupplier(t *testing.T, db *sql.DB, name string) *models.Supplier {
	t.Helper()
	supplier := models.NewSupplier(name, "+92 300 1234567")
	if err := NewSupplierRepository(db, testLogger()).Create(context.Background(), supplier); err != nil {
		t.Fatalf("Failed to create supplier: %v", err)
	}
	return supplier
}
