package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"inventory-api/internal/database"
	"inventory-api/internal/models"
	"inventory-api/internal/repositories"
	"inventory-api/internal/repositories/sqlite"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

// fakeTokens issues predictable tokens of the form "<kind>:<user>:<n>"
type fakeTokens struct {
	issued int
}

func (f *fakeTokens) GenerateAccessToken(userID, username, email string) (string, error) {
	f.issued++
	return fmt.Sprintf("access:%s:%d", userID, f.issued), nil
}

func (f *fakeTokens) GenerateRefreshToken(userID string) (string, error) {
	f.issued++
	return fmt.Sprintf("refresh:%s:%d", userID, f.issued), nil
}

func (f *fakeTokens) ValidateRefreshToken(token string) (string, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] != "refresh" {
		return "", errors.New("malformed token")
	}
	return parts[1], nil
}

// setupTestServices opens a migrated database in a temp directory and wires
// every service over it
func setupTestServices(t *testing.T, config *ServiceConfig) (*ServiceContainer, *repositories.RepositoryContainer) {
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

	repos := sqlite.NewSQLiteRepositoryManager(cm.GetDB(), testLogger()).Repositories()

	if config == nil {
		config = &ServiceConfig{ExpiryWarningDays: 7}
	}
	if config.Tokens == nil {
		config.Tokens = &fakeTokens{}
	}
	config.Logger = testLogger()

	container, err := NewServiceContainer(repos, config)
	if err != nil {
		t.Fatalf("NewServiceContainer() failed: %v", err)
	}
	return container, repos
}

func mustCreateCategory(t *testing.T, svc *ServiceContainer, name string, parentID *string) *models.Category {
	t.Helper()
	category, err := svc.CategoryService.CreateCategory(context.Background(), &CreateCategoryRequest{
		Name:     name,
		ParentID: parentID,
		TaxRate:  5,
	})
	if err != nil {
		t.Fatalf("CreateCategory(%s) failed: %v", name, err)
	}
	return category
}

func mustCreateProduct(t *testing.T, svc *ServiceContainer, categoryID, name string, stock, max int) *models.Product {
	t.Helper()
	minLevel := 2
	created, err := svc.ProductService.CreateProduct(context.Background(), &CreateProductRequest{
		Name:          name,
		CategoryID:    categoryID,
		CostPrice:     5,
		SellingPrice:  10,
		CurrentStock:  stock,
		MinStockLevel: &minLevel,
		MaxStockLevel: &max,
	})
	if err != nil {
		t.Fatalf("CreateProduct(%s) failed: %v", name, err)
	}
	return created.Product
}

func mustCreateSupplier(t *testing.T, svc *ServiceContainer, name string) *models.Supplier {
	t.Helper()
	supplier, err := svc.SupplierService.CreateSupplier(context.Background(), &CreateSupplierRequest{
		Name:  name,
		Phone: "+92 300 1234567",
	})
	if err != nil {
		t.Fatalf("CreateSupplier(%s) failed: %v", name, err)
	}
	return supplier
}

func stockOf(t *testing.T, repos *repositories.RepositoryContainer, id string) int {
	t.Helper()
	product, err := repos.ProductRepo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID(%s) failed: %v", id, err)
	}
	return product.CurrentStock
}
