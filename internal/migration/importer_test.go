package migration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-api/internal/database"
	"inventory-api/internal/repositories/sqlite"
	"inventory-api/internal/services"
)

func setupImporter(t *testing.T) (*Importer, services.ProductService) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	cm := database.NewConnectionManager(&database.ConnectionConfig{
		DatabasePath:    filepath.Join(t.TempDir(), "import.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		AutoMigrate:     true,
		Logger:          logger,
	})
	require.NoError(t, cm.Connect(context.Background()))
	t.Cleanup(func() { cm.Close() })

	repos := sqlite.NewSQLiteRepositoryManager(cm.GetDB(), logger).Repositories()
	products := services.NewProductService(repos.ProductRepo, repos.CategoryRepo, repos.SupplierRepo, logger)

	return NewImporter(
		services.NewCategoryService(repos, logger),
		services.NewSupplierService(repos.SupplierRepo, logger),
		products,
		logger,
	), products
}

func TestImporter_ImportFile(t *testing.T) {
	ctx := context.Background()
	importer, products := setupImporter(t)

	result, err := importer.ImportFile(ctx, filepath.Join("testdata", "catalog.json"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.CategoriesCreated)
	assert.Equal(t, 1, result.SuppliersCreated)
	assert.Equal(t, 2, result.ProductsCreated)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Hardware")

	page, err := products.ListProducts(ctx, &services.ProductFilters{Search: "Cola"})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	cola := page.Products[0]
	require.NotNil(t, cola.SupplierID)
	assert.Equal(t, importer.supplierIDs["metro wholesale"], *cola.SupplierID)
	assert.Equal(t, importer.categoryIDs["soft drinks"], cola.CategoryID)
	assert.Equal(t, 40, cola.CurrentStock)
}

func TestImporter_ReimportSkipsExisting(t *testing.T) {
	ctx := context.Background()
	importer, _ := setupImporter(t)
	path := filepath.Join("testdata", "catalog.json")

	_, err := importer.ImportFile(ctx, path)
	require.NoError(t, err)

	again, err := importer.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, again.CategoriesCreated+again.SuppliersCreated+again.ProductsCreated)
	assert.Equal(t, 6, again.Skipped)
	assert.Len(t, again.Errors, 1)
}

func TestImporter_UnknownParent(t *testing.T) {
	importer, _ := setupImporter(t)

	data := &SeedData{Categories: []SeedCategory{{
		CreateCategoryRequest: services.CreateCategoryRequest{Name: "Orphan"},
		Parent:                "Nowhere",
	}}}

	result, err := importer.Import(context.Background(), data)
	require.NoError(t, err)
	assert.Zero(t, result.CategoriesCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unknown parent")
}

func TestLoadSeedFile_Invalid(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join("testdata", "missing.json"))
	assert.Error(t, err)
}
