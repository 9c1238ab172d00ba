// Package migration loads catalog data (categories, suppliers and products)
// from JSON seed files into a database through the domain services, so
// imported records get the same validation as API requests.
package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"inventory-api/internal/models"
	"inventory-api/internal/services"
)

// SeedCategory is a category whose parent is named rather than referenced by ID
type SeedCategory struct {
	services.CreateCategoryRequest
	Parent string `json:"parent_category,omitempty"`
}

// SeedSupplier is a supplier as it appears in a seed file
type SeedSupplier struct {
	services.CreateSupplierRequest
}

// SeedProduct is a product whose category and supplier are named
type SeedProduct struct {
	services.CreateProductRequest
	Category string `json:"category"`
	Supplier string `json:"supplier,omitempty"`
}

// SeedData is the layout of a seed file. Parents must be listed before
// their children.
type SeedData struct {
	Categories []SeedCategory `json:"categories"`
	Suppliers  []SeedSupplier `json:"suppliers"`
	Products   []SeedProduct  `json:"products"`
}

// ImportResult counts what an import did. Records that already exist are
// skipped; invalid records are reported in Errors and do not stop the import.
type ImportResult struct {
	CategoriesCreated int      `json:"categories_created"`
	SuppliersCreated  int      `json:"suppliers_created"`
	ProductsCreated   int      `json:"products_created"`
	Skipped           int      `json:"skipped"`
	Errors            []string `json:"errors,omitempty"`
}

// Importer writes seed data through the catalog services
type Importer struct {
	categories services.CategoryService
	suppliers  services.SupplierService
	products   services.ProductService
	logger     *logrus.Logger

	categoryIDs map[string]string
	supplierIDs map[string]string
}

// NewImporter creates a new importer
func NewImporter(categories services.CategoryService, suppliers services.SupplierService, products services.ProductService, logger *logrus.Logger) *Importer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Importer{
		categories: categories,
		suppliers:  suppliers,
		products:   products,
		logger:     logger,
	}
}

// LoadSeedFile reads and decodes a seed file
func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &data, nil
}

// ImportFile loads path and imports it
func (i *Importer) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	data, err := LoadSeedFile(path)
	if err != nil {
		return nil, err
	}
	return i.Import(ctx, data)
}

// Import creates every category, supplier and product in data that does not
// already exist. Names are matched case-insensitively.
func (i *Importer) Import(ctx context.Context, data *SeedData) (*ImportResult, error) {
	i.logger.WithFields(logrus.Fields{
		"categories": len(data.Categories),
		"suppliers":  len(data.Suppliers),
		"products":   len(data.Products),
	}).Info("Starting catalog import...")

	if err := i.loadExisting(ctx); err != nil {
		return nil, err
	}

	result := &ImportResult{}

	for _, seed := range data.Categories {
		if _, ok := i.categoryIDs[key(seed.Name)]; ok {
			result.Skipped++
			continue
		}
		req := seed.CreateCategoryRequest
		if seed.Parent != "" {
			parentID, ok := i.categoryIDs[key(seed.Parent)]
			if !ok {
				result.fail("category %q: unknown parent %q", seed.Name, seed.Parent)
				continue
			}
			req.ParentID = &parentID
		}

		category, err := i.categories.CreateCategory(ctx, &req)
		if i.record(result, "category", seed.Name, err) {
			i.categoryIDs[key(category.Name)] = category.ID
			result.CategoriesCreated++
		}
	}

	for _, seed := range data.Suppliers {
		if _, ok := i.supplierIDs[key(seed.Name)]; ok {
			result.Skipped++
			continue
		}

		supplier, err := i.suppliers.CreateSupplier(ctx, &seed.CreateSupplierRequest)
		if i.record(result, "supplier", seed.Name, err) {
			i.supplierIDs[key(supplier.Name)] = supplier.ID
			result.SuppliersCreated++
		}
	}

	for _, seed := range data.Products {
		req := seed.CreateProductRequest
		categoryID, ok := i.categoryIDs[key(seed.Category)]
		if !ok {
			result.fail("product %q: unknown category %q", seed.Name, seed.Category)
			continue
		}
		req.CategoryID = categoryID

		if seed.Supplier != "" {
			supplierID, ok := i.supplierIDs[key(seed.Supplier)]
			if !ok {
				result.fail("product %q: unknown supplier %q", seed.Name, seed.Supplier)
				continue
			}
			req.SupplierID = &supplierID
		}

		_, err := i.products.CreateProduct(ctx, &req)
		if i.record(result, "product", seed.Name, err) {
			result.ProductsCreated++
		}
	}

	i.logger.WithFields(logrus.Fields{
		"categories": result.CategoriesCreated,
		"suppliers":  result.SuppliersCreated,
		"products":   result.ProductsCreated,
		"skipped":    result.Skipped,
		"errors":     len(result.Errors),
	}).Info("Catalog import completed")

	return result, nil
}

// record reports whether err is nil. Conflicts count as skipped, anything
// else as a failure.
func (i *Importer) record(result *ImportResult, entity, name string, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, models.ErrConflict):
		i.logger.WithFields(logrus.Fields{"entity": entity, "name": name}).Debug("Skipping existing record")
		result.Skipped++
	default:
		result.fail("%s %q: %v", entity, name, err)
	}
	return false
}

func (r *ImportResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (i *Importer) loadExisting(ctx context.Context) error {
	i.categoryIDs = make(map[string]string)
	i.supplierIDs = make(map[string]string)

	for page := 1; ; page++ {
		result, err := i.categories.ListCategories(ctx, &services.CategoryFilters{
			Page: models.PageRequest{Page: page, Limit: models.MaxPageLimit},
		})
		if err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		for _, c := range result.Categories {
			i.categoryIDs[key(c.Name)] = c.ID
		}
		if !result.Pagination.HasNextPage {
			break
		}
	}

	for page := 1; ; page++ {
		result, err := i.suppliers.ListSuppliers(ctx, &services.SupplierFilters{
			Page: models.PageRequest{Page: page, Limit: models.MaxPageLimit},
		})
		if err != nil {
			return fmt.Errorf("failed to load suppliers: %w", err)
		}
		for _, s := range result.Suppliers {
			i.supplierIDs[key(s.Name)] = s.ID
		}
		if !result.Pagination.HasNextPage {
			break
		}
	}
	return nil
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
