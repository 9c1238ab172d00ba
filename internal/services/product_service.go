package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"
)

// Inventory overview buckets
const (
	BucketAll = "all"
	BucketIn  = "in"
	BucketLow = "low"
	BucketOut = "out"
)

// Product status filter that disables status filtering
const ProductStatusAll = "all"

// productService implements the ProductService interface
type productService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	supplierRepo repositories.SupplierRepository
	validator    *validator.Validate
	logger       *logrus.Logger
}

// NewProductService creates a new product service instance
func NewProductService(
	productRepo repositories.ProductRepository,
	categoryRepo repositories.CategoryRepository,
	supplierRepo repositories.SupplierRepository,
	logger *logrus.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		validator:    newValidator(),
		logger:       logger,
	}
}

// CreateProduct creates a new product with a generated SKU. The tax rate is
// taken from the category unless the request sets one.
func (s *productService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductCreated, error) {
	if req == nil {
		return nil, models.NewValidationError("product", "", "Request body is required")
	}

	// Validate request
	if err := validateRequest(s.validator, "product", req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.CategoryID) == "" {
		return nil, models.NewValidationError("product", "name", "Necessary fields are required to add new product")
	}

	now := models.Now()
	product := models.NewProduct(req.Name, strings.TrimSpace(req.CategoryID), req.CostPrice, req.SellingPrice)
	if req.Description != nil {
		product.SetDescription(*req.Description)
	}
	product.Subcategory = strings.TrimSpace(req.Subcategory)
	product.Brand = strings.TrimSpace(req.Brand)
	product.CurrentStock = req.CurrentStock
	if req.MinStockLevel != nil {
		product.MinStockLevel = *req.MinStockLevel
	}
	if req.MaxStockLevel != nil {
		product.MaxStockLevel = *req.MaxStockLevel
	}
	if req.Unit != "" {
		product.Unit = models.ProductUnit(req.Unit)
	}
	product.ExpiryDate = req.ExpiryDate
	product.TaxInclude = req.TaxInclude
	product.Image = req.Image

	if err := product.ValidatePrice(); err != nil {
		return nil, err
	}
	warnings, err := product.ValidateStock()
	if err != nil {
		return nil, err
	}
	if err := product.ValidateExpiry(now); err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsByName(ctx, product.Name, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check product name: %w", err)
	}
	if exists {
		return nil, models.NewConflictError("product", "name", product.Name)
	}

	category, err := s.resolveCategory(ctx, product.CategoryID)
	if err != nil {
		return nil, err
	}
	product.TaxRate = category.TaxRate
	if req.TaxRate != nil {
		product.TaxRate = *req.TaxRate
	}

	if req.SupplierID != nil && strings.TrimSpace(*req.SupplierID) != "" {
		supplierID := strings.TrimSpace(*req.SupplierID)
		if err := s.resolveSupplier(ctx, supplierID); err != nil {
			return nil, err
		}
		product.SupplierID = &supplierID
	}

	product.GenerateSKU(now)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"sku":        product.SKU,
		"stock":      product.CurrentStock,
	}).Info("Product created")

	return &ProductCreated{
		Product:     product,
		StockStatus: product.StockStatus(),
		Warnings:    warnings,
	}, nil
}

func (s *productService) resolveCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, models.NewReferenceError("category", "category", id)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *productService) resolveSupplier(ctx context.Context, id string) error {
	exists, err := s.supplierRepo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check supplier: %w", err)
	}
	if !exists {
		return models.NewReferenceError("supplier", "supplier", id)
	}
	return nil
}

func (s *productService) getProduct(ctx context.Context, id string) (*models.Product, error) {
	if err := requireID("product", id); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// GetProduct retrieves a product with its derived values
func (s *productService) GetProduct(ctx context.Context, id string) (*ProductDetails, error) {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewProductDetails(product, models.Now()), nil
}

// NewProductDetails computes the derived values of a product at the given time
func NewProductDetails(p *models.Product, now time.Time) *ProductDetails {
	return &ProductDetails{
		Product:          p,
		StockStatus:      p.StockStatus(),
		PriceWithTax:     p.PriceWithTax(),
		DaysUntilExpired: p.DaysUntilExpiry(now),
		ProfitAmount:     p.ProfitAmount(),
		ProfitMargin:     p.ProfitMargin(),
		IsValidForSale:   p.IsValidForSale(now),
	}
}

// UpdateProduct applies a partial update and re-validates the fields it touches
func (s *productService) UpdateProduct(ctx context.Context, id string, req *UpdateProductRequest) (*models.Product, error) {
	if req == nil {
		return nil, models.NewValidationError("product", "", "Updated data is required")
	}

	// Validate request
	if err := validateRequest(s.validator, "product", req); err != nil {
		return nil, err
	}

	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, models.NewValidationError("product", "name", "name is required")
		}
		if name != product.Name {
			exists, err := s.productRepo.ExistsByName(ctx, name, product.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check product name: %w", err)
			}
			if exists {
				return nil, models.NewConflictError("product", "name", name)
			}
		}
		product.Name = name
	}
	if req.Description != nil {
		product.SetDescription(*req.Description)
	}
	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if _, err := s.resolveCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
	}
	if req.Subcategory != nil {
		product.Subcategory = strings.TrimSpace(*req.Subcategory)
	}
	if req.Brand != nil {
		product.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.SupplierID != nil {
		supplierID := strings.TrimSpace(*req.SupplierID)
		if supplierID == "" {
			product.SupplierID = nil
		} else {
			if err := s.resolveSupplier(ctx, supplierID); err != nil {
				return nil, err
			}
			product.SupplierID = &supplierID
		}
	}
	if req.Unit != nil {
		product.Unit = models.ProductUnit(*req.Unit)
	}
	if req.TaxRate != nil {
		product.TaxRate = *req.TaxRate
	}
	if req.TaxInclude != nil {
		product.TaxInclude = *req.TaxInclude
	}
	if req.Image != nil {
		product.Image = req.Image
	}

	if req.CostPrice != nil || req.SellingPrice != nil {
		if req.CostPrice != nil {
			product.CostPrice = *req.CostPrice
		}
		if req.SellingPrice != nil {
			product.SellingPrice = *req.SellingPrice
		}
		if err := product.ValidatePrice(); err != nil {
			return nil, err
		}
	}

	if req.CurrentStock != nil || req.MinStockLevel != nil || req.MaxStockLevel != nil {
		if req.CurrentStock != nil {
			product.CurrentStock = *req.CurrentStock
		}
		if req.MinStockLevel != nil {
			product.MinStockLevel = *req.MinStockLevel
		}
		if req.MaxStockLevel != nil {
			product.MaxStockLevel = *req.MaxStockLevel
		}
		if _, err := product.ValidateStock(); err != nil {
			return nil, err
		}
	}

	if req.ExpiryDate != nil {
		product.ExpiryDate = req.ExpiryDate
		if err := product.ValidateExpiry(models.Now()); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct deletes a product by ID
func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	if err := requireID("product", id); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.WithField("product_id", id).Info("Product deleted")
	return nil
}

// ListProducts lists products, active ones unless another status is asked for
func (s *productService) ListProducts(ctx context.Context, filters *ProductFilters) (*ProductPage, error) {
	if filters == nil {
		filters = &ProductFilters{}
	}
	if err := validateRequest(s.validator, "product", filters); err != nil {
		return nil, err
	}

	status := filters.Status
	switch status {
	case "":
		status = models.ProductStatusActive
	case ProductStatusAll:
		status = ""
	default:
		if v := models.ValidateEnum(string(status), models.ProductStatuses(), "status"); v != nil {
			return nil, models.NewValidationErrors("product", []models.ValidationError{*v})
		}
	}

	page := filters.Page.Normalize()
	products, total, err := s.productRepo.List(ctx, repositories.ProductFilter{
		CategoryID: filters.CategoryID,
		Brand:      filters.Brand,
		Status:     status,
		Search:     strings.TrimSpace(filters.Search),
		SortBy:     filters.SortBy,
		SortOrder:  filters.SortOrder,
		Page:       page,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &ProductPage{Products: products, Total: total, Pagination: models.NewPageInfo(page, total)}, nil
}

// UpdateStock adds a signed delta to the current stock
func (s *productService) UpdateStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	if err := requireID("product", id); err != nil {
		return nil, err
	}

	product, err := s.productRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, models.NewNotFoundError("product", id)
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": id,
		"delta":      delta,
		"stock":      product.CurrentStock,
	}).Info("Product stock adjusted")

	return product, nil
}

// ReserveStock takes quantity out of stock in one conditional update
func (s *productService) ReserveStock(ctx context.Context, id string, quantity int) (*models.Product, error) {
	if err := requireID("product", id); err != nil {
		return nil, err
	}

	product, err := s.productRepo.ReserveStock(ctx, id, quantity)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, models.NewNotFoundError("product", id)
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": id,
		"quantity":   quantity,
		"stock":      product.CurrentStock,
	}).Info("Product stock reserved")

	return product, nil
}

// SetStockLevels changes the minimum and/or maximum stock level
func (s *productService) SetStockLevels(ctx context.Context, id string, req *StockLevelsRequest) (*models.Product, error) {
	if req == nil || (req.MinStockLevel == nil && req.MaxStockLevel == nil) {
		return nil, models.NewValidationError("product", "min_stock_level", "min_stock_level or max_stock_level is required")
	}

	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	// Apply in the order that keeps min < max against the current other bound
	if req.MaxStockLevel != nil && (req.MinStockLevel == nil || *req.MaxStockLevel > product.MinStockLevel) {
		if err := product.SetMaxStockLevel(*req.MaxStockLevel); err != nil {
			return nil, err
		}
		if req.MinStockLevel != nil {
			if err := product.SetMinStockLevel(*req.MinStockLevel); err != nil {
				return nil, err
			}
		}
	} else {
		if err := product.SetMinStockLevel(*req.MinStockLevel); err != nil {
			return nil, err
		}
		if req.MaxStockLevel != nil {
			if err := product.SetMaxStockLevel(*req.MaxStockLevel); err != nil {
				return nil, err
			}
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update stock levels: %w", err)
	}
	return product, nil
}

// ToggleStatus activates or deactivates a product
func (s *productService) ToggleStatus(ctx context.Context, id string, action string) (*models.Product, error) {
	if action != "activate" && action != "deactivate" {
		return nil, models.NewValidationError("product", "action", "Action must be 'activate' or 'deactivate'")
	}

	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if action == "activate" {
		product.Activate()
	} else {
		product.Deactivate()
	}

	if err := s.productRepo.UpdateStatus(ctx, product.ID, product.Status); err != nil {
		return nil, fmt.Errorf("failed to update product status: %w", err)
	}
	return product, nil
}

// GetLowStockProducts lists active products at or below their minimum level
func (s *productService) GetLowStockProducts(ctx context.Context, page models.PageRequest) (*ProductPage, error) {
	page = page.Normalize()
	products, total, err := s.productRepo.GetLowStock(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}
	return &ProductPage{Products: products, Total: total, Pagination: models.NewPageInfo(page, total)}, nil
}

// GetInventoryOverview classifies active products into in stock, low stock
// and out of stock and returns one page of the requested bucket
func (s *productService) GetInventoryOverview(ctx context.Context, bucket string, page models.PageRequest) (*InventoryOverview, error) {
	if bucket == "" {
		bucket = BucketAll
	}
	if v := models.ValidateEnum(bucket, []string{BucketAll, BucketIn, BucketLow, BucketOut}, "filter"); v != nil {
		return nil, models.NewValidationErrors("product", []models.ValidationError{*v})
	}

	products, err := s.productRepo.GetByStatus(ctx, models.ProductStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to get active products: %w", err)
	}

	var in, low, out []*models.Product
	for _, p := range products {
		switch {
		case p.IsOutOfStock():
			out = append(out, p)
		case p.IsLowStock():
			low = append(low, p)
		default:
			in = append(in, p)
		}
	}

	overview := &InventoryOverview{}
	overview.Summary.InStock = StockBucket{Label: "In Stock", Count: len(in)}
	overview.Summary.LowStock = StockBucket{Label: "Low Stock", Count: len(low)}
	overview.Summary.OutOfStock = StockBucket{Label: "Out of Stock", Count: len(out)}

	var selected []*models.Product
	switch bucket {
	case BucketIn:
		selected = in
	case BucketLow:
		selected = low
	case BucketOut:
		selected = out
	default:
		selected = append(append(append(selected, in...), low...), out...)
	}

	page = page.Normalize()
	overview.Products = paginate(selected, page)
	overview.Pagination = models.NewPageInfo(page, int64(len(selected)))
	return overview, nil
}

func paginate[T any](items []T, page models.PageRequest) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// GetActiveAndInactive returns active and inactive products with counts
func (s *productService) GetActiveAndInactive(ctx context.Context) (*ProductStatusSummary, error) {
	active, err := s.productRepo.GetByStatus(ctx, models.ProductStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to get active products: %w", err)
	}
	inactive, err := s.productRepo.GetByStatus(ctx, models.ProductStatusInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to get inactive products: %w", err)
	}

	summary := &ProductStatusSummary{}
	summary.Summary.Active = StockBucket{Label: "Active Products", Count: len(active)}
	summary.Summary.Inactive = StockBucket{Label: "Inactive Products", Count: len(inactive)}
	summary.Products.Active = active
	summary.Products.Inactive = inactive
	return summary, nil
}

// GetProductsByBrand returns the products of a brand, matched case-insensitively
func (s *productService) GetProductsByBrand(ctx context.Context, brand string) ([]*models.Product, error) {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return nil, models.NewValidationError("product", "brand", "Brand name is required")
	}

	products, err := s.productRepo.GetByBrand(ctx, brand)
	if err != nil {
		return nil, fmt.Errorf("failed to get products by brand: %w", err)
	}
	if len(products) == 0 {
		return nil, &models.DomainError{
			Kind:    models.ErrNotFound,
			Entity:  "product",
			Field:   "brand",
			Message: fmt.Sprintf("No products found for brand: %s", brand),
		}
	}
	return products, nil
}

// GetProductsByCategory lists a category's products with the given status
func (s *productService) GetProductsByCategory(ctx context.Context, categoryID string, status models.ProductStatus, page models.PageRequest) (*ProductPage, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, models.NewValidationError("product", "category", "Category ID is required")
	}
	return s.ListProducts(ctx, &ProductFilters{CategoryID: categoryID, Status: status, Page: page})
}
