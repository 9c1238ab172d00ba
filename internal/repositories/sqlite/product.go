package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

const productColumns = `id, name, description, sku, category_id, subcategory, brand,
	cost_price, selling_price, current_stock, min_stock_level, max_stock_level,
	unit, supplier_id, status, expiry_date, tax_rate, tax_include,
	total_sold, total_sale, image, created_at, updated_at`

var productSortColumns = map[string]string{
	"name":          "name",
	"selling_price": "selling_price",
	"cost_price":    "cost_price",
	"current_stock": "current_stock",
	"total_sold":    "total_sold",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
}

// ProductRepository implements the ProductRepository interface for SQLite
type ProductRepository struct {
	*BaseRepository[models.Product]
}

// NewProductRepository creates a new SQLite product repository
func NewProductRepository(db *sql.DB, logger *logrus.Logger) repositories.ProductRepository {
	return &ProductRepository{
		BaseRepository: NewBaseRepository[models.Product](db, "products", "product", logger),
	}
}

func scanProduct(s scanner) (*models.Product, error) {
	var (
		product     models.Product
		description sql.NullString
		subcategory sql.NullString
		brand       sql.NullString
		supplierID  sql.NullString
		expiryDate  sql.NullTime
		image       sql.NullString
	)

	err := s.Scan(
		&product.ID,
		&product.Name,
		&description,
		&product.SKU,
		&product.CategoryID,
		&subcategory,
		&brand,
		&product.CostPrice,
		&product.SellingPrice,
		&product.CurrentStock,
		&product.MinStockLevel,
		&product.MaxStockLevel,
		&product.Unit,
		&supplierID,
		&product.Status,
		&expiryDate,
		&product.TaxRate,
		&product.TaxInclude,
		&product.TotalSold,
		&product.TotalSale,
		&image,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Description = stringPtr(description)
	product.Subcategory = subcategory.String
	product.Brand = brand.String
	product.SupplierID = stringPtr(supplierID)
	product.ExpiryDate = timePtr(expiryDate)
	product.Image = stringPtr(image)
	product.CreatedAt = product.CreatedAt.UTC()
	product.UpdatedAt = product.UpdatedAt.UTC()

	return &product, nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, operation, query string, args ...interface{}) ([]*models.Product, error) {
	rows, err := r.executeQuery(ctx, operation, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError(operation, "product", "", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError(operation, "product", "", err)
	}

	return products, nil
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return repositories.ValidationError("product", product.ID, err)
	}

	query := `INSERT INTO products (` + productColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		product.ID,
		product.Name,
		nullableString(product.Description),
		product.SKU,
		product.CategoryID,
		emptyAsNull(product.Subcategory),
		emptyAsNull(product.Brand),
		product.CostPrice,
		product.SellingPrice,
		product.CurrentStock,
		product.MinStockLevel,
		product.MaxStockLevel,
		product.Unit,
		nullableString(product.SupplierID),
		product.Status,
		nullableTime(product.ExpiryDate),
		product.TaxRate,
		product.TaxInclude,
		product.TotalSold,
		product.TotalSale,
		nullableString(product.Image),
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			column := uniqueColumn(err)
			value := product.Name
			if column == "sku" {
				value = product.SKU
			}
			return repositories.DuplicateError("product", column, value)
		}
		return err
	}

	return nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	product, err := scanProduct(r.executeQueryRow(ctx, "get_by_id", query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("product", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "product", id, err)
	}

	return product, nil
}

// Update updates an existing product. Stock is written as given; use
// AdjustStock for relative changes.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return repositories.ValidationError("product", product.ID, err)
	}

	product.UpdateTimestamp()

	query := `
		UPDATE products
		SET name = ?, description = ?, category_id = ?, subcategory = ?, brand = ?,
			cost_price = ?, selling_price = ?, current_stock = ?, min_stock_level = ?,
			max_stock_level = ?, unit = ?, supplier_id = ?, status = ?, expiry_date = ?,
			tax_rate = ?, tax_include = ?, total_sold = ?, total_sale = ?, image = ?,
			updated_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		product.Name,
		nullableString(product.Description),
		product.CategoryID,
		emptyAsNull(product.Subcategory),
		emptyAsNull(product.Brand),
		product.CostPrice,
		product.SellingPrice,
		product.CurrentStock,
		product.MinStockLevel,
		product.MaxStockLevel,
		product.Unit,
		nullableString(product.SupplierID),
		product.Status,
		nullableTime(product.ExpiryDate),
		product.TaxRate,
		product.TaxInclude,
		product.TotalSold,
		product.TotalSale,
		nullableString(product.Image),
		product.UpdatedAt,
		product.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return repositories.DuplicateError("product", uniqueColumn(err), product.Name)
		}
		return err
	}

	return r.checkRowsAffected(result, "update", product.ID)
}

// List retrieves products with optional filters
func (r *ProductRepository) List(ctx context.Context, filter repositories.ProductFilter) ([]*models.Product, int64, error) {
	where := newWhere().
		eqIf("category_id", filter.CategoryID).
		eqIf("supplier_id", filter.SupplierID).
		eqIf("status", string(filter.Status)).
		search(filter.Search, "name", "sku", "brand")
	if filter.Brand != "" {
		where.add("LOWER(brand) = LOWER(?)", filter.Brand)
	}

	total, err := r.count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	limit, pageArgs := pageClause(filter.Page)
	query := fmt.Sprintf("SELECT %s FROM products %s %s %s",
		productColumns,
		where.clause(),
		orderClause(filter.SortBy, filter.SortOrder, productSortColumns, "created_at"),
		limit,
	)

	products, err := r.queryProducts(ctx, "list", query, append(where.args, pageArgs...)...)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ExistsByName reports whether another product already uses the name
func (r *ProductRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return r.existsWhere(ctx, "name", name, excludeID)
}

// GetByStatus retrieves every product with the status
func (r *ProductRepository) GetByStatus(ctx context.Context, status models.ProductStatus) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE status = ? ORDER BY created_at DESC`
	return r.queryProducts(ctx, "get_by_status", query, status)
}

// GetLowStock retrieves active products at or below their minimum stock level
func (r *ProductRepository) GetLowStock(ctx context.Context, page models.PageRequest) ([]*models.Product, int64, error) {
	where := newWhere().
		eq("status", models.ProductStatusActive).
		add("current_stock <= min_stock_level")

	total, err := r.count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	limit, pageArgs := pageClause(page)
	query := fmt.Sprintf("SELECT %s FROM products %s ORDER BY current_stock ASC, name ASC %s",
		productColumns, where.clause(), limit)

	products, err := r.queryProducts(ctx, "get_low_stock", query, append(where.args, pageArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByBrand retrieves products by brand, case-insensitively
func (r *ProductRepository) GetByBrand(ctx context.Context, brand string) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE LOWER(brand) = LOWER(?) ORDER BY created_at DESC`
	return r.queryProducts(ctx, "get_by_brand", query, brand)
}

// CountByStatus returns the number of products per status
func (r *ProductRepository) CountByStatus(ctx context.Context) (map[models.ProductStatus]int64, error) {
	rows, err := r.executeQuery(ctx, "count_by_status", "SELECT status, COUNT(*) FROM products GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[models.ProductStatus]int64{
		models.ProductStatusActive:     0,
		models.ProductStatusInactive:   0,
		models.ProductStatusOutOfStock: 0,
	}
	for rows.Next() {
		var status models.ProductStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, repositories.NewRepositoryError("count_by_status", "product", "", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("count_by_status", "product", "", err)
	}
	return counts, nil
}

// AdjustStock adds delta to current_stock. The capacity check and the
// increment are one statement, so concurrent adjustments cannot jointly
// overshoot max_stock_level.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `
		UPDATE products
		SET current_stock = current_stock + ?, updated_at = ?
		WHERE id = ? AND current_stock + ? <= max_stock_level`

	result, err := r.executeExec(ctx, "adjust_stock", query, delta, models.Now(), id, delta)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, repositories.NewRepositoryError("adjust_stock", "product", id, err)
	}

	if affected == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, models.NewCapacityError(current.Name, current.CurrentStock+delta, current.MaxStockLevel)
	}

	return r.GetByID(ctx, id)
}

// ReserveStock removes quantity only when at least that much is in stock
func (r *ProductRepository) ReserveStock(ctx context.Context, id string, quantity int) (*models.Product, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, models.NewValidationError("product", "quantity", "Quantity must be at least 1")
	}

	query := `
		UPDATE products
		SET current_stock = current_stock - ?, updated_at = ?
		WHERE id = ? AND current_stock >= ?`

	result, err := r.executeExec(ctx, "reserve_stock", query, quantity, models.Now(), id, quantity)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, repositories.NewRepositoryError("reserve_stock", "product", id, err)
	}

	if affected == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, models.NewInsufficientStockError(current.Name, current.CurrentStock, quantity)
	}

	return r.GetByID(ctx, id)
}

// UpdateStatus sets the product status
func (r *ProductRepository) UpdateStatus(ctx context.Context, id string, status models.ProductStatus) error {
	if err := r.validateID(id); err != nil {
		return err
	}

	query := `UPDATE products SET status = ?, updated_at = ? WHERE id = ?`
	result, err := r.executeExec(ctx, "update_status", query, status, models.Now(), id)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update_status", id)
}

// UpdateTaxRateByCategory sets the tax rate on every product in a category
func (r *ProductRepository) UpdateTaxRateByCategory(ctx context.Context, categoryID string, taxRate float64) (int64, error) {
	query := `UPDATE products SET tax_rate = ?, updated_at = ? WHERE category_id = ?`
	result, err := r.executeExec(ctx, "update_tax_rate_by_category", query, taxRate, models.Now(), categoryID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// UpdateStatusByCategory sets the status on every product in a category
func (r *ProductRepository) UpdateStatusByCategory(ctx context.Context, categoryID string, status models.ProductStatus) (int64, error) {
	query := `UPDATE products SET status = ?, updated_at = ? WHERE category_id = ?`
	result, err := r.executeExec(ctx, "update_status_by_category", query, status, models.Now(), categoryID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
