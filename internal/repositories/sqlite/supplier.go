package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

const supplierColumns = `id, name, company_name, email, phone, street, city, state, country,
	postal_code, business_type, is_active, categories, total_orders, completed_orders,
	total_purchase_value, avg_delivery_days, last_order_date, created_at, updated_at`

// SupplierRepository implements the SupplierRepository interface for SQLite
type SupplierRepository struct {
	*BaseRepository[models.Supplier]
}

// NewSupplierRepository creates a new SQLite supplier repository
func NewSupplierRepository(db *sql.DB, logger *logrus.Logger) repositories.SupplierRepository {
	return &SupplierRepository{
		BaseRepository: NewBaseRepository[models.Supplier](db, "suppliers", "supplier", logger),
	}
}

func scanSupplier(s scanner) (*models.Supplier, error) {
	var (
		supplier    models.Supplier
		companyName sql.NullString
		email       sql.NullString
		street      sql.NullString
		city        sql.NullString
		state       sql.NullString
		postalCode  sql.NullString
		categories  string
		lastOrder   sql.NullTime
	)

	err := s.Scan(
		&supplier.ID,
		&supplier.Name,
		&companyName,
		&email,
		&supplier.Phone,
		&street,
		&city,
		&state,
		&supplier.Address.Country,
		&postalCode,
		&supplier.BusinessType,
		&supplier.IsActive,
		&categories,
		&supplier.Performance.TotalOrders,
		&supplier.Performance.CompletedOrders,
		&supplier.Performance.TotalPurchaseValue,
		&supplier.Performance.AvgDeliveryDays,
		&lastOrder,
		&supplier.CreatedAt,
		&supplier.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	supplier.CompanyName = companyName.String
	supplier.Email = stringPtr(email)
	supplier.Address.Street = street.String
	supplier.Address.City = city.String
	supplier.Address.State = state.String
	supplier.Address.PostalCode = postalCode.String
	supplier.Performance.LastOrderDate = timePtr(lastOrder)
	supplier.CreatedAt = supplier.CreatedAt.UTC()
	supplier.UpdatedAt = supplier.UpdatedAt.UTC()

	supplier.Categories = []string{}
	if categories != "" {
		if err := json.Unmarshal([]byte(categories), &supplier.Categories); err != nil {
			return nil, fmt.Errorf("failed to decode supplier categories: %w", err)
		}
	}

	return &supplier, nil
}

func encodeCategories(categories []string) (string, error) {
	if categories == nil {
		categories = []string{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("failed to encode supplier categories: %w", err)
	}
	return string(data), nil
}

func (r *SupplierRepository) duplicateError(err error, supplier *models.Supplier) error {
	column := uniqueColumn(err)
	value := supplier.Name
	if column == "email" && supplier.Email != nil {
		value = *supplier.Email
	}
	return repositories.DuplicateError("supplier", column, value)
}

// Create creates a new supplier
func (r *SupplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	if err := supplier.Validate(); err != nil {
		return repositories.ValidationError("supplier", supplier.ID, err)
	}

	categories, err := encodeCategories(supplier.Categories)
	if err != nil {
		return err
	}

	country := supplier.Address.Country
	if country == "" {
		country = models.DefaultCountry
	}

	query := `INSERT INTO suppliers (` + supplierColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.executeExec(ctx, "create", query,
		supplier.ID,
		supplier.Name,
		emptyAsNull(supplier.CompanyName),
		nullableString(supplier.Email),
		supplier.Phone,
		emptyAsNull(supplier.Address.Street),
		emptyAsNull(supplier.Address.City),
		emptyAsNull(supplier.Address.State),
		country,
		emptyAsNull(supplier.Address.PostalCode),
		supplier.BusinessType,
		supplier.IsActive,
		categories,
		supplier.Performance.TotalOrders,
		supplier.Performance.CompletedOrders,
		supplier.Performance.TotalPurchaseValue,
		supplier.Performance.AvgDeliveryDays,
		nullableTime(supplier.Performance.LastOrderDate),
		supplier.CreatedAt,
		supplier.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return r.duplicateError(err, supplier)
		}
		return err
	}

	return nil
}

// GetByID retrieves a supplier by ID
func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*models.Supplier, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = ?`

	supplier, err := scanSupplier(r.executeQueryRow(ctx, "get_by_id", query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("supplier", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "supplier", id, err)
	}

	return supplier, nil
}

// Update updates the supplier profile. Performance counters are written
// separately through UpdatePerformance.
func (r *SupplierRepository) Update(ctx context.Context, supplier *models.Supplier) error {
	if err := supplier.Validate(); err != nil {
		return repositories.ValidationError("supplier", supplier.ID, err)
	}

	categories, err := encodeCategories(supplier.Categories)
	if err != nil {
		return err
	}

	supplier.UpdateTimestamp()

	query := `
		UPDATE suppliers
		SET name = ?, company_name = ?, email = ?, phone = ?, street = ?, city = ?,
			state = ?, country = ?, postal_code = ?, business_type = ?, is_active = ?,
			categories = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		supplier.Name,
		emptyAsNull(supplier.CompanyName),
		nullableString(supplier.Email),
		supplier.Phone,
		emptyAsNull(supplier.Address.Street),
		emptyAsNull(supplier.Address.City),
		emptyAsNull(supplier.Address.State),
		supplier.Address.Country,
		emptyAsNull(supplier.Address.PostalCode),
		supplier.BusinessType,
		supplier.IsActive,
		categories,
		supplier.UpdatedAt,
		supplier.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return r.duplicateError(err, supplier)
		}
		return err
	}

	return r.checkRowsAffected(result, "update", supplier.ID)
}

// List retrieves suppliers, newest first
func (r *SupplierRepository) List(ctx context.Context, filter repositories.SupplierFilter) ([]*models.Supplier, int64, error) {
	where := newWhere().
		eqIf("business_type", filter.BusinessType).
		search(filter.Search, "name", "company_name", "email", "phone")
	if filter.IsActive != nil {
		where.eq("is_active", *filter.IsActive)
	}

	total, err := r.count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	limit, pageArgs := pageClause(filter.Page)
	query := fmt.Sprintf("SELECT %s FROM suppliers %s ORDER BY created_at DESC %s",
		supplierColumns, where.clause(), limit)

	rows, err := r.executeQuery(ctx, "list", query, append(where.args, pageArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	suppliers := []*models.Supplier{}
	for rows.Next() {
		supplier, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, repositories.NewRepositoryError("list", "supplier", "", err)
		}
		suppliers = append(suppliers, supplier)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, repositories.NewRepositoryError("list", "supplier", "", err)
	}

	return suppliers, total, nil
}

// ExistsByName reports whether another supplier already uses the name
func (r *SupplierRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return r.existsWhere(ctx, "name", name, excludeID)
}

// ExistsByEmail reports whether another supplier already uses the email
func (r *SupplierRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	if email == "" {
		return false, nil
	}
	return r.existsWhere(ctx, "email", email, excludeID)
}

// UpdatePerformance persists the performance counters of a supplier
func (r *SupplierRepository) UpdatePerformance(ctx context.Context, id string, performance models.SupplierPerformance) error {
	if err := r.validateID(id); err != nil {
		return err
	}

	query := `
		UPDATE suppliers
		SET total_orders = ?, completed_orders = ?, total_purchase_value = ?,
			avg_delivery_days = ?, last_order_date = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update_performance", query,
		performance.TotalOrders,
		performance.CompletedOrders,
		performance.TotalPurchaseValue,
		performance.AvgDeliveryDays,
		nullableTime(performance.LastOrderDate),
		models.Now(),
		id,
	)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update_performance", id)
}
