package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

const orderColumns = `id, order_number, order_type, customer_name, customer_phone, customer_email,
	customer_address, supplier_id, subtotal, tax_amount, discount, shipping_cost, total_amount,
	status, payment_status, payment_method, notes, order_date, expected_delivery_date,
	actual_delivery_date, created_at, updated_at`

const orderItemColumns = `id, order_id, product_id, product_name, sku, quantity, unit_price, subtotal`

var orderSortColumns = map[string]string{
	"order_date":   "order_date",
	"total_amount": "total_amount",
	"created_at":   "created_at",
	"order_number": "order_number",
	"status":       "status",
}

// OrderRepository implements the OrderRepository interface for SQLite
type OrderRepository struct {
	*BaseRepository[models.Order]
	tm repositories.TransactionManager
}

// NewOrderRepository creates a new SQLite order repository
func NewOrderRepository(db *sql.DB, logger *logrus.Logger) repositories.OrderRepository {
	return &OrderRepository{
		BaseRepository: NewBaseRepository[models.Order](db, "orders", "order", logger),
		tm:             NewSQLiteTransactionManager(db, logger),
	}
}

func scanOrder(s scanner) (*models.Order, error) {
	var (
		order           models.Order
		customerName    sql.NullString
		customerPhone   sql.NullString
		customerEmail   sql.NullString
		customerAddress sql.NullString
		supplierID      sql.NullString
		notes           sql.NullString
		expected        sql.NullTime
		actual          sql.NullTime
	)

	err := s.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.OrderType,
		&customerName,
		&customerPhone,
		&customerEmail,
		&customerAddress,
		&supplierID,
		&order.Subtotal,
		&order.TaxAmount,
		&order.Discount,
		&order.ShippingCost,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentMethod,
		&notes,
		&order.OrderDate,
		&expected,
		&actual,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if customerName.Valid || customerPhone.Valid {
		order.Customer = &models.Customer{
			Name:    customerName.String,
			Phone:   customerPhone.String,
			Email:   customerEmail.String,
			Address: customerAddress.String,
		}
	}
	order.SupplierID = stringPtr(supplierID)
	order.Notes = stringPtr(notes)
	order.ExpectedDeliveryDate = timePtr(expected)
	order.ActualDeliveryDate = timePtr(actual)
	order.OrderDate = order.OrderDate.UTC()
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
	order.Items = []models.OrderItem{}

	return &order, nil
}

// Create persists the order row and its line items in one transaction
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := order.Validate(); err != nil {
		return repositories.ValidationError("order", order.ID, err)
	}

	return r.tm.WithTransaction(ctx, func(ctx context.Context) error {
		var customerName, customerPhone, customerEmail, customerAddress sql.NullString
		if order.Customer != nil {
			customerName = emptyAsNull(order.Customer.Name)
			customerPhone = emptyAsNull(order.Customer.Phone)
			customerEmail = emptyAsNull(order.Customer.Email)
			customerAddress = emptyAsNull(order.Customer.Address)
		}

		query := `INSERT INTO orders (` + orderColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := r.executeExec(ctx, "create", query,
			order.ID,
			order.OrderNumber,
			order.OrderType,
			customerName,
			customerPhone,
			customerEmail,
			customerAddress,
			nullableString(order.SupplierID),
			order.Subtotal,
			order.TaxAmount,
			order.Discount,
			order.ShippingCost,
			order.TotalAmount,
			order.Status,
			order.PaymentStatus,
			order.PaymentMethod,
			nullableString(order.Notes),
			order.OrderDate,
			nullableTime(order.ExpectedDeliveryDate),
			nullableTime(order.ActualDeliveryDate),
			order.CreatedAt,
			order.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return repositories.DuplicateError("order", "order_number", order.OrderNumber)
			}
			return err
		}

		itemQuery := `INSERT INTO order_items (` + orderItemColumns + `, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

		for i, item := range order.Items {
			_, err := r.executeExec(ctx, "create_item", itemQuery,
				item.ID,
				order.ID,
				item.ProductID,
				item.ProductName,
				item.SKU,
				item.Quantity,
				item.UnitPrice,
				item.Subtotal,
				i,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// GetByID retrieves an order with its line items
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	order, err := scanOrder(r.executeQueryRow(ctx, "get_by_id", query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("order", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "order", id, err)
	}

	if err := r.attachItems(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// Update persists status, payment status, delivery date and notes
func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	if err := r.validateID(order.ID); err != nil {
		return err
	}

	order.UpdateTimestamp()

	query := `
		UPDATE orders
		SET status = ?, payment_status = ?, payment_method = ?, notes = ?,
			expected_delivery_date = ?, actual_delivery_date = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		nullableString(order.Notes),
		nullableTime(order.ExpectedDeliveryDate),
		nullableTime(order.ActualDeliveryDate),
		order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update", order.ID)
}

// List retrieves a page of orders with their line items
func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderFilter) ([]*models.Order, int64, error) {
	where := newWhere().
		eqIf("order_type", string(filter.OrderType)).
		eqIf("status", string(filter.Status)).
		eqIf("payment_status", string(filter.PaymentStatus)).
		eqIf("supplier_id", filter.SupplierID)

	total, err := r.count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	limit, pageArgs := pageClause(filter.Page)
	query := fmt.Sprintf("SELECT %s FROM orders %s %s %s",
		orderColumns,
		where.clause(),
		orderClause(filter.SortBy, filter.SortOrder, orderSortColumns, "order_date"),
		limit,
	)

	rows, err := r.executeQuery(ctx, "list", query, append(where.args, pageArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, repositories.NewRepositoryError("list", "order", "", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, repositories.NewRepositoryError("list", "order", "", err)
	}
	rows.Close()

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// attachItems loads line items for the orders with a single query
func (r *OrderRepository) attachItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*models.Order, len(orders))
	placeholders := make([]string, 0, len(orders))
	args := make([]interface{}, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		placeholders = append(placeholders, "?")
		args = append(args, o.ID)
	}

	query := fmt.Sprintf("SELECT %s FROM order_items WHERE order_id IN (%s) ORDER BY order_id, sort_order",
		orderItemColumns, strings.Join(placeholders, ", "))

	rows, err := r.executeQuery(ctx, "list_items", query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.SKU,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		)
		if err != nil {
			return repositories.NewRepositoryError("list_items", "order", "", err)
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return repositories.NewRepositoryError("list_items", "order", "", err)
	}
	return nil
}

// GetRevenue sums non-cancelled, paid or partially paid sale orders placed
// within [startDate, endDate]
func (r *OrderRepository) GetRevenue(ctx context.Context, startDate, endDate time.Time) (*repositories.RevenueSummary, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM orders
		WHERE order_type = ?
			AND status != ?
			AND payment_status IN (?, ?)
			AND order_date >= ? AND order_date <= ?`

	summary := &repositories.RevenueSummary{
		StartDate: startDate.UTC(),
		EndDate:   endDate.UTC(),
	}

	err := r.executeQueryRow(ctx, "revenue", query,
		models.OrderTypeSale,
		models.OrderStatusCancelled,
		models.PaymentStatusPaid,
		models.PaymentStatusPartial,
		startDate.UTC(),
		endDate.UTC(),
	).Scan(&summary.TotalRevenue, &summary.OrderCount)
	if err != nil {
		return nil, repositories.NewRepositoryError("revenue", "order", "", err)
	}

	summary.TotalRevenue = models.RoundMoney(summary.TotalRevenue)
	return summary, nil
}
