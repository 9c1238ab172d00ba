package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"
)

// StockApplicationError reports an order whose stock deltas were only
// partly applied. The order itself is persisted. When Compensated is true
// the applied deltas were reversed and the order cancelled.
type StockApplicationError struct {
	OrderID     string
	OrderNumber string
	Applied     []models.StockDelta
	Failed      models.StockDelta
	Compensated bool
	Err         error
}

// Error implements the error interface
func (e *StockApplicationError) Error() string {
	return fmt.Sprintf("order %s created but stock update failed for %s after %d item(s): %v",
		e.OrderNumber, e.Failed.ProductName, len(e.Applied), e.Err)
}

// Unwrap returns the stock failure
func (e *StockApplicationError) Unwrap() error {
	return e.Err
}

// orderService implements the OrderService interface
type orderService struct {
	orderRepo       repositories.OrderRepository
	productRepo     repositories.ProductRepository
	supplierRepo    repositories.SupplierRepository
	supplierService SupplierService
	txManager       repositories.TransactionManager
	validator       *validator.Validate
	logger          *logrus.Logger
	compensate      bool
	now             func() time.Time
}

// NewOrderService creates a new order service instance. With compensate
// set, a failed stock update during creation reverses the deltas already
// applied and cancels the order; otherwise they stay applied.
func NewOrderService(
	repos *repositories.RepositoryContainer,
	supplierService SupplierService,
	compensate bool,
	logger *logrus.Logger,
) OrderService {
	return &orderService{
		orderRepo:       repos.OrderRepo,
		productRepo:     repos.ProductRepo,
		supplierRepo:    repos.SupplierRepo,
		supplierService: supplierService,
		txManager:       repos.TxManager,
		validator:       newValidator(),
		logger:          logger,
		compensate:      compensate,
		now:             models.Now,
	}
}

// CreateOrder validates the request, snapshots the products into line
// items, persists the order as pending and then applies the stock deltas
// one item at a time.
func (s *orderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderDetails, error) {
	if req == nil {
		return nil, models.NewValidationError("order", "", "Request body is required")
	}

	// Validate request
	if err := validateRequest(s.validator, "order", req); err != nil {
		return nil, err
	}

	order := models.NewOrder(models.OrderType(req.OrderType))

	var supplier *models.Supplier
	switch order.OrderType {
	case models.OrderTypeSale:
		if req.Customer == nil || strings.TrimSpace(req.Customer.Name) == "" || strings.TrimSpace(req.Customer.Phone) == "" {
			return nil, models.NewValidationError("order", "customer", "Customer name and phone are required for sale orders")
		}
		order.Customer = &models.Customer{
			Name:    strings.TrimSpace(req.Customer.Name),
			Phone:   strings.TrimSpace(req.Customer.Phone),
			Email:   strings.TrimSpace(req.Customer.Email),
			Address: strings.TrimSpace(req.Customer.Address),
		}
	case models.OrderTypePurchase:
		var err error
		supplier, err = s.activeSupplier(ctx, req.SupplierID)
		if err != nil {
			return nil, err
		}
		order.SupplierID = &supplier.ID
	}

	for i, itemReq := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		if itemReq.Quantity < 1 {
			return nil, models.NewValidationError("order", field+".quantity", "Quantity must be at least 1")
		}

		product, err := s.orderableProduct(ctx, field+".product", itemReq.ProductID, order.IsSale())
		if err != nil {
			return nil, err
		}

		unitPrice := product.CostPrice
		if order.IsSale() {
			if product.CurrentStock < itemReq.Quantity {
				return nil, models.NewInsufficientStockError(product.Name, product.CurrentStock, itemReq.Quantity)
			}
			unitPrice = product.SellingPrice
		}

		order.AddItem(models.NewOrderItem(order.ID, product, itemReq.Quantity, unitPrice))
	}

	order.TaxAmount = req.TaxAmount
	order.Discount = req.Discount
	order.ShippingCost = req.ShippingCost
	if req.PaymentMethod != "" {
		order.PaymentMethod = models.PaymentMethod(req.PaymentMethod)
	}
	order.SetNotes(req.Notes)
	if req.ExpectedDeliveryDate != nil {
		expected := req.ExpectedDeliveryDate.UTC()
		order.ExpectedDeliveryDate = &expected
	}
	order.CalculateTotals()

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"order_type":   order.OrderType,
		"total":        order.TotalAmount,
		"items":        len(order.Items),
	}).Info("Order created")

	products, err := s.applyStock(ctx, order)
	if err != nil {
		return nil, err
	}

	details := newOrderDetails(order)
	details.Supplier = supplierSummary(supplier)
	details.Products = products
	return details, nil
}

func (s *orderService) activeSupplier(ctx context.Context, id string) (*models.Supplier, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, models.NewValidationError("order", "supplier", "Supplier is required for purchase orders")
	}

	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, models.NewReferenceError("supplier", "supplier", id)
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	if !supplier.IsActive {
		return nil, models.NewInactiveError("supplier", supplier.Name)
	}
	return supplier, nil
}

// orderableProduct loads an order line's product. Sales need an active
// product; purchases may also restock one marked out of stock.
func (s *orderService) orderableProduct(ctx context.Context, field, id string, sale bool) (*models.Product, error) {
	id = strings.TrimSpace(id)
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, models.NewReferenceError("product", field, id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product.IsActive() || (!sale && product.Status == models.ProductStatusOutOfStock) {
		return product, nil
	}
	return nil, models.NewInactiveError("product", product.Name)
}

// applyStock applies the order's stock deltas in item order. It returns the
// resulting product views, or a StockApplicationError on the first failure.
func (s *orderService) applyStock(ctx context.Context, order *models.Order) ([]ProductSummary, error) {
	deltas := models.StockDeltas(order)
	products := make([]ProductSummary, 0, len(deltas))
	applied := make([]models.StockDelta, 0, len(deltas))

	for _, delta := range deltas {
		product, err := s.productRepo.AdjustStock(ctx, delta.ProductID, delta.Delta)
		if err != nil {
			return nil, s.handlePartialStock(ctx, order, applied, delta, err)
		}
		applied = append(applied, delta)
		products = append(products, ProductSummary{
			ID:           product.ID,
			Name:         product.Name,
			SKU:          product.SKU,
			CurrentStock: product.CurrentStock,
		})
	}

	return products, nil
}

func (s *orderService) handlePartialStock(ctx context.Context, order *models.Order, applied []models.StockDelta, failed models.StockDelta, cause error) error {
	partial := &StockApplicationError{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Applied:     applied,
		Failed:      failed,
		Err:         cause,
	}

	entry := s.logger.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"order_number":   order.OrderNumber,
		"applied_items":  len(applied),
		"failed_product": failed.ProductID,
		"error":          cause.Error(),
	})

	if !s.compensate {
		entry.Warn("Order stock partially applied")
		return partial
	}

	for i := len(applied) - 1; i >= 0; i-- {
		if _, err := s.productRepo.AdjustStock(ctx, applied[i].ProductID, -applied[i].Delta); err != nil {
			entry.WithField("product_id", applied[i].ProductID).WithError(err).Error("Failed to reverse stock delta")
			return partial
		}
	}

	cancelled, err := models.ApplyStatus(*order, models.OrderStatusCancelled, s.now())
	if err != nil {
		return partial
	}
	if err := s.orderRepo.Update(ctx, &cancelled); err != nil {
		entry.WithError(err).Error("Failed to cancel order after stock failure")
		return partial
	}

	*order = cancelled
	partial.Compensated = true
	entry.Warn("Order stock reversed and order cancelled")
	return partial
}

func (s *orderService) getOrder(ctx context.Context, id string) (*models.Order, error) {
	if err := requireID("order", id); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func newOrderDetails(order *models.Order) *OrderDetails {
	return &OrderDetails{
		Order:        order,
		Summary:      order.Summary(),
		DeliveryDays: order.DeliveryDays(),
	}
}

func supplierSummary(supplier *models.Supplier) *SupplierSummary {
	if supplier == nil {
		return nil
	}
	return &SupplierSummary{
		ID:    supplier.ID,
		Name:  supplier.Name,
		Phone: supplier.Phone,
		Email: supplier.Email,
	}
}

// GetOrder retrieves an order with its summary and supplier
func (s *orderService) GetOrder(ctx context.Context, id string) (*OrderDetails, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	details := newOrderDetails(order)
	if order.SupplierID != nil {
		supplier, err := s.supplierRepo.GetByID(ctx, *order.SupplierID)
		if err != nil && !repositories.IsNotFound(err) {
			return nil, fmt.Errorf("failed to get supplier: %w", err)
		}
		details.Supplier = supplierSummary(supplier)
	}
	return details, nil
}

// ListOrders lists orders, newest order date first by default
func (s *orderService) ListOrders(ctx context.Context, filters *OrderFilters) (*OrderPage, error) {
	if filters == nil {
		filters = &OrderFilters{}
	}
	if err := validateRequest(s.validator, "order", filters); err != nil {
		return nil, err
	}

	page := filters.Page.Normalize()
	orders, total, err := s.orderRepo.List(ctx, repositories.OrderFilter{
		OrderType:     models.OrderType(filters.OrderType),
		Status:        models.OrderStatus(filters.Status),
		PaymentStatus: models.PaymentStatus(filters.PaymentStatus),
		SortBy:        filters.SortBy,
		SortOrder:     filters.SortOrder,
		Page:          page,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &OrderPage{Orders: orders, Total: total, Pagination: models.NewPageInfo(page, total)}, nil
}

// UpdateStatus moves an order along the lifecycle graph. Cancellation goes
// through CancelOrder so stock is always reversed. A purchase order reaching
// completed updates its supplier's performance in the same transaction.
func (s *orderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if status == models.OrderStatusCancelled {
		return s.CancelOrder(ctx, id)
	}

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := models.ApplyStatus(*order, status, s.now())
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.orderRepo.Update(ctx, &next); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		if next.IsPurchase() && next.Status == models.OrderStatusCompleted && next.SupplierID != nil {
			if _, err := s.supplierService.RecordPurchase(ctx, *next.SupplierID, true, next.TotalAmount, next.DeliveryDays()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": next.ID,
		"from":     order.Status,
		"to":       next.Status,
	}).Info("Order status changed")

	return &next, nil
}

// CancelOrder reverses the order's stock deltas and marks it cancelled
func (s *orderService) CancelOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.CanBeCancelled() {
		return nil, models.NewInvalidTransitionError(order.Status, models.OrderStatusCancelled)
	}

	cancelled, err := models.ApplyStatus(*order, models.OrderStatusCancelled, s.now())
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		for _, delta := range models.ReverseStockDeltas(order) {
			if _, err := s.productRepo.AdjustStock(ctx, delta.ProductID, delta.Delta); err != nil {
				if repositories.IsNotFound(err) {
					s.logger.WithFields(logrus.Fields{
						"order_id":   order.ID,
						"product_id": delta.ProductID,
					}).Warn("Product removed since order creation, skipping stock reversal")
					continue
				}
				return fmt.Errorf("failed to reverse stock for %s: %w", delta.ProductName, err)
			}
		}
		if err := s.orderRepo.Update(ctx, &cancelled); err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     cancelled.ID,
		"order_number": cancelled.OrderNumber,
		"from":         order.Status,
	}).Info("Order cancelled")

	return &cancelled, nil
}

// UpdatePaymentStatus sets any valid payment status; no transition rules apply
func (s *orderService) UpdatePaymentStatus(ctx context.Context, id string, status string) (*models.Order, error) {
	paymentStatus, err := models.ParsePaymentStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	order.PaymentStatus = paymentStatus
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	return order, nil
}

// GetOrdersBySupplier lists a supplier's purchase orders, newest first
func (s *orderService) GetOrdersBySupplier(ctx context.Context, supplierID string, status models.OrderStatus, page models.PageRequest) (*OrderPage, error) {
	if strings.TrimSpace(supplierID) == "" {
		return nil, models.NewValidationError("order", "supplier", "Supplier ID is required")
	}
	if status != "" {
		if v := models.ValidateEnum(string(status), models.OrderStatuses(), "status"); v != nil {
			return nil, models.NewValidationErrors("order", []models.ValidationError{*v})
		}
	}

	page = page.Normalize()
	orders, total, err := s.orderRepo.List(ctx, repositories.OrderFilter{
		OrderType:  models.OrderTypePurchase,
		Status:     status,
		SupplierID: supplierID,
		SortBy:     "order_date",
		SortOrder:  "desc",
		Page:       page,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier orders: %w", err)
	}

	return &OrderPage{Orders: orders, Total: total, Pagination: models.NewPageInfo(page, total)}, nil
}

// GetRevenue sums paid and partially paid, non-cancelled sales in the range
func (s *orderService) GetRevenue(ctx context.Context, startDate, endDate time.Time) (*repositories.RevenueSummary, error) {
	if startDate.IsZero() || endDate.IsZero() {
		return nil, models.NewValidationError("order", "date_range", "startDate and endDate are required")
	}
	if endDate.Before(startDate) {
		return nil, models.NewValidationError("order", "date_range", "endDate must not be before startDate")
	}

	summary, err := s.orderRepo.GetRevenue(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get revenue: %w", err)
	}
	return summary, nil
}

// IsPartialStock reports whether err is a partially applied order
func IsPartialStock(err error) bool {
	var partial *StockApplicationError
	return errors.As(err, &partial)
}
