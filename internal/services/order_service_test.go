package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-api/internal/models"
)

func saleRequest(productID string, quantity int) *CreateOrderRequest {
	return &CreateOrderRequest{
		OrderType: "sale",
		Customer:  &CustomerRequest{Name: "Ayesha Khan", Phone: "+92 321 7654321"},
		Items:     []OrderItemRequest{{ProductID: productID, Quantity: quantity}},
	}
}

func purchaseRequest(supplierID string, items ...OrderItemRequest) *CreateOrderRequest {
	return &CreateOrderRequest{
		OrderType:  "purchase",
		SupplierID: supplierID,
		Items:      items,
	}
}

func TestOrderService_CreateSaleOrder(t *testing.T) {
	svc, repos := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Grocery", nil)
	rice := mustCreateProduct(t, svc, category.ID, "Basmati Rice", 10, 100)

	req := saleRequest(rice.ID, 3)
	req.TaxAmount = 2
	req.Discount = 1

	details, err := svc.OrderService.CreateOrder(ctx, req)
	if err != nil {
		t.Fatalf("CreateOrder() failed: %v", err)
	}

	if details.Subtotal != 30 {
		t.Errorf("Subtotal = %v, want 30", details.Subtotal)
	}
	if details.TotalAmount != 31 {
		t.Errorf("TotalAmount = %v, want 31", details.TotalAmount)
	}
	if details.Status != models.OrderStatusPending {
		t.Errorf("Status = %s, want pending", details.Status)
	}
	if details.PaymentStatus != models.PaymentStatusUnpaid {
		t.Errorf("PaymentStatus = %s, want unpaid", details.PaymentStatus)
	}
	if details.Items[0].UnitPrice != 10 {
		t.Errorf("UnitPrice = %v, want selling price 10", details.Items[0].UnitPrice)
	}
	if got := stockOf(t, repos, rice.ID); got != 7 {
		t.Errorf("stock = %d, want 7", got)
	}
	if len(details.Products) != 1 || details.Products[0].CurrentStock != 7 {
		t.Errorf("Products = %+v, want one product with stock 7", details.Products)
	}
}

func TestOrderService_CreateSaleOrderInsufficientStock(t *testing.T) {
	svc, repos := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Grocery", nil)
	sugar := mustCreateProduct(t, svc, category.ID, "Sugar", 2, 100)

	_, err := svc.OrderService.CreateOrder(ctx, saleRequest(sugar.ID, 5))
	if !errors.Is(err, models.ErrInsufficientStock) {
		t.Fatalf("CreateOrder() error = %v, want insufficient stock", err)
	}

	page, err := svc.OrderService.ListOrders(ctx, nil)
	if err != nil {
		t.Fatalf("ListOrders() failed: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("orders = %d, want none", page.Total)
	}
	if got := stockOf(t, repos, sugar.ID); got != 2 {
		t.Errorf("stock = %d, want unchanged 2", got)
	}
}

func TestOrderService_CreateOrderRejections(t *testing.T) {
	svc, _ := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Grocery", nil)
	rice := mustCreateProduct(t, svc, category.ID, "Rice", 10, 100)
	inactive := mustCreateProduct(t, svc, category.ID, "Old Rice", 10, 100)
	if _, err := svc.ProductService.ToggleStatus(ctx, inactive.ID, "deactivate"); err != nil {
		t.Fatalf("ToggleStatus() failed: %v", err)
	}

	tests := []struct {
		name string
		req  *CreateOrderRequest
		want error
	}{
		{
			name: "sale without customer",
			req:  &CreateOrderRequest{OrderType: "sale", Items: []OrderItemRequest{{ProductID: rice.ID, Quantity: 1}}},
			want: models.ErrValidation,
		},
		{
			name: "no items",
			req:  &CreateOrderRequest{OrderType: "sale", Customer: &CustomerRequest{Name: "A", Phone: "1"}},
			want: models.ErrValidation,
		},
		{
			name: "zero quantity",
			req:  saleRequest(rice.ID, 0),
			want: models.ErrValidation,
		},
		{
			name: "unknown product",
			req:  saleRequest("4f6a2c1e-0000-4000-8000-000000000000", 1),
			want: models.ErrReference,
		},
		{
			name: "inactive product",
			req:  saleRequest(inactive.ID, 1),
			want: models.ErrInactiveEntity,
		},
		{
			name: "purchase without supplier",
			req:  purchaseRequest("", OrderItemRequest{ProductID: rice.ID, Quantity: 1}),
			want: models.ErrValidation,
		},
		{
			name: "unknown supplier",
			req:  purchaseRequest("4f6a2c1e-0000-4000-8000-000000000001", OrderItemRequest{ProductID: rice.ID, Quantity: 1}),
			want: models.ErrReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.OrderService.CreateOrder(ctx, tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("CreateOrder() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOrderService_InvalidTransition(t *testing.T) {
	svc, _ := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Grocery", nil)
	rice := mustCreateProduct(t, svc, category.ID, "Rice", 10, 100)

	order, err := svc.OrderService.CreateOrder(ctx, saleRequest(rice.ID, 1))
	if err != nil {
		t.Fatalf("CreateOrder() failed: %v", err)
	}

	_, err = svc.OrderService.UpdateStatus(ctx, order.ID, models.OrderStatusProcessing)
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("UpdateStatus(processing) error = %v, want invalid transition", err)
	}

	got, err := svc.OrderService.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder() failed: %v", err)
	}
	if got.Status != models.OrderStatusPending {
		t.Errorf("Status = %s, want pending", got.Status)
	}
}

func TestOrderService_PurchaseLifecycle(t *testing.T) {
	svc, repos := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Grocery", nil)
	flour := mustCreateProduct(t, svc, category.ID, "Flour", 10, 100)
	supplier := mustCreateSupplier(t, svc, "Punjab Mills")

	order, err := svc.OrderService.CreateOrder(ctx, purchaseRequest(supplier.ID, OrderItemRequest{ProductID: flour.ID, Quantity: 5}))
	if err != nil {
		t.Fatalf("CreateOrder() failed: %v", err)
	}
	if order.Items[0].UnitPrice != 5 {
		t.Errorf("UnitPrice = %v, want cost price 5", order.Items[0].UnitPrice)
	}
	if order.Supplier == nil || order.Supplier.ID != supplier.ID {
		t.Errorf("Supplier = %+v, want %s", order.Supplier, supplier.ID)
	}
	if got := stockOf(t, repos, flour.ID); got != 15 {
		t.Errorf("stock = %d, want 15", got)
	}

	var last *models.Order
	for _, status := range []models.OrderStatus{models.OrderStatusConfirmed, models.OrderStatusProcessing, models.OrderStatusCompleted} {
		last, err = svc.OrderService.UpdateStatus(ctx, order.ID, status)
		if err != nil {
			t.Fatalf("UpdateStatus(%s) failed: %v", status, err)
		}
	}

	if last.ActualDeliveryDate == nil {
		t.Fatal("ActualDeliveryDate not set on completion")
	}

	details, err := svc.SupplierService.GetSupplier(ctx, supplier.ID)
	if err != nil {
		t.Fatalf("GetSupplier() failed: %v", err)
	}
	perf := details.Performance
	if perf.TotalOrders != 1 || perf.CompletedOrders != 1 {
		t.Errorf("performance = %+v, want one completed order", perf)
	}
	if perf.TotalPurchaseValue != 25 {
		t.Errorf("TotalPurchaseValue = %v, want 25", perf.TotalPurchaseValue)
	}
	if perf.LastOrderDate == nil {
		t.Error("LastOrderDate not set")
	}

	if _, err := svc.OrderService.CancelOrder(ctx, order.ID); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("CancelOrder() on completed error = %v, want invalid transition", err)
	}
	if _, err := svc.OrderService.UpdateStatus(ctx, order.ID, models.OrderStatusCompleted); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("UpdateStatus() on completed error = %v, want invalid transition", err)
	}
}

func TestOrderService_PurchaseRestocksOutOfStock(t *testing.T) {
	svc, repos := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Dairy", nil)
	cream := mustCreateProduct(t, svc, category.ID, "Cream", 0, 100)
	supplier := mustCreateSupplier(t, svc, "Dairy Farms")

	if _, err := svc.InventoryMonitor.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	product, err := repos.ProductRepo.GetByID(ctx, cream.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if product.Status != models.ProductStatusOutOfStock {
		t.Fatalf("Status = %s, want out_of_stock", product.Status)
	}

	if _, err := svc.OrderService.CreateOrder(ctx, saleRequest(cream.ID, 1)); !errors.Is(err, models.ErrInactiveEntity) {
		t.Errorf("CreateOrder(sale) error = %v, want inactive", err)
	}

	if _, err := svc.OrderService.CreateOrder(ctx, purchaseRequest(supplier.ID, OrderItemRequest{ProductID: cream.ID, Quantity: 8})); err != nil {
		t.Fatalf("CreateOrder(purchase) failed: %v", err)
	}
	if got := stockOf(t, repos, cream.ID); got != 8 {
		t.Errorf("stock = %d, want 8", got)
	}

	report, err := svc.InventoryMonitor.Run(ctx)
	if err != nil {
		t.Fatalf("second Run() failed: %v", err)
	}
	if report.Restocked != 1 {
		t.Errorf("Restocked = %d, want 1", report.Restocked)
	}
	if _, err := svc.OrderService.CreateOrder(ctx, saleRequest(cream.ID, 1)); err != nil {
		t.Errorf("CreateOrder(sale) after restock failed: %v", err)
	}
}

func TestOrderService_CancelReversesStock(t *testing.T) {
	svc, repos := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Grocery", nil)
	rice := mustCreateProduct(t, svc, category.ID, "Rice", 10, 100)
	supplier := mustCreateSupplier(t, svc, "Punjab Mills")

	sale, err := svc.OrderService.CreateOrder(ctx, saleRequest(rice.ID, 3))
	if err != nil {
		t.Fatalf("CreateOrder(sale) failed: %v", err)
	}
	purchase, err := svc.OrderService.CreateOrder(ctx, purchaseRequest(supplier.ID, OrderItemRequest{ProductID: rice.ID, Quantity: 4}))
	if err != nil {
		t.Fatalf("CreateOrder(purchase) failed: %v", err)
	}
	if got := stockOf(t, repos, rice.ID); got != 11 {
		t.Fatalf("stock = %d, want 11", got)
	}

	if _, err := svc.OrderService.UpdateStatus(ctx, sale.ID, models.OrderStatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus(confirmed) failed: %v", err)
	}
	cancelled, err := svc.OrderService.UpdateStatus(ctx, sale.ID, models.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("UpdateStatus(cancelled) failed: %v", err)
	}
	if cancelled.Status != models.OrderStatusCancelled {
		t.Errorf("Status = %s, want cancelled", cancelled.Status)
	}
	if got := stockOf(t, repos, rice.ID); got != 14 {
		t.Errorf("stock after sale cancel = %d, want 14", got)
	}

	if _, err := svc.OrderService.CancelOrder(ctx, purchase.ID); err != nil {
		t.Fatalf("CancelOrder(purchase) failed: %v", err)
	}
	if got := stockOf(t, repos, rice.ID); got != 10 {
		t.Errorf("stock after purchase cancel = %d, want 10", got)
	}

	if _, err := svc.OrderService.CancelOrder(ctx, purchase.ID); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("second CancelOrder() error = %v, want invalid transition", err)
	}
	if got := stockOf(t, repos, rice.ID); got != 10 {
		t.Errorf("stock after repeated cancel = %d, want 10", got)
	}
}

func TestOrderService_PartialStockApplication(t *testing.T) {
	tests := []struct {
		name       string
		compensate bool
		wantFirst  int
		wantStatus models.OrderStatus
	}{
		{name: "left applied", compensate: false, wantFirst: 15, wantStatus: models.OrderStatusPending},
		{name: "compensated", compensate: true, wantFirst: 10, wantStatus: models.OrderStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repos := setupTestServices(t, &ServiceConfig{CompensateFailedOrders: tt.compensate, ExpiryWarningDays: 7})
			ctx := context.Background()
			category := mustCreateCategory(t, svc, "Grocery", nil)
			flour := mustCreateProduct(t, svc, category.ID, "Flour", 10, 100)
			oil := mustCreateProduct(t, svc, category.ID, "Cooking Oil", 95, 100)
			supplier := mustCreateSupplier(t, svc, "Punjab Mills")

			_, err := svc.OrderService.CreateOrder(ctx, purchaseRequest(supplier.ID,
				OrderItemRequest{ProductID: flour.ID, Quantity: 5},
				OrderItemRequest{ProductID: oil.ID, Quantity: 10},
			))

			var partial *StockApplicationError
			if !errors.As(err, &partial) {
				t.Fatalf("CreateOrder() error = %v, want StockApplicationError", err)
			}
			if !errors.Is(err, models.ErrCapacity) {
				t.Errorf("error should wrap the capacity failure: %v", err)
			}
			if partial.Compensated != tt.compensate {
				t.Errorf("Compensated = %v, want %v", partial.Compensated, tt.compensate)
			}
			if len(partial.Applied) != 1 || partial.Failed.ProductID != oil.ID {
				t.Errorf("Applied = %+v Failed = %+v", partial.Applied, partial.Failed)
			}

			if got := stockOf(t, repos, flour.ID); got != tt.wantFirst {
				t.Errorf("first product stock = %d, want %d", got, tt.wantFirst)
			}
			if got := stockOf(t, repos, oil.ID); got != 95 {
				t.Errorf("second product stock = %d, want 95", got)
			}

			order, err := svc.OrderService.GetOrder(ctx, partial.OrderID)
			if err != nil {
				t.Fatalf("GetOrder() failed: %v", err)
			}
			if order.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", order.Status, tt.wantStatus)
			}
		})
	}
}

func TestOrderService_PaymentAndRevenue(t *testing.T) {
	svc, _ := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Grocery", nil)
	rice := mustCreateProduct(t, svc, category.ID, "Rice", 50, 100)

	paid, err := svc.OrderService.CreateOrder(ctx, saleRequest(rice.ID, 2))
	if err != nil {
		t.Fatalf("CreateOrder() failed: %v", err)
	}
	if _, err := svc.OrderService.CreateOrder(ctx, saleRequest(rice.ID, 1)); err != nil {
		t.Fatalf("CreateOrder() failed: %v", err)
	}

	if _, err := svc.OrderService.UpdatePaymentStatus(ctx, paid.ID, "bogus"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("UpdatePaymentStatus(bogus) error = %v, want validation", err)
	}
	if _, err := svc.OrderService.UpdatePaymentStatus(ctx, paid.ID, "paid"); err != nil {
		t.Fatalf("UpdatePaymentStatus(paid) failed: %v", err)
	}

	now := time.Now().UTC()
	summary, err := svc.OrderService.GetRevenue(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetRevenue() failed: %v", err)
	}
	if summary.OrderCount != 1 || summary.TotalRevenue != 20 {
		t.Errorf("revenue = %+v, want one order worth 20", summary)
	}

	if _, err := svc.OrderService.GetRevenue(ctx, now, now.Add(-time.Hour)); !errors.Is(err, models.ErrValidation) {
		t.Errorf("GetRevenue() reversed range error = %v, want validation", err)
	}
}

func TestOrderService_GetOrdersBySupplier(t *testing.T) {
	svc, _ := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Grocery", nil)
	rice := mustCreateProduct(t, svc, category.ID, "Rice", 10, 100)
	mills := mustCreateSupplier(t, svc, "Punjab Mills")
	other := mustCreateSupplier(t, svc, "Sindh Traders")

	for _, supplier := range []*models.Supplier{mills, mills, other} {
		if _, err := svc.OrderService.CreateOrder(ctx, purchaseRequest(supplier.ID, OrderItemRequest{ProductID: rice.ID, Quantity: 1})); err != nil {
			t.Fatalf("CreateOrder() failed: %v", err)
		}
	}

	page, err := svc.OrderService.GetOrdersBySupplier(ctx, mills.ID, "", models.PageRequest{})
	if err != nil {
		t.Fatalf("GetOrdersBySupplier() failed: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Total = %d, want 2", page.Total)
	}

	if _, err := svc.OrderService.GetOrdersBySupplier(ctx, "", "", models.PageRequest{}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("GetOrdersBySupplier(blank) error = %v, want validation", err)
	}
}
