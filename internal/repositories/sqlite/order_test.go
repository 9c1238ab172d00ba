package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"
)

func newTestSaleOrder(product *models.Product, quantity int) *models.Order {
	order := models.NewOrder(models.OrderTypeSale)
	order.OrderNumber = "SO-" + order.ID[:8]
	order.Customer = &models.Customer{Name: "Ali", Phone: "03001234567"}
	order.AddItem(models.NewOrderItem(order.ID, product, quantity, product.SellingPrice))
	order.CalculateTotals()
	return order
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	category := createTestCategory(t, db, "Grocery")
	rice := createTestProduct(t, db, category.ID, "Rice", 10, 100)
	beans := createTestProduct(t, db, category.ID, "Beans", 10, 100)
	repo := NewOrderRepository(db, testLogger())

	order := newTestSaleOrder(rice, 2)
	order.AddItem(models.NewOrderItem(order.ID, beans, 1, beans.SellingPrice))
	order.CalculateTotals()

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	got, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("GetByID() items = %d, want 2", len(got.Items))
	}
	if got.Items[0].ProductName != "Rice" || got.Items[1].ProductName != "Beans" {
		t.Errorf("items out of order: %s, %s", got.Items[0].ProductName, got.Items[1].ProductName)
	}
	if got.TotalAmount != 45 {
		t.Errorf("TotalAmount = %v, want 45", got.TotalAmount)
	}
	if got.Customer == nil || got.Customer.Name != "Ali" {
		t.Errorf("Customer = %+v, want Ali", got.Customer)
	}
	if got.Status != models.OrderStatusPending || got.PaymentStatus != models.PaymentStatusUnpaid {
		t.Errorf("status = %s/%s, want pending/unpaid", got.Status, got.PaymentStatus)
	}
}

func TestOrderRepository_DuplicateOrderNumber(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	category := createTestCategory(t, db, "Grocery")
	rice := createTestProduct(t, db, category.ID, "Rice", 10, 100)
	repo := NewOrderRepository(db, testLogger())

	first := newTestSaleOrder(rice, 1)
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	second := newTestSaleOrder(rice, 1)
	second.OrderNumber = first.OrderNumber
	if err := repo.Create(ctx, second); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("Create() duplicate number error = %v, want conflict", err)
	}

	exists, err := repo.Exists(ctx, second.ID)
	if err != nil {
		t.Fatalf("Exists() failed: %v", err)
	}
	if exists {
		t.Error("failed order row should have been rolled back")
	}
	if exists, _ := repo.Exists(ctx, first.ID); !exists {
		t.Error("Exists() = false for the stored order")
	}
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	category := createTestCategory(t, db, "Grocery")
	rice := createTestProduct(t, db, category.ID, "Rice", 10, 100)
	repo := NewOrderRepository(db, testLogger())

	order := newTestSaleOrder(rice, 1)
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	now := models.Now()
	for _, status := range []models.OrderStatus{models.OrderStatusConfirmed, models.OrderStatusProcessing, models.OrderStatusCompleted} {
		next, err := models.ApplyStatus(*order, status, now)
		if err != nil {
			t.Fatalf("ApplyStatus(%s) failed: %v", status, err)
		}
		order = &next
	}
	order.PaymentStatus = models.PaymentStatusPaid

	if err := repo.Update(ctx, order); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	got, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Status != models.OrderStatusCompleted || got.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("status = %s/%s, want completed/paid", got.Status, got.PaymentStatus)
	}
	if got.ActualDeliveryDate == nil {
		t.Error("ActualDeliveryDate should be persisted")
	}
}

func TestOrderRepository_ListAndRevenue(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	category := createTestCategory(t, db, "Grocery")
	rice := createTestProduct(t, db, category.ID, "Rice", 10, 100)
	supplier := createTestSupplier(t, db, "Acme Traders")
	repo := NewOrderRepository(db, testLogger())

	paid := newTestSaleOrder(rice, 2)
	paid.PaymentStatus = models.PaymentStatusPaid
	partial := newTestSaleOrder(rice, 1)
	partial.PaymentStatus = models.PaymentStatusPartial
	unpaid := newTestSaleOrder(rice, 4)
	cancelled := newTestSaleOrder(rice, 3)
	cancelled.PaymentStatus = models.PaymentStatusPaid
	cancelled.Status = models.OrderStatusCancelled

	purchase := models.NewOrder(models.OrderTypePurchase)
	purchase.OrderNumber = "PO-" + purchase.ID[:8]
	purchase.SupplierID = &supplier.ID
	purchase.AddItem(models.NewOrderItem(purchase.ID, rice, 5, rice.CostPrice))
	purchase.CalculateTotals()
	purchase.PaymentStatus = models.PaymentStatusPaid

	for _, o := range []*models.Order{paid, partial, unpaid, cancelled, purchase} {
		if err := repo.Create(ctx, o); err != nil {
			t.Fatalf("Create(%s) failed: %v", o.OrderNumber, err)
		}
	}

	orders, total, err := repo.List(ctx, repositories.OrderFilter{OrderType: models.OrderTypeSale})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if total != 4 || len(orders) != 4 {
		t.Errorf("List(sale) = %d/%d, want 4", len(orders), total)
	}
	for _, o := range orders {
		if len(o.Items) != 1 {
			t.Errorf("order %s has %d items, want 1", o.OrderNumber, len(o.Items))
		}
	}

	orders, total, err = repo.List(ctx, repositories.OrderFilter{
		OrderType:  models.OrderTypePurchase,
		SupplierID: supplier.ID,
	})
	if err != nil || total != 1 || orders[0].ID != purchase.ID {
		t.Errorf("List(supplier) = %v, %d, %v", orders, total, err)
	}

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	revenue, err := repo.GetRevenue(ctx, start, end)
	if err != nil {
		t.Fatalf("GetRevenue() failed: %v", err)
	}
	if revenue.TotalRevenue != 45 || revenue.OrderCount != 2 {
		t.Errorf("GetRevenue() = %v over %d orders, want 45 over 2", revenue.TotalRevenue, revenue.OrderCount)
	}

	empty, err := repo.GetRevenue(ctx, end, end.Add(time.Hour))
	if err != nil || empty.TotalRevenue != 0 || empty.OrderCount != 0 {
		t.Errorf("GetRevenue(future) = %+v, %v", empty, err)
	}
}
