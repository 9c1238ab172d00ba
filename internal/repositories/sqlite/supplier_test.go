package sqlite

import (
	"context"
	"errors"
	"testing"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"
)

func TestSupplierRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewSupplierRepository(db, testLogger())

	supplier := models.NewSupplier("Acme Traders", "+92 300 1234567")
	supplier.SetEmail("sales@acme.pk")
	supplier.Categories = []string{"grocery", "dairy"}
	supplier.Address.City = "Lahore"

	if err := repo.Create(ctx, supplier); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	got, err := repo.GetByID(ctx, supplier.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Email == nil || *got.Email != "sales@acme.pk" {
		t.Errorf("Email = %v, want sales@acme.pk", got.Email)
	}
	if len(got.Categories) != 2 || got.Categories[1] != "dairy" {
		t.Errorf("Categories = %v", got.Categories)
	}
	if got.Address.Country != models.DefaultCountry || got.Address.City != "Lahore" {
		t.Errorf("Address = %+v", got.Address)
	}
	if !got.IsActive {
		t.Error("new supplier should be active")
	}
}

func TestSupplierRepository_Duplicates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewSupplierRepository(db, testLogger())
	existing := createTestSupplier(t, db, "Acme Traders")

	dup := models.NewSupplier("Acme Traders", "+92 300 7654321")
	if err := repo.Create(ctx, dup); !errors.Is(err, models.ErrConflict) {
		t.Errorf("Create() duplicate error = %v, want conflict", err)
	}

	exists, err := repo.ExistsByName(ctx, "acme traders", "")
	if err != nil || !exists {
		t.Errorf("ExistsByName() = %v, %v, want true", exists, err)
	}
	exists, err = repo.ExistsByName(ctx, "Acme Traders", existing.ID)
	if err != nil || exists {
		t.Errorf("ExistsByName(excluding self) = %v, %v, want false", exists, err)
	}
	exists, err = repo.ExistsByEmail(ctx, "", "")
	if err != nil || exists {
		t.Errorf("ExistsByEmail(empty) = %v, %v, want false", exists, err)
	}
}

func TestSupplierRepository_UpdatePerformance(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewSupplierRepository(db, testLogger())
	supplier := createTestSupplier(t, db, "Acme Traders")

	days := 3
	supplier.UpdatePerformance(true, 1500, &days, models.Now())
	if err := repo.UpdatePerformance(ctx, supplier.ID, supplier.Performance); err != nil {
		t.Fatalf("UpdatePerformance() failed: %v", err)
	}

	got, err := repo.GetByID(ctx, supplier.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	perf := got.Performance
	if perf.TotalOrders != 1 || perf.CompletedOrders != 1 || perf.TotalPurchaseValue != 1500 || perf.AvgDeliveryDays != 3 {
		t.Errorf("Performance = %+v", perf)
	}
	if perf.LastOrderDate == nil {
		t.Error("LastOrderDate should be set")
	}

	if err := repo.UpdatePerformance(ctx, "missing", perf); !repositories.IsNotFound(err) {
		t.Errorf("UpdatePerformance(missing) error = %v, want not found", err)
	}
}

func TestSupplierRepository_List(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewSupplierRepository(db, testLogger())

	createTestSupplier(t, db, "Acme Traders")
	inactive := createTestSupplier(t, db, "Zed Foods")
	inactive.IsActive = false
	inactive.BusinessType = models.BusinessTypeDistributor
	if err := repo.Update(ctx, inactive); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	active := true
	suppliers, total, err := repo.List(ctx, repositories.SupplierFilter{IsActive: &active})
	if err != nil || total != 1 || suppliers[0].Name != "Acme Traders" {
		t.Errorf("List(active) = %v, %d, %v", suppliers, total, err)
	}

	suppliers, total, err = repo.List(ctx, repositories.SupplierFilter{BusinessType: "Distributor"})
	if err != nil || total != 1 || suppliers[0].ID != inactive.ID {
		t.Errorf("List(business type) = %v, %d, %v", suppliers, total, err)
	}

	suppliers, total, err = repo.List(ctx, repositories.SupplierFilter{Search: "zed"})
	if err != nil || total != 1 {
		t.Errorf("List(search) = %v, %d, %v", suppliers, total, err)
	}
}

func TestSupplierRepository_DeleteReferenced(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	category := createTestCategory(t, db, "Grocery")
	rice := createTestProduct(t, db, category.ID, "Rice", 10, 100)
	supplier := createTestSupplier(t, db, "Acme Traders")

	purchase := models.NewOrder(models.OrderTypePurchase)
	purchase.SupplierID = &supplier.ID
	purchase.AddItem(models.NewOrderItem(purchase.ID, rice, 5, rice.CostPrice))
	purchase.CalculateTotals()
	if err := NewOrderRepository(db, testLogger()).Create(ctx, purchase); err != nil {
		t.Fatalf("Create(order) failed: %v", err)
	}

	err := NewSupplierRepository(db, testLogger()).Delete(ctx, supplier.ID)
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("Delete() referenced supplier error = %v, want conflict", err)
	}
}
