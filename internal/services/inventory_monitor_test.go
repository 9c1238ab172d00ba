package services

import (
	"context"
	"testing"
	"time"

	"inventory-api/internal/models"
)

func TestInventoryMonitor_Run(t *testing.T) {
	svc, repos := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Dairy", nil)

	mustCreateProduct(t, svc, category.ID, "Butter", 50, 100)
	low := mustCreateProduct(t, svc, category.ID, "Cheese", 1, 100)
	empty := mustCreateProduct(t, svc, category.ID, "Cream", 0, 100)

	expiry := time.Now().UTC().Add(72 * time.Hour)
	if _, err := svc.ProductService.UpdateProduct(ctx, low.ID, &UpdateProductRequest{ExpiryDate: &expiry}); err != nil {
		t.Fatalf("UpdateProduct() failed: %v", err)
	}

	monitor := svc.InventoryMonitor
	report, err := monitor.Run(ctx)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(report.LowStock) != 1 || report.LowStock[0].ID != low.ID {
		t.Errorf("LowStock = %+v, want %s", report.LowStock, low.Name)
	}
	if len(report.OutOfStock) != 1 || report.OutOfStock[0].ID != empty.ID {
		t.Errorf("OutOfStock = %+v, want %s", report.OutOfStock, empty.Name)
	}
	if len(report.Expiring) != 1 || report.Expiring[0].ID != low.ID {
		t.Errorf("Expiring = %+v, want %s", report.Expiring, low.Name)
	}
	if report.MarkedOutOfStock != 1 {
		t.Errorf("MarkedOutOfStock = %d, want 1", report.MarkedOutOfStock)
	}

	product, err := repos.ProductRepo.GetByID(ctx, empty.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if product.Status != models.ProductStatusOutOfStock {
		t.Errorf("Status = %s, want out_of_stock", product.Status)
	}

	if _, err := repos.ProductRepo.AdjustStock(ctx, empty.ID, 5); err != nil {
		t.Fatalf("AdjustStock() failed: %v", err)
	}

	report, err = monitor.Run(ctx)
	if err != nil {
		t.Fatalf("second Run() failed: %v", err)
	}
	if report.Restocked != 1 {
		t.Errorf("Restocked = %d, want 1", report.Restocked)
	}

	product, err = repos.ProductRepo.GetByID(ctx, empty.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if product.Status != models.ProductStatusActive {
		t.Errorf("Status = %s, want active", product.Status)
	}
}

func TestInventoryMonitor_StartStop(t *testing.T) {
	svc, _ := setupTestServices(t, &ServiceConfig{MonitorSchedule: "@every 1h", ExpiryWarningDays: 7})

	if err := svc.InventoryMonitor.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := svc.InventoryMonitor.Start(); err != nil {
		t.Fatalf("second Start() failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	bad, _ := setupTestServices(t, &ServiceConfig{MonitorSchedule: "not a schedule"})
	if err := bad.InventoryMonitor.Start(); err == nil {
		t.Error("Start() with invalid schedule should fail")
	}
}
