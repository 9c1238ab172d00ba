package services

import (
	"context"
	"errors"
	"testing"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"
)

func TestProductService_CreateProduct(t *testing.T) {
	svc, _ := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Beverages", nil)

	created, err := svc.ProductService.CreateProduct(ctx, &CreateProductRequest{
		Name:         "  Green Tea  ",
		CategoryID:   category.ID,
		Brand:        "Tapal",
		CostPrice:    100,
		SellingPrice: 150,
		CurrentStock: 5,
		Unit:         "box",
	})
	if err != nil {
		t.Fatalf("CreateProduct() failed: %v", err)
	}

	p := created.Product
	if p.Name != "Green Tea" {
		t.Errorf("Name = %q, want trimmed", p.Name)
	}
	if p.SKU == "" {
		t.Error("SKU not generated")
	}
	if p.TaxRate != category.TaxRate {
		t.Errorf("TaxRate = %v, want inherited %v", p.TaxRate, category.TaxRate)
	}
	if p.Status != models.ProductStatusActive {
		t.Errorf("Status = %s, want active", p.Status)
	}

	details, err := svc.ProductService.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProduct() failed: %v", err)
	}
	if details.ProfitAmount != 0 {
		t.Errorf("ProfitAmount = %v, want 0 before any sale", details.ProfitAmount)
	}
	if details.ProfitMargin != 50 {
		t.Errorf("ProfitMargin = %v, want 50", details.ProfitMargin)
	}
	if !details.IsValidForSale {
		t.Error("IsValidForSale = false, want true")
	}
}

func TestProductService_CreateProductRejections(t *testing.T) {
	svc, _ := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Beverages", nil)
	mustCreateProduct(t, svc, category.ID, "Green Tea", 5, 100)
	missing := "4f6a2c1e-0000-4000-8000-000000000002"

	tests := []struct {
		name string
		req  *CreateProductRequest
		want error
	}{
		{
			name: "duplicate name",
			req:  &CreateProductRequest{Name: "Green Tea", CategoryID: category.ID, CostPrice: 1, SellingPrice: 2},
			want: models.ErrConflict,
		},
		{
			name: "unknown category",
			req:  &CreateProductRequest{Name: "Black Tea", CategoryID: missing, CostPrice: 1, SellingPrice: 2},
			want: models.ErrReference,
		},
		{
			name: "unknown supplier",
			req:  &CreateProductRequest{Name: "Black Tea", CategoryID: category.ID, CostPrice: 1, SellingPrice: 2, SupplierID: &missing},
			want: models.ErrReference,
		},
		{
			name: "selling below cost",
			req:  &CreateProductRequest{Name: "Black Tea", CategoryID: category.ID, CostPrice: 5, SellingPrice: 2},
			want: models.ErrValidation,
		},
		{
			name: "missing category",
			req:  &CreateProductRequest{Name: "Black Tea", CostPrice: 1, SellingPrice: 2},
			want: models.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ProductService.CreateProduct(ctx, tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("CreateProduct() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestProductService_StockOperations(t *testing.T) {
	svc, _ := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Beverages", nil)
	tea := mustCreateProduct(t, svc, category.ID, "Green Tea", 5, 20)

	updated, err := svc.ProductService.UpdateStock(ctx, tea.ID, 10)
	if err != nil {
		t.Fatalf("UpdateStock(+10) failed: %v", err)
	}
	if updated.CurrentStock != 15 {
		t.Errorf("stock = %d, want 15", updated.CurrentStock)
	}

	if _, err := svc.ProductService.UpdateStock(ctx, tea.ID, 10); !errors.Is(err, models.ErrCapacity) {
		t.Errorf("UpdateStock() over max error = %v, want capacity", err)
	}

	if _, err := svc.ProductService.UpdateStock(ctx, "4f6a2c1e-0000-4000-8000-000000000003", 1); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("UpdateStock() unknown error = %v, want not found", err)
	}

	minLevel, maxLevel := 30, 50
	levels, err := svc.ProductService.SetStockLevels(ctx, tea.ID, &StockLevelsRequest{MinStockLevel: &minLevel, MaxStockLevel: &maxLevel})
	if err != nil {
		t.Fatalf("SetStockLevels() failed: %v", err)
	}
	if levels.MinStockLevel != 30 || levels.MaxStockLevel != 50 {
		t.Errorf("levels = %d/%d, want 30/50", levels.MinStockLevel, levels.MaxStockLevel)
	}

	low, err := svc.ProductService.GetLowStockProducts(ctx, models.PageRequest{})
	if err != nil {
		t.Fatalf("GetLowStockProducts() failed: %v", err)
	}
	if low.Total != 1 {
		t.Errorf("low stock = %d, want 1", low.Total)
	}

	if _, err := svc.ProductService.ToggleStatus(ctx, tea.ID, "archive"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("ToggleStatus(archive) error = %v, want validation", err)
	}
	toggled, err := svc.ProductService.ToggleStatus(ctx, tea.ID, "deactivate")
	if err != nil {
		t.Fatalf("ToggleStatus(deactivate) failed: %v", err)
	}
	if toggled.Status != models.ProductStatusInactive {
		t.Errorf("Status = %s, want inactive", toggled.Status)
	}
}

func TestProductService_ListingAndOverview(t *testing.T) {
	svc, _ := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Beverages", nil)
	mustCreateProduct(t, svc, category.ID, "Green Tea", 50, 100)
	mustCreateProduct(t, svc, category.ID, "Black Tea", 1, 100)
	empty := mustCreateProduct(t, svc, category.ID, "White Tea", 0, 100)
	hidden := mustCreateProduct(t, svc, category.ID, "Oolong Tea", 10, 100)
	if _, err := svc.ProductService.ToggleStatus(ctx, hidden.ID, "deactivate"); err != nil {
		t.Fatalf("ToggleStatus() failed: %v", err)
	}

	active, err := svc.ProductService.ListProducts(ctx, nil)
	if err != nil {
		t.Fatalf("ListProducts() failed: %v", err)
	}
	if active.Total != 3 {
		t.Errorf("active products = %d, want 3", active.Total)
	}

	all, err := svc.ProductService.ListProducts(ctx, &ProductFilters{Status: ProductStatusAll})
	if err != nil {
		t.Fatalf("ListProducts(all) failed: %v", err)
	}
	if all.Total != 4 {
		t.Errorf("all products = %d, want 4", all.Total)
	}

	overview, err := svc.ProductService.GetInventoryOverview(ctx, BucketOut, models.PageRequest{})
	if err != nil {
		t.Fatalf("GetInventoryOverview() failed: %v", err)
	}
	if len(overview.Products) != 1 || overview.Products[0].ID != empty.ID {
		t.Errorf("out of stock bucket = %+v, want only %s", overview.Products, empty.Name)
	}

	statuses, err := svc.ProductService.GetActiveAndInactive(ctx)
	if err != nil {
		t.Fatalf("GetActiveAndInactive() failed: %v", err)
	}
	if len(statuses.Products.Inactive) != 1 {
		t.Errorf("inactive = %d, want 1", len(statuses.Products.Inactive))
	}

	if _, err := svc.ProductService.GetProductsByBrand(ctx, "Nobody"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetProductsByBrand() error = %v, want not found", err)
	}
}

func TestCategoryService_Cascades(t *testing.T) {
	svc, repos := setupTestServices(t, nil)
	ctx := context.Background()
	root := mustCreateCategory(t, svc, "Food", nil)
	child := mustCreateCategory(t, svc, "Snacks", &root.ID)
	chips := mustCreateProduct(t, svc, child.ID, "Chips", 10, 100)

	if child.Slug != "snacks" {
		t.Errorf("Slug = %q, want snacks", child.Slug)
	}

	cascade, err := svc.CategoryService.UpdateTaxRate(ctx, child.ID, 17)
	if err != nil {
		t.Fatalf("UpdateTaxRate() failed: %v", err)
	}
	if cascade.UpdatedProducts != 1 {
		t.Errorf("UpdatedProducts = %d, want 1", cascade.UpdatedProducts)
	}

	cascade, err = svc.CategoryService.Deactivate(ctx, child.ID)
	if err != nil {
		t.Fatalf("Deactivate() failed: %v", err)
	}
	if cascade.Category.IsActive {
		t.Error("category still active")
	}

	product, err := repos.ProductRepo.GetByID(ctx, chips.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if product.TaxRate != 17 || product.Status != models.ProductStatusInactive {
		t.Errorf("product = tax %v status %s, want 17 inactive", product.TaxRate, product.Status)
	}

	if _, err := svc.CategoryService.Activate(ctx, child.ID); err != nil {
		t.Fatalf("Activate() failed: %v", err)
	}

	tree, err := svc.CategoryService.GetHierarchy(ctx)
	if err != nil {
		t.Fatalf("GetHierarchy() failed: %v", err)
	}
	if len(tree) != 1 || len(tree[0].Children) != 1 {
		t.Errorf("hierarchy = %+v, want one root with one child", tree)
	}

	if err := svc.CategoryService.DeleteCategory(ctx, root.ID); !errors.Is(err, models.ErrConflict) {
		t.Errorf("DeleteCategory(parent) error = %v, want conflict", err)
	}
	if err := svc.CategoryService.DeleteCategory(ctx, child.ID); !repositories.IsDuplicate(err) {
		t.Errorf("DeleteCategory(with products) error = %v, want constraint conflict", err)
	}
}

func TestCategoryService_Conflicts(t *testing.T) {
	svc, _ := setupTestServices(t, nil)
	ctx := context.Background()
	food := mustCreateCategory(t, svc, "Food", nil)

	if _, err := svc.CategoryService.CreateCategory(ctx, &CreateCategoryRequest{Name: "Food"}); !errors.Is(err, models.ErrConflict) {
		t.Errorf("CreateCategory(duplicate) error = %v, want conflict", err)
	}

	missing := "4f6a2c1e-0000-4000-8000-000000000004"
	if _, err := svc.CategoryService.CreateCategory(ctx, &CreateCategoryRequest{Name: "Drinks", ParentID: &missing}); !errors.Is(err, models.ErrReference) {
		t.Errorf("CreateCategory(unknown parent) error = %v, want reference", err)
	}

	if _, err := svc.CategoryService.UpdateCategory(ctx, food.ID, &UpdateCategoryRequest{ParentID: &food.ID}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("UpdateCategory(self parent) error = %v, want validation", err)
	}

	name := "Fresh Food"
	updated, err := svc.CategoryService.UpdateCategory(ctx, food.ID, &UpdateCategoryRequest{Name: &name})
	if err != nil {
		t.Fatalf("UpdateCategory() failed: %v", err)
	}
	if updated.Slug != "fresh-food" {
		t.Errorf("Slug = %q, want fresh-food", updated.Slug)
	}
}

func TestSupplierService_CreateAndToggle(t *testing.T) {
	svc, _ := setupTestServices(t, nil)
	ctx := context.Background()
	email := "Sales@PunjabMills.pk"

	supplier, err := svc.SupplierService.CreateSupplier(ctx, &CreateSupplierRequest{
		Name:         "Punjab Mills",
		Phone:        "+92 300 1234567",
		Email:        &email,
		BusinessType: "Manufacturer",
		Address:      &AddressRequest{City: "Lahore"},
		Categories:   []string{" flour ", ""},
	})
	if err != nil {
		t.Fatalf("CreateSupplier() failed: %v", err)
	}
	if supplier.Address.Country != models.DefaultCountry {
		t.Errorf("Country = %q, want default", supplier.Address.Country)
	}
	if len(supplier.Categories) != 1 || supplier.Categories[0] != "flour" {
		t.Errorf("Categories = %v, want [flour]", supplier.Categories)
	}

	_, err = svc.SupplierService.CreateSupplier(ctx, &CreateSupplierRequest{Name: "Punjab Mills", Phone: "1"})
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("CreateSupplier(duplicate name) error = %v, want conflict", err)
	}
	_, err = svc.SupplierService.CreateSupplier(ctx, &CreateSupplierRequest{Name: "Other Mills", Phone: "1", Email: &email})
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("CreateSupplier(duplicate email) error = %v, want conflict", err)
	}
	_, err = svc.SupplierService.CreateSupplier(ctx, &CreateSupplierRequest{Name: "Odd Mills", Phone: "1", BusinessType: "Pirate"})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("CreateSupplier(bad type) error = %v, want validation", err)
	}

	toggled, err := svc.SupplierService.ToggleStatus(ctx, supplier.ID)
	if err != nil {
		t.Fatalf("ToggleStatus() failed: %v", err)
	}
	if toggled.IsActive {
		t.Error("supplier still active after toggle")
	}

	details, err := svc.SupplierService.GetSupplier(ctx, supplier.ID)
	if err != nil {
		t.Fatalf("GetSupplier() failed: %v", err)
	}
	if details.Status != models.SupplierStatusInactive {
		t.Errorf("Status = %q, want %q", details.Status, models.SupplierStatusInactive)
	}
}

func TestSupplierService_OptionalEmail(t *testing.T) {
	svc, _ := setupTestServices(t, nil)
	ctx := context.Background()
	blank := ""

	supplier, err := svc.SupplierService.CreateSupplier(ctx, &CreateSupplierRequest{
		Name:  "Beta Traders",
		Phone: "+92 300 7654321",
		Email: &blank,
	})
	if err != nil {
		t.Fatalf("CreateSupplier(blank email) failed: %v", err)
	}
	if supplier.Email != nil {
		t.Errorf("Email = %q, want nil", *supplier.Email)
	}

	email := "orders@beta.pk"
	updated, err := svc.SupplierService.UpdateSupplier(ctx, supplier.ID, &UpdateSupplierRequest{Email: &email})
	if err != nil {
		t.Fatalf("UpdateSupplier(email) failed: %v", err)
	}
	if updated.Email == nil || *updated.Email != email {
		t.Errorf("Email = %v, want %q", updated.Email, email)
	}

	updated, err = svc.SupplierService.UpdateSupplier(ctx, supplier.ID, &UpdateSupplierRequest{Email: &blank})
	if err != nil {
		t.Fatalf("UpdateSupplier(blank email) failed: %v", err)
	}
	if updated.Email != nil {
		t.Errorf("Email = %q after clearing, want nil", *updated.Email)
	}

	bad := "not-an-email"
	_, err = svc.SupplierService.UpdateSupplier(ctx, supplier.ID, &UpdateSupplierRequest{Email: &bad})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("UpdateSupplier(bad email) error = %v, want validation", err)
	}
}

func TestSupplierService_InactiveSupplierRejectsPurchase(t *testing.T) {
	svc, _ := setupTestServices(t, nil)
	ctx := context.Background()
	category := mustCreateCategory(t, svc, "Grocery", nil)
	rice := mustCreateProduct(t, svc, category.ID, "Rice", 10, 100)
	supplier := mustCreateSupplier(t, svc, "Punjab Mills")

	if _, err := svc.SupplierService.ToggleStatus(ctx, supplier.ID); err != nil {
		t.Fatalf("ToggleStatus() failed: %v", err)
	}

	_, err := svc.OrderService.CreateOrder(ctx, purchaseRequest(supplier.ID, OrderItemRequest{ProductID: rice.ID, Quantity: 1}))
	if !errors.Is(err, models.ErrInactiveEntity) {
		t.Errorf("CreateOrder() error = %v, want inactive", err)
	}
}
