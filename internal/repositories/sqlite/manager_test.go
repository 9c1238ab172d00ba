package sqlite

import (
	"context"
	"errors"
	"testing"

	"inventory-api/internal/repositories"
)

func TestSQLiteRepositoryManager_Container(t *testing.T) {
	db := setupTestDB(t)
	manager := NewSQLiteRepositoryManager(db, testLogger())

	if err := manager.Repositories().Validate(); err != nil {
		t.Errorf("Repositories().Validate() failed: %v", err)
	}
	if err := manager.Health(context.Background()); err != nil {
		t.Errorf("Health() failed: %v", err)
	}
}

func TestSQLiteRepositoryManager_WithTransactionRollsBack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	manager := NewSQLiteRepositoryManager(db, testLogger())
	repos := manager.Repositories()
	category := createTestCategory(t, db, "Grocery")
	product := createTestProduct(t, db, category.ID, "Rice", 10, 100)

	errBoom := errors.New("boom")
	err := manager.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := repos.ProductRepo.AdjustStock(ctx, product.ID, 5); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("WithTransaction() error = %v, want boom", err)
	}

	got, err := repos.ProductRepo.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.CurrentStock != 10 {
		t.Errorf("stock after rollback = %d, want 10", got.CurrentStock)
	}

	err = manager.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := repos.ProductRepo.AdjustStock(ctx, product.ID, 5)
		return err
	})
	if err != nil {
		t.Fatalf("WithTransaction() commit failed: %v", err)
	}
	got, _ = repos.ProductRepo.GetByID(ctx, product.ID)
	if got.CurrentStock != 15 {
		t.Errorf("stock after commit = %d, want 15", got.CurrentStock)
	}
}

func TestBaseRepository_ClosedDatabaseIsConnectionError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db, testLogger())
	db.Close()

	_, _, err := repo.List(context.Background(), repositories.CategoryFilter{})
	if !repositories.IsConnection(err) {
		t.Errorf("List() on a closed database error = %v, want connection error", err)
	}

	manager := NewSQLiteRepositoryManager(db, testLogger())
	if err := manager.Health(context.Background()); !repositories.IsConnection(err) {
		t.Errorf("Health() error = %v, want connection error", err)
	}
}
