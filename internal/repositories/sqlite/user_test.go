package sqlite

import (
	"context"
	"errors"
	"testing"

	"inventory-api/internal/models"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db, testLogger())

	user := models.NewUser("Owner@Shop.PK", "owner", "Shop Owner")
	user.PasswordHash = "hash"
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	byEmail, err := repo.GetByIdentifier(ctx, "OWNER@shop.pk")
	if err != nil || byEmail.ID != user.ID {
		t.Errorf("GetByIdentifier(email) = %v, %v", byEmail, err)
	}

	byUsername, err := repo.GetByIdentifier(ctx, "owner")
	if err != nil || byUsername.ID != user.ID {
		t.Errorf("GetByIdentifier(username) = %v, %v", byUsername, err)
	}

	if _, err := repo.GetByIdentifier(ctx, "nobody"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetByIdentifier(unknown) error = %v, want not found", err)
	}

	taken, err := repo.ExistsByEmailOrUsername(ctx, "other@shop.pk", "owner")
	if err != nil || !taken {
		t.Errorf("ExistsByEmailOrUsername() = %v, %v, want true", taken, err)
	}

	dup := models.NewUser("owner@shop.pk", "second", "Second")
	dup.PasswordHash = "hash"
	if err := repo.Create(ctx, dup); !errors.Is(err, models.ErrConflict) {
		t.Errorf("Create() duplicate error = %v, want conflict", err)
	}
}

func TestUserRepository_UpdateRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db, testLogger())

	user := models.NewUser("owner@shop.pk", "owner", "Shop Owner")
	user.PasswordHash = "hash"
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	token := "refresh-token"
	user.RefreshToken = &token
	user.RecordLogin(models.Now())
	if err := repo.Update(ctx, user); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.RefreshToken == nil || *got.RefreshToken != token {
		t.Errorf("RefreshToken = %v, want %s", got.RefreshToken, token)
	}
	if got.LastLogin == nil {
		t.Error("LastLogin should be set")
	}
}
