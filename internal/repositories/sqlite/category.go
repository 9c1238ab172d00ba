package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

const categoryColumns = `id, name, description, slug, parent_id, is_active, image, tax_rate, created_at, updated_at`

// CategoryRepository implements the CategoryRepository interface for SQLite
type CategoryRepository struct {
	*BaseRepository[models.Category]
}

// NewCategoryRepository creates a new SQLite category repository
func NewCategoryRepository(db *sql.DB, logger *logrus.Logger) repositories.CategoryRepository {
	return &CategoryRepository{
		BaseRepository: NewBaseRepository[models.Category](db, "categories", "category", logger),
	}
}

func scanCategory(s scanner) (*models.Category, error) {
	var (
		category    models.Category
		description sql.NullString
		parentID    sql.NullString
		image       sql.NullString
	)

	err := s.Scan(
		&category.ID,
		&category.Name,
		&description,
		&category.Slug,
		&parentID,
		&category.IsActive,
		&image,
		&category.TaxRate,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	category.Description = stringPtr(description)
	category.ParentID = stringPtr(parentID)
	category.Image = stringPtr(image)
	category.CreatedAt = category.CreatedAt.UTC()
	category.UpdatedAt = category.UpdatedAt.UTC()

	return &category, nil
}

func (r *CategoryRepository) queryCategories(ctx context.Context, operation, query string, args ...interface{}) ([]*models.Category, error) {
	rows, err := r.executeQuery(ctx, operation, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError(operation, "category", "", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError(operation, "category", "", err)
	}

	return categories, nil
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := category.Validate(); err != nil {
		return repositories.ValidationError("category", category.ID, err)
	}

	query := `INSERT INTO categories (` + categoryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		category.ID,
		category.Name,
		nullableString(category.Description),
		category.Slug,
		nullableString(category.ParentID),
		category.IsActive,
		nullableString(category.Image),
		category.TaxRate,
		category.CreatedAt,
		category.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			column := uniqueColumn(err)
			value := category.Name
			if column == "slug" {
				value = category.Slug
			}
			return repositories.DuplicateError("category", column, value)
		}
		return err
	}

	return nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

	category, err := scanCategory(r.executeQueryRow(ctx, "get_by_id", query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("category", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "category", id, err)
	}

	return category, nil
}

// Update updates an existing category
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	if err := category.Validate(); err != nil {
		return repositories.ValidationError("category", category.ID, err)
	}

	category.UpdateTimestamp()

	query := `
		UPDATE categories
		SET name = ?, description = ?, slug = ?, parent_id = ?, is_active = ?,
			image = ?, tax_rate = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		category.Name,
		nullableString(category.Description),
		category.Slug,
		nullableString(category.ParentID),
		category.IsActive,
		nullableString(category.Image),
		category.TaxRate,
		category.UpdatedAt,
		category.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return repositories.DuplicateError("category", uniqueColumn(err), category.Name)
		}
		return err
	}

	return r.checkRowsAffected(result, "update", category.ID)
}

// List retrieves categories ordered by name
func (r *CategoryRepository) List(ctx context.Context, filter repositories.CategoryFilter) ([]*models.Category, int64, error) {
	where := newWhere()
	if filter.IsActive != nil {
		where.eq("is_active", *filter.IsActive)
	}
	if filter.RootsOnly {
		where.add("parent_id IS NULL")
	} else {
		where.eqIf("parent_id", filter.ParentID)
	}

	total, err := r.count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	limit, pageArgs := pageClause(filter.Page)
	query := fmt.Sprintf("SELECT %s FROM categories %s ORDER BY name ASC %s",
		categoryColumns, where.clause(), limit)

	categories, err := r.queryCategories(ctx, "list", query, append(where.args, pageArgs...)...)
	if err != nil {
		return nil, 0, err
	}

	return categories, total, nil
}

// GetActive retrieves every active category
func (r *CategoryRepository) GetActive(ctx context.Context) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE is_active = 1 ORDER BY name ASC`
	return r.queryCategories(ctx, "get_active", query)
}

// ExistsByName reports whether another category already uses the name
func (r *CategoryRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return r.existsWhere(ctx, "name", name, excludeID)
}

// ExistsBySlug reports whether a category already uses the slug
func (r *CategoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	return r.existsWhere(ctx, "slug", slug, "")
}

// CountChildren returns the number of direct subcategories
func (r *CategoryRepository) CountChildren(ctx context.Context, id string) (int64, error) {
	return r.count(ctx, newWhere().eq("parent_id", id))
}
