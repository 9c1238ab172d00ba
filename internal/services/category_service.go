package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"
)

// hierarchyDepth is the number of child levels returned under each root
const hierarchyDepth = 2

// slugAttempts bounds the search for a free suffixed slug
const slugAttempts = 5

// categoryService implements the CategoryService interface
type categoryService struct {
	categoryRepo repositories.CategoryRepository
	productRepo  repositories.ProductRepository
	txManager    repositories.TransactionManager
	validator    *validator.Validate
	logger       *logrus.Logger
}

// NewCategoryService creates a new category service instance
func NewCategoryService(repos *repositories.RepositoryContainer, logger *logrus.Logger) CategoryService {
	return &categoryService{
		categoryRepo: repos.CategoryRepo,
		productRepo:  repos.ProductRepo,
		txManager:    repos.TxManager,
		validator:    newValidator(),
		logger:       logger,
	}
}

// CreateCategory creates an active category with a unique slug
func (s *categoryService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	if req == nil {
		return nil, models.NewValidationError("category", "", "Request body is required")
	}

	// Validate request
	if err := validateRequest(s.validator, "category", req); err != nil {
		return nil, err
	}

	category := models.NewCategory(req.Name)
	if req.Description != nil {
		category.SetDescription(*req.Description)
	}
	category.Image = req.Image
	category.TaxRate = req.TaxRate

	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) != "" {
		parentID := strings.TrimSpace(*req.ParentID)
		if err := s.requireParent(ctx, parentID); err != nil {
			return nil, err
		}
		category.ParentID = &parentID
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.categoryRepo.ExistsByName(ctx, category.Name, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return nil, models.NewConflictError("category", "name", category.Name)
	}

	slug, err := s.uniqueSlug(ctx, category)
	if err != nil {
		return nil, err
	}
	category.Slug = slug

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"category_id": category.ID,
		"slug":        category.Slug,
	}).Info("Category created")

	return category, nil
}

// uniqueSlug returns the plain slug, or the slug with a random four digit
// suffix when the plain one is taken
func (s *categoryService) uniqueSlug(ctx context.Context, category *models.Category) (string, error) {
	slug := models.Slugify(category.Name)
	for attempt := 0; attempt <= slugAttempts; attempt++ {
		taken, err := s.categoryRepo.ExistsBySlug(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check category slug: %w", err)
		}
		if !taken {
			return slug, nil
		}
		slug = category.SlugWithSuffix(rand.Intn(10000))
	}
	return "", models.NewConflictError("category", "slug", slug)
}

func (s *categoryService) requireParent(ctx context.Context, parentID string) error {
	exists, err := s.categoryRepo.Exists(ctx, parentID)
	if err != nil {
		return fmt.Errorf("failed to check parent category: %w", err)
	}
	if !exists {
		return models.NewReferenceError("category", "parent_category", parentID)
	}
	return nil
}

// GetCategory retrieves a category by ID
func (s *categoryService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	if err := requireID("category", id); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// UpdateCategory applies a partial update. The slug follows the name.
func (s *categoryService) UpdateCategory(ctx context.Context, id string, req *UpdateCategoryRequest) (*models.Category, error) {
	if req == nil {
		return nil, models.NewValidationError("category", "", "Updated data is required")
	}

	// Validate request
	if err := validateRequest(s.validator, "category", req); err != nil {
		return nil, err
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != category.Name {
			exists, err := s.categoryRepo.ExistsByName(ctx, name, category.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check category name: %w", err)
			}
			if exists {
				return nil, models.NewConflictError("category", "name", name)
			}
			category.Name = name
			slug, err := s.uniqueSlug(ctx, category)
			if err != nil {
				return nil, err
			}
			category.Slug = slug
		}
	}
	if req.Description != nil {
		category.SetDescription(*req.Description)
	}
	if req.Image != nil {
		category.Image = req.Image
	}
	if req.TaxRate != nil {
		category.TaxRate = *req.TaxRate
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.ParentID != nil {
		parentID := strings.TrimSpace(*req.ParentID)
		switch {
		case parentID == "":
			category.ParentID = nil
		case parentID == category.ID:
			return nil, models.NewValidationError("category", "parent_category", "Category cannot be its own parent")
		default:
			if err := s.requireParent(ctx, parentID); err != nil {
				return nil, err
			}
			category.ParentID = &parentID
		}
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory deletes a category without subcategories or products
func (s *categoryService) DeleteCategory(ctx context.Context, id string) error {
	if err := requireID("category", id); err != nil {
		return err
	}

	children, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count subcategories: %w", err)
	}
	if children > 0 {
		return &models.DomainError{
			Kind:    models.ErrConflict,
			Entity:  "category",
			Field:   "parent_category",
			Message: fmt.Sprintf("Cannot delete category with %d subcategories", children),
		}
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.WithField("category_id", id).Info("Category deleted")
	return nil
}

// ListCategories lists categories ordered by name
func (s *categoryService) ListCategories(ctx context.Context, filters *CategoryFilters) (*CategoryPage, error) {
	if filters == nil {
		filters = &CategoryFilters{}
	}

	page := filters.Page.Normalize()
	categories, total, err := s.categoryRepo.List(ctx, repositories.CategoryFilter{
		IsActive:  filters.IsActive,
		ParentID:  filters.ParentID,
		RootsOnly: filters.RootsOnly,
		Page:      page,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return &CategoryPage{Categories: categories, Total: total, Pagination: models.NewPageInfo(page, total)}, nil
}

// GetHierarchy returns active root categories with two levels of active children
func (s *categoryService) GetHierarchy(ctx context.Context) ([]*models.CategoryNode, error) {
	categories, err := s.categoryRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active categories: %w", err)
	}
	return models.BuildCategoryTree(categories, hierarchyDepth), nil
}

// UpdateTaxRate sets the tax rate on the category and all of its products
func (s *categoryService) UpdateTaxRate(ctx context.Context, id string, taxRate float64) (*CategoryCascade, error) {
	if v := models.ValidatePercentage(taxRate, "tax_rate"); v != nil {
		return nil, models.NewValidationErrors("category", []models.ValidationError{*v})
	}

	var result *CategoryCascade
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		category, err := s.GetCategory(ctx, id)
		if err != nil {
			return err
		}

		category.TaxRate = taxRate
		if err := s.categoryRepo.Update(ctx, category); err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}

		updated, err := s.productRepo.UpdateTaxRateByCategory(ctx, category.ID, taxRate)
		if err != nil {
			return fmt.Errorf("failed to update product tax rates: %w", err)
		}

		result = &CategoryCascade{Category: category, UpdatedProducts: updated}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"category_id": id,
		"tax_rate":    taxRate,
		"products":    result.UpdatedProducts,
	}).Info("Category tax rate updated")

	return result, nil
}

// Activate enables the category and marks its products active
func (s *categoryService) Activate(ctx context.Context, id string) (*CategoryCascade, error) {
	return s.setActive(ctx, id, true)
}

// Deactivate disables the category and marks its products inactive
func (s *categoryService) Deactivate(ctx context.Context, id string) (*CategoryCascade, error) {
	return s.setActive(ctx, id, false)
}

func (s *categoryService) setActive(ctx context.Context, id string, active bool) (*CategoryCascade, error) {
	status := models.ProductStatusInactive
	if active {
		status = models.ProductStatusActive
	}

	var result *CategoryCascade
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		category, err := s.GetCategory(ctx, id)
		if err != nil {
			return err
		}

		result = &CategoryCascade{Category: category}
		if category.IsActive == active {
			return nil
		}

		category.IsActive = active
		if err := s.categoryRepo.Update(ctx, category); err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}

		updated, err := s.productRepo.UpdateStatusByCategory(ctx, category.ID, status)
		if err != nil {
			return fmt.Errorf("failed to update product status: %w", err)
		}
		result.UpdatedProducts = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"category_id": id,
		"is_active":   active,
		"products":    result.UpdatedProducts,
	}).Info("Category status updated")

	return result, nil
}
