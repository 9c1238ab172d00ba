package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"
)

// supplierService implements the SupplierService interface
type supplierService struct {
	supplierRepo repositories.SupplierRepository
	validator    *validator.Validate
	logger       *logrus.Logger
}

// NewSupplierService creates a new supplier service instance
func NewSupplierService(supplierRepo repositories.SupplierRepository, logger *logrus.Logger) SupplierService {
	return &supplierService{
		supplierRepo: supplierRepo,
		validator:    newValidator(),
		logger:       logger,
	}
}

func applyAddress(dst *models.Address, src *AddressRequest) {
	if src == nil {
		return
	}
	dst.Street = strings.TrimSpace(src.Street)
	dst.City = strings.TrimSpace(src.City)
	dst.State = strings.TrimSpace(src.State)
	dst.PostalCode = strings.TrimSpace(src.PostalCode)
	dst.Country = strings.TrimSpace(src.Country)
	if dst.Country == "" {
		dst.Country = models.DefaultCountry
	}
}

func cleanCategories(categories []string) []string {
	cleaned := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return cleaned
}

// checkUnique rejects a name or email already used by another supplier
func (s *supplierService) checkUnique(ctx context.Context, supplier *models.Supplier, excludeID string) error {
	exists, err := s.supplierRepo.ExistsByName(ctx, supplier.Name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check supplier name: %w", err)
	}
	if exists {
		return models.NewConflictError("supplier", "name", supplier.Name)
	}

	if supplier.Email != nil {
		exists, err = s.supplierRepo.ExistsByEmail(ctx, *supplier.Email, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check supplier email: %w", err)
		}
		if exists {
			return models.NewConflictError("supplier", "email", *supplier.Email)
		}
	}
	return nil
}

// blankToNil returns nil for a missing or blank optional value
func blankToNil(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}

// CreateSupplier creates a new active supplier
func (s *supplierService) CreateSupplier(ctx context.Context, req *CreateSupplierRequest) (*models.Supplier, error) {
	if req == nil {
		return nil, models.NewValidationError("supplier", "", "Request body is required")
	}

	// Validate request; a blank email means none
	create := *req
	create.Email = blankToNil(req.Email)
	if err := validateRequest(s.validator, "supplier", &create); err != nil {
		return nil, err
	}

	supplier := models.NewSupplier(req.Name, req.Phone)
	supplier.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.Email != nil {
		supplier.SetEmail(*req.Email)
	}
	applyAddress(&supplier.Address, req.Address)
	if req.BusinessType != "" {
		supplier.BusinessType = models.BusinessType(req.BusinessType)
	}
	supplier.Categories = cleanCategories(req.Categories)

	// duplicates are reported before format problems
	if err := s.checkUnique(ctx, supplier, ""); err != nil {
		return nil, err
	}
	if err := supplier.Validate(); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"supplier_id": supplier.ID,
		"name":        supplier.Name,
	}).Info("Supplier created")

	return supplier, nil
}

func (s *supplierService) getSupplier(ctx context.Context, id string) (*models.Supplier, error) {
	if err := requireID("supplier", id); err != nil {
		return nil, err
	}

	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	return supplier, nil
}

// GetSupplier retrieves a supplier with its status and contact views
func (s *supplierService) GetSupplier(ctx context.Context, id string) (*SupplierDetails, error) {
	supplier, err := s.getSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewSupplierDetails(supplier), nil
}

// NewSupplierDetails computes the derived values of a supplier
func NewSupplierDetails(supplier *models.Supplier) *SupplierDetails {
	return &SupplierDetails{
		Supplier:       supplier,
		Status:         supplier.Status(),
		IsReliable:     supplier.IsReliable(),
		CompletionRate: supplier.CompletionRate(),
		FullAddress:    supplier.FullAddress(),
		PrimaryContact: supplier.PrimaryContact(),
	}
}

// UpdateSupplier applies a partial update
func (s *supplierService) UpdateSupplier(ctx context.Context, id string, req *UpdateSupplierRequest) (*models.Supplier, error) {
	if req == nil {
		return nil, models.NewValidationError("supplier", "", "Updated data is required")
	}

	// Validate request; a blank email clears it
	update := *req
	update.Email = blankToNil(req.Email)
	if err := validateRequest(s.validator, "supplier", &update); err != nil {
		return nil, err
	}

	supplier, err := s.getSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		supplier.Name = strings.TrimSpace(*req.Name)
	}
	if req.CompanyName != nil {
		supplier.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.Email != nil {
		supplier.SetEmail(*req.Email)
	}
	if req.Phone != nil {
		supplier.Phone = strings.TrimSpace(*req.Phone)
	}
	applyAddress(&supplier.Address, req.Address)
	if req.BusinessType != nil {
		supplier.BusinessType = models.BusinessType(*req.BusinessType)
	}
	if req.Categories != nil {
		supplier.Categories = cleanCategories(req.Categories)
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}

	if err := s.checkUnique(ctx, supplier, supplier.ID); err != nil {
		return nil, err
	}
	if err := supplier.Validate(); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}

// DeleteSupplier deletes a supplier that no product or order references
func (s *supplierService) DeleteSupplier(ctx context.Context, id string) error {
	if err := requireID("supplier", id); err != nil {
		return err
	}

	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}

	s.logger.WithField("supplier_id", id).Info("Supplier deleted")
	return nil
}

// ListSuppliers lists suppliers, newest first
func (s *supplierService) ListSuppliers(ctx context.Context, filters *SupplierFilters) (*SupplierPage, error) {
	if filters == nil {
		filters = &SupplierFilters{}
	}
	if filters.BusinessType != "" {
		if v := models.ValidateEnum(filters.BusinessType, models.BusinessTypes(), "business_type"); v != nil {
			return nil, models.NewValidationErrors("supplier", []models.ValidationError{*v})
		}
	}

	page := filters.Page.Normalize()
	suppliers, total, err := s.supplierRepo.List(ctx, repositories.SupplierFilter{
		IsActive:     filters.IsActive,
		BusinessType: filters.BusinessType,
		Search:       strings.TrimSpace(filters.Search),
		Page:         page,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	return &SupplierPage{Suppliers: suppliers, Total: total, Pagination: models.NewPageInfo(page, total)}, nil
}

// ToggleStatus flips the supplier between active and inactive
func (s *supplierService) ToggleStatus(ctx context.Context, id string) (*models.Supplier, error) {
	supplier, err := s.getSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	supplier.IsActive = !supplier.IsActive
	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to toggle supplier status: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"supplier_id": supplier.ID,
		"is_active":   supplier.IsActive,
	}).Info("Supplier status toggled")

	return supplier, nil
}

// RecordPurchase applies one purchase outcome to the supplier's running
// performance figures and persists them
func (s *supplierService) RecordPurchase(ctx context.Context, id string, completed bool, orderValue float64, deliveryDays *int) (*models.Supplier, error) {
	supplier, err := s.getSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	supplier.UpdatePerformance(completed, orderValue, deliveryDays, models.Now())

	if err := s.supplierRepo.UpdatePerformance(ctx, supplier.ID, supplier.Performance); err != nil {
		return nil, fmt.Errorf("failed to update supplier performance: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"supplier_id":       supplier.ID,
		"total_orders":      supplier.Performance.TotalOrders,
		"completed_orders":  supplier.Performance.CompletedOrders,
		"avg_delivery_days": supplier.Performance.AvgDeliveryDays,
	}).Info("Supplier performance updated")

	return supplier, nil
}
