package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"inventory-api/internal/repositories"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	ProductService   ProductService
	SupplierService  SupplierService
	OrderService     OrderService
	CategoryService  CategoryService
	UserService      UserService
	InventoryMonitor *InventoryMonitor
}

// ServiceConfig holds configuration for services
type ServiceConfig struct {
	// CompensateFailedOrders reverses already applied stock and cancels the
	// order when a later item of the same order cannot be applied
	CompensateFailedOrders bool
	ExpiryWarningDays      int
	MonitorSchedule        string
	Tokens                 TokenIssuer
	Logger                 *logrus.Logger
}

// NewServiceContainer creates a new service container with all services
func NewServiceContainer(repos *repositories.RepositoryContainer, config *ServiceConfig) (*ServiceContainer, error) {
	if repos == nil {
		return nil, fmt.Errorf("repository container cannot be nil")
	}
	if err := repos.Validate(); err != nil {
		return nil, err
	}

	if config == nil {
		config = &ServiceConfig{ExpiryWarningDays: 7}
	}
	if config.Tokens == nil {
		return nil, fmt.Errorf("token issuer cannot be nil")
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}

	supplierService := NewSupplierService(repos.SupplierRepo, logger)

	return &ServiceContainer{
		ProductService:   NewProductService(repos.ProductRepo, repos.CategoryRepo, repos.SupplierRepo, logger),
		SupplierService:  supplierService,
		OrderService:     NewOrderService(repos, supplierService, config.CompensateFailedOrders, logger),
		CategoryService:  NewCategoryService(repos, logger),
		UserService:      NewUserService(repos.UserRepo, config.Tokens, logger),
		InventoryMonitor: NewInventoryMonitor(repos.ProductRepo, config.MonitorSchedule, config.ExpiryWarningDays, logger),
	}, nil
}

// Validate validates that all services are properly initialized
func (sc *ServiceContainer) Validate() error {
	switch {
	case sc.ProductService == nil:
		return fmt.Errorf("product service is nil")
	case sc.SupplierService == nil:
		return fmt.Errorf("supplier service is nil")
	case sc.OrderService == nil:
		return fmt.Errorf("order service is nil")
	case sc.CategoryService == nil:
		return fmt.Errorf("category service is nil")
	case sc.UserService == nil:
		return fmt.Errorf("user service is nil")
	case sc.InventoryMonitor == nil:
		return fmt.Errorf("inventory monitor is nil")
	}
	return nil
}

// Close stops the inventory monitor
func (sc *ServiceContainer) Close() error {
	if sc.InventoryMonitor != nil {
		sc.InventoryMonitor.Stop()
	}
	return nil
}
