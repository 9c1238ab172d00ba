package repositories

import (
	"context"
	"fmt"
)

// RepositoryContainer holds all repository instances
type RepositoryContainer struct {
	ProductRepo  ProductRepository
	SupplierRepo SupplierRepository
	OrderRepo    OrderRepository
	CategoryRepo CategoryRepository
	UserRepo     UserRepository
	TxManager    TransactionManager
}

// Validate checks that every repository is set
func (rc *RepositoryContainer) Validate() error {
	switch {
	case rc.ProductRepo == nil:
		return fmt.Errorf("product repository is nil")
	case rc.SupplierRepo == nil:
		return fmt.Errorf("supplier repository is nil")
	case rc.OrderRepo == nil:
		return fmt.Errorf("order repository is nil")
	case rc.CategoryRepo == nil:
		return fmt.Errorf("category repository is nil")
	case rc.UserRepo == nil:
		return fmt.Errorf("user repository is nil")
	case rc.TxManager == nil:
		return fmt.Errorf("transaction manager is nil")
	}
	return nil
}

// RepositoryManager provides access to all repositories and the underlying connection
type RepositoryManager interface {
	TransactionManager

	// Repositories returns the repository container
	Repositories() *RepositoryContainer

	// Close closes all repository connections
	Close() error

	// Health checks the health of the repository connections
	Health(ctx context.Context) error
}
