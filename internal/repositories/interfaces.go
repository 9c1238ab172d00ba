package repositories

import (
	"context"
	"time"

	"inventory-api/internal/models"
)

// BaseRepository defines common CRUD operations for all repositories
type BaseRepository[T any] interface {
	// Create creates a new entity
	Create(ctx context.Context, entity *T) error

	// GetByID retrieves an entity by its ID
	GetByID(ctx context.Context, id string) (*T, error)

	// Update updates an existing entity
	Update(ctx context.Context, entity *T) error

	// Delete deletes an entity by its ID
	Delete(ctx context.Context, id string) error

	// Exists checks if an entity with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)
}

// ProductRepository defines operations specific to product management
type ProductRepository interface {
	BaseRepository[models.Product]

	// List retrieves a page of products and the total matching count
	List(ctx context.Context, filter ProductFilter) ([]*models.Product, int64, error)

	// ExistsByName reports whether another product already uses the name
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)

	// GetByStatus retrieves every product with the status, newest first
	GetByStatus(ctx context.Context, status models.ProductStatus) ([]*models.Product, error)

	// GetLowStock retrieves a page of active products at or below their
	// minimum stock level and the total matching count
	GetLowStock(ctx context.Context, page models.PageRequest) ([]*models.Product, int64, error)

	// GetByBrand retrieves products by brand, case-insensitively
	GetByBrand(ctx context.Context, brand string) ([]*models.Product, error)

	// CountByStatus returns the number of products per status
	CountByStatus(ctx context.Context) (map[models.ProductStatus]int64, error)

	// AdjustStock adds a signed delta to the current stock in one statement.
	// It fails with a capacity error when the result would exceed the
	// maximum stock level. The result is not floored at zero.
	AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error)

	// ReserveStock removes quantity from stock only if enough is available,
	// failing with an insufficient stock error otherwise.
	ReserveStock(ctx context.Context, id string, quantity int) (*models.Product, error)

	// UpdateStatus sets the product status
	UpdateStatus(ctx context.Context, id string, status models.ProductStatus) error

	// UpdateTaxRateByCategory sets the tax rate on every product in a category
	UpdateTaxRateByCategory(ctx context.Context, categoryID string, taxRate float64) (int64, error)

	// UpdateStatusByCategory sets the status on every product in a category
	UpdateStatusByCategory(ctx context.Context, categoryID string, status models.ProductStatus) (int64, error)
}

// SupplierRepository defines operations specific to supplier management
type SupplierRepository interface {
	BaseRepository[models.Supplier]

	// List retrieves a page of suppliers, newest first, and the total matching count
	List(ctx context.Context, filter SupplierFilter) ([]*models.Supplier, int64, error)

	// ExistsByName reports whether another supplier already uses the name
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)

	// ExistsByEmail reports whether another supplier already uses the email
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)

	// UpdatePerformance persists the performance counters of a supplier
	UpdatePerformance(ctx context.Context, id string, performance models.SupplierPerformance) error
}

// OrderRepository defines operations specific to order management
type OrderRepository interface {
	// Create persists the order row and its line items
	Create(ctx context.Context, order *models.Order) error

	// GetByID retrieves an order with its line items
	GetByID(ctx context.Context, id string) (*models.Order, error)

	// Update persists the mutable top-level fields of an order. Line items are never rewritten.
	Update(ctx context.Context, order *models.Order) error

	// Exists checks if an order with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)

	// List retrieves a page of orders and the total matching count
	List(ctx context.Context, filter OrderFilter) ([]*models.Order, int64, error)

	// GetRevenue sums sale orders that count toward revenue within the date range
	GetRevenue(ctx context.Context, startDate, endDate time.Time) (*RevenueSummary, error)
}

// CategoryRepository defines operations specific to category management
type CategoryRepository interface {
	BaseRepository[models.Category]

	// List retrieves a page of categories and the total matching count
	List(ctx context.Context, filter CategoryFilter) ([]*models.Category, int64, error)

	// GetActive retrieves every active category
	GetActive(ctx context.Context) ([]*models.Category, error)

	// ExistsByName reports whether another category already uses the name
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)

	// ExistsBySlug reports whether a category already uses the slug
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// CountChildren returns the number of direct subcategories
	CountChildren(ctx context.Context, id string) (int64, error)
}

// UserRepository defines operations specific to user accounts
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByIdentifier retrieves a user by work email or username
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)

	// ExistsByEmailOrUsername reports whether either value is taken
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)

	// Update updates an existing user
	Update(ctx context.Context, user *models.User) error
}

// Supporting types for repository operations

// ProductFilter narrows product listings
type ProductFilter struct {
	CategoryID string
	Brand      string
	SupplierID string
	Status     models.ProductStatus
	Search     string
	SortBy     string
	SortOrder  string
	Page       models.PageRequest
}

// SupplierFilter narrows supplier listings
type SupplierFilter struct {
	IsActive     *bool
	BusinessType string
	Search       string
	Page         models.PageRequest
}

// OrderFilter narrows order listings
type OrderFilter struct {
	OrderType     models.OrderType
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	SupplierID    string
	SortBy        string
	SortOrder     string
	Page          models.PageRequest
}

// CategoryFilter narrows category listings
type CategoryFilter struct {
	IsActive  *bool
	ParentID  string
	RootsOnly bool
	Page      models.PageRequest
}

// RevenueSummary is the revenue of sale orders over a period
type RevenueSummary struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	TotalRevenue float64   `json:"total_revenue"`
	OrderCount   int64     `json:"order_count"`
}
