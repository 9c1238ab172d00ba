package services

import (
	"context"
	"time"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"
)

// ProductService defines the interface for product business logic operations
type ProductService interface {
	// CRUD operations
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductCreated, error)
	GetProduct(ctx context.Context, id string) (*ProductDetails, error)
	UpdateProduct(ctx context.Context, id string, req *UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, filters *ProductFilters) (*ProductPage, error)

	// Stock operations
	UpdateStock(ctx context.Context, id string, delta int) (*models.Product, error)
	// ReserveStock removes quantity atomically, failing instead of going negative
	ReserveStock(ctx context.Context, id string, quantity int) (*models.Product, error)
	SetStockLevels(ctx context.Context, id string, req *StockLevelsRequest) (*models.Product, error)
	ToggleStatus(ctx context.Context, id string, action string) (*models.Product, error)

	// Reporting
	GetLowStockProducts(ctx context.Context, page models.PageRequest) (*ProductPage, error)
	GetInventoryOverview(ctx context.Context, bucket string, page models.PageRequest) (*InventoryOverview, error)
	GetActiveAndInactive(ctx context.Context) (*ProductStatusSummary, error)
	GetProductsByBrand(ctx context.Context, brand string) ([]*models.Product, error)
	GetProductsByCategory(ctx context.Context, categoryID string, status models.ProductStatus, page models.PageRequest) (*ProductPage, error)
}

// SupplierService defines the interface for supplier business logic operations
type SupplierService interface {
	CreateSupplier(ctx context.Context, req *CreateSupplierRequest) (*models.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*SupplierDetails, error)
	UpdateSupplier(ctx context.Context, id string, req *UpdateSupplierRequest) (*models.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
	ListSuppliers(ctx context.Context, filters *SupplierFilters) (*SupplierPage, error)
	ToggleStatus(ctx context.Context, id string) (*models.Supplier, error)

	// RecordPurchase folds one finished purchase order into the supplier's performance
	RecordPurchase(ctx context.Context, id string, completed bool, orderValue float64, deliveryDays *int) (*models.Supplier, error)
}

// OrderService defines the order lifecycle: creation with stock side
// effects, status transitions, cancellation and payment tracking.
type OrderService interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderDetails, error)
	GetOrder(ctx context.Context, id string) (*OrderDetails, error)
	ListOrders(ctx context.Context, filters *OrderFilters) (*OrderPage, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	CancelOrder(ctx context.Context, id string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status string) (*models.Order, error)
	GetOrdersBySupplier(ctx context.Context, supplierID string, status models.OrderStatus, page models.PageRequest) (*OrderPage, error)
	GetRevenue(ctx context.Context, startDate, endDate time.Time) (*repositories.RevenueSummary, error)
}

// CategoryService defines the interface for category tree operations
type CategoryService interface {
	CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, req *UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context, filters *CategoryFilters) (*CategoryPage, error)
	GetHierarchy(ctx context.Context) ([]*models.CategoryNode, error)

	// Cascades to the products in the category
	UpdateTaxRate(ctx context.Context, id string, taxRate float64) (*CategoryCascade, error)
	Activate(ctx context.Context, id string) (*CategoryCascade, error)
	Deactivate(ctx context.Context, id string) (*CategoryCascade, error)
}

// UserService defines account and session operations
type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.PublicProfile, error)
	Login(ctx context.Context, req *LoginRequest) (*Session, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error
	Me(ctx context.Context, userID string) (*models.PublicProfile, error)
}

// TokenIssuer signs and verifies session tokens
type TokenIssuer interface {
	GenerateAccessToken(userID, username, email string) (string, error)
	GenerateRefreshToken(userID string) (string, error)
	ValidateRefreshToken(token string) (string, error)
}

// Request and response types

// CreateProductRequest carries the fields of a new product
type CreateProductRequest struct {
	Name          string     `json:"name" validate:"required,max=50"`
	Description   *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	CategoryID    string     `json:"category" validate:"required"`
	Subcategory   string     `json:"subcategory,omitempty"`
	Brand         string     `json:"brand,omitempty"`
	CostPrice     float64    `json:"cost_price" validate:"min=0"`
	SellingPrice  float64    `json:"selling_price" validate:"min=0"`
	CurrentStock  int        `json:"current_stock" validate:"min=0"`
	MinStockLevel *int       `json:"min_stock_level,omitempty" validate:"omitempty,min=0"`
	MaxStockLevel *int       `json:"max_stock_level,omitempty" validate:"omitempty,min=1"`
	Unit          string     `json:"unit,omitempty" validate:"omitempty,oneof=kg gram liter meter pack box dozen unit set roll"`
	SupplierID    *string    `json:"supplier,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	TaxRate       *float64   `json:"tax_rate,omitempty" validate:"omitempty,min=0,max=100"`
	TaxInclude    bool       `json:"tax_include"`
	Image         *string    `json:"image,omitempty"`
}

// UpdateProductRequest carries a partial product update
type UpdateProductRequest struct {
	Name          *string    `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Description   *string    `json:"description,omitempty"`
	CategoryID    *string    `json:"category,omitempty"`
	Subcategory   *string    `json:"subcategory,omitempty"`
	Brand         *string    `json:"brand,omitempty"`
	CostPrice     *float64   `json:"cost_price,omitempty" validate:"omitempty,min=0"`
	SellingPrice  *float64   `json:"selling_price,omitempty" validate:"omitempty,min=0"`
	CurrentStock  *int       `json:"current_stock,omitempty" validate:"omitempty,min=0"`
	MinStockLevel *int       `json:"min_stock_level,omitempty" validate:"omitempty,min=0"`
	MaxStockLevel *int       `json:"max_stock_level,omitempty" validate:"omitempty,min=1"`
	Unit          *string    `json:"unit,omitempty" validate:"omitempty,oneof=kg gram liter meter pack box dozen unit set roll"`
	SupplierID    *string    `json:"supplier,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	TaxRate       *float64   `json:"tax_rate,omitempty" validate:"omitempty,min=0,max=100"`
	TaxInclude    *bool      `json:"tax_include,omitempty"`
	Image         *string    `json:"image,omitempty"`
}

// StockLevelsRequest sets the low-stock threshold and the capacity
type StockLevelsRequest struct {
	MinStockLevel *int `json:"min_stock_level,omitempty"`
	MaxStockLevel *int `json:"max_stock_level,omitempty"`
}

// ProductFilters narrows product listings
type ProductFilters struct {
	CategoryID string               `json:"category,omitempty"`
	Brand      string               `json:"brand,omitempty"`
	Status     models.ProductStatus `json:"status,omitempty"`
	Search     string               `json:"q,omitempty"`
	SortBy     string               `json:"sort_by,omitempty"`
	SortOrder  string               `json:"sort_order,omitempty" validate:"omitempty,oneof=asc desc"`
	Page       models.PageRequest   `json:"page"`
}

// ProductCreated is a new product with its stock label and any stock warnings
type ProductCreated struct {
	Product     *models.Product `json:"new_product"`
	StockStatus string          `json:"stock_status"`
	Warnings    []string        `json:"warnings,omitempty"`
}

// ProductDetails is a product with its derived values
type ProductDetails struct {
	*models.Product
	StockStatus      string  `json:"stock_status"`
	PriceWithTax     float64 `json:"price_with_tax"`
	DaysUntilExpired *int    `json:"days_until_expired"`
	ProfitAmount     float64 `json:"profit_amount"`
	ProfitMargin     float64 `json:"profit_margin"`
	IsValidForSale   bool    `json:"is_valid_for_sale"`
}

// ProductPage is one page of products
type ProductPage struct {
	Products   []*models.Product `json:"products"`
	Total      int64             `json:"total_products"`
	Pagination models.PageInfo   `json:"pagination"`
}

// StockBucket is a labelled product count
type StockBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// InventoryOverview classifies active products by stock level
type InventoryOverview struct {
	Summary struct {
		InStock    StockBucket `json:"in_stock"`
		LowStock   StockBucket `json:"low_stock"`
		OutOfStock StockBucket `json:"out_of_stock"`
	} `json:"summary"`
	Products   []*models.Product `json:"products"`
	Pagination models.PageInfo   `json:"pagination"`
}

// ProductStatusSummary splits products into active and inactive
type ProductStatusSummary struct {
	Summary struct {
		Active   StockBucket `json:"active"`
		Inactive StockBucket `json:"inactive"`
	} `json:"summary"`
	Products struct {
		Active   []*models.Product `json:"active"`
		Inactive []*models.Product `json:"inactive"`
	} `json:"products"`
}

// AddressRequest is a postal address in a supplier request
type AddressRequest struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// CreateSupplierRequest carries the fields of a new supplier
type CreateSupplierRequest struct {
	Name         string          `json:"name" validate:"required,min=2,max=100"`
	CompanyName  string          `json:"company_name,omitempty"`
	Email        *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string          `json:"phone" validate:"required"`
	Address      *AddressRequest `json:"address,omitempty"`
	BusinessType string          `json:"business_type,omitempty"`
	Categories   []string        `json:"categories,omitempty"`
}

// UpdateSupplierRequest carries a partial supplier update
type UpdateSupplierRequest struct {
	Name         *string         `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	CompanyName  *string         `json:"company_name,omitempty"`
	Email        *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string         `json:"phone,omitempty"`
	Address      *AddressRequest `json:"address,omitempty"`
	BusinessType *string         `json:"business_type,omitempty"`
	Categories   []string        `json:"categories,omitempty"`
	IsActive     *bool           `json:"is_active,omitempty"`
}

// SupplierFilters narrows supplier listings
type SupplierFilters struct {
	IsActive     *bool              `json:"is_active,omitempty"`
	BusinessType string             `json:"business_type,omitempty"`
	Search       string             `json:"search,omitempty"`
	Page         models.PageRequest `json:"page"`
}

// SupplierDetails is a supplier with its derived values
type SupplierDetails struct {
	*models.Supplier
	Status         string            `json:"supplier_status"`
	IsReliable     bool              `json:"is_reliable"`
	CompletionRate float64           `json:"completion_rate"`
	FullAddress    string            `json:"full_address"`
	PrimaryContact map[string]string `json:"primary_contact"`
}

// SupplierPage is one page of suppliers
type SupplierPage struct {
	Suppliers  []*models.Supplier `json:"suppliers"`
	Total      int64              `json:"total_suppliers"`
	Pagination models.PageInfo    `json:"pagination"`
}

// CustomerRequest is the buyer on a sale order
type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Address string `json:"address,omitempty"`
}

// OrderItemRequest is one requested line
type OrderItemRequest struct {
	ProductID string `json:"product" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest carries a new sale or purchase order
type CreateOrderRequest struct {
	OrderType            string             `json:"order_type" validate:"required,oneof=sale purchase"`
	Customer             *CustomerRequest   `json:"customer,omitempty"`
	SupplierID           string             `json:"supplier,omitempty"`
	Items                []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	TaxAmount            float64            `json:"tax_amount" validate:"min=0"`
	Discount             float64            `json:"discount" validate:"min=0"`
	ShippingCost         float64            `json:"shipping_cost" validate:"min=0"`
	PaymentMethod        string             `json:"payment_method,omitempty" validate:"omitempty,oneof=cash card bank_transfer online"`
	Notes                string             `json:"notes,omitempty"`
	ExpectedDeliveryDate *time.Time         `json:"expected_delivery_date,omitempty"`
}

// OrderFilters narrows order listings
type OrderFilters struct {
	OrderType     string             `json:"order_type,omitempty" validate:"omitempty,oneof=sale purchase"`
	Status        string             `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed processing completed cancelled"`
	PaymentStatus string             `json:"payment_status,omitempty" validate:"omitempty,oneof=unpaid partial paid refunded"`
	SortBy        string             `json:"sort_by,omitempty"`
	SortOrder     string             `json:"sort_order,omitempty" validate:"omitempty,oneof=asc desc"`
	Page          models.PageRequest `json:"page"`
}

// SupplierSummary is the supplier view embedded in an order
type SupplierSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

// ProductSummary is the current product view embedded in an order
type ProductSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	CurrentStock int    `json:"current_stock"`
}

// OrderDetails is an order with its summary and referenced records
type OrderDetails struct {
	*models.Order
	Summary      models.OrderSummary `json:"summary"`
	DeliveryDays *int                `json:"delivery_days"`
	Supplier     *SupplierSummary    `json:"supplier,omitempty"`
	Products     []ProductSummary    `json:"products,omitempty"`
}

// OrderPage is one page of orders
type OrderPage struct {
	Orders     []*models.Order `json:"orders"`
	Total      int64           `json:"total_orders"`
	Pagination models.PageInfo `json:"pagination"`
}

// CreateCategoryRequest carries the fields of a new category
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	ParentID    *string `json:"parent_category,omitempty"`
	Image       *string `json:"image,omitempty"`
	TaxRate     float64 `json:"tax_rate" validate:"min=0,max=100"`
}

// UpdateCategoryRequest carries a partial category update
type UpdateCategoryRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	ParentID    *string  `json:"parent_category,omitempty"`
	Image       *string  `json:"image,omitempty"`
	TaxRate     *float64 `json:"tax_rate,omitempty" validate:"omitempty,min=0,max=100"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// CategoryFilters narrows category listings
type CategoryFilters struct {
	IsActive  *bool              `json:"is_active,omitempty"`
	ParentID  string             `json:"parent,omitempty"`
	RootsOnly bool               `json:"roots_only,omitempty"`
	Page      models.PageRequest `json:"page"`
}

// CategoryPage is one page of categories
type CategoryPage struct {
	Categories []*models.Category `json:"categories"`
	Total      int64              `json:"total_categories"`
	Pagination models.PageInfo    `json:"pagination"`
}

// CategoryCascade reports a category change and how many products it touched
type CategoryCascade struct {
	Category        *models.Category `json:"category"`
	UpdatedProducts int64            `json:"updated_products"`
}

// RegisterRequest carries a new account
type RegisterRequest struct {
	WorkEmail string `json:"work_email" validate:"required,email"`
	Username  string `json:"username" validate:"required,max=30"`
	FullName  string `json:"full_name" validate:"required"`
	Password  string `json:"password" validate:"required,min=6"`
}

// LoginRequest identifies a user by email or username
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// ChangePasswordRequest replaces the current password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// Session is the token pair handed out on login and refresh
type Session struct {
	User         models.PublicProfile `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}
