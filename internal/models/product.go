package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the sale status of a product
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

// ProductUnit is the unit a product is stocked in
type ProductUnit string

const (
	UnitKg    ProductUnit = "kg"
	UnitGram  ProductUnit = "gram"
	UnitLiter ProductUnit = "liter"
	UnitMeter ProductUnit = "meter"
	UnitPack  ProductUnit = "pack"
	UnitBox   ProductUnit = "box"
	UnitDozen ProductUnit = "dozen"
	UnitUnit  ProductUnit = "unit"
	UnitSet   ProductUnit = "set"
	UnitRoll  ProductUnit = "roll"
)

var unitCodes = map[ProductUnit]string{
	UnitKg:    "KG",
	UnitGram:  "GM",
	UnitLiter: "LT",
	UnitMeter: "MT",
	UnitPack:  "PK",
	UnitBox:   "BX",
	UnitDozen: "DZ",
	UnitUnit:  "UN",
	UnitSet:   "ST",
	UnitRoll:  "RL",
}

// Stock status labels
const (
	StockStatusOutOfStock = "Out of Stock"
	StockStatusLow        = "Low Stock!"
	StockStatusOver       = "Over Stock"
	StockStatusNormal     = "Normal"
)

// ProductStatuses lists the valid product statuses
func ProductStatuses() []string {
	return []string{string(ProductStatusActive), string(ProductStatusInactive), string(ProductStatusOutOfStock)}
}

// ProductUnits lists the valid stocking units
func ProductUnits() []string {
	return []string{"kg", "gram", "liter", "meter", "pack", "box", "dozen", "unit", "set", "roll"}
}

// Product represents a stocked item
type Product struct {
	ID            string        `json:"id" db:"id" validate:"required,uuid"`
	Name          string        `json:"name" db:"name" validate:"required,min=1,max=50"`
	Description   *string       `json:"description,omitempty" db:"description"`
	SKU           string        `json:"sku" db:"sku"`
	CategoryID    string        `json:"category_id" db:"category_id" validate:"required"`
	Subcategory   string        `json:"subcategory,omitempty" db:"subcategory"`
	Brand         string        `json:"brand,omitempty" db:"brand"`
	CostPrice     float64       `json:"cost_price" db:"cost_price" validate:"min=0"`
	SellingPrice  float64       `json:"selling_price" db:"selling_price" validate:"min=0"`
	CurrentStock  int           `json:"current_stock" db:"current_stock"`
	MinStockLevel int           `json:"min_stock_level" db:"min_stock_level"`
	MaxStockLevel int           `json:"max_stock_level" db:"max_stock_level"`
	Unit          ProductUnit   `json:"unit" db:"unit"`
	SupplierID    *string       `json:"supplier_id,omitempty" db:"supplier_id"`
	Status        ProductStatus `json:"status" db:"status"`
	ExpiryDate    *time.Time    `json:"expiry_date,omitempty" db:"expiry_date"`
	TaxRate       float64       `json:"tax_rate" db:"tax_rate" validate:"min=0,max=100"`
	TaxInclude    bool          `json:"tax_include" db:"tax_include"`
	TotalSold     int           `json:"total_sold" db:"total_sold"`
	TotalSale     float64       `json:"total_sale" db:"total_sale"`
	Image         *string       `json:"image,omitempty" db:"image"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// NewProduct creates a new active product with generated ID, default stock levels and timestamps
func NewProduct(name, categoryID string, costPrice, sellingPrice float64) *Product {
	now := Now()
	return &Product{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(name),
		CategoryID:    categoryID,
		CostPrice:     costPrice,
		SellingPrice:  sellingPrice,
		MinStockLevel: DefaultMinStockLevel,
		MaxStockLevel: DefaultMaxStockLevel,
		Unit:          UnitUnit,
		Status:        ProductStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// GenerateSKU builds the SKU from category, brand, name, unit and the
// last four digits of the millisecond timestamp.
func (p *Product) GenerateSKU(at time.Time) string {
	var parts []string

	if p.CategoryID != "" {
		parts = append(parts, strings.ToUpper(prefix(p.CategoryID, 3)))
	}
	if p.Brand != "" {
		parts = append(parts, strings.ToUpper(prefix(p.Brand, 3)))
	}
	if p.Name != "" {
		parts = append(parts, strings.ToUpper(prefix(nonAlphanumericRegex.ReplaceAllString(p.Name, ""), 3)))
	}

	code, ok := unitCodes[p.Unit]
	if !ok {
		code = "UN"
	}
	parts = append(parts, code)

	millis := strconv.FormatInt(at.UnixMilli(), 10)
	parts = append(parts, millis[len(millis)-4:])

	p.SKU = strings.Join(parts, "-")
	return p.SKU
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Validate validates the product data. Current stock is not bounded below:
// cancelled purchases may leave it negative.
func (p *Product) Validate() error {
	var errs []ValidationError

	if p.ID == "" {
		errs = append(errs, ValidationError{Field: "id", Message: "product ID is required"})
	}

	errs = collect(errs,
		ValidateRequired(p.Name, "name"),
		ValidateStringLength(p.Name, "name", 0, 50),
		ValidateRequired(p.CategoryID, "category_id"),
		ValidateNonNegative(p.CostPrice, "cost_price"),
		ValidateNonNegative(p.SellingPrice, "selling_price"),
		ValidateEnum(string(p.Unit), ProductUnits(), "unit"),
		ValidateEnum(string(p.Status), ProductStatuses(), "status"),
		ValidatePercentage(p.TaxRate, "tax_rate"),
	)

	if p.MinStockLevel < 0 {
		errs = append(errs, ValidationError{Field: "min_stock_level", Message: "min_stock_level cannot be negative", Value: p.MinStockLevel})
	}

	if p.MaxStockLevel <= p.MinStockLevel {
		errs = append(errs, ValidationError{Field: "max_stock_level", Message: "Minimum stock level must be less than maximum stock level", Value: p.MaxStockLevel})
	}

	return NewValidationErrors("product", errs)
}

// ValidatePrice enforces a selling price strictly above the cost price
func (p *Product) ValidatePrice() error {
	var errs []ValidationError

	errs = collect(errs,
		ValidateNonNegative(p.CostPrice, "cost_price"),
		ValidateNonNegative(p.SellingPrice, "selling_price"),
	)

	if p.SellingPrice <= p.CostPrice {
		errs = append(errs, ValidationError{
			Field:   "selling_price",
			Message: "Selling price must be greater than cost price",
			Value:   p.SellingPrice,
		})
	}

	return NewValidationErrors("product", errs)
}

// ValidateStock checks the stock figures and returns non-fatal warnings
func (p *Product) ValidateStock() ([]string, error) {
	var errs []ValidationError
	var warnings []string

	if p.CurrentStock < 0 {
		errs = append(errs, ValidationError{Field: "current_stock", Message: "Stock cannot be negative", Value: p.CurrentStock})
	}

	if p.MinStockLevel >= p.MaxStockLevel {
		errs = append(errs, ValidationError{Field: "min_stock_level", Message: "Minimum stock level must be less than maximum stock level", Value: p.MinStockLevel})
	}

	if p.CurrentStock > StockWarningThreshold {
		warnings = append(warnings, "Stock quantity seems unusually high")
	}

	return warnings, NewValidationErrors("product", errs)
}

// ValidateExpiry rejects expiry dates in the past or more than ten years ahead
func (p *Product) ValidateExpiry(now time.Time) error {
	if p.ExpiryDate == nil {
		return nil
	}

	if p.ExpiryDate.Before(now) {
		return NewValidationError("product", "expiry_date", "Expiry date cannot be in the past")
	}

	if p.ExpiryDate.After(now.Add(MaxExpiryHorizon)) {
		return NewValidationError("product", "expiry_date", "Expiry date seems too far in the future")
	}

	return nil
}

// UpdateStock applies a signed delta to the current stock. The result is
// rejected only when it would exceed the maximum stock level.
func (p *Product) UpdateStock(delta int) error {
	next := p.CurrentStock + delta
	if next > p.MaxStockLevel {
		return NewCapacityError(p.Name, next, p.MaxStockLevel)
	}
	p.CurrentStock = next
	p.UpdateTimestamp()
	return nil
}

// SetMinStockLevel sets the low-stock threshold
func (p *Product) SetMinStockLevel(value int) error {
	if value <= 0 {
		return NewValidationError("product", "min_stock_level", "Minimum stock level must be greater than 0")
	}
	if value >= p.MaxStockLevel {
		return NewValidationError("product", "min_stock_level", "Minimum stock level must be less than maximum stock level")
	}
	p.MinStockLevel = value
	p.UpdateTimestamp()
	return nil
}

// SetMaxStockLevel sets the stock capacity
func (p *Product) SetMaxStockLevel(value int) error {
	if value <= 0 {
		return NewValidationError("product", "max_stock_level", "Maximum stock level must be greater than 0")
	}
	if value <= p.MinStockLevel {
		return NewValidationError("product", "max_stock_level", "Maximum stock level must be greater than minimum stock level")
	}
	p.MaxStockLevel = value
	p.UpdateTimestamp()
	return nil
}

// Activate marks the product as sellable
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.UpdateTimestamp()
}

// Deactivate withdraws the product from sale
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdateTimestamp()
}

// MarkOutOfStock flags the product as out of stock
func (p *Product) MarkOutOfStock() {
	p.Status = ProductStatusOutOfStock
	p.UpdateTimestamp()
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsLowStock reports stock at or below the minimum level
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStockLevel
}

// IsOutOfStock reports zero stock
func (p *Product) IsOutOfStock() bool {
	return p.CurrentStock == 0
}

// IsOverStock reports stock above the maximum level
func (p *Product) IsOverStock() bool {
	return p.CurrentStock > p.MaxStockLevel
}

// StockStatus returns the stock label, out of stock taking priority over low, then over stock
func (p *Product) StockStatus() string {
	switch {
	case p.IsOutOfStock():
		return StockStatusOutOfStock
	case p.IsLowStock():
		return StockStatusLow
	case p.IsOverStock():
		return StockStatusOver
	default:
		return StockStatusNormal
	}
}

// IsExpired reports whether the expiry date has passed
func (p *Product) IsExpired(now time.Time) bool {
	return p.ExpiryDate != nil && p.ExpiryDate.Before(now)
}

// DaysUntilExpiry returns whole days until expiry, rounded up, or nil when no expiry is set
func (p *Product) DaysUntilExpiry(now time.Time) *int {
	if p.ExpiryDate == nil {
		return nil
	}
	days := int(math.Ceil(p.ExpiryDate.Sub(now).Hours() / 24))
	return &days
}

// IsValidForSale reports an active, in-stock, unexpired product
func (p *Product) IsValidForSale(now time.Time) bool {
	return p.IsActive() && !p.IsOutOfStock() && !p.IsExpired(now)
}

// PriceWithTax adds the tax share to the selling price when tax is included
func (p *Product) PriceWithTax() float64 {
	price := decimal.NewFromFloat(p.SellingPrice)
	if !p.TaxInclude {
		return price.Round(2).InexactFloat64()
	}
	tax := price.Mul(decimal.NewFromFloat(p.TaxRate)).Div(decimal.NewFromInt(100))
	return price.Add(tax).Round(2).InexactFloat64()
}

// TaxAmount returns the tax due on a quantity at the selling price
func (p *Product) TaxAmount(quantity int) float64 {
	return decimal.NewFromFloat(p.SellingPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromFloat(p.TaxRate)).
		Div(decimal.NewFromInt(100)).
		Round(2).InexactFloat64()
}

// ProfitAmount returns the profit realised on units sold so far
func (p *Product) ProfitAmount() float64 {
	margin := decimal.NewFromFloat(p.SellingPrice).Sub(decimal.NewFromFloat(p.CostPrice))
	return margin.Mul(decimal.NewFromInt(int64(p.TotalSold))).Round(2).InexactFloat64()
}

// ProfitMargin returns the margin over cost as a percentage
func (p *Product) ProfitMargin() float64 {
	if p.CostPrice == 0 {
		return 0
	}
	margin := decimal.NewFromFloat(p.SellingPrice).Sub(decimal.NewFromFloat(p.CostPrice))
	return margin.Div(decimal.NewFromFloat(p.CostPrice)).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// RecordSale moves quantity from stock to the sold counters
func (p *Product) RecordSale(quantity int) error {
	if quantity <= 0 {
		return NewValidationError("product", "quantity", "Sold quantity must be positive")
	}
	if quantity > p.CurrentStock {
		return NewInsufficientStockError(p.Name, p.CurrentStock, quantity)
	}

	p.TotalSold += quantity
	p.CurrentStock -= quantity
	p.TotalSale = decimal.NewFromFloat(p.SellingPrice).Mul(decimal.NewFromInt(int64(p.TotalSold))).Round(2).InexactFloat64()
	p.UpdateTimestamp()
	return nil
}

// SetDescription sets the product description
func (p *Product) SetDescription(description string) {
	if strings.TrimSpace(description) == "" {
		p.Description = nil
	} else {
		trimmed := strings.TrimSpace(description)
		p.Description = &trimmed
	}
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (p *Product) UpdateTimestamp() {
	p.UpdatedAt = Now()
}

// String returns a short description used in logs
func (p *Product) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.SKU)
}
