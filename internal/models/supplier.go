package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BusinessType classifies a supplier
type BusinessType string

const (
	BusinessTypeManufacturer    BusinessType = "Manufacturer"
	BusinessTypeDistributor     BusinessType = "Distributor"
	BusinessTypeWholesaler      BusinessType = "Wholesaler"
	BusinessTypeRetailer        BusinessType = "Retailer"
	BusinessTypeServiceProvider BusinessType = "Service Provider"
	BusinessTypeOther           BusinessType = "Other"
)

// Supplier status labels
const (
	SupplierStatusInactive    = "Inactive"
	SupplierStatusReliable    = "Reliable"
	SupplierStatusUnderReview = "Under Review"
)

// DefaultCountry is assumed when an address has no country
const DefaultCountry = "Pakistan"

// reliabilityThreshold is the completion rate a supplier needs to count as reliable
const reliabilityThreshold = 0.8

// BusinessTypes lists the valid business types
func BusinessTypes() []string {
	return []string{
		string(BusinessTypeManufacturer),
		string(BusinessTypeDistributor),
		string(BusinessTypeWholesaler),
		string(BusinessTypeRetailer),
		string(BusinessTypeServiceProvider),
		string(BusinessTypeOther),
	}
}

// Address is a postal address
type Address struct {
	Street     string `json:"street,omitempty" db:"street"`
	City       string `json:"city,omitempty" db:"city"`
	State      string `json:"state,omitempty" db:"state"`
	Country    string `json:"country,omitempty" db:"country"`
	PostalCode string `json:"postal_code,omitempty" db:"postal_code"`
}

// SupplierPerformance aggregates purchase-order outcomes for a supplier
type SupplierPerformance struct {
	TotalOrders        int        `json:"total_orders" db:"total_orders"`
	CompletedOrders    int        `json:"completed_orders" db:"completed_orders"`
	TotalPurchaseValue float64    `json:"total_purchase_value" db:"total_purchase_value"`
	AvgDeliveryDays    float64    `json:"avg_delivery_days" db:"avg_delivery_days"`
	LastOrderDate      *time.Time `json:"last_order_date,omitempty" db:"last_order_date"`
}

// Supplier represents a vendor purchase orders are placed with
type Supplier struct {
	ID           string              `json:"id" db:"id" validate:"required,uuid"`
	Name         string              `json:"name" db:"name" validate:"required,min=2,max=100"`
	CompanyName  string              `json:"company_name,omitempty" db:"company_name"`
	Email        *string             `json:"email,omitempty" db:"email"`
	Phone        string              `json:"phone" db:"phone" validate:"required"`
	Address      Address             `json:"address"`
	BusinessType BusinessType        `json:"business_type" db:"business_type"`
	IsActive     bool                `json:"is_active" db:"is_active"`
	Categories   []string            `json:"categories" db:"categories"`
	Performance  SupplierPerformance `json:"performance"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`
}

// NewSupplier creates a new active supplier with generated ID and timestamps
func NewSupplier(name, phone string) *Supplier {
	now := Now()
	return &Supplier{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		Address:      Address{Country: DefaultCountry},
		BusinessType: BusinessTypeOther,
		IsActive:     true,
		Categories:   []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates the supplier data
func (s *Supplier) Validate() error {
	var errs []ValidationError

	if s.ID == "" {
		errs = append(errs, ValidationError{Field: "id", Message: "supplier ID is required"})
	}

	if v := ValidateRequired(s.Name, "name"); v != nil {
		errs = append(errs, *v)
	} else {
		errs = collect(errs, ValidateStringLength(s.Name, "name", 2, 100))
	}

	if v := ValidateRequired(s.Phone, "phone"); v != nil {
		errs = append(errs, *v)
	} else if !IsValidPhone(s.Phone) {
		errs = append(errs, ValidationError{Field: "phone", Message: "Please enter a valid phone number", Value: s.Phone})
	}

	if s.Email != nil {
		errs = collect(errs, ValidateEmail(*s.Email, "email"))
	}

	errs = collect(errs, ValidateEnum(string(s.BusinessType), BusinessTypes(), "business_type"))

	if s.Performance.CompletedOrders > s.Performance.TotalOrders {
		errs = append(errs, ValidationError{Field: "performance", Message: "completed orders cannot exceed total orders"})
	}

	return NewValidationErrors("supplier", errs)
}

// UpdatePerformance records the outcome of one purchase order. deliveryDays
// is folded into the running average only when present and non-zero.
func (s *Supplier) UpdatePerformance(isCompleted bool, orderValue float64, deliveryDays *int, at time.Time) {
	perf := &s.Performance
	perf.TotalOrders++

	if isCompleted {
		perf.CompletedOrders++
		if deliveryDays != nil && *deliveryDays != 0 {
			total := perf.AvgDeliveryDays*float64(perf.CompletedOrders-1) + float64(*deliveryDays)
			perf.AvgDeliveryDays = total / float64(perf.CompletedOrders)
		}
	}

	perf.TotalPurchaseValue = RoundMoney(perf.TotalPurchaseValue + orderValue)
	last := at
	perf.LastOrderDate = &last
	s.UpdateTimestamp()
}

// CompletionRate returns completed over total orders, 0 with no orders
func (s *Supplier) CompletionRate() float64 {
	if s.Performance.TotalOrders == 0 {
		return 0
	}
	return float64(s.Performance.CompletedOrders) / float64(s.Performance.TotalOrders)
}

// IsReliable is true for suppliers without orders or with at least 80% completed
func (s *Supplier) IsReliable() bool {
	if s.Performance.TotalOrders == 0 {
		return true
	}
	return s.CompletionRate() >= reliabilityThreshold
}

// Status returns the supplier status label
func (s *Supplier) Status() string {
	if !s.IsActive {
		return SupplierStatusInactive
	}
	if s.IsReliable() {
		return SupplierStatusReliable
	}
	return SupplierStatusUnderReview
}

// FullAddress joins the non-empty address parts
func (s *Supplier) FullAddress() string {
	var parts []string
	for _, part := range []string{s.Address.Street, s.Address.City, s.Address.State, s.Address.Country, s.Address.PostalCode} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "Address not provided"
	}
	return strings.Join(parts, ", ")
}

// PrimaryContact returns the preferred contact channel
func (s *Supplier) PrimaryContact() map[string]string {
	contact := map[string]string{
		"name":  s.Name,
		"phone": s.Phone,
	}
	if s.Email != nil {
		contact["email"] = *s.Email
	}
	if s.CompanyName != "" {
		contact["company"] = s.CompanyName
	}
	return contact
}

// SetEmail sets or clears the email address
func (s *Supplier) SetEmail(email string) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		s.Email = nil
		return
	}
	s.Email = &trimmed
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (s *Supplier) UpdateTimestamp() {
	s.UpdatedAt = Now()
}
