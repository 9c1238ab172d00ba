package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Common constants
const (
	// Default stock thresholds for new products
	DefaultMinStockLevel = 5
	DefaultMaxStockLevel = 500

	// Stock above this level is accepted but flagged as unusual
	StockWarningThreshold = 10000

	// Products may not expire further out than this
	MaxExpiryHorizon = 10 * 365 * 24 * time.Hour

	// Default list page size
	DefaultPageLimit = 10

	// Upper bound on page size for list endpoints
	MaxPageLimit = 100
)

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.Message
}

// PageRequest is a 1-based page request
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Normalize applies defaults and bounds
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset returns the number of rows to skip
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// PageInfo describes the position of a page within a result set
type PageInfo struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

// NewPageInfo computes pagination metadata
func NewPageInfo(req PageRequest, total int64) PageInfo {
	req = req.Normalize()
	totalPages := int(math.Ceil(float64(total) / float64(req.Limit)))
	return PageInfo{
		CurrentPage: req.Page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNextPage: req.Page < totalPages,
		HasPrevPage: req.Page > 1,
	}
}

// HealthCheck represents system health status
type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// RoundMoney rounds a monetary value to two decimals, half away from zero
func RoundMoney(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

// Now returns the current time in UTC; all persisted timestamps use UTC
func Now() time.Time {
	return time.Now().UTC()
}
