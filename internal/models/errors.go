package models

import (
	"errors"
	"fmt"
	"strings"
)

// Domain error kinds. Every error produced by the models and services
// layers matches one of these with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrInactiveEntity    = errors.New("inactive entity")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCapacity          = errors.New("capacity exceeded")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")

	// ErrReference is a not-found on an id named inside a request body
	// rather than in the resource path.
	ErrReference = fmt.Errorf("dangling reference: %w", ErrNotFound)
)

// DomainError carries the kind of failure together with the entity and
// field it concerns. Fields is populated for multi-field validation failures.
type DomainError struct {
	Kind    error
	Entity  string
	Field   string
	Message string
	Fields  []ValidationError
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("%s %s: %v", e.Entity, e.Field, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Entity, e.Kind)
}

// Unwrap returns the error kind
func (e *DomainError) Unwrap() error {
	return e.Kind
}

// NewValidationError creates a validation error for a single field
func NewValidationError(entity, field, message string) *DomainError {
	return &DomainError{
		Kind:    ErrValidation,
		Entity:  entity,
		Field:   field,
		Message: message,
		Fields:  []ValidationError{{Field: field, Message: message}},
	}
}

// NewValidationErrors folds a list of field failures into one validation error.
// It returns nil when the list is empty.
func NewValidationErrors(entity string, fields []ValidationError) error {
	if len(fields) == 0 {
		return nil
	}
	messages := make([]string, 0, len(fields))
	for _, f := range fields {
		messages = append(messages, f.Message)
	}
	return &DomainError{
		Kind:    ErrValidation,
		Entity:  entity,
		Message: strings.Join(messages, ", "),
		Fields:  fields,
	}
}

// NewConflictError reports a uniqueness violation
func NewConflictError(entity, field, value string) *DomainError {
	return &DomainError{
		Kind:    ErrConflict,
		Entity:  entity,
		Field:   field,
		Message: fmt.Sprintf("%s with %s '%s' already exists", entity, field, value),
	}
}

// NewNotFoundError reports a missing or dangling reference
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Kind:    ErrNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%s with ID %s not found", entity, id),
	}
}

// NewReferenceError reports an id in a request that does not resolve
func NewReferenceError(entity, field, id string) *DomainError {
	return &DomainError{
		Kind:    ErrReference,
		Entity:  entity,
		Field:   field,
		Message: fmt.Sprintf("%s is invalid: %s with ID %s not found", field, entity, id),
	}
}

// NewInactiveError reports an operation on a disabled product or supplier
func NewInactiveError(entity, name string) *DomainError {
	return &DomainError{
		Kind:    ErrInactiveEntity,
		Entity:  entity,
		Message: fmt.Sprintf("%s '%s' is not active", entity, name),
	}
}

// NewInsufficientStockError reports a sale that exceeds available stock
func NewInsufficientStockError(productName string, available, requested int) *DomainError {
	return &DomainError{
		Kind:    ErrInsufficientStock,
		Entity:  "product",
		Field:   "current_stock",
		Message: fmt.Sprintf("insufficient stock for %s: available %d, requested %d", productName, available, requested),
	}
}

// NewCapacityError reports a stock mutation that would exceed the maximum level
func NewCapacityError(productName string, resulting, max int) *DomainError {
	return &DomainError{
		Kind:    ErrCapacity,
		Entity:  "product",
		Field:   "current_stock",
		Message: fmt.Sprintf("stock for %s would be %d, above the maximum stock level %d", productName, resulting, max),
	}
}

// NewInvalidTransitionError reports an order status change outside the transition graph
func NewInvalidTransitionError(from, to OrderStatus) *DomainError {
	return &DomainError{
		Kind:    ErrInvalidTransition,
		Entity:  "order",
		Field:   "status",
		Message: fmt.Sprintf("cannot change order status from %s to %s", from, to),
	}
}

// NewUnauthorizedError reports failed authentication
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{
		Kind:    ErrUnauthorized,
		Entity:  "user",
		Message: message,
	}
}

// FieldErrors extracts per-field details from a validation error chain
func FieldErrors(err error) []ValidationError {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}
