package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Email validation regex pattern
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Supplier phone numbers: digits, spaces, dashes, parentheses and an optional leading plus
var phoneRegex = regexp.MustCompile(`^[\+]?[0-9\s\-\(\)]{10,15}$`)

var whitespaceRegex = regexp.MustCompile(`\s+`)

var nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)

var slugInvalidRegex = regexp.MustCompile(`[^a-z0-9\s-]`)

// IsValidEmail reports whether the address has a plausible email format
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPhone validates the supplier phone format
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// SanitizeString removes extra whitespace and trims the string
func SanitizeString(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(value, fieldName string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " is required",
			Value:   value,
		}
	}
	return nil
}

// ValidateStringLength validates string length constraints
func ValidateStringLength(value, fieldName string, minLength, maxLength int) *ValidationError {
	length := len(strings.TrimSpace(value))

	if minLength > 0 && length < minLength {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be at least %d characters", fieldName, minLength),
			Value:   value,
		}
	}

	if maxLength > 0 && length > maxLength {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s cannot exceed %d characters", fieldName, maxLength),
			Value:   value,
		}
	}

	return nil
}

// ValidateEmail validates email format; empty values are accepted
func ValidateEmail(email, fieldName string) *ValidationError {
	if email == "" {
		return nil
	}

	if !IsValidEmail(email) {
		return &ValidationError{
			Field:   fieldName,
			Message: "Invalid email format",
			Value:   email,
		}
	}

	return nil
}

// ValidateNonNegative validates that a number is not negative
func ValidateNonNegative(value float64, fieldName string) *ValidationError {
	if value < 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " cannot be negative",
			Value:   value,
		}
	}
	return nil
}

// ValidatePositiveInteger validates that an integer is positive
func ValidatePositiveInteger(value int, fieldName string) *ValidationError {
	if value <= 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " must be greater than 0",
			Value:   value,
		}
	}
	return nil
}

// ValidatePercentage validates a 0-100 rate
func ValidatePercentage(value float64, fieldName string) *ValidationError {
	if value < 0 || value > 100 {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " must be between 0 and 100",
			Value:   value,
		}
	}
	return nil
}

// ValidateEnum validates that a value is in the allowed enum values
func ValidateEnum(value string, allowedValues []string, fieldName string) *ValidationError {
	for _, allowed := range allowedValues {
		if value == allowed {
			return nil
		}
	}

	return &ValidationError{
		Field:   fieldName,
		Message: fmt.Sprintf("%s must be one of: %s", fieldName, strings.Join(allowedValues, ", ")),
		Value:   value,
	}
}

// collect appends non-nil validation failures
func collect(errs []ValidationError, candidates ...*ValidationError) []ValidationError {
	for _, c := range candidates {
		if c != nil {
			errs = append(errs, *c)
		}
	}
	return errs
}

// Slugify lower-cases a name and joins its words with dashes
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidRegex.ReplaceAllString(slug, "")
	slug = whitespaceRegex.ReplaceAllString(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
