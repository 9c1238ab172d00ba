package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inventory-api/internal/middleware"
	"inventory-api/internal/models"
	"inventory-api/internal/repositories"
	"inventory-api/internal/services"
)

// Response is the success envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// FieldError is one invalid field in a failure envelope
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success   bool         `json:"success"`
	Error     string       `json:"error"`
	Message   string       `json:"message"`
	Errors    []FieldError `json:"errors,omitempty"`
	Details   interface{}  `json:"details,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

// partialStockDetails describes an order whose stock was only partly applied
type partialStockDetails struct {
	OrderID     string              `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	Applied     []models.StockDelta `json:"applied"`
	Failed      models.StockDelta   `json:"failed"`
	Compensated bool                `json:"compensated"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// errorKind maps an error to its HTTP status and envelope kind. Reference
// errors are checked before not-found: a dangling id in a body is a bad
// request, a missing path resource is a 404.
func errorKind(err error) (int, string) {
	switch {
	case services.IsPartialStock(err):
		return http.StatusBadRequest, "partial_stock_update"
	case errors.Is(err, models.ErrReference):
		return http.StatusBadRequest, "invalid_reference"
	case errors.Is(err, models.ErrValidation), errors.Is(err, repositories.ErrInvalidID):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, models.ErrInsufficientStock):
		return http.StatusBadRequest, "insufficient_stock"
	case errors.Is(err, models.ErrCapacity):
		return http.StatusBadRequest, "capacity_exceeded"
	case errors.Is(err, models.ErrInactiveEntity):
		return http.StatusBadRequest, "inactive_entity"
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusBadRequest, "invalid_transition"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case repositories.IsConnection(err):
		return http.StatusServiceUnavailable, "service_unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

// respondError writes the failure envelope for err. Unexpected errors are
// logged and answered with a generic message.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status, kind := errorKind(err)
	resp := ErrorResponse{
		Error:     kind,
		Message:   err.Error(),
		RequestID: c.GetString(middleware.RequestIDKey),
	}

	var domainErr *models.DomainError
	if errors.As(err, &domainErr) {
		resp.Message = domainErr.Error()
		for _, f := range domainErr.Fields {
			resp.Errors = append(resp.Errors, FieldError{Field: f.Field, Message: f.Message, Value: f.Value})
		}
	}

	var partial *services.StockApplicationError
	if errors.As(err, &partial) {
		resp.Details = partialStockDetails{
			OrderID:     partial.OrderID,
			OrderNumber: partial.OrderNumber,
			Applied:     partial.Applied,
			Failed:      partial.Failed,
			Compensated: partial.Compensated,
		}
	}

	if status >= http.StatusInternalServerError {
		logger.WithFields(logrus.Fields{
			"request_id": resp.RequestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).WithError(err).Error("Request failed")
		resp.Message = "An internal error occurred"
		if status == http.StatusServiceUnavailable {
			resp.Message = "The database is unavailable"
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// bindError answers a body that could not be decoded
func bindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:     "validation_error",
		Message:   "Invalid request body: " + err.Error(),
		RequestID: c.GetString(middleware.RequestIDKey),
	})
}
