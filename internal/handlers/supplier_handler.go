package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"inventory-api/internal/services"
)

// SupplierHandler handles supplier-related HTTP requests
type SupplierHandler struct {
	supplierService services.SupplierService
	logger          *logrus.Logger
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(supplierService services.SupplierService, logger *logrus.Logger) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
		logger:          logger,
	}
}

// @Summary Create a new supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Param supplier body services.CreateSupplierRequest true "Supplier data"
// @Success 201 {object} Response{data=models.Supplier}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /supplier/addNewSupplier [post]
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req services.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	supplier, err := h.supplierService.CreateSupplier(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, "Supplier created successfully", supplier)
}

// @Summary List suppliers
// @Tags suppliers
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param isActive query bool false "Active flag"
// @Param businessType query string false "Business type"
// @Param search query string false "Name, company or email"
// @Success 200 {object} Response{data=services.SupplierPage}
// @Router /supplier/getAllSuppliers [get]
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	filters := &services.SupplierFilters{
		BusinessType: c.Query("businessType"),
		Search:       c.Query("search"),
		Page:         pageRequest(c),
	}
	if raw := c.Query("isActive"); raw != "" {
		active, err := cast.ToBoolE(raw)
		if err != nil {
			bindError(c, err)
			return
		}
		filters.IsActive = &active
	}

	page, err := h.supplierService.ListSuppliers(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Suppliers fetched successfully", page)
}

// @Summary Get a supplier
// @Tags suppliers
// @Produce json
// @Param supplierId path string true "Supplier ID"
// @Success 200 {object} Response{data=services.SupplierDetails}
// @Failure 404 {object} ErrorResponse
// @Router /supplier/getSupplierById/{supplierId} [get]
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.supplierService.GetSupplier(c.Request.Context(), c.Param("supplierId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Supplier fetched successfully", supplier)
}

// @Summary Update a supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Param supplierId path string true "Supplier ID"
// @Param supplier body services.UpdateSupplierRequest true "Fields to change"
// @Success 200 {object} Response{data=models.Supplier}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /supplier/updateSupplier/{supplierId} [put]
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	var req services.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	supplier, err := h.supplierService.UpdateSupplier(c.Request.Context(), c.Param("supplierId"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Supplier updated successfully", supplier)
}

// @Summary Toggle supplier status
// @Tags suppliers
// @Produce json
// @Param supplierId path string true "Supplier ID"
// @Success 200 {object} Response{data=models.Supplier}
// @Failure 404 {object} ErrorResponse
// @Router /supplier/toggleSupplierStatus/{supplierId} [patch]
func (h *SupplierHandler) ToggleStatus(c *gin.Context) {
	supplier, err := h.supplierService.ToggleStatus(c.Request.Context(), c.Param("supplierId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "Supplier deactivated successfully"
	if supplier.IsActive {
		message = "Supplier activated successfully"
	}
	respond(c, http.StatusOK, message, supplier)
}

// @Summary Delete a supplier
// @Tags suppliers
// @Produce json
// @Param supplierId path string true "Supplier ID"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /supplier/deleteSupplier/{supplierId} [delete]
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	id := c.Param("supplierId")
	if err := h.supplierService.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Supplier deleted successfully", gin.H{"id": id})
}
