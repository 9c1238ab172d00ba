package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"inventory-api/internal/models"
	"inventory-api/internal/services"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService services.ProductService
	monitor        *services.InventoryMonitor
	logger         *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService services.ProductService, monitor *services.InventoryMonitor, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		monitor:        monitor,
		logger:         logger,
	}
}

// StockUpdateRequest applies a stock delta
type StockUpdateRequest struct {
	NewStock *int `json:"new_stock" binding:"required"`
}

// ReserveStockRequest takes quantity out of stock
type ReserveStockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// ToggleStatusRequest activates or deactivates a product
type ToggleStatusRequest struct {
	Action string `json:"action" binding:"required"`
}

// pageRequest reads page and limit from the query string
func pageRequest(c *gin.Context) models.PageRequest {
	return models.PageRequest{
		Page:  cast.ToInt(c.Query("page")),
		Limit: cast.ToInt(c.Query("limit")),
	}.Normalize()
}

// @Summary Create a new product
// @Description Create a product; tax rate defaults to the category's
// @Tags products
// @Accept json
// @Produce json
// @Param product body services.CreateProductRequest true "Product data"
// @Success 201 {object} Response{data=services.ProductCreated}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /products/addNewProduct [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, "Product created successfully", created)
}

// @Summary Update product stock
// @Description Add new_stock (may be negative) to the current stock
// @Tags products
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param stock body StockUpdateRequest true "Stock delta"
// @Success 200 {object} Response{data=models.Product}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /products/updateProductStock/{productId} [put]
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	var req StockUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.UpdateStock(c.Request.Context(), c.Param("productId"), *req.NewStock)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Stock updated successfully", product)
}

// @Summary Reserve product stock
// @Description Remove quantity from stock only if that much is available
// @Tags products
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param reservation body ReserveStockRequest true "Quantity to reserve"
// @Success 200 {object} Response{data=models.Product}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /products/reserveStock/{productId} [put]
func (h *ProductHandler) ReserveStock(c *gin.Context) {
	var req ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.ReserveStock(c.Request.Context(), c.Param("productId"), req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Stock reserved successfully", product)
}

// @Summary Delete a product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /products/deleteProduct/{productId} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("productId")
	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Product deleted successfully", gin.H{"id": id})
}

// @Summary List products
// @Description Page through products; status defaults to active, "all" lists every status
// @Tags products
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param category query string false "Category ID"
// @Param brand query string false "Brand"
// @Param status query string false "active, inactive, out_of_stock or all"
// @Param q query string false "Search text"
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} Response{data=services.ProductPage}
// @Failure 400 {object} ErrorResponse
// @Router /products/getAllProducts [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filters := &services.ProductFilters{
		CategoryID: c.Query("category"),
		Brand:      c.Query("brand"),
		Status:     models.ProductStatus(c.Query("status")),
		Search:     c.Query("q"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
		Page:       pageRequest(c),
	}

	page, err := h.productService.ListProducts(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Products fetched successfully", page)
}

// @Summary Get a product
// @Tags products
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} Response{data=services.ProductDetails}
// @Failure 404 {object} ErrorResponse
// @Router /products/getProductById/{productId} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Product fetched successfully", product)
}

// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param product body services.UpdateProductRequest true "Fields to change"
// @Success 200 {object} Response{data=models.Product}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /products/updateProduct/{productId} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("productId"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Product updated successfully", product)
}

// @Summary List low stock products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=services.ProductPage}
// @Router /products/getLowStockProducts [get]
func (h *ProductHandler) GetLowStockProducts(c *gin.Context) {
	page, err := h.productService.GetLowStockProducts(c.Request.Context(), pageRequest(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Low stock products fetched successfully", page)
}

// @Summary Inventory overview
// @Description Count active products per stock bucket and list one bucket
// @Tags products
// @Produce json
// @Param filter query string false "all, in, low or out" default(all)
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=services.InventoryOverview}
// @Failure 400 {object} ErrorResponse
// @Router /products/getInventoryOverview [get]
func (h *ProductHandler) GetInventoryOverview(c *gin.Context) {
	overview, err := h.productService.GetInventoryOverview(c.Request.Context(), c.Query("filter"), pageRequest(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Inventory overview fetched successfully", overview)
}

// @Summary List products in a category
// @Tags products
// @Produce json
// @Param categoryId path string true "Category ID"
// @Param status query string false "Product status" default(active)
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=services.ProductPage}
// @Router /products/getProductsByCategory/{categoryId} [get]
func (h *ProductHandler) GetProductsByCategory(c *gin.Context) {
	status := models.ProductStatus(c.Query("status"))
	page, err := h.productService.GetProductsByCategory(c.Request.Context(), c.Param("categoryId"), status, pageRequest(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Products fetched successfully", page)
}

// @Summary Activate or deactivate a product
// @Tags products
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param action body ToggleStatusRequest true "activate or deactivate"
// @Success 200 {object} Response{data=models.Product}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /products/toggleProductStatus/{productId} [put]
func (h *ProductHandler) ToggleStatus(c *gin.Context) {
	var req ToggleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.ToggleStatus(c.Request.Context(), c.Param("productId"), req.Action)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Product status updated to "+string(product.Status), product)
}

// @Summary Active and inactive products
// @Tags products
// @Produce json
// @Success 200 {object} Response{data=services.ProductStatusSummary}
// @Router /products/getActiveAndInactiveProducts [get]
func (h *ProductHandler) GetActiveAndInactive(c *gin.Context) {
	summary, err := h.productService.GetActiveAndInactive(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Products fetched successfully", summary)
}

// @Summary List products of a brand
// @Tags products
// @Produce json
// @Param brand path string true "Brand"
// @Success 200 {object} Response{data=[]models.Product}
// @Failure 404 {object} ErrorResponse
// @Router /products/getProductsByBrand/{brand} [get]
func (h *ProductHandler) GetProductsByBrand(c *gin.Context) {
	products, err := h.productService.GetProductsByBrand(c.Request.Context(), c.Param("brand"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Products fetched successfully", gin.H{
		"products": products,
		"count":    len(products),
	})
}

// @Summary Set stock thresholds
// @Tags products
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param levels body services.StockLevelsRequest true "Minimum and maximum stock"
// @Success 200 {object} Response{data=models.Product}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /products/setStockLevels/{productId} [put]
func (h *ProductHandler) SetStockLevels(c *gin.Context) {
	var req services.StockLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.SetStockLevels(c.Request.Context(), c.Param("productId"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Stock levels updated successfully", product)
}

// @Summary Inventory alerts
// @Description Low stock, out of stock, expiring and expired products
// @Tags products
// @Produce json
// @Success 200 {object} Response{data=services.InventoryReport}
// @Router /products/getInventoryAlerts [get]
func (h *ProductHandler) GetInventoryAlerts(c *gin.Context) {
	report, err := h.monitor.Report(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Inventory alerts fetched successfully", report)
}
