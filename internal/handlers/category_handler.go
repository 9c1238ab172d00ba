package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"inventory-api/internal/services"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService services.CategoryService
	logger          *logrus.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService services.CategoryService, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// TaxRateRequest sets a category tax rate
type TaxRateRequest struct {
	TaxRate *float64 `json:"tax_rate" binding:"required"`
}

// @Summary Create a new category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body services.CreateCategoryRequest true "Category data"
// @Success 201 {object} Response{data=models.Category}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /category/addNewCategory [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, "Category created successfully", category)
}

// @Summary List categories
// @Tags categories
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param isActive query bool false "Active flag"
// @Param parentCategory query string false "Parent category ID"
// @Param rootsOnly query bool false "Only top-level categories"
// @Success 200 {object} Response{data=services.CategoryPage}
// @Router /category/getAllCategories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	filters := &services.CategoryFilters{
		ParentID:  c.Query("parentCategory"),
		RootsOnly: cast.ToBool(c.Query("rootsOnly")),
		Page:      pageRequest(c),
	}
	if raw := c.Query("isActive"); raw != "" {
		active := cast.ToBool(raw)
		filters.IsActive = &active
	}

	page, err := h.categoryService.ListCategories(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Categories fetched successfully", page)
}

// @Summary Get a category
// @Tags categories
// @Produce json
// @Param categoryId path string true "Category ID"
// @Success 200 {object} Response{data=models.Category}
// @Failure 404 {object} ErrorResponse
// @Router /category/getCategoryById/{categoryId} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.categoryService.GetCategory(c.Request.Context(), c.Param("categoryId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Category fetched successfully", category)
}

// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Param categoryId path string true "Category ID"
// @Param category body services.UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} Response{data=models.Category}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /category/updateCategory/{categoryId} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req services.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), c.Param("categoryId"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Category updated successfully", category)
}

// @Summary Delete a category
// @Description Fails while subcategories or products still reference it
// @Tags categories
// @Produce json
// @Param categoryId path string true "Category ID"
// @Success 200 {object} Response
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /category/deleteCategory/{categoryId} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id := c.Param("categoryId")
	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Category deleted successfully", gin.H{"id": id})
}

// @Summary Set category tax rate
// @Description Update the tax rate and copy it to every product in the category
// @Tags categories
// @Accept json
// @Produce json
// @Param categoryId path string true "Category ID"
// @Param rate body TaxRateRequest true "Tax rate"
// @Success 200 {object} Response{data=services.CategoryCascade}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /category/updateCategoryTaxRateAndProducts/{categoryId} [put]
func (h *CategoryHandler) UpdateTaxRate(c *gin.Context) {
	var req TaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cascade, err := h.categoryService.UpdateTaxRate(c.Request.Context(), c.Param("categoryId"), *req.TaxRate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Category tax rate updated successfully", cascade)
}

// @Summary Deactivate a category and its products
// @Tags categories
// @Produce json
// @Param categoryId path string true "Category ID"
// @Success 200 {object} Response{data=services.CategoryCascade}
// @Failure 404 {object} ErrorResponse
// @Router /category/deactivateCategoryAndProducts/{categoryId} [put]
func (h *CategoryHandler) Deactivate(c *gin.Context) {
	cascade, err := h.categoryService.Deactivate(c.Request.Context(), c.Param("categoryId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Category and products deactivated successfully", cascade)
}

// @Summary Activate a category and its products
// @Tags categories
// @Produce json
// @Param categoryId path string true "Category ID"
// @Success 200 {object} Response{data=services.CategoryCascade}
// @Failure 404 {object} ErrorResponse
// @Router /category/activateCategoryAndProducts/{categoryId} [put]
func (h *CategoryHandler) Activate(c *gin.Context) {
	cascade, err := h.categoryService.Activate(c.Request.Context(), c.Param("categoryId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Category and products activated successfully", cascade)
}

// @Summary Category tree
// @Tags categories
// @Produce json
// @Success 200 {object} Response{data=[]models.CategoryNode}
// @Router /category/getCategoryHierarchy [get]
func (h *CategoryHandler) GetHierarchy(c *gin.Context) {
	tree, err := h.categoryService.GetHierarchy(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Category hierarchy fetched successfully", tree)
}
