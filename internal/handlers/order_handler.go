package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"inventory-api/internal/models"
	"inventory-api/internal/services"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService services.OrderService
	logger       *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService services.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// OrderStatusRequest moves an order to a new status
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PaymentStatusRequest sets the payment status of an order
type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// @Summary Create an order
// @Description Create a sale or purchase order and apply its stock deltas
// @Tags orders
// @Accept json
// @Produce json
// @Param order body services.CreateOrderRequest true "Order data"
// @Success 201 {object} Response{data=services.OrderDetails}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /order/createOrder [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, "Order created successfully", order)
}

// @Summary List orders
// @Tags orders
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param orderType query string false "sale or purchase"
// @Param status query string false "Order status"
// @Param paymentStatus query string false "Payment status"
// @Param sortBy query string false "Sort field" default(orderDate)
// @Param sortOrder query string false "asc or desc" default(desc)
// @Success 200 {object} Response{data=services.OrderPage}
// @Failure 400 {object} ErrorResponse
// @Router /order/getAllOrders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filters := &services.OrderFilters{
		OrderType:     c.Query("orderType"),
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
		SortBy:        c.Query("sortBy"),
		SortOrder:     c.Query("sortOrder"),
		Page:          pageRequest(c),
	}

	page, err := h.orderService.ListOrders(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Orders fetched successfully", page)
}

// @Summary Get an order
// @Tags orders
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {object} Response{data=services.OrderDetails}
// @Failure 404 {object} ErrorResponse
// @Router /order/getOrderById/{orderId} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Order fetched successfully", order)
}

// @Summary Update order status
// @Tags orders
// @Accept json
// @Produce json
// @Param orderId path string true "Order ID"
// @Param status body OrderStatusRequest true "New status"
// @Success 200 {object} Response{data=models.Order}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /order/updateOrderStatus/{orderId} [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("orderId"), models.OrderStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Order status updated to "+string(order.Status), order)
}

// @Summary Update payment status
// @Tags orders
// @Accept json
// @Produce json
// @Param orderId path string true "Order ID"
// @Param payment body PaymentStatusRequest true "New payment status"
// @Success 200 {object} Response{data=models.Order}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /order/updatePaymentStatus/{orderId} [patch]
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	var req PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), c.Param("orderId"), req.PaymentStatus)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Payment status updated successfully", order)
}

// @Summary Cancel an order
// @Description Reverse the stock deltas of a pending, confirmed or processing order
// @Tags orders
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {object} Response{data=models.Order}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /order/cancelOrder/{orderId} [patch]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	order, err := h.orderService.CancelOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Order cancelled successfully", order)
}

// @Summary List orders of a supplier
// @Tags orders
// @Produce json
// @Param supplierId path string true "Supplier ID"
// @Param status query string false "Order status"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=services.OrderPage}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /order/getOrdersBySupplier/{supplierId} [get]
func (h *OrderHandler) GetOrdersBySupplier(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))
	page, err := h.orderService.GetOrdersBySupplier(c.Request.Context(), c.Param("supplierId"), status, pageRequest(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Supplier orders fetched successfully", page)
}

// @Summary Revenue for a date range
// @Description Sum of paid and partially paid sale orders, cancelled excluded. A date-only endDate covers the whole day.
// @Tags orders
// @Produce json
// @Param startDate query string true "Start date"
// @Param endDate query string true "End date"
// @Success 200 {object} Response{data=repositories.RevenueSummary}
// @Failure 400 {object} ErrorResponse
// @Router /order/getRevenue [get]
func (h *OrderHandler) GetRevenue(c *gin.Context) {
	var start, end time.Time
	if raw := c.Query("startDate"); raw != "" {
		start = cast.ToTime(raw)
	}
	if raw := c.Query("endDate"); raw != "" {
		end = cast.ToTime(raw)
		if end.Equal(end.Truncate(24 * time.Hour)) {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
	}

	summary, err := h.orderService.GetRevenue(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Revenue fetched successfully", summary)
}
