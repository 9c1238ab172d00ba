package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"inventory-api/internal/middleware"
	"inventory-api/internal/services"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	Services    *services.ServiceContainer
	AuthService *middleware.AuthService
	// HealthCheck pings the database
	HealthCheck   func(ctx context.Context) error
	SecureCookies bool
	Logger        *logrus.Logger
}

// MiddlewareConfig holds the knobs of the global middleware chain
type MiddlewareConfig struct {
	AllowedOrigins    []string
	RateLimitEnabled  bool
	RequestsPerSecond float64
	Burst             int
	MaxBodyBytes      int64
	SlowRequest       time.Duration
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	logger := config.Logger
	svc := config.Services

	productHandler := NewProductHandler(svc.ProductService, svc.InventoryMonitor, logger)
	supplierHandler := NewSupplierHandler(svc.SupplierService, logger)
	categoryHandler := NewCategoryHandler(svc.CategoryService, logger)
	orderHandler := NewOrderHandler(svc.OrderService, logger)
	userHandler := NewUserHandler(svc.UserService, config.AuthService, config.SecureCookies, logger)

	requireAuth := middleware.Authentication(config.AuthService)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if config.HealthCheck != nil {
			if err := config.HealthCheck(c.Request.Context()); err != nil {
				logger.WithError(err).Error("Health check failed")
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":  status,
			"service": "inventory-api",
			"version": Version,
		})
	})

	router.NoRoute(middleware.NoRoute())

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/registerUser", userHandler.Register)
			users.POST("/loginUser", userHandler.Login)
			users.POST("/refreshToken", userHandler.Refresh)
			users.POST("/logoutUser", requireAuth, userHandler.Logout)
			users.POST("/changePassword", requireAuth, userHandler.ChangePassword)
			users.GET("/me", requireAuth, userHandler.Me)
		}

		products := v1.Group("/products")
		{
			products.POST("/addNewProduct", productHandler.CreateProduct)
			products.PUT("/updateProductStock/:productId", productHandler.UpdateStock)
			products.PUT("/reserveStock/:productId", productHandler.ReserveStock)
			products.DELETE("/deleteProduct/:productId", requireAuth, productHandler.DeleteProduct)
			products.GET("/getAllProducts", productHandler.ListProducts)
			products.GET("/getProductById/:productId", productHandler.GetProduct)
			products.PUT("/updateProduct/:productId", productHandler.UpdateProduct)
			products.GET("/getLowStockProducts", requireAuth, productHandler.GetLowStockProducts)
			products.GET("/getInventoryOverview", productHandler.GetInventoryOverview)
			products.GET("/getProductsByCategory/:categoryId", productHandler.GetProductsByCategory)
			products.PUT("/toggleProductStatus/:productId", productHandler.ToggleStatus)
			products.GET("/getActiveAndInactiveProducts", productHandler.GetActiveAndInactive)
			products.GET("/getProductsByBrand/:brand", productHandler.GetProductsByBrand)
			products.PUT("/setStockLevels/:productId", productHandler.SetStockLevels)
			products.GET("/getInventoryAlerts", productHandler.GetInventoryAlerts)
		}

		category := v1.Group("/category")
		{
			category.POST("/addNewCategory", categoryHandler.CreateCategory)
			category.GET("/getAllCategories", categoryHandler.ListCategories)
			category.GET("/getCategoryById/:categoryId", categoryHandler.GetCategory)
			category.PUT("/updateCategory/:categoryId", categoryHandler.UpdateCategory)
			category.DELETE("/deleteCategory/:categoryId", categoryHandler.DeleteCategory)
			category.PUT("/updateCategoryTaxRateAndProducts/:categoryId", categoryHandler.UpdateTaxRate)
			category.PUT("/deactivateCategoryAndProducts/:categoryId", categoryHandler.Deactivate)
			category.PUT("/activateCategoryAndProducts/:categoryId", categoryHandler.Activate)
			category.GET("/getCategoryHierarchy", categoryHandler.GetHierarchy)
		}

		supplier := v1.Group("/supplier")
		{
			supplier.POST("/addNewSupplier", supplierHandler.CreateSupplier)
			supplier.GET("/getAllSuppliers", supplierHandler.ListSuppliers)
			supplier.GET("/getSupplierById/:supplierId", supplierHandler.GetSupplier)
			supplier.PUT("/updateSupplier/:supplierId", supplierHandler.UpdateSupplier)
			supplier.PATCH("/toggleSupplierStatus/:supplierId", supplierHandler.ToggleStatus)
			supplier.DELETE("/deleteSupplier/:supplierId", supplierHandler.DeleteSupplier)
		}

		order := v1.Group("/order")
		{
			order.POST("/createOrder", orderHandler.CreateOrder)
			order.GET("/getAllOrders", orderHandler.ListOrders)
			order.GET("/getOrderById/:orderId", orderHandler.GetOrder)
			order.PATCH("/updateOrderStatus/:orderId", orderHandler.UpdateStatus)
			order.PATCH("/updatePaymentStatus/:orderId", orderHandler.UpdatePaymentStatus)
			order.PATCH("/cancelOrder/:orderId", orderHandler.CancelOrder)
			order.GET("/getOrdersBySupplier/:supplierId", orderHandler.GetOrdersBySupplier)
			order.GET("/getRevenue", orderHandler.GetRevenue)
		}
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, logger *logrus.Logger, config *MiddlewareConfig) {
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = 1 << 20
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(config.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(config.MaxBodyBytes))
	router.Use(middleware.ContentTypeValidation())
	router.Use(middleware.RequestValidation())

	if config.RateLimitEnabled {
		router.Use(middleware.RateLimiter(logger, config.RequestsPerSecond, config.Burst))
	}

	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.PerformanceMonitor(logger, config.SlowRequest))
	router.Use(middleware.AuditLogger(logger))
	router.Use(middleware.ErrorTracker(logger))
}
