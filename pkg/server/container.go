package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inventory-api/internal/config"
	"inventory-api/internal/database"
	"inventory-api/internal/handlers"
	"inventory-api/internal/middleware"
	"inventory-api/internal/repositories"
	"inventory-api/internal/repositories/sqlite"
	"inventory-api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	ProductService  services.ProductService
	SupplierService services.SupplierService
	OrderService    services.OrderService
	CategoryService services.CategoryService
	UserService     services.UserService
	Monitor         *services.InventoryMonitor
	AuthService     *middleware.AuthService

	// Internal dependencies
	db       *database.ConnectionManager
	repos    *repositories.RepositoryContainer
	services *services.ServiceContainer
	router   *gin.Engine
}

// NewContainer opens the database, runs migrations when enabled and wires
// repositories, services and the HTTP router
func NewContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if logger == nil {
		logger = config.NewLogger(cfg.Log)
	}

	db := database.NewConnectionManager(cfg.Database.ToConnectionConfig(logger))
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repos := sqlite.NewSQLiteRepositoryManager(db.GetDB(), logger).Repositories()

	authService := middleware.NewAuthService(&middleware.AuthConfig{
		JWTSecret:       cfg.JWT.Secret,
		Issuer:          cfg.JWT.Issuer,
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
	})

	serviceContainer, err := services.NewServiceContainer(repos, &services.ServiceConfig{
		CompensateFailedOrders: cfg.Inventory.CompensateFailedOrders,
		ExpiryWarningDays:      cfg.Inventory.ExpiryWarningDays,
		MonitorSchedule:        cfg.Inventory.MonitorSchedule,
		Tokens:                 authService,
		Logger:                 logger,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create service container: %w", err)
	}

	container := &Container{
		Config:          cfg,
		Logger:          logger,
		ProductService:  serviceContainer.ProductService,
		SupplierService: serviceContainer.SupplierService,
		OrderService:    serviceContainer.OrderService,
		CategoryService: serviceContainer.CategoryService,
		UserService:     serviceContainer.UserService,
		Monitor:         serviceContainer.InventoryMonitor,
		AuthService:     authService,
		db:              db,
		repos:           repos,
		services:        serviceContainer,
	}
	container.router = container.newRouter()

	return container, nil
}

func (c *Container) newRouter() *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, c.Logger, &handlers.MiddlewareConfig{
		AllowedOrigins:    c.Config.CORS.AllowedOrigins,
		RateLimitEnabled:  c.Config.RateLimit.Enabled,
		RequestsPerSecond: c.Config.RateLimit.RequestsPerSecond,
		Burst:             c.Config.RateLimit.Burst,
	})
	handlers.SetupRoutes(router, &handlers.RouterConfig{
		Services:      c.services,
		AuthService:   c.AuthService,
		HealthCheck:   c.db.HealthCheck,
		SecureCookies: c.Config.IsProduction(),
		Logger:        c.Logger,
	})

	return router
}

// Router returns the configured HTTP handler
func (c *Container) Router() http.Handler {
	return c.router
}

// Database returns the connection manager
func (c *Container) Database() *database.ConnectionManager {
	return c.db
}

// Close stops the monitor and closes the database
func (c *Container) Close() error {
	if c.services != nil {
		if err := c.services.Close(); err != nil {
			return fmt.Errorf("failed to close services: %w", err)
		}
	}

	if c.db != nil {
		c.db.LogStats()
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
