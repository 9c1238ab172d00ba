package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Database    DatabaseConfig
	JWT         JWTConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	Inventory   InventoryConfig
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret          string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// CORSConfig holds the allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// InventoryConfig holds inventory behaviour switches
type InventoryConfig struct {
	// MonitorSchedule is a cron spec for the stock monitor; empty disables it
	MonitorSchedule   string
	ExpiryWarningDays int
	// CompensateFailedOrders reverses already-applied stock deltas and
	// cancels the order when a later item of a new order fails
	CompensateFailedOrders bool
	DefaultPageSize        int
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		Database: DatabaseConfig{
			Path:            v.GetString("DB_PATH"),
			MigrationsPath:  v.GetString("DB_MIGRATIONS_PATH"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			BusyTimeout:     v.GetDuration("DB_BUSY_TIMEOUT"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
			BackupDir:       v.GetString("DB_BACKUP_DIR"),
			BackupKeep:      v.GetInt("DB_BACKUP_KEEP"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			Issuer:          v.GetString("JWT_ISSUER"),
			AccessTokenTTL:  v.GetDuration("JWT_ACCESS_TOKEN_TTL"),
			RefreshTokenTTL: v.GetDuration("JWT_REFRESH_TOKEN_TTL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			Enabled:           v.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
			Compress:   v.GetBool("LOG_COMPRESS"),
		},
		Inventory: InventoryConfig{
			MonitorSchedule:        v.GetString("INVENTORY_MONITOR_SCHEDULE"),
			ExpiryWarningDays:      v.GetInt("INVENTORY_EXPIRY_WARNING_DAYS"),
			CompensateFailedOrders: v.GetBool("INVENTORY_COMPENSATE_FAILED_ORDERS"),
			DefaultPageSize:        v.GetInt("INVENTORY_DEFAULT_PAGE_SIZE"),
		},
	}

	if config.Log.Format == "" {
		config.Log.Format = "text"
		if config.IsProduction() {
			config.Log.Format = "json"
		}
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENVIRONMENT", "development")

	v.SetDefault("DB_PATH", "./data/inventory.db")
	v.SetDefault("DB_MIGRATIONS_PATH", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 1)
	v.SetDefault("DB_MAX_IDLE_CONNS", 1)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("DB_BUSY_TIMEOUT", 5*time.Second)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_BACKUP_DIR", "./data/backups")
	v.SetDefault("DB_BACKUP_KEEP", 5)

	v.SetDefault("JWT_ISSUER", "inventory-api")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 24*time.Hour)
	v.SetDefault("JWT_REFRESH_TOKEN_TTL", 10*24*time.Hour)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
	v.SetDefault("LOG_COMPRESS", true)

	v.SetDefault("INVENTORY_MONITOR_SCHEDULE", "@every 1h")
	v.SetDefault("INVENTORY_EXPIRY_WARNING_DAYS", 7)
	v.SetDefault("INVENTORY_COMPENSATE_FAILED_ORDERS", false)
	v.SetDefault("INVENTORY_DEFAULT_PAGE_SIZE", 10)
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		c.JWT.Secret = "development-secret-change-me"
	}

	if c.JWT.AccessTokenTTL <= 0 || c.JWT.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive requests per second and burst")
	}

	if c.Inventory.MonitorSchedule != "" {
		if _, err := cron.ParseStandard(c.Inventory.MonitorSchedule); err != nil {
			return fmt.Errorf("invalid INVENTORY_MONITOR_SCHEDULE %q: %w", c.Inventory.MonitorSchedule, err)
		}
	}

	if c.Inventory.ExpiryWarningDays < 0 {
		return fmt.Errorf("expiry warning days cannot be negative")
	}

	if c.Inventory.DefaultPageSize < 1 {
		return fmt.Errorf("default page size must be at least 1")
	}

	return nil
}

// IsProduction reports a production environment
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsInt gets an environment variable as integer with a fallback value
func GetEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
