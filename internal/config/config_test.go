package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Port = %s, want 8000", cfg.Port)
	}
	if cfg.Database.MaxOpenConns != 1 {
		t.Errorf("Database.MaxOpenConns = %d, want 1", cfg.Database.MaxOpenConns)
	}
	if cfg.JWT.AccessTokenTTL != 24*time.Hour {
		t.Errorf("JWT.AccessTokenTTL = %v, want 24h", cfg.JWT.AccessTokenTTL)
	}
	if cfg.Inventory.CompensateFailedOrders {
		t.Error("Inventory.CompensateFailedOrders should default to false")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %s, want text outside production", cfg.Log.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults failed: %v", err)
	}
	if cfg.JWT.Secret == "" {
		t.Error("Validate() should fill a development JWT secret")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("INVENTORY_COMPENSATE_FAILED_ORDERS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if !cfg.Inventory.CompensateFailedOrders {
		t.Error("Inventory.CompensateFailedOrders should be true")
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("CORS.AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.JWT.AccessTokenTTL != 15*time.Minute {
		t.Errorf("JWT.AccessTokenTTL = %v, want 15m", cfg.JWT.AccessTokenTTL)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		cfg.JWT.Secret = "secret"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad cron spec", func(c *Config) { c.Inventory.MonitorSchedule = "every hour" }},
		{"missing secret in production", func(c *Config) { c.Environment = "production"; c.JWT.Secret = "" }},
		{"zero pool", func(c *Config) { c.Database.MaxOpenConns = 0 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero page size", func(c *Config) { c.Inventory.DefaultPageSize = 0 }},
		{"bad rate limit", func(c *Config) { c.RateLimit.Burst = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}

	cfg := valid()
	cfg.Inventory.MonitorSchedule = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with monitor disabled failed: %v", err)
	}
}

func TestAdaptConfigForServerless(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	unchanged := AdaptConfigForServerless(cfg, false)
	if unchanged.Inventory.MonitorSchedule == "" {
		t.Error("server mode should keep the monitor schedule")
	}

	t.Setenv("EFS_MOUNT_PATH", "/mnt/efs")
	adapted := AdaptConfigForServerless(cfg, true)
	if adapted.Database.Path != "/mnt/efs/inventory.db" {
		t.Errorf("Database.Path = %s, want EFS path", adapted.Database.Path)
	}
	if adapted.Inventory.MonitorSchedule != "" {
		t.Error("serverless mode should disable the monitor")
	}
	if adapted.Database.BackupDir != "" {
		t.Error("serverless mode should disable migration backups")
	}
}

func TestDatabaseConfig_ToConnectionConfig(t *testing.T) {
	cfg := DatabaseConfig{Path: "inventory.db", BackupDir: filepath.Join(t.TempDir(), "backups"), BackupKeep: 3}
	conn := cfg.ToConnectionConfig(logrus.New())
	if conn.Backups == nil {
		t.Error("Backups should be set when BackupDir is configured")
	}
	if conn.BackupKeep != 3 {
		t.Errorf("BackupKeep = %d, want 3", conn.BackupKeep)
	}

	cfg.BackupDir = ""
	if cfg.ToConnectionConfig(nil).Backups != nil {
		t.Error("Backups should be nil without BackupDir")
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(LogConfig{Level: "debug", Format: "json", File: filepath.Join(t.TempDir(), "logs", "app.log"), MaxSizeMB: 1})
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Error("json format should use JSONFormatter")
	}

	fallback := NewLogger(LogConfig{Level: "nonsense"})
	if fallback.GetLevel() != logrus.InfoLevel {
		t.Errorf("invalid level should fall back to info, got %v", fallback.GetLevel())
	}
}
