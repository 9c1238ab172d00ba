package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"
)

// monitorTimeout bounds a single scheduled scan
const monitorTimeout = 2 * time.Minute

// ExpiringProduct is a product close to or past its expiry date
type ExpiringProduct struct {
	*models.Product
	DaysUntilExpiry int `json:"days_until_expiry"`
}

// InventoryReport lists the products that need attention
type InventoryReport struct {
	GeneratedAt      time.Time         `json:"generated_at"`
	LowStock         []*models.Product `json:"low_stock"`
	OutOfStock       []*models.Product `json:"out_of_stock"`
	Expiring         []ExpiringProduct `json:"expiring"`
	Expired          []ExpiringProduct `json:"expired"`
	MarkedOutOfStock int               `json:"marked_out_of_stock"`
	Restocked        int               `json:"restocked"`
}

// InventoryMonitor periodically scans stock levels and expiry dates
type InventoryMonitor struct {
	productRepo       repositories.ProductRepository
	expiryWarningDays int
	schedule          string
	logger            *logrus.Logger
	now               func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// NewInventoryMonitor creates a monitor. An empty schedule disables the
// background job; Report and Run still work on demand.
func NewInventoryMonitor(productRepo repositories.ProductRepository, schedule string, expiryWarningDays int, logger *logrus.Logger) *InventoryMonitor {
	return &InventoryMonitor{
		productRepo:       productRepo,
		expiryWarningDays: expiryWarningDays,
		schedule:          schedule,
		logger:            logger,
		now:               models.Now,
	}
}

// Start registers the scan on the cron schedule and starts the scheduler
func (m *InventoryMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.schedule == "" || m.cron != nil {
		return nil
	}

	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(m.schedule, func() {
		defer func() {
			if r := recover(); r != nil {
				m.logger.WithField("panic", r).Error("Inventory monitor panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), monitorTimeout)
		defer cancel()

		if _, err := m.Run(ctx); err != nil {
			m.logger.WithError(err).Error("Inventory monitor run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid monitor schedule %q: %w", m.schedule, err)
	}

	c.Start()
	m.cron = c
	m.logger.WithField("schedule", m.schedule).Info("Inventory monitor started")
	return nil
}

// Stop stops the scheduler and waits for a running scan to finish
func (m *InventoryMonitor) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	m.logger.Info("Inventory monitor stopped")
}

// Report classifies active and out-of-stock products without changing them
func (m *InventoryMonitor) Report(ctx context.Context) (*InventoryReport, error) {
	active, err := m.productRepo.GetByStatus(ctx, models.ProductStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to get active products: %w", err)
	}
	flagged, err := m.productRepo.GetByStatus(ctx, models.ProductStatusOutOfStock)
	if err != nil {
		return nil, fmt.Errorf("failed to get out of stock products: %w", err)
	}

	now := m.now()
	report := &InventoryReport{
		GeneratedAt: now,
		LowStock:    []*models.Product{},
		OutOfStock:  []*models.Product{},
		Expiring:    []ExpiringProduct{},
		Expired:     []ExpiringProduct{},
	}

	for _, p := range append(active, flagged...) {
		switch {
		case p.CurrentStock <= 0:
			report.OutOfStock = append(report.OutOfStock, p)
		case p.IsLowStock():
			report.LowStock = append(report.LowStock, p)
		}

		days := p.DaysUntilExpiry(now)
		if days == nil {
			continue
		}
		if p.IsExpired(now) {
			report.Expired = append(report.Expired, ExpiringProduct{Product: p, DaysUntilExpiry: *days})
		} else if *days <= m.expiryWarningDays {
			report.Expiring = append(report.Expiring, ExpiringProduct{Product: p, DaysUntilExpiry: *days})
		}
	}

	return report, nil
}

// Run builds the report, then marks active products without stock as
// out_of_stock and restocked out_of_stock products as active again
func (m *InventoryMonitor) Run(ctx context.Context) (*InventoryReport, error) {
	report, err := m.Report(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range report.OutOfStock {
		if p.Status != models.ProductStatusActive {
			continue
		}
		if err := m.productRepo.UpdateStatus(ctx, p.ID, models.ProductStatusOutOfStock); err != nil {
			return nil, fmt.Errorf("failed to mark %s out of stock: %w", p.Name, err)
		}
		p.MarkOutOfStock()
		report.MarkedOutOfStock++
	}

	flagged, err := m.productRepo.GetByStatus(ctx, models.ProductStatusOutOfStock)
	if err != nil {
		return nil, fmt.Errorf("failed to get out of stock products: %w", err)
	}
	for _, p := range flagged {
		if p.CurrentStock <= 0 {
			continue
		}
		if err := m.productRepo.UpdateStatus(ctx, p.ID, models.ProductStatusActive); err != nil {
			return nil, fmt.Errorf("failed to reactivate %s: %w", p.Name, err)
		}
		report.Restocked++
	}

	m.logger.WithFields(logrus.Fields{
		"low_stock":           len(report.LowStock),
		"out_of_stock":        len(report.OutOfStock),
		"expiring":            len(report.Expiring),
		"expired":             len(report.Expired),
		"marked_out_of_stock": report.MarkedOutOfStock,
		"restocked":           report.Restocked,
	}).Info("Inventory scan completed")

	return report, nil
}
