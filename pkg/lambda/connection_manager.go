package lambda

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inventory-api/internal/config"
	"inventory-api/pkg/server"
)

// staleAfter is how long a warm container may sit idle before IsHealthy
// reports it stale
const staleAfter = 5 * time.Minute

// ConnectionManager keeps one application container alive across warm
// invocations of a Lambda function
type ConnectionManager struct {
	mu        sync.Mutex
	container *server.Container
	lastUsed  time.Time
	config    *config.Config
	now       func() time.Time
}

var (
	globalConnectionManager *ConnectionManager
	connectionManagerOnce   sync.Once
)

// GetConnectionManager returns the global connection manager instance
func GetConnectionManager() *ConnectionManager {
	connectionManagerOnce.Do(func() {
		globalConnectionManager = NewConnectionManager(nil)
	})
	return globalConnectionManager
}

// NewConnectionManager creates a manager for cfg. A nil cfg is loaded from
// the environment on first use.
func NewConnectionManager(cfg *config.Config) *ConnectionManager {
	return &ConnectionManager{config: cfg, now: time.Now}
}

// GetContainer returns the container, building it on first use or after Cleanup
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*server.Container, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		cm.lastUsed = cm.now()
		return cm.container, nil
	}

	if cm.config == nil {
		cfg, err := config.GetOptimizedConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		cm.config = cfg
	}

	container, err := server.NewContainer(ctx, cm.config, nil)
	if err != nil {
		return nil, err
	}

	cm.container = container
	cm.lastUsed = cm.now()
	return container, nil
}

// IsHealthy reports a container that exists and was used recently
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	return cm.container != nil && cm.now().Sub(cm.lastUsed) < staleAfter
}

// Cleanup closes the container; the next GetContainer builds a new one
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		return nil
	}

	err := cm.container.Close()
	cm.container = nil
	return err
}

// Handler returns a HandlerFunc that serves requests through the container's router
func (cm *ConnectionManager) Handler() HandlerFunc {
	return func(ctx context.Context, req *Request) (*Response, error) {
		container, err := cm.GetContainer(ctx)
		if err != nil {
			return nil, err
		}
		return Adapt(container.Router())(ctx, req)
	}
}
