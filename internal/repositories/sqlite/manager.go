package sqlite

import (
	"context"
	"database/sql"

	"inventory-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// SQLiteRepositoryManager implements the RepositoryManager interface for SQLite
type SQLiteRepositoryManager struct {
	db                 *sql.DB
	logger             *logrus.Logger
	container          *repositories.RepositoryContainer
	transactionManager repositories.TransactionManager
}

// NewSQLiteRepositoryManager creates a repository manager over an open database connection
func NewSQLiteRepositoryManager(db *sql.DB, logger *logrus.Logger) repositories.RepositoryManager {
	if logger == nil {
		logger = logrus.New()
	}

	tm := NewSQLiteTransactionManager(db, logger)

	return &SQLiteRepositoryManager{
		db:     db,
		logger: logger,
		container: &repositories.RepositoryContainer{
			ProductRepo:  NewProductRepository(db, logger),
			SupplierRepo: NewSupplierRepository(db, logger),
			OrderRepo:    NewOrderRepository(db, logger),
			CategoryRepo: NewCategoryRepository(db, logger),
			UserRepo:     NewUserRepository(db, logger),
			TxManager:    tm,
		},
		transactionManager: tm,
	}
}

// BeginTransaction starts a new transaction
func (m *SQLiteRepositoryManager) BeginTransaction(ctx context.Context) (repositories.Transaction, error) {
	return m.transactionManager.BeginTransaction(ctx)
}

// WithTransaction executes a function within a transaction
func (m *SQLiteRepositoryManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.transactionManager.WithTransaction(ctx, fn)
}

// Repositories returns the repository container
func (m *SQLiteRepositoryManager) Repositories() *repositories.RepositoryContainer {
	return m.container
}

// Close closes the underlying database connection
func (m *SQLiteRepositoryManager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Health checks the health of the repository connections
func (m *SQLiteRepositoryManager) Health(ctx context.Context) error {
	if m.db == nil {
		return repositories.ConnectionError(repositories.ErrConnection)
	}

	if err := m.db.PingContext(ctx); err != nil {
		return repositories.ConnectionError(err)
	}

	var result int
	if err := m.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return repositories.ConnectionError(err)
	}

	if result != 1 {
		return repositories.ConnectionError(repositories.ErrConnection)
	}

	return nil
}
