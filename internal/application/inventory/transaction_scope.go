package inventory

import (
	"context"

	"github.com/shopcore/backend/internal/domain/catalog"
	"github.com/shopcore/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the repositories the
// stock service writes. Everything touched inside Execute is committed or
// rolled back atomically, so a lock-holding operation can never leave a
// decremented ledger without its catalog side effect.
type TransactionScope interface {
	// Execute runs fn within a storage transaction. A returned error rolls
	// the transaction back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the stock repositories within
// a transaction. All repositories share the same underlying transaction.
type TransactionalRepositories interface {
	// Ledgers returns the stock ledger repository scoped to the transaction
	Ledgers() inventory.StockLedgerRepository
	// Products returns the product repository scoped to the transaction
	Products() catalog.ProductRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests with in-memory repositories.
type NoOpTransactionScope struct {
	ledgers  inventory.StockLedgerRepository
	products catalog.ProductRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(ledgers inventory.StockLedgerRepository, products catalog.ProductRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{ledgers: ledgers, products: products}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Ledgers returns the ledger repository
func (s *NoOpTransactionScope) Ledgers() inventory.StockLedgerRepository {
	return s.ledgers
}

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository {
	return s.products
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
