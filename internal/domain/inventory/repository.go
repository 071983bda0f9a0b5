package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockLedgerRepository defines the interface for stock ledger persistence.
//
// FindByProductForUpdate is the authoritative read inside the stock critical
// section: implementations back it with a row-level lock (SELECT ... FOR
// UPDATE) so that even a second process instance sharing the store is
// serialized. The in-process keyed lock is the fast path; the row lock is
// the correctness backstop for multi-instance deployments.
type StockLedgerRepository interface {
	// FindByProduct finds the ledger for a product without any locking.
	// Suitable only for non-authoritative reads (availability hints).
	FindByProduct(ctx context.Context, productID uuid.UUID) (*StockLedger, error)

	// FindByProductForUpdate finds the ledger with a row-level write lock.
	// Must be called inside a transaction.
	FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*StockLedger, error)

	// FindByProducts finds ledgers for multiple products, no locking
	FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]StockLedger, error)

	// Save creates or updates a ledger
	Save(ctx context.Context, ledger *StockLedger) error
}
