package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopcore/backend/internal/domain/inventory"
	"github.com/shopcore/backend/internal/domain/shared"
)

// GormStockLedgerRepository implements StockLedgerRepository using GORM
type GormStockLedgerRepository struct {
	db *gorm.DB
}

// NewGormStockLedgerRepository creates a new GormStockLedgerRepository
func NewGormStockLedgerRepository(db *gorm.DB) *GormStockLedgerRepository {
	return &GormStockLedgerRepository{db: db}
}

// FindByProduct finds the ledger for a product without locking
func (r *GormStockLedgerRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.StockLedger, error) {
	var ledger inventory.StockLedger
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&ledger).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ledger, nil
}

// FindByProductForUpdate finds the ledger with a SELECT ... FOR UPDATE row
// lock. Must run inside a transaction, otherwise the lock releases
// immediately.
func (r *GormStockLedgerRepository) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*inventory.StockLedger, error) {
	var ledger inventory.StockLedger
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		First(&ledger).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ledger, nil
}

// FindByProducts finds ledgers for multiple products, no locking
func (r *GormStockLedgerRepository) FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]inventory.StockLedger, error) {
	var ledgers []inventory.StockLedger
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Find(&ledgers).Error; err != nil {
		return nil, err
	}
	return ledgers, nil
}

// Save creates or updates a ledger
func (r *GormStockLedgerRepository) Save(ctx context.Context, ledger *inventory.StockLedger) error {
	return r.db.WithContext(ctx).Save(ledger).Error
}

var _ inventory.StockLedgerRepository = (*GormStockLedgerRepository)(nil)
