package persistence

import (
	"context"

	"gorm.io/gorm"

	appinventory "github.com/shopcore/backend/internal/application/inventory"
	apppromotion "github.com/shopcore/backend/internal/application/promotion"
	"github.com/shopcore/backend/internal/domain/catalog"
	"github.com/shopcore/backend/internal/domain/inventory"
	"github.com/shopcore/backend/internal/domain/promotion"
)

// GormStockTransactionScope implements the stock TransactionScope using GORM
// transactions. Repositories handed to the callback share one transaction.
type GormStockTransactionScope struct {
	db *gorm.DB
}

// NewGormStockTransactionScope creates a new GormStockTransactionScope
func NewGormStockTransactionScope(db *gorm.DB) *GormStockTransactionScope {
	return &GormStockTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormStockTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&stockTransactionalRepositories{tx: tx})
	})
}

type stockTransactionalRepositories struct {
	tx *gorm.DB
}

// Ledgers returns the ledger repository scoped to the transaction
func (r *stockTransactionalRepositories) Ledgers() inventory.StockLedgerRepository {
	return NewGormStockLedgerRepository(r.tx)
}

// Products returns the product repository scoped to the transaction
func (r *stockTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// GormPromotionTransactionScope implements the promotion TransactionScope
// using GORM transactions
type GormPromotionTransactionScope struct {
	db *gorm.DB
}

// NewGormPromotionTransactionScope creates a new GormPromotionTransactionScope
func NewGormPromotionTransactionScope(db *gorm.DB) *GormPromotionTransactionScope {
	return &GormPromotionTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormPromotionTransactionScope) Execute(ctx context.Context, fn func(repos apppromotion.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&promotionTransactionalRepositories{tx: tx})
	})
}

type promotionTransactionalRepositories struct {
	tx *gorm.DB
}

// Coupons returns the coupon repository scoped to the transaction
func (r *promotionTransactionalRepositories) Coupons() promotion.CouponRepository {
	return NewGormCouponRepository(r.tx)
}

// UserCoupons returns the user coupon repository scoped to the transaction
func (r *promotionTransactionalRepositories) UserCoupons() promotion.UserCouponRepository {
	return NewGormUserCouponRepository(r.tx)
}

var (
	_ appinventory.TransactionScope          = (*GormStockTransactionScope)(nil)
	_ appinventory.TransactionalRepositories = (*stockTransactionalRepositories)(nil)
	_ apppromotion.TransactionScope          = (*GormPromotionTransactionScope)(nil)
	_ apppromotion.TransactionalRepositories = (*promotionTransactionalRepositories)(nil)
)
