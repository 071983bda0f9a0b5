package promotion

import (
	"context"

	"github.com/shopcore/backend/internal/domain/promotion"
)

// TransactionScope provides transactional access to the promotion
// repositories. The counter increment and the allocation record insert of an
// issuance must commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a storage transaction. A returned error rolls
	// the transaction back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the promotion repositories
// within a transaction
type TransactionalRepositories interface {
	// Coupons returns the coupon repository scoped to the transaction
	Coupons() promotion.CouponRepository
	// UserCoupons returns the user coupon repository scoped to the transaction
	UserCoupons() promotion.UserCouponRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests with in-memory repositories.
type NoOpTransactionScope struct {
	coupons     promotion.CouponRepository
	userCoupons promotion.UserCouponRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(coupons promotion.CouponRepository, userCoupons promotion.UserCouponRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{coupons: coupons, userCoupons: userCoupons}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Coupons returns the coupon repository
func (s *NoOpTransactionScope) Coupons() promotion.CouponRepository {
	return s.coupons
}

// UserCoupons returns the user coupon repository
func (s *NoOpTransactionScope) UserCoupons() promotion.UserCouponRepository {
	return s.userCoupons
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
