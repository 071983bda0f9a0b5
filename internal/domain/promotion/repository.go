package promotion

import (
	"context"

	"github.com/google/uuid"
)

// CouponRepository defines the interface for coupon pool persistence
type CouponRepository interface {
	// FindByID finds a coupon by its ID, no locking
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)

	// FindByIDForUpdate finds a coupon with a row-level write lock. Must be
	// called inside a transaction; the lock is the multi-instance backstop
	// behind the in-process coupon lock.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Coupon, error)

	// List lists coupons, newest first
	List(ctx context.Context, offset, limit int) ([]Coupon, int64, error)

	// Save creates or updates a coupon
	Save(ctx context.Context, coupon *Coupon) error

	// IncrementIssued atomically increments issued_quantity if and only if
	// the pool is not exhausted. Returns false when the conditional update
	// matched no row — the durable compare-and-swap failed.
	IncrementIssued(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserCouponRepository defines the interface for allocation record persistence
type UserCouponRepository interface {
	// FindByID finds a user coupon by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*UserCoupon, error)

	// FindByUser lists a user's coupons, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]UserCoupon, int64, error)

	// ExistsFor reports whether an allocation record already exists for the
	// (owner, coupon) pair, regardless of its status
	ExistsFor(ctx context.Context, userID, couponID uuid.UUID) (bool, error)

	// Save creates or updates a user coupon
	Save(ctx context.Context, userCoupon *UserCoupon) error

	// MarkUsedIfAvailable performs the conditional AVAILABLE -> USED write.
	// Returns false when the record was not AVAILABLE anymore, which is how
	// a concurrent double-use loses the race.
	MarkUsedIfAvailable(ctx context.Context, userCoupon *UserCoupon) (bool, error)
}
