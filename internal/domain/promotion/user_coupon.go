package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopcore/backend/internal/domain/shared"
)

// UserCouponStatus represents the lifecycle state of an issued coupon
type UserCouponStatus string

const (
	// UserCouponStatusAvailable means the coupon can still be redeemed
	UserCouponStatusAvailable UserCouponStatus = "AVAILABLE"
	// UserCouponStatusUsed is terminal: the coupon was redeemed
	UserCouponStatusUsed UserCouponStatus = "USED"
	// UserCouponStatusExpired is terminal: the validity window passed
	UserCouponStatusExpired UserCouponStatus = "EXPIRED"
)

// UserCoupon is the durable proof that one owner consumed one slot of a
// coupon pool. At most one record exists per (UserID, CouponID) pair; the
// issuance service enforces this behind the coupon lock and the store backs
// it with a unique index.
type UserCoupon struct {
	shared.BaseAggregateRoot
	UserID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_user_coupon_owner,priority:1"`
	CouponID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_user_coupon_owner,priority:2"`
	Status    UserCouponStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE';index"`
	IssuedAt  time.Time        `gorm:"not null"`
	UsedAt    *time.Time       `gorm:"type:timestamp"`
	ExpiresAt time.Time        `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (UserCoupon) TableName() string {
	return "user_coupons"
}

// NewUserCoupon creates the allocation record for a successful issuance.
// The expiry is capped at the coupon's ValidUntil.
func NewUserCoupon(userID uuid.UUID, coupon *Coupon, issuedAt time.Time, validity time.Duration) (*UserCoupon, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "User ID cannot be empty")
	}
	if coupon == nil {
		return nil, shared.ErrNotFound
	}

	expiresAt := coupon.ValidUntil
	if validity > 0 {
		if byOffset := issuedAt.Add(validity); byOffset.Before(expiresAt) {
			expiresAt = byOffset
		}
	}

	return &UserCoupon{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		CouponID:          coupon.ID,
		Status:            UserCouponStatusAvailable,
		IssuedAt:          issuedAt,
		ExpiresAt:         expiresAt,
	}, nil
}

// IsUsable returns true if the coupon is AVAILABLE and not yet expired
func (uc *UserCoupon) IsUsable(now time.Time) bool {
	return uc.Status == UserCouponStatusAvailable && now.Before(uc.ExpiresAt)
}

// MarkUsed transitions AVAILABLE -> USED. The store performs the matching
// conditional write, so a lost race surfaces there, not here.
func (uc *UserCoupon) MarkUsed(now time.Time) error {
	if uc.Status != UserCouponStatusAvailable {
		return shared.NewDomainErrorf("INVALID_STATE", "Coupon is %s, not available", uc.Status)
	}
	if !now.Before(uc.ExpiresAt) {
		return shared.NewDomainError("COUPON_EXPIRED", "Coupon validity has expired")
	}
	uc.Status = UserCouponStatusUsed
	uc.UsedAt = &now
	uc.MarkModified()
	uc.AddDomainEvent(NewCouponUsedEvent(uc))
	return nil
}

// MarkExpired transitions AVAILABLE -> EXPIRED, driven by a background sweep
func (uc *UserCoupon) MarkExpired(now time.Time) error {
	if uc.Status != UserCouponStatusAvailable {
		return shared.NewDomainErrorf("INVALID_STATE", "Coupon is %s, not available", uc.Status)
	}
	if now.Before(uc.ExpiresAt) {
		return shared.NewDomainError("INVALID_STATE", "Coupon has not expired yet")
	}
	uc.Status = UserCouponStatusExpired
	uc.MarkModified()
	return nil
}
