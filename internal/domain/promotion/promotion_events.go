package promotion

import (
	"github.com/google/uuid"
	"github.com/shopcore/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeCoupon     = "Coupon"
	AggregateTypeUserCoupon = "UserCoupon"
)

// Event type constants
const (
	EventTypeCouponIssued    = "CouponIssued"
	EventTypeCouponUsed      = "CouponUsed"
	EventTypeCouponExhausted = "CouponExhausted"
)

// CouponIssuedEvent is raised when a slot of the pool is consumed
type CouponIssuedEvent struct {
	shared.BaseDomainEvent
	CouponID       uuid.UUID `json:"coupon_id"`
	IssuedQuantity int64     `json:"issued_quantity"`
	TotalQuantity  int64     `json:"total_quantity"`
}

// NewCouponIssuedEvent creates a new CouponIssuedEvent
func NewCouponIssuedEvent(c *Coupon) *CouponIssuedEvent {
	return &CouponIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCouponIssued, AggregateTypeCoupon, c.ID),
		CouponID:        c.ID,
		IssuedQuantity:  c.IssuedQuantity,
		TotalQuantity:   c.TotalQuantity,
	}
}

// CouponUsedEvent is raised when an owner redeems their coupon
type CouponUsedEvent struct {
	shared.BaseDomainEvent
	UserCouponID uuid.UUID `json:"user_coupon_id"`
	UserID       uuid.UUID `json:"user_id"`
	CouponID     uuid.UUID `json:"coupon_id"`
}

// NewCouponUsedEvent creates a new CouponUsedEvent
func NewCouponUsedEvent(uc *UserCoupon) *CouponUsedEvent {
	return &CouponUsedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCouponUsed, AggregateTypeUserCoupon, uc.ID),
		UserCouponID:    uc.ID,
		UserID:          uc.UserID,
		CouponID:        uc.CouponID,
	}
}
