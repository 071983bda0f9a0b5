package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopcore/backend/internal/domain/promotion"
)

// CreateCouponRequest creates a new coupon pool
type CreateCouponRequest struct {
	Name           string          `json:"name" binding:"required"`
	DiscountAmount decimal.Decimal `json:"discount_amount" binding:"required"`
	TotalQuantity  int64           `json:"total_quantity" binding:"required,gt=0"`
	ValidFrom      time.Time       `json:"valid_from" binding:"required"`
	ValidUntil     time.Time       `json:"valid_until" binding:"required"`
}

// CouponResponse reports a coupon pool's state
type CouponResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalQuantity  int64           `json:"total_quantity"`
	IssuedQuantity int64           `json:"issued_quantity"`
	Remaining      int64           `json:"remaining"`
	ValidFrom      time.Time       `json:"valid_from"`
	ValidUntil     time.Time       `json:"valid_until"`
}

// ToCouponResponse maps a coupon to its response
func ToCouponResponse(c *promotion.Coupon) CouponResponse {
	return CouponResponse{
		ID:             c.ID,
		Name:           c.Name,
		DiscountAmount: c.DiscountAmount,
		TotalQuantity:  c.TotalQuantity,
		IssuedQuantity: c.IssuedQuantity,
		Remaining:      c.Remaining(),
		ValidFrom:      c.ValidFrom,
		ValidUntil:     c.ValidUntil,
	}
}

// UserCouponResponse reports an issued coupon
type UserCouponResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	CouponID  uuid.UUID  `json:"coupon_id"`
	Status    string     `json:"status"`
	IssuedAt  time.Time  `json:"issued_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// ToUserCouponResponse maps a user coupon to its response
func ToUserCouponResponse(uc *promotion.UserCoupon) UserCouponResponse {
	return UserCouponResponse{
		ID:        uc.ID,
		UserID:    uc.UserID,
		CouponID:  uc.CouponID,
		Status:    string(uc.Status),
		IssuedAt:  uc.IssuedAt,
		UsedAt:    uc.UsedAt,
		ExpiresAt: uc.ExpiresAt,
	}
}
