package promotion

import (
	"strings"
	"time"

	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Coupon is the aggregate root for a fixed-size coupon pool. TotalQuantity
// is an immutable ceiling; IssuedQuantity only ever grows — expired or
// refunded user coupons do not return slots to the pool.
type Coupon struct {
	shared.BaseAggregateRoot
	Name           string          `gorm:"type:varchar(200);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalQuantity  int64           `gorm:"not null"`
	IssuedQuantity int64           `gorm:"not null;default:0"`
	ValidFrom      time.Time       `gorm:"not null"`
	ValidUntil     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Coupon) TableName() string {
	return "coupons"
}

// NewCoupon creates a coupon pool via an administrative action
func NewCoupon(name string, discountAmount decimal.Decimal, totalQuantity int64, validFrom, validUntil time.Time) (*Coupon, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Coupon name cannot be empty")
	}
	if discountAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount amount must be positive")
	}
	if totalQuantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Total quantity must be positive")
	}
	if !validUntil.After(validFrom) {
		return nil, shared.NewDomainError("INVALID_VALIDITY", "Validity window must not be empty")
	}

	return &Coupon{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		DiscountAmount:    discountAmount,
		TotalQuantity:     totalQuantity,
		ValidFrom:         validFrom,
		ValidUntil:        validUntil,
	}, nil
}

// Remaining returns the number of unissued slots
func (c *Coupon) Remaining() int64 {
	return c.TotalQuantity - c.IssuedQuantity
}

// IsExhausted returns true if every slot has been issued
func (c *Coupon) IsExhausted() bool {
	return c.IssuedQuantity >= c.TotalQuantity
}

// InValidityWindow returns true if now falls within [ValidFrom, ValidUntil]
func (c *Coupon) InValidityWindow(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidUntil)
}

// CheckIssuable verifies the coupon can be issued at now. Exhaustion and a
// closed window both surface as QUOTA_EXHAUSTED: to the requester the pool
// is equally unavailable either way.
func (c *Coupon) CheckIssuable(now time.Time) error {
	if !c.InValidityWindow(now) {
		return shared.NewDomainError(shared.CodeQuotaExhausted, "Coupon is outside its validity window")
	}
	if c.IsExhausted() {
		return shared.NewDomainErrorf(shared.CodeQuotaExhausted,
			"Coupon exhausted: issued=%d, total=%d", c.IssuedQuantity, c.TotalQuantity)
	}
	return nil
}

// RecordIssue increments the issued counter after CheckIssuable passed.
// The caller holds the coupon lock; the durable conditional increment in the
// store is the cross-instance backstop.
func (c *Coupon) RecordIssue(now time.Time) error {
	if err := c.CheckIssuable(now); err != nil {
		return err
	}
	c.IssuedQuantity++
	c.MarkModified()
	c.AddDomainEvent(NewCouponIssuedEvent(c))
	return nil
}
