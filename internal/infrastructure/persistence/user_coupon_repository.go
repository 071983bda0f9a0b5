package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopcore/backend/internal/domain/promotion"
	"github.com/shopcore/backend/internal/domain/shared"
)

// GormUserCouponRepository implements UserCouponRepository using GORM
type GormUserCouponRepository struct {
	db *gorm.DB
}

// NewGormUserCouponRepository creates a new GormUserCouponRepository
func NewGormUserCouponRepository(db *gorm.DB) *GormUserCouponRepository {
	return &GormUserCouponRepository{db: db}
}

// FindByID finds a user coupon by its ID
func (r *GormUserCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.UserCoupon, error) {
	var userCoupon promotion.UserCoupon
	if err := r.db.WithContext(ctx).First(&userCoupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &userCoupon, nil
}

// FindByUser lists a user's coupons, newest first
func (r *GormUserCouponRepository) FindByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]promotion.UserCoupon, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&promotion.UserCoupon{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var userCoupons []promotion.UserCoupon
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&userCoupons).Error; err != nil {
		return nil, 0, err
	}
	return userCoupons, total, nil
}

// ExistsFor reports whether an allocation record exists for (owner, coupon)
func (r *GormUserCouponRepository) ExistsFor(ctx context.Context, userID, couponID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&promotion.UserCoupon{}).
		Where("user_id = ? AND coupon_id = ?", userID, couponID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a user coupon. The unique index on
// (user_id, coupon_id) turns a racing duplicate insert into an error.
func (r *GormUserCouponRepository) Save(ctx context.Context, userCoupon *promotion.UserCoupon) error {
	return r.db.WithContext(ctx).Save(userCoupon).Error
}

// MarkUsedIfAvailable performs the conditional AVAILABLE -> USED update.
// False means the record was no longer AVAILABLE when the write ran.
func (r *GormUserCouponRepository) MarkUsedIfAvailable(ctx context.Context, userCoupon *promotion.UserCoupon) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&promotion.UserCoupon{}).
		Where("id = ? AND status = ?", userCoupon.ID, promotion.UserCouponStatusAvailable).
		Updates(map[string]interface{}{
			"status":     promotion.UserCouponStatusUsed,
			"used_at":    userCoupon.UsedAt,
			"version":    userCoupon.Version,
			"updated_at": userCoupon.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

var _ promotion.UserCouponRepository = (*GormUserCouponRepository)(nil)
