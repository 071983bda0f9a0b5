package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopcore/backend/internal/domain/promotion"
	"github.com/shopcore/backend/internal/domain/shared"
)

// GormCouponRepository implements CouponRepository using GORM
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByID finds a coupon by its ID
func (r *GormCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Coupon, error) {
	var coupon promotion.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// FindByIDForUpdate finds a coupon with a SELECT ... FOR UPDATE row lock
func (r *GormCouponRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*promotion.Coupon, error) {
	var coupon promotion.Coupon
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// List lists coupons, newest first
func (r *GormCouponRepository) List(ctx context.Context, offset, limit int) ([]promotion.Coupon, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&promotion.Coupon{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var coupons []promotion.Coupon
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

// Save creates or updates a coupon
func (r *GormCouponRepository) Save(ctx context.Context, coupon *promotion.Coupon) error {
	return r.db.WithContext(ctx).Save(coupon).Error
}

// IncrementIssued performs the conditional counter increment. The WHERE
// clause repeats the exhaustion check, so the counter can never exceed
// total_quantity no matter how many processes race on it.
func (r *GormCouponRepository) IncrementIssued(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&promotion.Coupon{}).
		Where("id = ? AND issued_quantity < total_quantity", id).
		Updates(map[string]interface{}{
			"issued_quantity": gorm.Expr("issued_quantity + 1"),
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

var _ promotion.CouponRepository = (*GormCouponRepository)(nil)
