package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/backend/internal/domain/promotion"
	"github.com/shopcore/backend/internal/domain/shared"
)

func TestGormCouponRepository_IncrementIssued(t *testing.T) {
	t.Run("true when a slot was claimed", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCouponRepository(db)

		couponID := uuid.New()
		mock.ExpectExec(`UPDATE "coupons" SET .* WHERE id = \$\d+ AND issued_quantity < total_quantity`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		granted, err := repo.IncrementIssued(context.Background(), couponID)
		require.NoError(t, err)
		assert.True(t, granted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("false when the pool is exhausted", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCouponRepository(db)

		mock.ExpectExec(`UPDATE "coupons" SET .* WHERE id = \$\d+ AND issued_quantity < total_quantity`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		granted, err := repo.IncrementIssued(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.False(t, granted)
	})
}

func TestGormCouponRepository_FindByIDForUpdate(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormCouponRepository(db)

	couponID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "total_quantity", "issued_quantity", "valid_from", "valid_until", "version"}).
		AddRow(couponID, "Launch Promo", 100, 10, time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 1)

	mock.ExpectQuery(`SELECT \* FROM "coupons" WHERE id = \$1 ORDER BY "coupons"\."id" LIMIT \$2 FOR UPDATE`).
		WithArgs(couponID, 1).
		WillReturnRows(rows)

	coupon, err := repo.FindByIDForUpdate(context.Background(), couponID)
	require.NoError(t, err)
	assert.Equal(t, int64(90), coupon.Remaining())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserCouponRepository_MarkUsedIfAvailable(t *testing.T) {
	newUserCoupon := func(t *testing.T) *promotion.UserCoupon {
		t.Helper()
		coupon, err := promotion.NewCoupon("Promo", decimal.NewFromInt(500), 10, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
		require.NoError(t, err)
		uc, err := promotion.NewUserCoupon(uuid.New(), coupon, time.Now(), 0)
		require.NoError(t, err)
		require.NoError(t, uc.MarkUsed(time.Now()))
		return uc
	}

	t.Run("true when the record was still available", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormUserCouponRepository(db)

		mock.ExpectExec(`UPDATE "user_coupons" SET .* WHERE id = \$\d+ AND status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		used, err := repo.MarkUsedIfAvailable(context.Background(), newUserCoupon(t))
		require.NoError(t, err)
		assert.True(t, used)
	})

	t.Run("false when a concurrent redemption won", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormUserCouponRepository(db)

		mock.ExpectExec(`UPDATE "user_coupons" SET .* WHERE id = \$\d+ AND status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		used, err := repo.MarkUsedIfAvailable(context.Background(), newUserCoupon(t))
		require.NoError(t, err)
		assert.False(t, used)
	})
}

func TestGormUserCouponRepository_ExistsFor(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormUserCouponRepository(db)

	userID := uuid.New()
	couponID := uuid.New()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "user_coupons" WHERE user_id = \$1 AND coupon_id = \$2`).
		WithArgs(userID, couponID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsFor(context.Background(), userID, couponID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCouponRepository_FindByID_NotFound(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormCouponRepository(db)

	couponID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "coupons"`).
		WithArgs(couponID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), couponID)
	assert.True(t, shared.IsCode(err, "NOT_FOUND"))
}
