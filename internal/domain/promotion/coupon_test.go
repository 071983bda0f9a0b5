package promotion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/backend/internal/domain/shared"
)

func newTestCoupon(t *testing.T, total int64) *Coupon {
	t.Helper()
	coupon, err := NewCoupon("Launch Promo", decimal.NewFromInt(500), total,
		time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	return coupon
}

func TestNewCoupon(t *testing.T) {
	t.Run("creates a coupon pool", func(t *testing.T) {
		from := time.Now()
		until := from.Add(48 * time.Hour)
		coupon, err := NewCoupon("  Spring Sale  ", decimal.NewFromInt(100), 1000, from, until)

		require.NoError(t, err)
		assert.Equal(t, "Spring Sale", coupon.Name)
		assert.Equal(t, int64(1000), coupon.TotalQuantity)
		assert.Equal(t, int64(0), coupon.IssuedQuantity)
		assert.Equal(t, int64(1000), coupon.Remaining())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCoupon("   ", decimal.NewFromInt(100), 10, time.Now(), time.Now().Add(time.Hour))
		assert.True(t, shared.IsCode(err, "INVALID_NAME"))
	})

	t.Run("rejects non-positive discount", func(t *testing.T) {
		_, err := NewCoupon("Promo", decimal.Zero, 10, time.Now(), time.Now().Add(time.Hour))
		assert.True(t, shared.IsCode(err, "INVALID_DISCOUNT"))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewCoupon("Promo", decimal.NewFromInt(100), 0, time.Now(), time.Now().Add(time.Hour))
		assert.True(t, shared.IsCode(err, shared.CodeInvalidQuantity))
	})

	t.Run("rejects empty validity window", func(t *testing.T) {
		now := time.Now()
		_, err := NewCoupon("Promo", decimal.NewFromInt(100), 10, now, now)
		assert.True(t, shared.IsCode(err, "INVALID_VALIDITY"))
	})
}

func TestCoupon_RecordIssue(t *testing.T) {
	t.Run("counts down remaining slots", func(t *testing.T) {
		coupon := newTestCoupon(t, 2)
		now := time.Now()

		require.NoError(t, coupon.RecordIssue(now))
		assert.Equal(t, int64(1), coupon.Remaining())
		assert.False(t, coupon.IsExhausted())

		require.NoError(t, coupon.RecordIssue(now))
		assert.Equal(t, int64(0), coupon.Remaining())
		assert.True(t, coupon.IsExhausted())
	})

	t.Run("exhausted pool rejects further issues", func(t *testing.T) {
		coupon := newTestCoupon(t, 1)
		now := time.Now()
		require.NoError(t, coupon.RecordIssue(now))

		err := coupon.RecordIssue(now)

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeQuotaExhausted))
		assert.Equal(t, int64(1), coupon.IssuedQuantity)
	})

	t.Run("closed window reads as exhausted", func(t *testing.T) {
		coupon := newTestCoupon(t, 10)

		err := coupon.RecordIssue(time.Now().Add(48 * time.Hour))

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeQuotaExhausted))
	})

	t.Run("emits issued event", func(t *testing.T) {
		coupon := newTestCoupon(t, 10)
		require.NoError(t, coupon.RecordIssue(time.Now()))

		events := coupon.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeCouponIssued, events[0].EventType())
	})
}

func TestCoupon_InValidityWindow(t *testing.T) {
	from := time.Now()
	until := from.Add(time.Hour)
	coupon, err := NewCoupon("Promo", decimal.NewFromInt(100), 10, from, until)
	require.NoError(t, err)

	assert.True(t, coupon.InValidityWindow(from))
	assert.True(t, coupon.InValidityWindow(until))
	assert.False(t, coupon.InValidityWindow(from.Add(-time.Second)))
	assert.False(t, coupon.InValidityWindow(until.Add(time.Second)))
}
