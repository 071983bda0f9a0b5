package promotion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopcore/backend/internal/domain/promotion"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/infrastructure/lock"
)

// DefaultLockTimeout bounds the wait for a coupon lock
const DefaultLockTimeout = 3 * time.Second

// CouponService issues coupons first-come-first-served from fixed-size
// pools. Issuance is serialized per coupon behind a keyed lock; the durable
// conditional increment on the coupon row is the backstop that keeps the
// counter exact even if another process instance bypasses the in-process
// lock. Redemption takes no coupon lock at all: the allocation record's
// conditional state transition decides races.
type CouponService struct {
	locks          *lock.KeyedRegistry
	scope          TransactionScope
	couponRepo     promotion.CouponRepository
	userCouponRepo promotion.UserCouponRepository
	publisher      shared.EventPublisher
	logger         *zap.Logger
	lockTimeout    time.Duration
	validity       time.Duration
	now            func() time.Time
}

// CouponServiceOption configures a CouponService
type CouponServiceOption func(*CouponService)

// WithLockTimeout overrides the lock wait bound
func WithLockTimeout(d time.Duration) CouponServiceOption {
	return func(s *CouponService) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// WithEventPublisher attaches an event publisher for domain events
func WithEventPublisher(publisher shared.EventPublisher) CouponServiceOption {
	return func(s *CouponService) {
		s.publisher = publisher
	}
}

// WithValidity caps how long an issued coupon stays usable after issuance
func WithValidity(d time.Duration) CouponServiceOption {
	return func(s *CouponService) {
		s.validity = d
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) CouponServiceOption {
	return func(s *CouponService) {
		s.now = now
	}
}

// NewCouponService creates a new CouponService
func NewCouponService(
	locks *lock.KeyedRegistry,
	scope TransactionScope,
	couponRepo promotion.CouponRepository,
	userCouponRepo promotion.UserCouponRepository,
	logger *zap.Logger,
	opts ...CouponServiceOption,
) *CouponService {
	s := &CouponService{
		locks:          locks,
		scope:          scope,
		couponRepo:     couponRepo,
		userCouponRepo: userCouponRepo,
		logger:         logger,
		lockTimeout:    DefaultLockTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CouponKey returns the lock key for a coupon pool
func CouponKey(couponID uuid.UUID) string {
	return "coupon:" + couponID.String()
}

// CreateCoupon creates a new coupon pool
func (s *CouponService) CreateCoupon(ctx context.Context, req *CreateCouponRequest) (*CouponResponse, error) {
	coupon, err := promotion.NewCoupon(req.Name, req.DiscountAmount, req.TotalQuantity, req.ValidFrom, req.ValidUntil)
	if err != nil {
		return nil, err
	}
	if err := s.couponRepo.Save(ctx, coupon); err != nil {
		return nil, err
	}
	s.logger.Info("coupon pool created",
		zap.String("coupon_id", coupon.ID.String()),
		zap.Int64("total_quantity", coupon.TotalQuantity))
	response := ToCouponResponse(coupon)
	return &response, nil
}

// GetCoupon returns a coupon pool's current state
func (s *CouponService) GetCoupon(ctx context.Context, couponID uuid.UUID) (*CouponResponse, error) {
	coupon, err := s.couponRepo.FindByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	response := ToCouponResponse(coupon)
	return &response, nil
}

// ListCoupons lists coupon pools
func (s *CouponService) ListCoupons(ctx context.Context, offset, limit int) ([]CouponResponse, int64, error) {
	coupons, total, err := s.couponRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]CouponResponse, len(coupons))
	for i := range coupons {
		responses[i] = ToCouponResponse(&coupons[i])
	}
	return responses, total, nil
}

// ListUserCoupons lists a user's issued coupons
func (s *CouponService) ListUserCoupons(ctx context.Context, userID uuid.UUID, offset, limit int) ([]UserCouponResponse, int64, error) {
	userCoupons, total, err := s.userCouponRepo.FindByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]UserCouponResponse, len(userCoupons))
	for i := range userCoupons {
		responses[i] = ToUserCouponResponse(&userCoupons[i])
	}
	return responses, total, nil
}

// Issue grants one coupon from the pool to userID, first come first served.
// Exactly TotalQuantity issuances ever succeed per pool, and at most one per
// owner. The whole check-and-allocate sequence runs behind the coupon's
// keyed lock; the conditional increment repeats the exhaustion check in the
// store so that the counter cannot overshoot even across process instances.
func (s *CouponService) Issue(ctx context.Context, couponID, userID uuid.UUID) (*UserCouponResponse, error) {
	if couponID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COUPON", "Coupon ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "User ID cannot be empty")
	}

	var (
		response UserCouponResponse
		events   []shared.DomainEvent
	)
	err := s.locks.WithLock(ctx, CouponKey(couponID), s.lockTimeout, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			coupon, err := repos.Coupons().FindByIDForUpdate(ctx, couponID)
			if err != nil {
				return err
			}
			now := s.now()
			if err := coupon.CheckIssuable(now); err != nil {
				return err
			}

			exists, err := repos.UserCoupons().ExistsFor(ctx, userID, couponID)
			if err != nil {
				return err
			}
			if exists {
				return shared.NewDomainError(shared.CodeAlreadyIssued, "Coupon was already issued to this user")
			}

			granted, err := repos.Coupons().IncrementIssued(ctx, couponID)
			if err != nil {
				return err
			}
			if !granted {
				return shared.NewDomainError(shared.CodeQuotaExhausted, "Coupon pool has been exhausted")
			}
			if err := coupon.RecordIssue(now); err != nil {
				return err
			}

			userCoupon, err := promotion.NewUserCoupon(userID, coupon, now, s.validity)
			if err != nil {
				return err
			}
			if err := repos.UserCoupons().Save(ctx, userCoupon); err != nil {
				return err
			}

			response = ToUserCouponResponse(userCoupon)
			events = append(events, coupon.GetDomainEvents()...)
			coupon.ClearDomainEvents()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	s.logger.Debug("coupon issued",
		zap.String("coupon_id", couponID.String()),
		zap.String("user_id", userID.String()))
	return &response, nil
}

// Use redeems an issued coupon. No coupon lock is taken: the AVAILABLE ->
// USED transition is a conditional write on the allocation record, so of two
// concurrent redemption attempts exactly one wins.
func (s *CouponService) Use(ctx context.Context, userCouponID, userID uuid.UUID) (*UserCouponResponse, error) {
	if userCouponID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}

	var (
		response UserCouponResponse
		events   []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		userCoupon, err := repos.UserCoupons().FindByID(ctx, userCouponID)
		if err != nil {
			return err
		}
		// Another owner's coupon looks the same as a missing one
		if userCoupon.UserID != userID {
			return shared.ErrNotFound
		}
		if err := userCoupon.MarkUsed(s.now()); err != nil {
			return err
		}
		used, err := repos.UserCoupons().MarkUsedIfAvailable(ctx, userCoupon)
		if err != nil {
			return err
		}
		if !used {
			return shared.NewDomainError("INVALID_STATE", "Coupon was redeemed by a concurrent request")
		}
		response = ToUserCouponResponse(userCoupon)
		events = append(events, userCoupon.GetDomainEvents()...)
		userCoupon.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return &response, nil
}

// publish fans events out to observers
func (s *CouponService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
}
