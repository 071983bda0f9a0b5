package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopcore/backend/internal/domain/inventory"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/infrastructure/lock"
	"go.uber.org/zap"
)

// DefaultLockTimeout bounds the wait for a stock lock
const DefaultLockTimeout = 3 * time.Second

// StockService is the sole writer of stock ledger state. It guarantees that
// the number of successful deductions for a product never exceeds its
// available quantity under arbitrary concurrent load.
//
// Every write path follows the same shape: acquire the product's keyed lock,
// re-read the authoritative ledger inside a transaction (the value read
// before the lock may be stale by the time the lock is granted), check, and
// only then mutate and persist. The lock scope always covers re-read, check
// and write.
type StockService struct {
	locks       *lock.KeyedRegistry
	scope       TransactionScope
	ledgerRepo  inventory.StockLedgerRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
	lockTimeout time.Duration
}

// StockServiceOption configures a StockService
type StockServiceOption func(*StockService)

// WithLockTimeout overrides the lock wait bound
func WithLockTimeout(d time.Duration) StockServiceOption {
	return func(s *StockService) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// WithEventPublisher attaches an event publisher for domain events
func WithEventPublisher(publisher shared.EventPublisher) StockServiceOption {
	return func(s *StockService) {
		s.publisher = publisher
	}
}

// NewStockService creates a new StockService. ledgerRepo is used for
// non-authoritative reads outside the lock; all writes go through scope.
func NewStockService(
	locks *lock.KeyedRegistry,
	scope TransactionScope,
	ledgerRepo inventory.StockLedgerRepository,
	logger *zap.Logger,
	opts ...StockServiceOption,
) *StockService {
	s := &StockService{
		locks:       locks,
		scope:       scope,
		ledgerRepo:  ledgerRepo,
		logger:      logger,
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StockKey returns the lock key for a product's ledger
func StockKey(productID uuid.UUID) string {
	return "stock:" + productID.String()
}

// CheckAvailability reports whether the product currently has at least
// quantity units available. The answer is not authoritative — it may be
// stale immediately after return — and is meant for early UX decisions only.
func (s *StockService) CheckAvailability(ctx context.Context, productID uuid.UUID, quantity int64) (bool, error) {
	if quantity <= 0 {
		return false, shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity must be positive")
	}
	ledger, err := s.ledgerRepo.FindByProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	return ledger.CanFulfill(quantity), nil
}

// Reduce deducts quantity units of the product's stock. Exactly one of
// {success, OUT_OF_STOCK} is observed per call; two concurrent callers can
// never both succeed when their combined demand exceeds availability.
func (s *StockService) Reduce(ctx context.Context, productID uuid.UUID, quantity int64) (*StockLevelResponse, error) {
	if err := validateRequest(productID, quantity); err != nil {
		return nil, err
	}

	var response *StockLevelResponse
	err := s.locks.WithLock(ctx, StockKey(productID), s.lockTimeout, func() error {
		var opErr error
		response, opErr = s.reduceLocked(ctx, productID, quantity)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("stock reduced",
		zap.String("product_id", productID.String()),
		zap.Int64("quantity", quantity),
		zap.Int64("available", response.AvailableQuantity))
	return response, nil
}

// Restore returns quantity previously sold units to availability, e.g. when
// an order is cancelled. More than was sold cannot be restored. If the
// product was sold out and stock comes back, it is marked sellable again.
func (s *StockService) Restore(ctx context.Context, productID uuid.UUID, quantity int64) (*StockLevelResponse, error) {
	if err := validateRequest(productID, quantity); err != nil {
		return nil, err
	}

	var response *StockLevelResponse
	err := s.locks.WithLock(ctx, StockKey(productID), s.lockTimeout, func() error {
		var opErr error
		response, opErr = s.restoreLocked(ctx, productID, quantity)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("stock restored",
		zap.String("product_id", productID.String()),
		zap.Int64("quantity", quantity),
		zap.Int64("available", response.AvailableQuantity))
	return response, nil
}

// AddStock replenishes a product's available stock (e.g. purchase receipt)
func (s *StockService) AddStock(ctx context.Context, productID uuid.UUID, quantity int64) (*StockLevelResponse, error) {
	if err := validateRequest(productID, quantity); err != nil {
		return nil, err
	}

	var (
		response StockLevelResponse
		events   []shared.DomainEvent
	)
	err := s.locks.WithLock(ctx, StockKey(productID), s.lockTimeout, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			ledger, err := repos.Ledgers().FindByProductForUpdate(ctx, productID)
			if err != nil {
				return err
			}
			wasDepleted := ledger.IsDepleted()
			if err := ledger.AddStock(quantity); err != nil {
				return err
			}
			if err := repos.Ledgers().Save(ctx, ledger); err != nil {
				return err
			}
			if wasDepleted {
				if err := s.markBackInStock(ctx, repos, productID, &events); err != nil {
					return err
				}
			}
			response = ToStockLevelResponse(ledger)
			events = append(events, ledger.GetDomainEvents()...)
			ledger.ClearDomainEvents()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return &response, nil
}

// ReduceMany deducts stock for several products in one call. All requested
// keys are locked in ascending order for the whole batch, which prevents
// circular waits between overlapping batches. Each item commits its own
// transaction: when item N fails, items 1..N-1 stay committed and are
// reported in the result so the caller can compensate via RestoreMany.
// The returned error is the failing item's error, nil when all succeeded.
func (s *StockService) ReduceMany(ctx context.Context, items []BatchItem) (*BatchResult, error) {
	return s.runBatch(ctx, items, func(ctx context.Context, item BatchItem) error {
		_, err := s.reduceLocked(ctx, item.ProductID, item.Quantity)
		return err
	}, true)
}

// RestoreMany is the compensation counterpart of ReduceMany. It skips the
// availability pre-check: restores should not be rejected for a reason that
// only applies to deductions.
func (s *StockService) RestoreMany(ctx context.Context, items []BatchItem) (*BatchResult, error) {
	return s.runBatch(ctx, items, func(ctx context.Context, item BatchItem) error {
		_, err := s.restoreLocked(ctx, item.ProductID, item.Quantity)
		return err
	}, false)
}

// runBatch validates, pre-checks, sorts and executes a batch under the
// multi-key lock.
func (s *StockService) runBatch(
	ctx context.Context,
	items []BatchItem,
	op func(ctx context.Context, item BatchItem) error,
	precheck bool,
) (*BatchResult, error) {
	merged, err := mergeBatchItems(items)
	if err != nil {
		return nil, err
	}

	// Cheap fail-fast pass without any lock. Not authoritative; the real
	// check happens again under the lock.
	if precheck {
		for _, item := range merged {
			ledger, err := s.ledgerRepo.FindByProduct(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			if !ledger.CanFulfill(item.Quantity) {
				return nil, shared.NewDomainErrorf(shared.CodeOutOfStock,
					"Insufficient stock for product %s: requested=%d, available=%d",
					item.ProductID, item.Quantity, ledger.AvailableQuantity)
			}
		}
	}

	keys := make([]string, len(merged))
	for i, item := range merged {
		keys[i] = StockKey(item.ProductID)
	}

	result := &BatchResult{Applied: make([]BatchItemResult, 0, len(merged))}
	var itemErr error
	lockErr := s.locks.WithLockAll(ctx, keys, s.lockTimeout, func() error {
		for i, item := range merged {
			if err := op(ctx, item); err != nil {
				failed := BatchItemResult{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
					Error:     err.Error(),
					ErrorCode: shared.CodeOf(err),
				}
				result.Failed = &failed
				for _, rest := range merged[i+1:] {
					result.Skipped = append(result.Skipped, BatchItemResult{
						ProductID: rest.ProductID,
						Quantity:  rest.Quantity,
					})
				}
				itemErr = err
				return nil
			}
			result.Applied = append(result.Applied, BatchItemResult{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
		return nil
	})
	if lockErr != nil {
		return nil, lockErr
	}
	if itemErr != nil {
		s.logger.Info("batch stock operation partially applied",
			zap.Int("applied", len(result.Applied)),
			zap.Int("skipped", len(result.Skipped)),
			zap.String("failed_product", result.Failed.ProductID.String()),
			zap.String("error_code", result.Failed.ErrorCode))
		return result, itemErr
	}
	return result, nil
}

// reduceLocked performs one product's deduction. The caller already holds
// the product's keyed lock.
func (s *StockService) reduceLocked(ctx context.Context, productID uuid.UUID, quantity int64) (*StockLevelResponse, error) {
	var (
		response StockLevelResponse
		events   []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		// Only DISABLED blocks the purchase here. A SOLD_OUT product falls
		// through to the ledger so a losing racer still sees OUT_OF_STOCK.
		if product.IsDisabled() {
			return shared.NewDomainError(shared.CodeProductNotSellable, "Product is not available for sale")
		}
		if !product.WithinPurchaseLimit(quantity) {
			return shared.NewDomainErrorf(shared.CodePurchaseLimitExceeded,
				"Requested %d exceeds the per-order limit of %d", quantity, product.PurchaseLimit)
		}
		ledger, err := repos.Ledgers().FindByProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if err := ledger.Reduce(quantity); err != nil {
			return err
		}
		if err := repos.Ledgers().Save(ctx, ledger); err != nil {
			return err
		}
		if ledger.IsDepleted() {
			product.MarkSoldOut()
			if err := repos.Products().UpdateStatus(ctx, product.ID, product.Status); err != nil {
				return err
			}
			events = append(events, product.GetDomainEvents()...)
			product.ClearDomainEvents()
		}
		response = ToStockLevelResponse(ledger)
		events = append(events, ledger.GetDomainEvents()...)
		ledger.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	return &response, nil
}

// restoreLocked performs one product's restoration under an already-held lock
func (s *StockService) restoreLocked(ctx context.Context, productID uuid.UUID, quantity int64) (*StockLevelResponse, error) {
	var (
		response StockLevelResponse
		events   []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		ledger, err := repos.Ledgers().FindByProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		wasDepleted := ledger.IsDepleted()
		if err := ledger.Restore(quantity); err != nil {
			return err
		}
		if err := repos.Ledgers().Save(ctx, ledger); err != nil {
			return err
		}
		if wasDepleted && !ledger.IsDepleted() {
			if err := s.markBackInStock(ctx, repos, productID, &events); err != nil {
				return err
			}
		}
		response = ToStockLevelResponse(ledger)
		events = append(events, ledger.GetDomainEvents()...)
		ledger.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	return &response, nil
}

// markBackInStock flips a sold-out product back to sellable
func (s *StockService) markBackInStock(ctx context.Context, repos TransactionalRepositories, productID uuid.UUID, events *[]shared.DomainEvent) error {
	product, err := repos.Products().FindByID(ctx, productID)
	if err != nil {
		// A missing product must not block a restore; the ledger is the
		// source of truth here.
		if shared.IsCode(err, "NOT_FOUND") {
			return nil
		}
		return err
	}
	product.MarkInStock()
	if len(product.GetDomainEvents()) == 0 {
		return nil
	}
	if err := repos.Products().UpdateStatus(ctx, product.ID, product.Status); err != nil {
		return err
	}
	*events = append(*events, product.GetDomainEvents()...)
	product.ClearDomainEvents()
	return nil
}

// publish fans events out to observers; failures are the bus's concern
func (s *StockService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
}

// validateRequest rejects malformed single-product requests
func validateRequest(productID uuid.UUID, quantity int64) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity must be positive")
	}
	return nil
}

// mergeBatchItems validates a batch, merges duplicate products and returns
// the items sorted by product ID — the same order their locks are taken in.
func mergeBatchItems(items []BatchItem) ([]BatchItem, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_REQUEST", "At least one item is required")
	}
	byProduct := make(map[uuid.UUID]int64, len(items))
	for _, item := range items {
		if err := validateRequest(item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
		byProduct[item.ProductID] += item.Quantity
	}
	merged := make([]BatchItem, 0, len(byProduct))
	for id, qty := range byProduct {
		merged = append(merged, BatchItem{ProductID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ProductID.String() < merged[j].ProductID.String()
	})
	return merged, nil
}
