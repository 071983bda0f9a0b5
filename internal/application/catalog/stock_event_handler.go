package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopcore/backend/internal/domain/inventory"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/infrastructure/cache"
)

// StockEventHandler keeps the catalog's cached views in step with stock
// movements: cached products are invalidated when their status may have
// flipped, and successful deductions bump the popularity ranking.
type StockEventHandler struct {
	cache   cache.ProductCache
	ranking cache.SalesRanking
	logger  *zap.Logger
}

// NewStockEventHandler creates a new StockEventHandler
func NewStockEventHandler(productCache cache.ProductCache, ranking cache.SalesRanking, logger *zap.Logger) *StockEventHandler {
	if ranking == nil {
		ranking = cache.NoopSalesRanking{}
	}
	return &StockEventHandler{cache: productCache, ranking: ranking, logger: logger}
}

// EventTypes returns the stock events this handler reacts to
func (h *StockEventHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeStockReduced,
		inventory.EventTypeStockDepleted,
		inventory.EventTypeStockReplenished,
	}
}

// Handle processes a stock event
func (h *StockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.StockReducedEvent:
		if err := h.ranking.RecordSale(ctx, e.ProductID, e.Quantity); err != nil {
			// The sale itself already committed; ranking is best effort
			h.logger.Warn("failed to record sale in ranking",
				zap.String("product_id", e.ProductID.String()),
				zap.Error(err))
		}
		return nil
	case *inventory.StockDepletedEvent:
		h.invalidate(ctx, e.ProductID)
		return nil
	case *inventory.StockReplenishedEvent:
		h.invalidate(ctx, e.ProductID)
		return nil
	default:
		return nil
	}
}

func (h *StockEventHandler) invalidate(ctx context.Context, productID uuid.UUID) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, productID); err != nil {
		h.logger.Warn("failed to invalidate product cache",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}

var _ shared.EventHandler = (*StockEventHandler)(nil)
