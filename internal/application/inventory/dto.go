package inventory

import (
	"github.com/google/uuid"
	"github.com/shopcore/backend/internal/domain/inventory"
)

// StockLevelResponse reports a ledger's quantities after an operation.
// Values are authoritative at the moment the lock was released and may be
// stale immediately after.
type StockLevelResponse struct {
	ProductID         uuid.UUID `json:"product_id"`
	AvailableQuantity int64     `json:"available_quantity"`
	SoldQuantity      int64     `json:"sold_quantity"`
}

// ToStockLevelResponse maps a ledger to its response
func ToStockLevelResponse(l *inventory.StockLedger) StockLevelResponse {
	return StockLevelResponse{
		ProductID:         l.ProductID,
		AvailableQuantity: l.AvailableQuantity,
		SoldQuantity:      l.SoldQuantity,
	}
}

// BatchItem is one product-quantity pair of a batch operation
type BatchItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

// BatchItemResult reports the outcome for a single batch item
type BatchItemResult struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Error     string    `json:"error,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
}

// BatchResult reports a batch operation outcome item by item. Batch
// operations are not transactions: items in Applied are durably committed
// even when a later item failed, and the caller decides whether to
// compensate (RestoreMany is the compensation primitive for ReduceMany).
type BatchResult struct {
	// Applied lists items that were committed, in processing order
	Applied []BatchItemResult `json:"applied"`
	// Failed holds the item whose operation failed, if any
	Failed *BatchItemResult `json:"failed,omitempty"`
	// Skipped lists items never attempted because an earlier item failed
	Skipped []BatchItemResult `json:"skipped,omitempty"`
}

// Success is true when every item was applied
func (r *BatchResult) Success() bool {
	return r.Failed == nil
}

// AppliedItems returns the committed items as batch inputs, ready to feed a
// compensating call.
func (r *BatchResult) AppliedItems() []BatchItem {
	items := make([]BatchItem, 0, len(r.Applied))
	for _, a := range r.Applied {
		items = append(items, BatchItem{ProductID: a.ProductID, Quantity: a.Quantity})
	}
	return items
}
