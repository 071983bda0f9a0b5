package inventory

import (
	"github.com/google/uuid"
	"github.com/shopcore/backend/internal/domain/shared"
)

// StockLedger is the aggregate root for the stock record of one product.
// AvailableQuantity + SoldQuantity is invariant under Reduce/Restore; only
// AddStock moves the total. All mutations happen inside the keyed lock for
// "stock:<productID>" held by the stock service — no other writer exists.
type StockLedger struct {
	shared.BaseAggregateRoot
	ProductID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	AvailableQuantity int64     `gorm:"not null;default:0"`
	SoldQuantity      int64     `gorm:"not null;default:0"`
	Memo              string    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (StockLedger) TableName() string {
	return "stock_ledgers"
}

// NewStockLedger creates a ledger for a newly listed product
func NewStockLedger(productID uuid.UUID, initialQuantity int64) (*StockLedger, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if initialQuantity < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Initial quantity cannot be negative")
	}
	return &StockLedger{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		AvailableQuantity: initialQuantity,
	}, nil
}

// CanFulfill returns true if the available quantity covers the request
func (l *StockLedger) CanFulfill(quantity int64) bool {
	return quantity > 0 && l.AvailableQuantity >= quantity
}

// IsDepleted returns true if no stock is available
func (l *StockLedger) IsDepleted() bool {
	return l.AvailableQuantity == 0
}

// Reduce moves quantity from available to sold. The caller must already hold
// the product's stock lock and have re-read this ledger from the store.
func (l *StockLedger) Reduce(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Reduce quantity must be positive")
	}
	if l.AvailableQuantity < quantity {
		return shared.NewDomainErrorf(shared.CodeOutOfStock,
			"Insufficient stock: requested=%d, available=%d", quantity, l.AvailableQuantity)
	}

	l.AvailableQuantity -= quantity
	l.SoldQuantity += quantity
	l.MarkModified()

	l.AddDomainEvent(NewStockReducedEvent(l, quantity))
	if l.IsDepleted() {
		l.AddDomainEvent(NewStockDepletedEvent(l))
	}
	return nil
}

// Restore moves quantity from sold back to available, e.g. on order
// cancellation. More than was sold cannot be restored.
func (l *StockLedger) Restore(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Restore quantity must be positive")
	}
	if l.SoldQuantity < quantity {
		return shared.NewDomainErrorf(shared.CodeInvalidQuantity,
			"Cannot restore more than was sold: requested=%d, sold=%d", quantity, l.SoldQuantity)
	}

	wasDepleted := l.IsDepleted()
	l.SoldQuantity -= quantity
	l.AvailableQuantity += quantity
	l.MarkModified()

	l.AddDomainEvent(NewStockRestoredEvent(l, quantity))
	if wasDepleted {
		l.AddDomainEvent(NewStockReplenishedEvent(l, quantity))
	}
	return nil
}

// AddStock replenishes available stock, e.g. on a new purchase receipt.
// This is the only operation that changes available + sold.
func (l *StockLedger) AddStock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Add quantity must be positive")
	}

	wasDepleted := l.IsDepleted()
	l.AvailableQuantity += quantity
	l.MarkModified()

	l.AddDomainEvent(NewStockAddedEvent(l, quantity))
	if wasDepleted {
		l.AddDomainEvent(NewStockReplenishedEvent(l, quantity))
	}
	return nil
}
