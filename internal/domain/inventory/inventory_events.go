package inventory

import (
	"github.com/google/uuid"
	"github.com/shopcore/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeStockLedger = "StockLedger"

// Event type constants
const (
	EventTypeStockReduced     = "StockReduced"
	EventTypeStockRestored    = "StockRestored"
	EventTypeStockAdded       = "StockAdded"
	EventTypeStockDepleted    = "StockDepleted"
	EventTypeStockReplenished = "StockReplenished"
)

// StockReducedEvent is raised when stock is deducted for a sale
type StockReducedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Available int64     `json:"available"`
	Sold      int64     `json:"sold"`
}

// NewStockReducedEvent creates a new StockReducedEvent
func NewStockReducedEvent(l *StockLedger, quantity int64) *StockReducedEvent {
	return &StockReducedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReduced, AggregateTypeStockLedger, l.ID),
		ProductID:       l.ProductID,
		Quantity:        quantity,
		Available:       l.AvailableQuantity,
		Sold:            l.SoldQuantity,
	}
}

// StockRestoredEvent is raised when sold stock is returned, e.g. cancellation
type StockRestoredEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Available int64     `json:"available"`
	Sold      int64     `json:"sold"`
}

// NewStockRestoredEvent creates a new StockRestoredEvent
func NewStockRestoredEvent(l *StockLedger, quantity int64) *StockRestoredEvent {
	return &StockRestoredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRestored, AggregateTypeStockLedger, l.ID),
		ProductID:       l.ProductID,
		Quantity:        quantity,
		Available:       l.AvailableQuantity,
		Sold:            l.SoldQuantity,
	}
}

// StockAddedEvent is raised on replenishment
type StockAddedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Available int64     `json:"available"`
}

// NewStockAddedEvent creates a new StockAddedEvent
func NewStockAddedEvent(l *StockLedger, quantity int64) *StockAddedEvent {
	return &StockAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdded, AggregateTypeStockLedger, l.ID),
		ProductID:       l.ProductID,
		Quantity:        quantity,
		Available:       l.AvailableQuantity,
	}
}

// StockDepletedEvent is raised when available stock reaches zero
type StockDepletedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
}

// NewStockDepletedEvent creates a new StockDepletedEvent
func NewStockDepletedEvent(l *StockLedger) *StockDepletedEvent {
	return &StockDepletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDepleted, AggregateTypeStockLedger, l.ID),
		ProductID:       l.ProductID,
	}
}

// StockReplenishedEvent is raised when a depleted ledger regains stock
type StockReplenishedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

// NewStockReplenishedEvent creates a new StockReplenishedEvent
func NewStockReplenishedEvent(l *StockLedger, quantity int64) *StockReplenishedEvent {
	return &StockReplenishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReplenished, AggregateTypeStockLedger, l.ID),
		ProductID:       l.ProductID,
		Quantity:        quantity,
	}
}
