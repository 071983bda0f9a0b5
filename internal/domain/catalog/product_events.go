package catalog

import (
	"github.com/google/uuid"
	"github.com/shopcore/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductListed      = "ProductListed"
	EventTypeProductSoldOut     = "ProductSoldOut"
	EventTypeProductBackInStock = "ProductBackInStock"
	EventTypeProductDisabled    = "ProductDisabled"
)

// ProductListedEvent is raised when a product is first listed
type ProductListedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
}

// NewProductListedEvent creates a new ProductListedEvent
func NewProductListedEvent(p *Product) *ProductListedEvent {
	return &ProductListedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductListed, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		SKU:             p.SKU,
	}
}

// ProductSoldOutEvent is raised when available stock hits zero
type ProductSoldOutEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
}

// NewProductSoldOutEvent creates a new ProductSoldOutEvent
func NewProductSoldOutEvent(p *Product) *ProductSoldOutEvent {
	return &ProductSoldOutEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductSoldOut, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
	}
}

// ProductBackInStockEvent is raised when a sold-out product regains stock
type ProductBackInStockEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
}

// NewProductBackInStockEvent creates a new ProductBackInStockEvent
func NewProductBackInStockEvent(p *Product) *ProductBackInStockEvent {
	return &ProductBackInStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductBackInStock, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
	}
}

// ProductDisabledEvent is raised when a product is taken off the shelf
type ProductDisabledEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
}

// NewProductDisabledEvent creates a new ProductDisabledEvent
func NewProductDisabledEvent(p *Product) *ProductDisabledEvent {
	return &ProductDisabledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDisabled, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
	}
}
