package catalog

import (
	"strings"

	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the lifecycle state of a product
type ProductStatus string

const (
	// ProductStatusOnSale means the product can be purchased
	ProductStatusOnSale ProductStatus = "ON_SALE"
	// ProductStatusSoldOut means available stock reached zero; flips back to
	// ON_SALE when stock is restored or replenished
	ProductStatusSoldOut ProductStatus = "SOLD_OUT"
	// ProductStatusDisabled means the product was taken off the shelf by an
	// administrative action and cannot be purchased regardless of stock
	ProductStatusDisabled ProductStatus = "DISABLED"
)

// Product is the aggregate root for the sellable catalog entry.
// Stock quantities live in the inventory context; the product only carries
// the sellable flag and the per-order purchase cap.
type Product struct {
	shared.BaseAggregateRoot
	Name          string          `gorm:"type:varchar(200);not null"`
	SKU           string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status        ProductStatus   `gorm:"type:varchar(20);not null;default:'ON_SALE';index"`
	PurchaseLimit int64           `gorm:"not null;default:0"` // max units per order, 0 = unlimited
	Description   string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product in ON_SALE state
func NewProduct(name, sku string, price decimal.Decimal, purchaseLimit int64) (*Product, error) {
	name = strings.TrimSpace(name)
	sku = strings.TrimSpace(sku)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	if purchaseLimit < 0 {
		return nil, shared.NewDomainError("INVALID_PURCHASE_LIMIT", "Purchase limit cannot be negative")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		SKU:               sku,
		Price:             price,
		Status:            ProductStatusOnSale,
		PurchaseLimit:     purchaseLimit,
	}
	p.AddDomainEvent(NewProductListedEvent(p))
	return p, nil
}

// IsSellable returns true if the product can currently be purchased
func (p *Product) IsSellable() bool {
	return p.Status == ProductStatusOnSale
}

// IsDisabled returns true if the product was taken off the shelf. A
// sold-out product is not disabled: it can still be asked for, the
// ledger just has nothing left to allocate.
func (p *Product) IsDisabled() bool {
	return p.Status == ProductStatusDisabled
}

// WithinPurchaseLimit returns true if quantity respects the per-order cap
func (p *Product) WithinPurchaseLimit(quantity int64) bool {
	return p.PurchaseLimit == 0 || quantity <= p.PurchaseLimit
}

// MarkSoldOut flips the product to SOLD_OUT when stock is depleted.
// A disabled product stays disabled.
func (p *Product) MarkSoldOut() {
	if p.Status != ProductStatusOnSale {
		return
	}
	p.Status = ProductStatusSoldOut
	p.MarkModified()
	p.AddDomainEvent(NewProductSoldOutEvent(p))
}

// MarkInStock flips a sold-out product back to ON_SALE when stock returns.
// A disabled product stays disabled.
func (p *Product) MarkInStock() {
	if p.Status != ProductStatusSoldOut {
		return
	}
	p.Status = ProductStatusOnSale
	p.MarkModified()
	p.AddDomainEvent(NewProductBackInStockEvent(p))
}

// Disable takes the product off the shelf
func (p *Product) Disable() error {
	if p.Status == ProductStatusDisabled {
		return shared.ErrInvalidState
	}
	p.Status = ProductStatusDisabled
	p.MarkModified()
	p.AddDomainEvent(NewProductDisabledEvent(p))
	return nil
}

// ChangePrice updates the product price
func (p *Product) ChangePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	p.Price = price
	p.MarkModified()
	return nil
}
