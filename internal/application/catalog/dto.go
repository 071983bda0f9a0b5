package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopcore/backend/internal/domain/catalog"
)

// CreateProductRequest lists a new product with its opening stock
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	SKU           string          `json:"sku" binding:"required"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	PurchaseLimit int64           `json:"purchase_limit"`
	Description   string          `json:"description"`
	InitialStock  int64           `json:"initial_stock" binding:"gte=0"`
}

// ProductResponse reports a catalog entry
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Price         decimal.Decimal `json:"price"`
	Status        string          `json:"status"`
	PurchaseLimit int64           `json:"purchase_limit"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToProductResponse maps a product to its response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		Price:         p.Price,
		Status:        string(p.Status),
		PurchaseLimit: p.PurchaseLimit,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt,
	}
}

// TopSellerResponse is one row of the popularity ranking
type TopSellerResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Sold      int64     `json:"sold"`
}
