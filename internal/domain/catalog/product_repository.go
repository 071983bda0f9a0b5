package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by its SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// List lists products, newest first
	List(ctx context.Context, offset, limit int) ([]Product, int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdateStatus updates only the product status. Used for the sold-out /
	// back-in-stock side effects inside the stock critical section, where a
	// full aggregate save would be wasted work.
	UpdateStatus(ctx context.Context, id uuid.UUID, status ProductStatus) error
}
