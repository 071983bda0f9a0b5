package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinventory "github.com/shopcore/backend/internal/application/inventory"
	"github.com/shopcore/backend/internal/domain/catalog"
	"github.com/shopcore/backend/internal/domain/inventory"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/infrastructure/cache"
)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product
	readCount int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]catalog.Product)}
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readCount++
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (r *fakeProductRepo) reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readCount
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == sku {
			copied := p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) List(_ context.Context, _, _ int) ([]catalog.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) UpdateStatus(_ context.Context, id uuid.UUID, status catalog.ProductStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = status
	r.products[id] = p
	return nil
}

type fakeLedgerRepo struct {
	mu      sync.Mutex
	ledgers map[uuid.UUID]inventory.StockLedger
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{ledgers: make(map[uuid.UUID]inventory.StockLedger)}
}

func (r *fakeLedgerRepo) FindByProduct(_ context.Context, productID uuid.UUID) (*inventory.StockLedger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.ledgers[productID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := l
	return &copied, nil
}

func (r *fakeLedgerRepo) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*inventory.StockLedger, error) {
	return r.FindByProduct(ctx, productID)
}

func (r *fakeLedgerRepo) FindByProducts(_ context.Context, productIDs []uuid.UUID) ([]inventory.StockLedger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.StockLedger, 0, len(productIDs))
	for _, id := range productIDs {
		if l, ok := r.ledgers[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) Save(_ context.Context, ledger *inventory.StockLedger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledgers[ledger.ProductID] = *ledger
	return nil
}

type productFixture struct {
	service  *ProductService
	products *fakeProductRepo
	ledgers  *fakeLedgerRepo
	cache    *cache.InMemoryProductCache
}

func newProductFixture(t *testing.T) *productFixture {
	t.Helper()
	products := newFakeProductRepo()
	ledgers := newFakeLedgerRepo()
	productCache := cache.NewInMemoryProductCache(time.Minute)
	scope := appinventory.NewNoOpTransactionScope(ledgers, products)
	service := NewProductService(scope, products, zap.NewNop(), WithProductCache(productCache))
	return &productFixture{service: service, products: products, ledgers: ledgers, cache: productCache}
}

func createRequest(sku string) *CreateProductRequest {
	return &CreateProductRequest{
		Name:         "Widget",
		SKU:          sku,
		Price:        decimal.NewFromInt(100),
		InitialStock: 10,
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product and opening ledger", func(t *testing.T) {
		f := newProductFixture(t)
		created, err := f.service.CreateProduct(ctx, createRequest("SKU-1"))
		require.NoError(t, err)
		assert.Equal(t, string(catalog.ProductStatusOnSale), created.Status)

		ledger, err := f.ledgers.FindByProduct(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), ledger.AvailableQuantity)
	})

	t.Run("duplicate SKU is rejected", func(t *testing.T) {
		f := newProductFixture(t)
		_, err := f.service.CreateProduct(ctx, createRequest("SKU-1"))
		require.NoError(t, err)

		_, err = f.service.CreateProduct(ctx, createRequest("SKU-1"))
		assert.True(t, shared.IsCode(err, "ALREADY_EXISTS"))
	})

	t.Run("invalid product", func(t *testing.T) {
		f := newProductFixture(t)
		req := createRequest("SKU-1")
		req.Name = ""
		_, err := f.service.CreateProduct(ctx, req)
		assert.Error(t, err)
	})
}

func TestProductService_GetProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from cache", func(t *testing.T) {
		f := newProductFixture(t)
		created, err := f.service.CreateProduct(ctx, createRequest("SKU-1"))
		require.NoError(t, err)

		_, err = f.service.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		readsAfterFirst := f.products.reads()

		got, err := f.service.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, readsAfterFirst, f.products.reads())
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newProductFixture(t)
		_, err := f.service.GetProduct(ctx, uuid.New())
		assert.True(t, shared.IsCode(err, "NOT_FOUND"))
	})
}

func TestProductService_DisableProduct(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	created, err := f.service.CreateProduct(ctx, createRequest("SKU-1"))
	require.NoError(t, err)

	// Warm the cache, then verify disabling invalidates it
	_, err = f.service.GetProduct(ctx, created.ID)
	require.NoError(t, err)

	disabled, err := f.service.DisableProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(catalog.ProductStatusDisabled), disabled.Status)

	cached, err := f.cache.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)

	got, err := f.service.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(catalog.ProductStatusDisabled), got.Status)
}

func TestStockEventHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("depletion invalidates the cached product", func(t *testing.T) {
		productCache := cache.NewInMemoryProductCache(time.Minute)
		product, err := catalog.NewProduct("Widget", "SKU-1", decimal.NewFromInt(100), 0)
		require.NoError(t, err)
		require.NoError(t, productCache.Set(ctx, product))

		ledger, err := inventory.NewStockLedger(product.ID, 1)
		require.NoError(t, err)
		require.NoError(t, ledger.Reduce(1))

		handler := NewStockEventHandler(productCache, nil, zap.NewNop())
		for _, event := range ledger.GetDomainEvents() {
			require.NoError(t, handler.Handle(ctx, event))
		}

		cached, err := productCache.Get(ctx, product.ID)
		require.NoError(t, err)
		assert.Nil(t, cached)
	})

	t.Run("subscribes to stock events", func(t *testing.T) {
		handler := NewStockEventHandler(nil, nil, zap.NewNop())
		assert.ElementsMatch(t, []string{
			inventory.EventTypeStockReduced,
			inventory.EventTypeStockDepleted,
			inventory.EventTypeStockReplenished,
		}, handler.EventTypes())
	})
}
