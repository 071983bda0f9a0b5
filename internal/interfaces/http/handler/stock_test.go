package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	inventoryapp "github.com/shopcore/backend/internal/application/inventory"
	"github.com/shopcore/backend/internal/domain/catalog"
	"github.com/shopcore/backend/internal/domain/inventory"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/infrastructure/lock"
	"github.com/shopcore/backend/internal/interfaces/http/dto"
)

type mockLedgerRepo struct {
	mu      sync.Mutex
	ledgers map[uuid.UUID]*inventory.StockLedger
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{ledgers: make(map[uuid.UUID]*inventory.StockLedger)}
}

func (m *mockLedgerRepo) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.StockLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.ledgers[productID]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockLedgerRepo) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*inventory.StockLedger, error) {
	return m.FindByProduct(ctx, productID)
}

func (m *mockLedgerRepo) FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]inventory.StockLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]inventory.StockLedger, 0, len(productIDs))
	for _, id := range productIDs {
		if l, ok := m.ledgers[id]; ok {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockLedgerRepo) Save(ctx context.Context, ledger *inventory.StockLedger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *ledger
	m.ledgers[ledger.ProductID] = &copied
	return nil
}

type mockProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (m *mockProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockProductRepo) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.SKU == sku {
			copied := *p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProductRepo) List(ctx context.Context, offset, limit int) ([]catalog.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (m *mockProductRepo) Save(ctx context.Context, product *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status catalog.ProductStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = status
	return nil
}

type stockTestEnv struct {
	router   *gin.Engine
	ledgers  *mockLedgerRepo
	products *mockProductRepo
}

func newStockTestEnv(t *testing.T) *stockTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ledgers := newMockLedgerRepo()
	products := newMockProductRepo()
	scope := inventoryapp.NewNoOpTransactionScope(ledgers, products)
	service := inventoryapp.NewStockService(lock.NewKeyedRegistry(), scope, ledgers, zap.NewNop())

	h := NewStockHandler(service)
	router := gin.New()
	router.GET("/stock/:productId/availability", h.CheckAvailability)
	router.POST("/stock/reduce", h.Reduce)
	router.POST("/stock/restore", h.Restore)
	router.POST("/stock/reduce-batch", h.ReduceBatch)

	return &stockTestEnv{router: router, ledgers: ledgers, products: products}
}

func (e *stockTestEnv) seedProduct(t *testing.T, available int64) uuid.UUID {
	t.Helper()
	product, err := catalog.NewProduct("Widget", "SKU-"+uuid.NewString()[:8], decimal.NewFromInt(100), 0)
	require.NoError(t, err)
	require.NoError(t, e.products.Save(context.Background(), product))

	ledger, err := inventory.NewStockLedger(product.ID, available)
	require.NoError(t, err)
	ledger.ClearDomainEvents()
	require.NoError(t, e.ledgers.Save(context.Background(), ledger))
	return product.ID
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestStockHandler_Reduce(t *testing.T) {
	t.Run("reduces stock and returns the new level", func(t *testing.T) {
		env := newStockTestEnv(t)
		productID := env.seedProduct(t, 10)

		w := postJSON(t, env.router, "/stock/reduce", StockOperationRequest{
			ProductID: productID,
			Quantity:  3,
		})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)

		level, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(7), level["available_quantity"])
		assert.Equal(t, float64(3), level["sold_quantity"])
	})

	t.Run("out of stock maps to 422", func(t *testing.T) {
		env := newStockTestEnv(t)
		productID := env.seedProduct(t, 2)

		w := postJSON(t, env.router, "/stock/reduce", StockOperationRequest{
			ProductID: productID,
			Quantity:  5,
		})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, shared.CodeOutOfStock, resp.Error.Code)
	})

	t.Run("unknown product maps to 404", func(t *testing.T) {
		env := newStockTestEnv(t)

		w := postJSON(t, env.router, "/stock/reduce", StockOperationRequest{
			ProductID: uuid.New(),
			Quantity:  1,
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		env := newStockTestEnv(t)

		req := httptest.NewRequest(http.MethodPost, "/stock/reduce", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStockHandler_CheckAvailability(t *testing.T) {
	env := newStockTestEnv(t)
	productID := env.seedProduct(t, 5)

	path := fmt.Sprintf("/stock/%s/availability?quantity=5", productID)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["available"])

	path = fmt.Sprintf("/stock/%s/availability?quantity=6", productID)
	req = httptest.NewRequest(http.MethodGet, path, nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)
	data, ok = resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["available"])
}

func TestStockHandler_ReduceBatch_PartialFailure(t *testing.T) {
	env := newStockTestEnv(t)
	okID := env.seedProduct(t, 10)

	// A purchase limit violation passes the unlocked availability precheck
	// and fails under the lock, so the handler must report a partial result.
	limited, err := catalog.NewProduct("Limited", "SKU-LIMITED", decimal.NewFromInt(100), 3)
	require.NoError(t, err)
	require.NoError(t, env.products.Save(context.Background(), limited))
	ledger, err := inventory.NewStockLedger(limited.ID, 10)
	require.NoError(t, err)
	ledger.ClearDomainEvents()
	require.NoError(t, env.ledgers.Save(context.Background(), ledger))

	items := []inventoryapp.BatchItem{
		{ProductID: okID, Quantity: 2},
		{ProductID: limited.ID, Quantity: 8},
	}

	w := postJSON(t, env.router, "/stock/reduce-batch", BatchOperationRequest{Items: items})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, shared.CodePurchaseLimitExceeded, resp.Error.Code)
	require.NotNil(t, resp.Data, "partial result must accompany the error")
}
