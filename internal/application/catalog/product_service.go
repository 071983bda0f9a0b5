package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/shopcore/backend/internal/application/inventory"
	"github.com/shopcore/backend/internal/domain/catalog"
	"github.com/shopcore/backend/internal/domain/inventory"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/infrastructure/cache"
)

// ProductService manages catalog entries. Reads go through the product
// cache; the cache is strictly an accelerator and every failure there
// degrades to a repository read.
type ProductService struct {
	scope       appinventory.TransactionScope
	productRepo catalog.ProductRepository
	cache       cache.ProductCache
	ranking     cache.SalesRanking
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// ProductServiceOption configures a ProductService
type ProductServiceOption func(*ProductService)

// WithProductCache attaches a read-through cache
func WithProductCache(c cache.ProductCache) ProductServiceOption {
	return func(s *ProductService) {
		s.cache = c
	}
}

// WithSalesRanking attaches a popularity ranking
func WithSalesRanking(r cache.SalesRanking) ProductServiceOption {
	return func(s *ProductService) {
		s.ranking = r
	}
}

// WithEventPublisher attaches an event publisher for domain events
func WithEventPublisher(publisher shared.EventPublisher) ProductServiceOption {
	return func(s *ProductService) {
		s.publisher = publisher
	}
}

// NewProductService creates a new ProductService
func NewProductService(
	scope appinventory.TransactionScope,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
	opts ...ProductServiceOption,
) *ProductService {
	s := &ProductService{
		scope:       scope,
		productRepo: productRepo,
		ranking:     cache.NoopSalesRanking{},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProduct lists a new product together with its opening stock ledger.
// Both rows commit in one transaction; a product without a ledger would make
// every stock operation fail with NOT_FOUND.
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.SKU, req.Price, req.PurchaseLimit)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description

	ledger, err := inventory.NewStockLedger(product.ID, req.InitialStock)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		if existing, err := repos.Products().FindBySKU(ctx, req.SKU); err == nil && existing != nil {
			return shared.NewDomainErrorf("ALREADY_EXISTS", "SKU %s is already in use", req.SKU)
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		return repos.Ledgers().Save(ctx, ledger)
	})
	if err != nil {
		return nil, err
	}

	s.publishAll(ctx, product)
	s.logger.Info("product listed",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
		zap.Int64("initial_stock", req.InitialStock))
	response := ToProductResponse(product)
	return &response, nil
}

// GetProduct returns a product, preferring the cache
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("product cache read failed", zap.Error(err))
		}
		if cached != nil {
			response := ToProductResponse(cached)
			return &response, nil
		}
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, product); err != nil {
			s.logger.Warn("product cache write failed", zap.Error(err))
		}
	}
	response := ToProductResponse(product)
	return &response, nil
}

// ListProducts lists catalog entries
func (s *ProductService) ListProducts(ctx context.Context, offset, limit int) ([]ProductResponse, int64, error) {
	products, total, err := s.productRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses, total, nil
}

// DisableProduct takes a product off the shelf
func (s *ProductService) DisableProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Disable(); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	s.publishAll(ctx, product)
	response := ToProductResponse(product)
	return &response, nil
}

// TopSellers returns the best-selling products from the ranking
func (s *ProductService) TopSellers(ctx context.Context, limit int64) ([]TopSellerResponse, error) {
	entries, err := s.ranking.TopSellers(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]TopSellerResponse, len(entries))
	for i, e := range entries {
		out[i] = TopSellerResponse{ProductID: e.ProductID, Sold: e.Sold}
	}
	return out, nil
}

func (s *ProductService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("product cache invalidation failed",
			zap.String("product_id", id.String()),
			zap.Error(err))
	}
}

func (s *ProductService) publishAll(ctx context.Context, product *catalog.Product) {
	if s.publisher == nil {
		return
	}
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	product.ClearDomainEvents()
}
