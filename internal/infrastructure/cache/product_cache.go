package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shopcore/backend/internal/domain/catalog"
)

// DefaultProductTTL is how long a cached product stays fresh
const DefaultProductTTL = 5 * time.Minute

// ProductCache is a read-through cache over the product repository.
// Get returns (nil, nil) on a miss; errors are reserved for backend
// failures.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	Set(ctx context.Context, product *catalog.Product) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// RedisConfig holds Redis connection parameters
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient creates and pings a Redis client
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisProductCache implements ProductCache on Redis
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// RedisProductCacheOption is a functional option for configuring the cache
type RedisProductCacheOption func(*RedisProductCache)

// WithProductTTL sets the cache entry lifetime
func WithProductTTL(ttl time.Duration) RedisProductCacheOption {
	return func(c *RedisProductCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisProductCacheOption {
	return func(c *RedisProductCache) {
		c.logger = logger
	}
}

// NewRedisProductCache creates a cache with an existing Redis client.
// The caller retains ownership of the client.
func NewRedisProductCache(client *redis.Client, opts ...RedisProductCacheOption) *RedisProductCache {
	cache := &RedisProductCache{
		client: client,
		ttl:    DefaultProductTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

func productCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

// Get retrieves a product from cache
func (c *RedisProductCache) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	data, err := c.client.Get(ctx, productCacheKey(id)).Bytes()
	if err == redis.Nil {
		c.logger.Debug("product cache miss", zap.String("product_id", id.String()))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product from cache: %w", err)
	}

	var product catalog.Product
	if err := json.Unmarshal(data, &product); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it
		c.logger.Warn("corrupt product cache entry",
			zap.String("product_id", id.String()),
			zap.Error(err))
		return nil, nil
	}
	return &product, nil
}

// Set stores a product in cache
func (c *RedisProductCache) Set(ctx context.Context, product *catalog.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	if err := c.client.Set(ctx, productCacheKey(product.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache product: %w", err)
	}
	return nil
}

// Invalidate removes a product from cache
func (c *RedisProductCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, productCacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}
	return nil
}

var _ ProductCache = (*RedisProductCache)(nil)
