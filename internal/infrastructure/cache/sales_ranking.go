package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const salesRankingKey = "ranking:product_sales"

// ProductSales is one entry of the popularity ranking
type ProductSales struct {
	ProductID uuid.UUID `json:"product_id"`
	Sold      int64     `json:"sold"`
}

// SalesRanking tracks units sold per product for popularity queries.
// RecordSale is called on the hot path after a successful deduction, so
// implementations must be cheap and failures must not affect the sale.
type SalesRanking interface {
	RecordSale(ctx context.Context, productID uuid.UUID, quantity int64) error
	TopSellers(ctx context.Context, limit int64) ([]ProductSales, error)
}

// RedisSalesRanking implements SalesRanking on a Redis sorted set
type RedisSalesRanking struct {
	client *redis.Client
}

// NewRedisSalesRanking creates a ranking over an existing Redis client
func NewRedisSalesRanking(client *redis.Client) *RedisSalesRanking {
	return &RedisSalesRanking{client: client}
}

// RecordSale adds quantity to the product's sold score
func (r *RedisSalesRanking) RecordSale(ctx context.Context, productID uuid.UUID, quantity int64) error {
	if err := r.client.ZIncrBy(ctx, salesRankingKey, float64(quantity), productID.String()).Err(); err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}
	return nil
}

// TopSellers returns the highest-scored products, best first
func (r *RedisSalesRanking) TopSellers(ctx context.Context, limit int64) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}
	members, err := r.client.ZRevRangeWithScores(ctx, salesRankingKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read sales ranking: %w", err)
	}
	out := make([]ProductSales, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m.Member.(string))
		if err != nil {
			continue
		}
		out = append(out, ProductSales{ProductID: id, Sold: int64(m.Score)})
	}
	return out, nil
}

// NoopSalesRanking discards sales, for deployments without Redis
type NoopSalesRanking struct{}

// RecordSale does nothing
func (NoopSalesRanking) RecordSale(context.Context, uuid.UUID, int64) error { return nil }

// TopSellers returns an empty ranking
func (NoopSalesRanking) TopSellers(context.Context, int64) ([]ProductSales, error) { return nil, nil }

var (
	_ SalesRanking = (*RedisSalesRanking)(nil)
	_ SalesRanking = NoopSalesRanking{}
)
