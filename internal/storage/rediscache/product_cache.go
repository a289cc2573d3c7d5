package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mercadinho/market-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Key layout: catalog:product:{id} -> product JSON.
const keyProduct = "catalog:product:%s"

const defaultTTL = 30 * time.Second

// NewClient returns a redis client for the given address.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// ProductCache is a best-effort read-through cache for catalog lookups.
// Misses and redis failures both fall through to the database; stock shown
// here may lag the store by up to the TTL, which is why the placement path
// never reads it.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: defaultTTL}
}

func (c *ProductCache) GetProduct(ctx context.Context, productID string) (*domain.Product, bool) {
	raw, err := c.rdb.Get(ctx, fmt.Sprintf(keyProduct, productID)).Bytes()
	if err != nil {
		return nil, false
	}
	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *ProductCache) SetProduct(ctx context.Context, product domain.Product) {
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, fmt.Sprintf(keyProduct, product.ID), raw, c.ttl).Err()
}

func (c *ProductCache) Invalidate(ctx context.Context, productIDs ...string) {
	if len(productIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, fmt.Sprintf(keyProduct, id))
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}
