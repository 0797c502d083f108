package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyProducts = "products:"

// ProductCache is a read-through cache for product detail lookups. It
// only serves reads; checkout always validates stock against the
// database, so a stale entry can never oversell.
type ProductCache struct {
	cache *redis.Client
	ttl   time.Duration
}

func NewProductCache(cache *redis.Client) *ProductCache {
	return &ProductCache{cache: cache, ttl: time.Hour}
}

func (p *ProductCache) Get(c context.Context, id uuid.UUID) (Product, error) {
	jsonString, err := p.cache.Get(c, keyProducts+id.String()).Result()
	if err != nil {
		return Product{}, err
	}
	product := Product{}
	err = json.Unmarshal([]byte(jsonString), &product)
	if err != nil {
		return Product{}, err
	}
	return product, nil
}

func (p *ProductCache) Set(c context.Context, product Product) error {
	jsonBytes, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return p.cache.Set(c, keyProducts+product.ID.String(), jsonBytes, p.ttl).Err()
}

func (p *ProductCache) Del(c context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, keyProducts+id.String())
	}
	return p.cache.Del(c, keys...).Err()
}
