package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shopfront/catalog-api/internal/core/domain"
)

const defaultProductTTL = 5 * time.Minute

// ProductCache is a read-through cache of single products backed by Redis.
// Key format: catalog:product:<id> for the entry and catalog:product:<id>:gen
// for the invalidation counter guarding writes to it.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache creates a ProductCache wrapping the given Redis client.
// A non-positive ttl falls back to five minutes.
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = defaultProductTTL
	}
	return &ProductCache{client: client, ttl: ttl}
}

// Get returns the cached product and the current generation. A miss returns a
// nil product.
func (c *ProductCache) Get(ctx context.Context, id int64) (*domain.Product, int64, error) {
	vals, err := c.client.MGet(ctx, productKey(id), generationKey(id)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("product cache get: %w", err)
	}
	generation, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, fmt.Errorf("product cache generation: %w", err)
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, generation, nil
	}
	var p domain.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// A corrupt entry is dropped and reported as a miss.
		_ = c.client.Del(ctx, productKey(id)).Err()
		return nil, generation, nil
	}
	return &p, generation, nil
}

// Set stores p until the cache ttl expires. The write is skipped when the
// product's generation no longer equals generation, and a concurrent
// Invalidate aborts it through WATCH.
func (c *ProductCache) Set(ctx context.Context, p *domain.Product, generation int64) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("product cache encode: %w", err)
	}

	genKey := generationKey(p.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, productKey(p.ID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate drops the cached copy of a product and advances its generation.
func (c *ProductCache) Invalidate(ctx context.Context, id int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(id))
		pipe.Del(ctx, productKey(id))
		return nil
	})
	return err
}

func productKey(id int64) string {
	return fmt.Sprintf("catalog:product:%d", id)
}

func generationKey(id int64) string {
	return productKey(id) + ":gen"
}

// parseGeneration reads an MGET slot; a missing counter is generation zero.
func parseGeneration(v any) (int64, error) {
	switch g := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(g, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected generation type %T", v)
	}
}
