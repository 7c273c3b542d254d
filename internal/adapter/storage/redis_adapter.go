package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	stockKeyPrefix = "stock:"
	cartKeyPrefix  = "cart:"
)

var adjustStockScript = redis.NewScript(`
local key = KEYS[1]
local delta = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return 0
end

current = tonumber(current)
if current + delta < 0 then
	return 0
end

redis.call('INCRBY', key, delta)
return 1
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) AdjustStock(ctx context.Context, productID string, delta int) (bool, error) {
	key := stockKeyPrefix + productID

	result, err := adjustStockScript.Run(ctx, r.client, []string{key}, delta).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

func (r *RedisAdapter) GetStock(ctx context.Context, productID string) (int, bool, error) {
	stock, err := r.client.Get(ctx, stockKeyPrefix+productID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return stock, true, nil
}

func (r *RedisAdapter) GetStocks(ctx context.Context, productIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = stockKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		stock, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("parse stock %s: %w", productIDs[i], err)
		}
		out[productIDs[i]] = stock
	}
	return out, nil
}

func (r *RedisAdapter) SeedStock(ctx context.Context, productID string, quantity int, onlyIfAbsent bool) (bool, error) {
	key := stockKeyPrefix + productID

	if onlyIfAbsent {
		return r.client.SetNX(ctx, key, quantity, 0).Result()
	}
	if err := r.client.Set(ctx, key, quantity, 0).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// RedisSnapshotStore keeps the cart snapshot as JSON under cart:<key>.
type RedisSnapshotStore struct {
	client *redis.Client
	key    string
}

func NewRedisSnapshotStore(client *redis.Client, cartKey string) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, key: cartKeyPrefix + cartKey}
}

func (r *RedisSnapshotStore) SaveCart(ctx context.Context, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	return r.client.Set(ctx, r.key, data, 0).Err()
}

func (r *RedisSnapshotStore) LoadCart(ctx context.Context) ([]domain.LineItem, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.LineItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	items := []domain.LineItem{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return items, nil
}
