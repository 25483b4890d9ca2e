package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "cart:"

// RedisStore хранит корзину JSON-ом под cart:<sessionID>; TTL обновляется при каждой записи
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// DialRedis подключается и пингует с таймаутом
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cart: redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) ([]Line, error) {
	raw, err := r.rdb.Get(ctx, redisPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart: redis get: %w", err)
	}
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("cart: decode: %w", err)
	}
	return lines, nil
}

func (r *RedisStore) Put(ctx context.Context, sessionID string, lines []Line) error {
	if len(lines) == 0 {
		return r.Delete(ctx, sessionID)
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := r.rdb.Set(ctx, redisPrefix+sessionID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("cart: redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, redisPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("cart: redis del: %w", err)
	}
	return nil
}
