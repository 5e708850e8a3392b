package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/journeyverse/backend/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

// GetProviderToken returns the cached inventory provider access token, or ""
// when it is absent or expired.
func (c *RedisCache) GetProviderToken(ctx context.Context, provider string) (string, error) {
	token, err := c.client.Get(ctx, tokenKey(provider)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

func (c *RedisCache) SetProviderToken(ctx context.Context, provider, token string, ttl time.Duration) error {
	return c.client.Set(ctx, tokenKey(provider), token, ttl).Err()
}

// GetSearchResults loads a cached search response into dst. The boolean
// reports a cache hit.
func (c *RedisCache) GetSearchResults(ctx context.Context, kind string, query any, dst any) (bool, error) {
	data, err := c.client.Get(ctx, searchKey(kind, query)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) SetSearchResults(ctx context.Context, kind string, query any, results any) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(kind, query), payload, c.searchTTL).Err()
}

// AcquirePaymentLock takes a short-lived lock on a booking so two concurrent
// payment initiations cannot both open a gateway order.
func (c *RedisCache) AcquirePaymentLock(ctx context.Context, bookingID uuid.UUID, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, paymentLockKey(bookingID), "locked", ttl).Result()
}

func (c *RedisCache) ReleasePaymentLock(ctx context.Context, bookingID uuid.UUID) error {
	return c.client.Del(ctx, paymentLockKey(bookingID)).Err()
}

func tokenKey(provider string) string {
	return fmt.Sprintf("token:%s", provider)
}

func searchKey(kind string, query any) string {
	payload, _ := json.Marshal(query)
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("search:%s:%s", kind, hex.EncodeToString(sum[:8]))
}

func paymentLockKey(bookingID uuid.UUID) string {
	return fmt.Sprintf("lock:payment:%s", bookingID)
}
