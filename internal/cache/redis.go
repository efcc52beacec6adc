package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tripbooking/config"
	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	hotelsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, hotelsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), hotelsTTL)
}

func NewRedisCacheWithClient(client *redis.Client, hotelsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, hotelsTTL: hotelsTTL}
}

// GetHotel returns nil without error on a cache miss.
func (c *RedisCache) GetHotel(ctx context.Context, id int64) (*domain.Hotel, error) {
	data, err := c.client.Get(ctx, hotelKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var hotel domain.Hotel
	if err := json.Unmarshal(data, &hotel); err != nil {
		return nil, err
	}
	return &hotel, nil
}

func (c *RedisCache) SetHotel(ctx context.Context, hotel *domain.Hotel) error {
	payload, err := json.Marshal(hotel)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, hotelKey(hotel.ID), payload, c.hotelsTTL).Err()
}

func (c *RedisCache) InvalidateHotel(ctx context.Context, id int64) error {
	return c.client.Del(ctx, hotelKey(id)).Err()
}

// StoredResponse is the record kept under an idempotency key. While the
// first request is still running it only carries the body hash.
type StoredResponse struct {
	BodyHash    string `json:"body_hash"`
	InFlight    bool   `json:"in_flight,omitempty"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

func (c *RedisCache) GetResponse(ctx context.Context, key string) (*StoredResponse, error) {
	data, err := c.client.Get(ctx, idempotencyKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var resp StoredResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClaimResponse marks key as in flight. It reports false when the key is
// already claimed or answered.
func (c *RedisCache) ClaimResponse(ctx context.Context, key, bodyHash string, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(StoredResponse{BodyHash: bodyHash, InFlight: true})
	if err != nil {
		return false, err
	}
	return c.client.SetNX(ctx, idempotencyKey(key), payload, ttl).Result()
}

// SaveResponse replaces the claim on key with the finished response.
func (c *RedisCache) SaveResponse(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, idempotencyKey(key), payload, ttl).Err()
}

// ReleaseResponse drops the claim so the request can be retried.
func (c *RedisCache) ReleaseResponse(ctx context.Context, key string) error {
	return c.client.Del(ctx, idempotencyKey(key)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func hotelKey(id int64) string {
	return fmt.Sprintf("cache:hotel:%d", id)
}

func idempotencyKey(key string) string {
	return "idempotency:" + key
}
