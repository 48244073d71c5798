package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// PendingMarker is stored under a key while its checkout is in flight
const PendingMarker = "pending"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks that Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func checkoutKey(key string) string {
	return fmt.Sprintf("idempotency:checkout:%s", key)
}

// Reserve claims an idempotency key. It returns false when the key is
// already taken by an earlier submission.
func (c *Client) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, checkoutKey(key), PendingMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Complete stores the sale id created for a reserved key
func (c *Client) Complete(ctx context.Context, key, saleID string, ttl time.Duration) error {
	return c.rdb.Set(ctx, checkoutKey(key), saleID, ttl).Err()
}

// Lookup returns the value stored for key: a sale id, PendingMarker, or
// found=false when the key is unknown or expired.
func (c *Client) Lookup(ctx context.Context, key string) (value string, found bool, err error) {
	value, err = c.rdb.Get(ctx, checkoutKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup idempotency key: %w", err)
	}
	return value, true, nil
}

// Release frees a key so a failed checkout can be retried
func (c *Client) Release(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, checkoutKey(key)).Err()
}
