// Package cache holds the featured listing cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
)

const featuredKey = "estate:properties:featured"

// FeaturedCache stores the expanded featured listing.
type FeaturedCache interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context) (props []*model.PropertyDetail, ok bool, err error)
	Set(ctx context.Context, props []*model.PropertyDetail) error
	Invalidate(ctx context.Context) error
}

// Noop never hits.
type Noop struct{}

func (Noop) Get(context.Context) ([]*model.PropertyDetail, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, []*model.PropertyDetail) error         { return nil }
func (Noop) Invalidate(context.Context) error                           { return nil }

// NewRedisClient parses url, e.g. redis://:password@localhost:6379/0, and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// RedisFeatured keeps the featured listing as one JSON value with a TTL.
type RedisFeatured struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFeatured(client *redis.Client, ttl time.Duration) *RedisFeatured {
	return &RedisFeatured{client: client, ttl: ttl}
}

func (c *RedisFeatured) Get(ctx context.Context) ([]*model.PropertyDetail, bool, error) {
	raw, err := c.client.Get(ctx, featuredKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var props []*model.PropertyDetail
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, false, fmt.Errorf("corrupt featured cache entry: %w", err)
	}

	return props, true, nil
}

func (c *RedisFeatured) Set(ctx context.Context, props []*model.PropertyDetail) error {
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, featuredKey, raw, c.ttl).Err()
}

func (c *RedisFeatured) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, featuredKey).Err()
}
