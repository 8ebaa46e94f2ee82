// Package cache holds the Redis-backed store for property aggregate
// projections. Writers invalidate synchronously before acknowledging, so a
// read after a write never serves the projection the write obsoleted.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lodgebook/pkg/config"
	"lodgebook/pkg/model"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned when no cached projection exists for the property.
var ErrMiss = errors.New("aggregates cache miss")

type AggregatesCache interface {
	Get(ctx context.Context, propertyID string) (*model.PropertyAggregates, error)
	Set(ctx context.Context, aggregates *model.PropertyAggregates) error
	Invalidate(ctx context.Context, propertyID string) error
}

type redisAggregatesCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAggregatesCache(cfg *config.Config) AggregatesCache {
	return &redisAggregatesCache{
		client: cfg.Client.Redis,
		ttl:    cfg.AggregatesCacheTTL,
	}
}

func key(propertyID string) string {
	return "aggregates:property:" + propertyID
}

func (c *redisAggregatesCache) Get(ctx context.Context, propertyID string) (*model.PropertyAggregates, error) {
	raw, err := c.client.Get(ctx, key(propertyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to read cached aggregates: %w", err)
	}

	var aggregates model.PropertyAggregates
	if err := json.Unmarshal(raw, &aggregates); err != nil {
		return nil, fmt.Errorf("failed to decode cached aggregates: %w", err)
	}
	return &aggregates, nil
}

func (c *redisAggregatesCache) Set(ctx context.Context, aggregates *model.PropertyAggregates) error {
	raw, err := json.Marshal(aggregates)
	if err != nil {
		return fmt.Errorf("failed to encode aggregates: %w", err)
	}
	if err := c.client.Set(ctx, key(aggregates.PropertyID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache aggregates: %w", err)
	}
	return nil
}

func (c *redisAggregatesCache) Invalidate(ctx context.Context, propertyID string) error {
	if err := c.client.Del(ctx, key(propertyID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate aggregates: %w", err)
	}
	return nil
}

// NoopCache disables caching; every read recomputes from storage.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, propertyID string) (*model.PropertyAggregates, error) {
	return nil, ErrMiss
}

func (NoopCache) Set(ctx context.Context, aggregates *model.PropertyAggregates) error { return nil }

func (NoopCache) Invalidate(ctx context.Context, propertyID string) error { return nil }
