package service

import (
	"context"
	"sync"
	"testing"

	"lodgebook/internal/aggregates/cache"
	"lodgebook/pkg/config"
	"lodgebook/pkg/logger"
	"lodgebook/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRatings struct {
	average *float64
	count   int64
}

func (m *mockRatings) AverageRating(ctx context.Context, propertyID string) (*float64, int64, error) {
	return m.average, m.count, nil
}

type mockCounter struct {
	count int64
}

func (m *mockCounter) CountByProperty(ctx context.Context, propertyID string, status string) (int64, error) {
	return m.count, nil
}

type mockProperties struct{}

func (mockProperties) FindByID(ctx context.Context, id string) (*model.Property, error) {
	return &model.Property{ID: id, Name: "Seaside Cottage"}, nil
}

// memoryCache is a map-backed stand-in for the Redis cache.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*model.PropertyAggregates
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*model.PropertyAggregates)}
}

func (c *memoryCache) Get(ctx context.Context, propertyID string) (*model.PropertyAggregates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[propertyID]; ok {
		return entry, nil
	}
	return nil, cache.ErrMiss
}

func (c *memoryCache) Set(ctx context.Context, aggregates *model.PropertyAggregates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[aggregates.PropertyID] = aggregates
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, propertyID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, propertyID)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"}),
	}
}

func TestAggregates_MeanOfRatings(t *testing.T) {
	avg := 4.0 // mean of ratings 3 and 5
	ratings := &mockRatings{average: &avg, count: 2}
	svc := NewAggregatesService(ratings, &mockCounter{count: 7}, mockProperties{}, newMemoryCache(), testConfig(t))

	aggregates, err := svc.Get(context.Background(), uuid.NewString())
	require.NoError(t, err)
	require.NotNil(t, aggregates.AverageRating)
	assert.Equal(t, 4.0, *aggregates.AverageRating)
	assert.Equal(t, int64(2), aggregates.ReviewCount)
	assert.Equal(t, int64(7), aggregates.ConfirmedBookingCount)
}

func TestAggregates_NoReviewsMeansNilAverage(t *testing.T) {
	svc := NewAggregatesService(&mockRatings{}, &mockCounter{}, mockProperties{}, newMemoryCache(), testConfig(t))

	aggregates, err := svc.Get(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, aggregates.AverageRating)
	assert.Zero(t, aggregates.ReviewCount)
}

func TestAggregates_CachePopulatedAndInvalidated(t *testing.T) {
	avg := 3.5
	ratings := &mockRatings{average: &avg, count: 4}
	mem := newMemoryCache()
	svc := NewAggregatesService(ratings, &mockCounter{count: 1}, mockProperties{}, mem, testConfig(t))
	propertyID := uuid.NewString()

	first, err := svc.Get(context.Background(), propertyID)
	require.NoError(t, err)
	assert.Len(t, mem.entries, 1)

	// a stale source no longer matters while the cache holds the entry
	ratings.count = 99
	second, err := svc.Get(context.Background(), propertyID)
	require.NoError(t, err)
	assert.Equal(t, first.ReviewCount, second.ReviewCount)

	require.NoError(t, svc.InvalidateProperty(context.Background(), propertyID))
	third, err := svc.Get(context.Background(), propertyID)
	require.NoError(t, err)
	assert.Equal(t, int64(99), third.ReviewCount)
}
