package service

import (
	"context"
	"errors"

	"lodgebook/internal/aggregates/cache"
	propertieserrors "lodgebook/internal/properties/errors"
	"lodgebook/pkg/config"
	apperrors "lodgebook/pkg/errors"
	"lodgebook/pkg/model"
)

// RatingSource computes the review-side aggregates. A nil average means the
// property has no reviews.
type RatingSource interface {
	AverageRating(ctx context.Context, propertyID string) (*float64, int64, error)
}

// BookingCounter counts a property's bookings by status.
type BookingCounter interface {
	CountByProperty(ctx context.Context, propertyID string, status string) (int64, error)
}

// PropertyReader confirms the property exists before aggregating.
type PropertyReader interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
}

type AggregatesService interface {
	Get(ctx context.Context, propertyID string) (*model.PropertyAggregates, error)
	InvalidateProperty(ctx context.Context, propertyID string) error
}

type aggregatesService struct {
	ratings    RatingSource
	bookings   BookingCounter
	properties PropertyReader
	cache      cache.AggregatesCache
	cfg        *config.Config
}

func NewAggregatesService(
	ratings RatingSource,
	bookings BookingCounter,
	properties PropertyReader,
	aggregatesCache cache.AggregatesCache,
	cfg *config.Config,
) AggregatesService {
	return &aggregatesService{
		ratings:    ratings,
		bookings:   bookings,
		properties: properties,
		cache:      aggregatesCache,
		cfg:        cfg,
	}
}

// Get serves the property's aggregates, from cache when fresh. A cache read
// failure degrades to a recompute rather than failing the request.
func (s *aggregatesService) Get(ctx context.Context, propertyID string) (*model.PropertyAggregates, error) {
	if propertyID == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	cached, err := s.cache.Get(ctx, propertyID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.cfg.Log.Warn("Aggregates cache read failed", "property_id", propertyID, "error", err)
	}

	if _, err := s.properties.FindByID(ctx, propertyID); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", propertyID)
		}
		if errors.Is(err, propertieserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid property ID format")
		}
		return nil, apperrors.Internal("Failed to load property", err)
	}

	average, reviewCount, err := s.ratings.AverageRating(ctx, propertyID)
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate reviews", "property_id", propertyID, "error", err)
		return nil, apperrors.Internal("Failed to compute review aggregates", err)
	}

	confirmedCount, err := s.bookings.CountByProperty(ctx, propertyID, model.BookingConfirmed)
	if err != nil {
		s.cfg.Log.Error("Failed to count confirmed bookings", "property_id", propertyID, "error", err)
		return nil, apperrors.Internal("Failed to count bookings", err)
	}

	aggregates := &model.PropertyAggregates{
		PropertyID:            propertyID,
		AverageRating:         average,
		ReviewCount:           reviewCount,
		ConfirmedBookingCount: confirmedCount,
	}

	if err := s.cache.Set(ctx, aggregates); err != nil {
		s.cfg.Log.Warn("Failed to cache aggregates", "property_id", propertyID, "error", err)
	}

	return aggregates, nil
}

// InvalidateProperty drops the cached projection. Callers invoke this before
// acknowledging any write that changes the underlying sets.
func (s *aggregatesService) InvalidateProperty(ctx context.Context, propertyID string) error {
	if err := s.cache.Invalidate(ctx, propertyID); err != nil {
		s.cfg.Log.Error("Failed to invalidate aggregates cache", "property_id", propertyID, "error", err)
		return err
	}
	return nil
}
