package service

import (
	"context"
	"errors"
	"sync"

	propertieserrors "lodgebook/internal/properties/errors"
	"lodgebook/internal/properties/repository"
	"lodgebook/internal/properties/validator"
	"lodgebook/pkg/config"
	apperrors "lodgebook/pkg/errors"
	"lodgebook/pkg/model"
	"lodgebook/pkg/sanitizer"
)

// AvailabilityChecker answers whether a property is free for a range. The
// booking engine owns the answer; this keeps the dependency one-directional.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, propertyID string, rng model.DateRange) (bool, error)
}

// DependentCleaner removes documents that reference a property. Used by the
// delete cascade so no booking or review outlives its listing.
type DependentCleaner interface {
	DeleteByProperty(ctx context.Context, propertyID string) error
}

type PropertyService interface {
	Create(ctx context.Context, property *model.Property) error
	GetByID(ctx context.Context, id string) (*model.Property, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error)
	GetByHost(ctx context.Context, hostID string, limit int, offset int64) ([]*model.Property, error)
	Update(ctx context.Context, id string, updates *model.PropertyUpdate) (*model.Property, error)
	Delete(ctx context.Context, id string) error
	Availability(ctx context.Context, id string, rng model.DateRange) (*model.PropertySummary, error)
}

type propertyService struct {
	repo         repository.PropertyRepository
	validator    *validator.PropertyValidator
	availability AvailabilityChecker
	cleaners     []DependentCleaner
	invalidator  AggregateInvalidator
	cfg          *config.Config
}

// AggregateInvalidator drops cached projections for a property.
type AggregateInvalidator interface {
	InvalidateProperty(ctx context.Context, propertyID string) error
}

func NewPropertyService(
	repo repository.PropertyRepository,
	propertyValidator *validator.PropertyValidator,
	availability AvailabilityChecker,
	cleaners []DependentCleaner,
	invalidator AggregateInvalidator,
	cfg *config.Config,
) PropertyService {
	return &propertyService{
		repo:         repo,
		validator:    propertyValidator,
		availability: availability,
		cleaners:     cleaners,
		invalidator:  invalidator,
		cfg:          cfg,
	}
}

func (s *propertyService) Create(ctx context.Context, property *model.Property) error {
	s.sanitizeProperty(property)

	if err := s.validator.Validate(property); err != nil {
		s.cfg.Log.Warn("Property validation failed", "error", err)
		return apperrors.Validation("Property validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, property); err != nil {
		s.cfg.Log.Error("Failed to create property", "name", property.Name, "error", err)
		return apperrors.Internal("Failed to create property", err)
	}

	s.cfg.Log.Info("Property created successfully", "id", property.ID, "host_id", property.HostID)
	return nil
}

func (s *propertyService) GetByID(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	return property, nil
}

func (s *propertyService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error) {
	var count int64
	var properties []*model.Property
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count properties", "error", errCount)
			errCount = apperrors.Internal("Failed to count properties", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		properties, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list properties", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve properties", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return properties, count, nil
}

func (s *propertyService) GetByHost(ctx context.Context, hostID string, limit int, offset int64) ([]*model.Property, error) {
	if hostID == "" {
		return nil, apperrors.InvalidInput("Host ID cannot be empty")
	}

	properties, err := s.repo.FindByHost(ctx, hostID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list properties by host", "host_id", hostID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve properties", err)
	}

	return properties, nil
}

// Update merges the mutable fields into the stored listing. The host
// reference never changes; a listing cannot be handed to a different host.
func (s *propertyService) Update(ctx context.Context, id string, updates *model.PropertyUpdate) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	if updates.Name != "" {
		existing.Name = updates.Name
	}
	if updates.Description != "" {
		existing.Description = updates.Description
	}
	if updates.Location != "" {
		existing.Location = updates.Location
	}
	if updates.NightlyRateCents != nil {
		existing.NightlyRateCents = *updates.NightlyRateCents
	}
	s.sanitizeProperty(existing)

	if err := s.validator.Validate(existing); err != nil {
		return nil, apperrors.Validation("Property validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, existing); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		s.cfg.Log.Error("Failed to update property", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update property", err)
	}

	s.cfg.Log.Info("Property updated", "id", id)
	return existing, nil
}

// Delete removes the listing and cascades to everything that references it.
func (s *propertyService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Property ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translateLookupError(err, id)
	}

	for _, cleaner := range s.cleaners {
		if err := cleaner.DeleteByProperty(ctx, id); err != nil {
			s.cfg.Log.Error("Failed to cascade property delete", "id", id, "error", err)
			return apperrors.Internal("Failed to delete property dependents", err)
		}
	}

	if err := s.invalidator.InvalidateProperty(ctx, id); err != nil {
		return apperrors.Internal("Failed to invalidate property aggregates", err)
	}

	s.cfg.Log.Info("Property deleted", "id", id)
	return nil
}

func (s *propertyService) Availability(ctx context.Context, id string, rng model.DateRange) (*model.PropertySummary, error) {
	property, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	available, err := s.availability.IsAvailable(ctx, id, rng)
	if err != nil {
		return nil, err
	}

	return &model.PropertySummary{
		PropertyID:   property.ID,
		PropertyName: property.Name,
		Available:    available,
	}, nil
}

func (s *propertyService) sanitizeProperty(property *model.Property) {
	property.Name = sanitizer.NormalizeName(property.Name)
	property.Location = sanitizer.NormalizeLocation(property.Location)
	property.Description = sanitizer.NormalizeComment(property.Description)
}

func (s *propertyService) translateLookupError(err error, id string) error {
	if errors.Is(err, propertieserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Property", id)
	}
	if errors.Is(err, propertieserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid property ID format")
	}
	return apperrors.Internal("Failed to retrieve property", err)
}
