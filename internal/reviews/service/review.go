package service

import (
	"context"
	"errors"
	"time"

	propertieserrors "lodgebook/internal/properties/errors"
	reviewserrors "lodgebook/internal/reviews/errors"
	"lodgebook/internal/reviews/repository"
	"lodgebook/internal/reviews/validator"
	"lodgebook/pkg/config"
	apperrors "lodgebook/pkg/errors"
	"lodgebook/pkg/model"
	"lodgebook/pkg/sanitizer"
)

// StayFinder answers which completed confirmed stays a requester has at a
// property. The booking engine owns that history.
type StayFinder interface {
	FindCompletedStays(ctx context.Context, requesterID, propertyID string, today time.Time) ([]*model.Booking, error)
}

// PropertyReader confirms the reviewed property exists.
type PropertyReader interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
}

// AggregateInvalidator drops cached projections for a property.
type AggregateInvalidator interface {
	InvalidateProperty(ctx context.Context, propertyID string) error
}

type ReviewService interface {
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id string) (*model.Review, error)
	GetByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Review, error)
	Update(ctx context.Context, id string, updates *model.ReviewUpdate) (*model.Review, error)
	Delete(ctx context.Context, id string) error
}

type reviewService struct {
	repo        repository.ReviewRepository
	stays       StayFinder
	properties  PropertyReader
	validator   *validator.ReviewValidator
	invalidator AggregateInvalidator
	cfg         *config.Config
	now         func() time.Time
}

func NewReviewService(
	repo repository.ReviewRepository,
	stays StayFinder,
	properties PropertyReader,
	reviewValidator *validator.ReviewValidator,
	invalidator AggregateInvalidator,
	cfg *config.Config,
) ReviewService {
	return &reviewService{
		repo:        repo,
		stays:       stays,
		properties:  properties,
		validator:   reviewValidator,
		invalidator: invalidator,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Create admits a review. The author must have a confirmed stay at the
// property that has already ended, and at most one review per author per
// property may exist. The pre-insert duplicate lookup gives a clean error
// in the common case; the unique index settles races.
func (s *reviewService) Create(ctx context.Context, review *model.Review) error {
	review.Comment = sanitizer.NormalizeComment(review.Comment)

	if review.Rating < 1 || review.Rating > 5 {
		return apperrors.ValidationWrap(reviewserrors.ErrRatingOutOfRange,
			"Rating must be between 1 and 5", map[string]any{"field": "rating"})
	}

	if err := s.validator.Validate(review); err != nil {
		s.cfg.Log.Warn("Review validation failed", "error", err)
		return apperrors.Validation("Review validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.properties.FindByID(ctx, review.PropertyID); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Property", review.PropertyID)
		}
		return apperrors.Internal("Failed to load property", err)
	}

	stays, err := s.stays.FindCompletedStays(ctx, review.AuthorID, review.PropertyID, s.now())
	if err != nil {
		return apperrors.Internal("Failed to check stay history", err)
	}
	if len(stays) == 0 {
		return apperrors.ValidationWrap(reviewserrors.ErrNoEligibleStay,
			"Reviews require a completed stay at the property", nil)
	}

	existing, err := s.repo.FindByPropertyAndAuthor(ctx, review.PropertyID, review.AuthorID)
	if err != nil && !errors.Is(err, reviewserrors.ErrNotFound) {
		return apperrors.Internal("Failed to check existing reviews", err)
	}
	if existing != nil {
		return apperrors.ConflictWrap(reviewserrors.ErrDuplicateReview,
			"A review for this property by this author already exists")
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, reviewserrors.ErrDuplicateReview) {
			return apperrors.ConflictWrap(reviewserrors.ErrDuplicateReview,
				"A review for this property by this author already exists")
		}
		s.cfg.Log.Error("Failed to create review", "property_id", review.PropertyID, "error", err)
		return apperrors.Internal("Failed to create review", err)
	}

	if err := s.invalidator.InvalidateProperty(ctx, review.PropertyID); err != nil {
		return apperrors.Internal("Failed to invalidate property aggregates", err)
	}

	s.cfg.Log.Info("Review created successfully",
		"id", review.ID,
		"property_id", review.PropertyID,
		"rating", review.Rating,
	)
	return nil
}

func (s *reviewService) GetByID(ctx context.Context, id string) (*model.Review, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Review ID cannot be empty")
	}

	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	return review, nil
}

func (s *reviewService) GetByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Review, error) {
	if propertyID == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	reviews, err := s.repo.FindByProperty(ctx, propertyID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list reviews by property", "property_id", propertyID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reviews", err)
	}

	return reviews, nil
}

// Update edits rating or comment on an existing review. The (property,
// author) pairing is fixed, so no eligibility re-check is needed.
func (s *reviewService) Update(ctx context.Context, id string, updates *model.ReviewUpdate) (*model.Review, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Review ID cannot be empty")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}
	prev := *existing

	if updates.Rating != nil {
		if *updates.Rating < 1 || *updates.Rating > 5 {
			return nil, apperrors.ValidationWrap(reviewserrors.ErrRatingOutOfRange,
				"Rating must be between 1 and 5", map[string]any{"field": "rating"})
		}
		existing.Rating = *updates.Rating
	}
	if updates.Comment != "" {
		existing.Comment = sanitizer.NormalizeComment(updates.Comment)
	}

	// Conditional on the values just read: a concurrent edit or delete makes
	// this write a no-op instead of clobbering it.
	if err := s.repo.Update(ctx, id, &prev, existing); err != nil {
		if errors.Is(err, reviewserrors.ErrStaleReview) {
			return nil, apperrors.ConflictWrap(reviewserrors.ErrStaleReview,
				"Review was modified by a concurrent request")
		}
		s.cfg.Log.Error("Failed to update review", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update review", err)
	}

	if err := s.invalidator.InvalidateProperty(ctx, existing.PropertyID); err != nil {
		return nil, apperrors.Internal("Failed to invalidate property aggregates", err)
	}

	s.cfg.Log.Info("Review updated", "id", id)
	return existing, nil
}

func (s *reviewService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Review ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.translateLookupError(err, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, reviewserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Review", id)
		}
		s.cfg.Log.Error("Failed to delete review", "id", id, "error", err)
		return apperrors.Internal("Failed to delete review", err)
	}

	if err := s.invalidator.InvalidateProperty(ctx, existing.PropertyID); err != nil {
		return apperrors.Internal("Failed to invalidate property aggregates", err)
	}

	s.cfg.Log.Info("Review deleted", "id", id)
	return nil
}

func (s *reviewService) translateLookupError(err error, id string) error {
	if errors.Is(err, reviewserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Review", id)
	}
	if errors.Is(err, reviewserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid review ID format")
	}
	return apperrors.Internal("Failed to retrieve review", err)
}
