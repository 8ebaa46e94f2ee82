package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "lodgebook/internal/bookings/errors"
	"lodgebook/internal/bookings/repository"
	"lodgebook/internal/bookings/validator"
	propertieserrors "lodgebook/internal/properties/errors"
	"lodgebook/pkg/config"
	apperrors "lodgebook/pkg/errors"
	"lodgebook/pkg/events"
	"lodgebook/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// PropertyReader is the slice of the property store the booking engine needs:
// existence and the nightly rate.
type PropertyReader interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
}

// AggregateInvalidator drops cached projections for a property. Called
// synchronously on every write that can change a projection, before the write
// is acknowledged.
type AggregateInvalidator interface {
	InvalidateProperty(ctx context.Context, propertyID string) error
}

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	GetByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Booking, error)
	UpdateDates(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	Confirm(ctx context.Context, id string, externalRef string) (*model.Booking, error)
	IsAvailable(ctx context.Context, propertyID string, rng model.DateRange) (bool, error)
}

type bookingService struct {
	repo        repository.BookingRepository
	lockRepo    repository.BookingLockRepository
	properties  PropertyReader
	validator   *validator.BookingValidator
	publisher   events.Publisher
	invalidator AggregateInvalidator
	cfg         *config.Config
	now         func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	properties PropertyReader,
	bookingValidator *validator.BookingValidator,
	publisher events.Publisher,
	invalidator AggregateInvalidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:        repo,
		lockRepo:    lockRepo,
		properties:  properties,
		validator:   bookingValidator,
		publisher:   publisher,
		invalidator: invalidator,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Create admits a booking request. The availability check and the insert run
// as one atomic unit: an advisory per-property lock serializes admissions,
// and the overlap scan plus insert share a transaction snapshot. Two racing
// requests for overlapping ranges end with exactly one success.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)

	rng, err := model.NewDateRange(booking.DateRange.Start, booking.DateRange.End)
	if err != nil {
		return apperrors.ValidationWrap(bookingserrors.ErrInvalidRange, "End date must be after start date", map[string]any{"field": "end_date"})
	}
	booking.DateRange = rng

	if err := s.validateAdmissionDates(rng); err != nil {
		return err
	}

	property, err := s.findProperty(ctx, booking.PropertyID)
	if err != nil {
		return err
	}
	booking.TotalPriceCents = int64(rng.Nights()) * property.NightlyRateCents

	if err := s.validate(booking); err != nil {
		return err
	}

	lock, err := s.acquirePropertyLock(ctx, booking.PropertyID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releasePropertyLock(ctx, lock); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lock.ID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.ensureAvailable(sessCtx, booking.PropertyID, rng, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"property_id", booking.PropertyID,
			"error", err,
		)
		return err
	}

	if err := s.invalidator.InvalidateProperty(ctx, booking.PropertyID); err != nil {
		return apperrors.Internal("Failed to invalidate property aggregates", err)
	}

	if booking.Status == model.BookingConfirmed {
		s.emit(ctx, events.TypeBookingConfirmed, booking)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"property_id", booking.PropertyID,
		"status", booking.Status,
		"start_date", booking.DateRange.Start,
		"nights", booking.DateRange.Nights(),
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) GetByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Booking, error) {
	if propertyID == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	bookings, err := s.repo.FindByProperty(ctx, propertyID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings by property", "property_id", propertyID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	return bookings, nil
}

// UpdateDates moves a booking to a new range. The re-check excludes the
// booking's own id so a stay can shrink or shift inside its current window,
// and the total price is recomputed. Once a stay has started it is frozen.
func (s *bookingService) UpdateDates(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	if !existing.Active() {
		return nil, apperrors.ConflictWrap(bookingserrors.ErrInvalidTransition, "Canceled bookings cannot be modified")
	}
	if existing.DateRange.HasStarted(s.now()) {
		return nil, apperrors.ConflictWrap(bookingserrors.ErrInvalidTransition, "Bookings cannot be modified once the stay has started")
	}

	start := existing.DateRange.Start
	end := existing.DateRange.End
	if updates.StartDate != nil {
		start = *updates.StartDate
	}
	if updates.EndDate != nil {
		end = *updates.EndDate
	}

	rng, err := model.NewDateRange(start, end)
	if err != nil {
		return nil, apperrors.ValidationWrap(bookingserrors.ErrInvalidRange, "End date must be after start date", map[string]any{"field": "end_date"})
	}
	if err := s.validateAdmissionDates(rng); err != nil {
		return nil, err
	}

	property, err := s.findProperty(ctx, existing.PropertyID)
	if err != nil {
		return nil, err
	}

	merged := *existing
	merged.DateRange = rng
	merged.TotalPriceCents = int64(rng.Nights()) * property.NightlyRateCents

	lock, err := s.acquirePropertyLock(ctx, existing.PropertyID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releasePropertyLock(ctx, lock); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lock.ID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.ensureAvailable(sessCtx, merged.PropertyID, rng, merged.ID); err != nil {
			return err
		}
		if err := s.repo.UpdateDates(sessCtx, id, &merged); err != nil {
			if errors.Is(err, bookingserrors.ErrStaleStatus) {
				return apperrors.ConflictWrap(bookingserrors.ErrInvalidTransition,
					"Booking was canceled by a concurrent request")
			}
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return nil, err
	}

	if err := s.invalidator.InvalidateProperty(ctx, merged.PropertyID); err != nil {
		return nil, apperrors.Internal("Failed to invalidate property aggregates", err)
	}

	s.cfg.Log.Info("Booking dates updated", "id", id, "nights", rng.Nights())
	return &merged, nil
}

// Cancel closes the cancellation window at check-in: a stay that has begun
// cannot be canceled, and canceled is terminal. The status write is a
// compare-and-swap against the active statuses so a transition racing this
// one cannot be silently overwritten.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	if !booking.CanCancel(s.now()) {
		return nil, apperrors.ConflictWrap(bookingserrors.ErrInvalidTransition,
			"Booking can only be canceled while pending or confirmed and before the stay starts")
	}

	booking.Status = model.BookingCanceled
	from := []string{model.BookingPending, model.BookingConfirmed}
	if err := s.repo.UpdateStatus(ctx, id, from, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrStaleStatus) {
			return nil, apperrors.ConflictWrap(bookingserrors.ErrInvalidTransition,
				"Booking status changed before the cancellation could commit")
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	if err := s.invalidator.InvalidateProperty(ctx, booking.PropertyID); err != nil {
		return nil, apperrors.Internal("Failed to invalidate property aggregates", err)
	}

	s.emit(ctx, events.TypeBookingCanceled, booking)

	s.cfg.Log.Info("Booking canceled", "id", id, "property_id", booking.PropertyID)
	return booking, nil
}

// Confirm is the pending-to-confirmed transition, driven by the payment
// collaborator's callback. Confirming an already-confirmed booking is a
// no-op so webhook redelivery stays harmless. The status write matches only
// while the booking is still pending: canceled is terminal, and a Cancel
// that commits between the read and the write must win.
func (s *bookingService) Confirm(ctx context.Context, id string, externalRef string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	switch booking.Status {
	case model.BookingConfirmed:
		return booking, nil
	case model.BookingPending:
		// fall through to the transition
	default:
		return nil, apperrors.ConflictWrap(bookingserrors.ErrInvalidTransition,
			fmt.Sprintf("Booking cannot be confirmed from status %q", booking.Status))
	}

	booking.Status = model.BookingConfirmed
	booking.ExternalRef = externalRef
	if err := s.repo.UpdateStatus(ctx, id, []string{model.BookingPending}, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrStaleStatus) {
			return s.confirmLostRace(ctx, id)
		}
		s.cfg.Log.Error("Failed to confirm booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to confirm booking", err)
	}

	if err := s.invalidator.InvalidateProperty(ctx, booking.PropertyID); err != nil {
		return nil, apperrors.Internal("Failed to invalidate property aggregates", err)
	}

	s.emit(ctx, events.TypeBookingConfirmed, booking)

	s.cfg.Log.Info("Booking confirmed", "id", id, "external_ref", externalRef)
	return booking, nil
}

// confirmLostRace resolves a confirmation whose conditional write matched
// nothing. A concurrent confirmation (webhook redelivery) stays a no-op
// success; anything else is a dead transition.
func (s *bookingService) confirmLostRace(ctx context.Context, id string) (*model.Booking, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}
	if current.Status == model.BookingConfirmed {
		return current, nil
	}
	return nil, apperrors.ConflictWrap(bookingserrors.ErrInvalidTransition,
		fmt.Sprintf("Booking cannot be confirmed from status %q", current.Status))
}

// IsAvailable answers the read-side availability query. Outside the admission
// transaction this is a point-in-time answer and may go stale immediately;
// admission re-checks under the lock.
func (s *bookingService) IsAvailable(ctx context.Context, propertyID string, rng model.DateRange) (bool, error) {
	if _, err := s.findProperty(ctx, propertyID); err != nil {
		return false, err
	}

	overlapping, err := s.repo.FindActiveOverlapping(ctx, propertyID, rng, "")
	if err != nil {
		return false, apperrors.Internal("Failed to check availability", err)
	}

	return len(overlapping) == 0, nil
}

// --- Helpers ---

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.BookingPending
	}
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// validateAdmissionDates rejects ranges that start before today. Same-day
// check-in is allowed.
func (s *bookingService) validateAdmissionDates(rng model.DateRange) error {
	today := model.Midnight(s.now())
	if rng.Start.Before(today) {
		return apperrors.ValidationWrap(bookingserrors.ErrPastDate, "Start date cannot be in the past", map[string]any{"field": "start_date"})
	}
	return nil
}

func (s *bookingService) findProperty(ctx context.Context, propertyID string) (*model.Property, error) {
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", propertyID)
		}
		return nil, apperrors.Internal("Failed to load property", err)
	}
	return property, nil
}

// ensureAvailable runs inside the admission transaction.
func (s *bookingService) ensureAvailable(ctx context.Context, propertyID string, rng model.DateRange, excludeID string) error {
	overlapping, err := s.repo.FindActiveOverlapping(ctx, propertyID, rng, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}
	if len(overlapping) > 0 {
		return apperrors.ConflictWrap(bookingserrors.ErrPropertyUnavailable,
			"Property is not available for the selected dates")
	}
	return nil
}

func (s *bookingService) translateLookupError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal("Failed to retrieve booking", err)
}

// acquirePropertyLock takes the advisory admission lock for one property.
// Contention means another admission is mid-flight for the same property, so
// the loser sees the same domain error as a genuine overlap. The token marks
// this acquisition as the owner: release deletes nothing unless the lock is
// still ours, so a request that stalled past the TTL cannot free a lock the
// janitor already reassigned.
func (s *bookingService) acquirePropertyLock(ctx context.Context, propertyID string) (*model.BookingLock, error) {
	lock := &model.BookingLock{
		ID:        "property_lock_" + propertyID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.cfg.BookingLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ConflictWrap(bookingserrors.ErrPropertyUnavailable,
				"Property is currently being booked by another request. Please try again.")
		}
		return nil, apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lock, nil
}

func (s *bookingService) releasePropertyLock(ctx context.Context, lock *model.BookingLock) error {
	return s.lockRepo.Delete(ctx, lock.ID, lock.Token)
}

// emit publishes a lifecycle event. Fire-and-forget: delivery is the
// dispatcher's concern and failures never fail the request.
func (s *bookingService) emit(ctx context.Context, eventType string, booking *model.Booking) {
	event := events.BookingEvent{
		Type:             eventType,
		BookingID:        booking.ID,
		PropertyID:       booking.PropertyID,
		RequesterContact: booking.RequesterID,
		OccurredAt:       s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
