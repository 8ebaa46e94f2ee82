package service

import (
	"context"
	"testing"
	"time"

	reviewserrors "lodgebook/internal/reviews/errors"
	"lodgebook/internal/reviews/validator"
	"lodgebook/pkg/config"
	apperrors "lodgebook/pkg/errors"
	"lodgebook/pkg/logger"
	"lodgebook/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mongotx "lodgebook/pkg/db/mongo"
)

type mockReviewRepo struct {
	createFunc                  func(ctx context.Context, review *model.Review) error
	findByIDFunc                func(ctx context.Context, id string) (*model.Review, error)
	findByPropertyFunc          func(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Review, error)
	findByPropertyAndAuthorFunc func(ctx context.Context, propertyID, authorID string) (*model.Review, error)
	updateFunc                  func(ctx context.Context, id string, prev, review *model.Review) error
	deleteFunc                  func(ctx context.Context, id string) error
	averageRatingFunc           func(ctx context.Context, propertyID string) (*float64, int64, error)
}

func (m *mockReviewRepo) Create(ctx context.Context, review *model.Review) error {
	return m.createFunc(ctx, review)
}

func (m *mockReviewRepo) FindByID(ctx context.Context, id string) (*model.Review, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockReviewRepo) FindByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Review, error) {
	return m.findByPropertyFunc(ctx, propertyID, limit, offset)
}

func (m *mockReviewRepo) FindByPropertyAndAuthor(ctx context.Context, propertyID, authorID string) (*model.Review, error) {
	return m.findByPropertyAndAuthorFunc(ctx, propertyID, authorID)
}

func (m *mockReviewRepo) Update(ctx context.Context, id string, prev, review *model.Review) error {
	return m.updateFunc(ctx, id, prev, review)
}

func (m *mockReviewRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockReviewRepo) DeleteByProperty(ctx context.Context, propertyID string) error {
	return nil
}

func (m *mockReviewRepo) AverageRating(ctx context.Context, propertyID string) (*float64, int64, error) {
	return m.averageRatingFunc(ctx, propertyID)
}

func (m *mockReviewRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (m *mockReviewRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockStayFinder struct {
	stays []*model.Booking
	err   error
}

func (m *mockStayFinder) FindCompletedStays(ctx context.Context, requesterID, propertyID string, today time.Time) ([]*model.Booking, error) {
	return m.stays, m.err
}

type mockPropertyReader struct {
	err error
}

func (m *mockPropertyReader) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &model.Property{ID: id, Name: "Seaside Cottage"}, nil
}

type mockInvalidator struct {
	calls []string
}

func (m *mockInvalidator) InvalidateProperty(ctx context.Context, propertyID string) error {
	m.calls = append(m.calls, propertyID)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"}),
	}
}

type reviewFixture struct {
	svc         ReviewService
	repo        *mockReviewRepo
	stays       *mockStayFinder
	properties  *mockPropertyReader
	invalidator *mockInvalidator
}

func newFixture(t *testing.T) *reviewFixture {
	t.Helper()
	cfg := testConfig(t)

	f := &reviewFixture{
		repo:        &mockReviewRepo{},
		stays:       &mockStayFinder{stays: []*model.Booking{{ID: uuid.NewString()}}},
		properties:  &mockPropertyReader{},
		invalidator: &mockInvalidator{},
	}
	f.repo.createFunc = func(ctx context.Context, review *model.Review) error {
		review.ID = uuid.NewString()
		return nil
	}
	f.repo.findByPropertyAndAuthorFunc = func(ctx context.Context, propertyID, authorID string) (*model.Review, error) {
		return nil, reviewserrors.ErrNotFound
	}

	f.svc = NewReviewService(f.repo, f.stays, f.properties, validator.NewReviewValidator(cfg.Log), f.invalidator, cfg)
	return f
}

func validReview() *model.Review {
	return &model.Review{
		PropertyID: uuid.NewString(),
		AuthorID:   "guest@example.com",
		Rating:     4,
		Comment:    "Great stay, would book again.",
	}
}

func TestCreateReview_EligibleGuest(t *testing.T) {
	f := newFixture(t)
	review := validReview()

	err := f.svc.Create(context.Background(), review)
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, []string{review.PropertyID}, f.invalidator.calls)
}

func TestCreateReview_RatingBounds(t *testing.T) {
	for _, rating := range []int{0, -1, 6, 100} {
		f := newFixture(t)
		review := validReview()
		review.Rating = rating

		err := f.svc.Create(context.Background(), review)
		assert.ErrorIs(t, err, reviewserrors.ErrRatingOutOfRange, "rating %d", rating)
	}

	for _, rating := range []int{1, 5} {
		f := newFixture(t)
		review := validReview()
		review.Rating = rating

		assert.NoError(t, f.svc.Create(context.Background(), review), "rating %d", rating)
	}
}

func TestCreateReview_NoCompletedStay(t *testing.T) {
	f := newFixture(t)
	f.stays.stays = nil
	review := validReview()

	err := f.svc.Create(context.Background(), review)
	require.Error(t, err)
	assert.ErrorIs(t, err, reviewserrors.ErrNoEligibleStay)
	assert.Equal(t, apperrors.CodeValidation, apperrors.AsAppError(err).Code)
	assert.Empty(t, f.invalidator.calls)
}

func TestCreateReview_DuplicateRejected(t *testing.T) {
	f := newFixture(t)
	f.repo.findByPropertyAndAuthorFunc = func(ctx context.Context, propertyID, authorID string) (*model.Review, error) {
		return &model.Review{ID: uuid.NewString()}, nil
	}
	review := validReview()

	err := f.svc.Create(context.Background(), review)
	require.Error(t, err)
	assert.ErrorIs(t, err, reviewserrors.ErrDuplicateReview)
	assert.Equal(t, apperrors.CodeConflict, apperrors.AsAppError(err).Code)
}

// The pre-insert lookup can miss a racing submission; the unique index error
// surfacing from the insert must map to the same conflict.
func TestCreateReview_IndexBackstop(t *testing.T) {
	f := newFixture(t)
	f.repo.createFunc = func(ctx context.Context, review *model.Review) error {
		return reviewserrors.ErrDuplicateReview
	}
	review := validReview()

	err := f.svc.Create(context.Background(), review)
	require.Error(t, err)
	assert.ErrorIs(t, err, reviewserrors.ErrDuplicateReview)
	assert.Equal(t, apperrors.CodeConflict, apperrors.AsAppError(err).Code)
}

func TestUpdateReview_RatingRevalidated(t *testing.T) {
	f := newFixture(t)
	existing := validReview()
	existing.ID = uuid.NewString()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Review, error) {
		r := *existing
		return &r, nil
	}

	bad := 9
	_, err := f.svc.Update(context.Background(), existing.ID, &model.ReviewUpdate{Rating: &bad})
	assert.ErrorIs(t, err, reviewserrors.ErrRatingOutOfRange)

	good := 5
	var prevSeen *model.Review
	f.repo.updateFunc = func(ctx context.Context, id string, prev, review *model.Review) error {
		prevSeen = prev
		return nil
	}
	updated, err := f.svc.Update(context.Background(), existing.ID, &model.ReviewUpdate{Rating: &good})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, []string{existing.PropertyID}, f.invalidator.calls)

	// the conditional write is gated on the values that were read
	require.NotNil(t, prevSeen)
	assert.Equal(t, existing.Rating, prevSeen.Rating)
	assert.Equal(t, existing.Comment, prevSeen.Comment)
}

// An edit racing another edit (or a delete) must surface as a conflict, not
// silently overwrite the other writer.
func TestUpdateReview_ConcurrentEditConflicts(t *testing.T) {
	f := newFixture(t)
	existing := validReview()
	existing.ID = uuid.NewString()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Review, error) {
		r := *existing
		return &r, nil
	}
	f.repo.updateFunc = func(ctx context.Context, id string, prev, review *model.Review) error {
		return reviewserrors.ErrStaleReview
	}

	good := 5
	_, err := f.svc.Update(context.Background(), existing.ID, &model.ReviewUpdate{Rating: &good})
	require.Error(t, err)
	assert.ErrorIs(t, err, reviewserrors.ErrStaleReview)
	assert.Equal(t, apperrors.CodeConflict, apperrors.AsAppError(err).Code)
	assert.Empty(t, f.invalidator.calls)
}

func TestDeleteReview_InvalidatesAggregates(t *testing.T) {
	f := newFixture(t)
	existing := validReview()
	existing.ID = uuid.NewString()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Review, error) {
		return existing, nil
	}
	f.repo.deleteFunc = func(ctx context.Context, id string) error {
		return nil
	}

	require.NoError(t, f.svc.Delete(context.Background(), existing.ID))
	assert.Equal(t, []string{existing.PropertyID}, f.invalidator.calls)
}
