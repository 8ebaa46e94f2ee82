package service

import (
	"context"
	"testing"
	"time"

	propertieserrors "lodgebook/internal/properties/errors"
	"lodgebook/internal/properties/validator"
	"lodgebook/pkg/config"
	apperrors "lodgebook/pkg/errors"
	"lodgebook/pkg/logger"
	"lodgebook/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPropertyRepo struct {
	createFunc     func(ctx context.Context, property *model.Property) error
	findByIDFunc   func(ctx context.Context, id string) (*model.Property, error)
	findAllFunc    func(ctx context.Context, limit int, offset int64) ([]*model.Property, error)
	findByHostFunc func(ctx context.Context, hostID string, limit int, offset int64) ([]*model.Property, error)
	updateFunc     func(ctx context.Context, id string, property *model.Property) error
	deleteFunc     func(ctx context.Context, id string) error
	countFunc      func(ctx context.Context) (int64, error)
}

func (m *mockPropertyRepo) Create(ctx context.Context, property *model.Property) error {
	return m.createFunc(ctx, property)
}

func (m *mockPropertyRepo) FindByID(ctx context.Context, id string) (*model.Property, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockPropertyRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Property, error) {
	return m.findAllFunc(ctx, limit, offset)
}

func (m *mockPropertyRepo) FindByHost(ctx context.Context, hostID string, limit int, offset int64) ([]*model.Property, error) {
	return m.findByHostFunc(ctx, hostID, limit, offset)
}

func (m *mockPropertyRepo) Update(ctx context.Context, id string, property *model.Property) error {
	return m.updateFunc(ctx, id, property)
}

func (m *mockPropertyRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockPropertyRepo) Count(ctx context.Context) (int64, error) {
	return m.countFunc(ctx)
}

func (m *mockPropertyRepo) EnsureIndexes(ctx context.Context) error { return nil }

type mockChecker struct {
	available bool
	err       error
}

func (m *mockChecker) IsAvailable(ctx context.Context, propertyID string, rng model.DateRange) (bool, error) {
	return m.available, m.err
}

type mockCleaner struct {
	calls []string
}

func (m *mockCleaner) DeleteByProperty(ctx context.Context, propertyID string) error {
	m.calls = append(m.calls, propertyID)
	return nil
}

type noopInvalidator struct {
	calls []string
}

func (m *noopInvalidator) InvalidateProperty(ctx context.Context, propertyID string) error {
	m.calls = append(m.calls, propertyID)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"}),
	}
}

func validProperty() *model.Property {
	return &model.Property{
		Name:             "Seaside Cottage",
		Description:      "Two bedrooms, ocean view.",
		Location:         "Lisbon",
		HostID:           uuid.NewString(),
		NightlyRateCents: 10000,
	}
}

func newService(t *testing.T, repo *mockPropertyRepo, checker *mockChecker, cleaners []DependentCleaner, inv *noopInvalidator) PropertyService {
	t.Helper()
	cfg := testConfig(t)
	if checker == nil {
		checker = &mockChecker{available: true}
	}
	if inv == nil {
		inv = &noopInvalidator{}
	}
	var deps []DependentCleaner
	deps = append(deps, cleaners...)
	return NewPropertyService(repo, validator.NewPropertyValidator(cfg.Log), checker, deps, inv, cfg)
}

func TestCreateProperty_SanitizesInput(t *testing.T) {
	repo := &mockPropertyRepo{}
	var created *model.Property
	repo.createFunc = func(ctx context.Context, property *model.Property) error {
		property.ID = uuid.NewString()
		created = property
		return nil
	}

	svc := newService(t, repo, nil, nil, nil)
	property := validProperty()
	property.Name = "  Seaside   Cottage "
	property.Location = " Lisbon\t"

	require.NoError(t, svc.Create(context.Background(), property))
	require.NotNil(t, created)
	assert.Equal(t, "Seaside Cottage", created.Name)
	assert.Equal(t, "Lisbon", created.Location)
}

func TestCreateProperty_RejectsNonPositiveRate(t *testing.T) {
	repo := &mockPropertyRepo{
		createFunc: func(ctx context.Context, property *model.Property) error {
			t.Fatal("invalid property must not be stored")
			return nil
		},
	}
	svc := newService(t, repo, nil, nil, nil)

	property := validProperty()
	property.NightlyRateCents = 0

	err := svc.Create(context.Background(), property)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.AsAppError(err).Code)
}

func TestUpdateProperty_HostImmutable(t *testing.T) {
	hostID := uuid.NewString()
	existing := validProperty()
	existing.ID = uuid.NewString()
	existing.HostID = hostID

	repo := &mockPropertyRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			p := *existing
			return &p, nil
		},
	}
	var stored *model.Property
	repo.updateFunc = func(ctx context.Context, id string, property *model.Property) error {
		stored = property
		return nil
	}

	svc := newService(t, repo, nil, nil, nil)
	newRate := int64(12500)
	updated, err := svc.Update(context.Background(), existing.ID, &model.PropertyUpdate{
		Name:             "Harbor Cottage",
		NightlyRateCents: &newRate,
	})
	require.NoError(t, err)

	assert.Equal(t, hostID, updated.HostID)
	assert.Equal(t, "Harbor Cottage", updated.Name)
	assert.Equal(t, int64(12500), updated.NightlyRateCents)
	require.NotNil(t, stored)
	assert.Equal(t, hostID, stored.HostID)
}

func TestDeleteProperty_Cascades(t *testing.T) {
	id := uuid.NewString()
	repo := &mockPropertyRepo{
		deleteFunc: func(ctx context.Context, gotID string) error {
			return nil
		},
	}
	bookings := &mockCleaner{}
	reviews := &mockCleaner{}
	inv := &noopInvalidator{}

	svc := newService(t, repo, nil, []DependentCleaner{bookings, reviews}, inv)
	require.NoError(t, svc.Delete(context.Background(), id))

	assert.Equal(t, []string{id}, bookings.calls)
	assert.Equal(t, []string{id}, reviews.calls)
	assert.Equal(t, []string{id}, inv.calls)
}

func TestDeleteProperty_NotFound(t *testing.T) {
	repo := &mockPropertyRepo{
		deleteFunc: func(ctx context.Context, id string) error {
			return propertieserrors.ErrNotFound
		},
	}
	svc := newService(t, repo, nil, nil, nil)

	err := svc.Delete(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
}

func TestAvailability_Summary(t *testing.T) {
	existing := validProperty()
	existing.ID = uuid.NewString()

	repo := &mockPropertyRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			return existing, nil
		},
	}
	checker := &mockChecker{available: false}
	svc := newService(t, repo, checker, nil, nil)

	rng, err := model.NewDateRange(
		time.Now().AddDate(0, 0, 1),
		time.Now().AddDate(0, 0, 4),
	)
	require.NoError(t, err)

	summary, err := svc.Availability(context.Background(), existing.ID, rng)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, summary.PropertyID)
	assert.Equal(t, existing.Name, summary.PropertyName)
	assert.False(t, summary.Available)
}
