package service

import (
	"context"
	"testing"
	"time"

	paymentserrors "lodgebook/internal/payments/errors"
	"lodgebook/internal/payments/gateway"
	"lodgebook/pkg/config"
	apperrors "lodgebook/pkg/errors"
	"lodgebook/pkg/logger"
	"lodgebook/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPaymentRepo struct {
	payments map[string]*model.Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[string]*model.Payment)}
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.CreatedAt = time.Now().UTC()
	stored := *payment
	m.payments[payment.ID] = &stored
	return nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	if payment, ok := m.payments[id]; ok {
		p := *payment
		return &p, nil
	}
	return nil, paymentserrors.ErrNotFound
}

func (m *mockPaymentRepo) FindByExternalRef(ctx context.Context, externalRef string) (*model.Payment, error) {
	for _, payment := range m.payments {
		if payment.ExternalRef == externalRef {
			p := *payment
			return &p, nil
		}
	}
	return nil, paymentserrors.ErrNotFound
}

func (m *mockPaymentRepo) FindByBooking(ctx context.Context, bookingID string) ([]*model.Payment, error) {
	var out []*model.Payment
	for _, payment := range m.payments {
		if payment.BookingID == bookingID {
			p := *payment
			out = append(out, &p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, id string, payment *model.Payment) error {
	stored, ok := m.payments[id]
	if !ok {
		return paymentserrors.ErrNotFound
	}
	stored.Status = payment.Status
	stored.CheckoutURL = payment.CheckoutURL
	stored.ExternalRef = payment.ExternalRef
	return nil
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	payment, ok := m.payments[id]
	if !ok {
		return paymentserrors.ErrNotFound
	}
	payment.Status = status
	return nil
}

func (m *mockPaymentRepo) EnsureIndexes(ctx context.Context) error { return nil }

type mockGateway struct {
	initializeErr error
	verifyStatus  string
	verifyErr     error
}

func (m *mockGateway) Initialize(ctx context.Context, payment *model.Payment) (*gateway.Checkout, error) {
	if m.initializeErr != nil {
		return nil, m.initializeErr
	}
	return &gateway.Checkout{
		CheckoutURL: "https://checkout.example.com/" + payment.ID,
		ExternalRef: payment.ID,
	}, nil
}

func (m *mockGateway) Verify(ctx context.Context, externalRef string) (*gateway.Verification, error) {
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return &gateway.Verification{
		ExternalRef: externalRef,
		Status:      m.verifyStatus,
	}, nil
}

type mockBookings struct {
	booking      *model.Booking
	confirmedID  string
	confirmedRef string
}

func (m *mockBookings) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.booking == nil {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return m.booking, nil
}

func (m *mockBookings) Confirm(ctx context.Context, id string, externalRef string) (*model.Booking, error) {
	m.confirmedID = id
	m.confirmedRef = externalRef
	m.booking.Status = model.BookingConfirmed
	return m.booking, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Log:             logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"}),
		DefaultCurrency: "USD",
	}
}

func pendingBooking() *model.Booking {
	return &model.Booking{
		ID:              uuid.NewString(),
		PropertyID:      uuid.NewString(),
		RequesterID:     "guest@example.com",
		TotalPriceCents: 30000,
		Status:          model.BookingPending,
	}
}

func TestInitiatePayment_ChargesBookingTotal(t *testing.T) {
	repo := newMockPaymentRepo()
	bookings := &mockBookings{booking: pendingBooking()}
	svc := NewPaymentService(repo, &mockGateway{}, bookings, testConfig(t))

	payment, err := svc.Initiate(context.Background(), bookings.booking.ID, "guest@example.com")
	require.NoError(t, err)

	assert.Equal(t, int64(30000), payment.AmountCents)
	assert.Equal(t, "USD", payment.Currency)
	assert.Equal(t, model.PaymentProcessing, payment.Status)
	assert.NotEmpty(t, payment.CheckoutURL)
	assert.Equal(t, payment.ID, payment.ExternalRef)
}

func TestInitiatePayment_NonPendingBookingRejected(t *testing.T) {
	booking := pendingBooking()
	booking.Status = model.BookingConfirmed
	svc := NewPaymentService(newMockPaymentRepo(), &mockGateway{}, &mockBookings{booking: booking}, testConfig(t))

	_, err := svc.Initiate(context.Background(), booking.ID, "guest@example.com")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.AsAppError(err).Code)
}

func TestInitiatePayment_GatewayFailureMarksPaymentFailed(t *testing.T) {
	repo := newMockPaymentRepo()
	gw := &mockGateway{initializeErr: paymentserrors.ErrGatewayRejected}
	bookings := &mockBookings{booking: pendingBooking()}
	svc := NewPaymentService(repo, gw, bookings, testConfig(t))

	_, err := svc.Initiate(context.Background(), bookings.booking.ID, "guest@example.com")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnavailable, apperrors.AsAppError(err).Code)

	require.Len(t, repo.payments, 1)
	for _, payment := range repo.payments {
		assert.Equal(t, model.PaymentFailed, payment.Status)
	}
}

func TestHandleWebhook_CompletedChargeConfirmsBooking(t *testing.T) {
	repo := newMockPaymentRepo()
	bookings := &mockBookings{booking: pendingBooking()}
	gw := &mockGateway{verifyStatus: model.PaymentComplete}
	svc := NewPaymentService(repo, gw, bookings, testConfig(t))

	initiated, err := svc.Initiate(context.Background(), bookings.booking.ID, "guest@example.com")
	require.NoError(t, err)

	payment, err := svc.HandleWebhook(context.Background(), initiated.ID)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentComplete, payment.Status)
	assert.Equal(t, bookings.booking.ID, bookings.confirmedID)
	assert.Equal(t, initiated.ID, bookings.confirmedRef)
}

func TestHandleWebhook_RedeliveryIsIdempotent(t *testing.T) {
	repo := newMockPaymentRepo()
	bookings := &mockBookings{booking: pendingBooking()}
	gw := &mockGateway{verifyStatus: model.PaymentComplete}
	svc := NewPaymentService(repo, gw, bookings, testConfig(t))

	initiated, err := svc.Initiate(context.Background(), bookings.booking.ID, "guest@example.com")
	require.NoError(t, err)

	_, err = svc.HandleWebhook(context.Background(), initiated.ID)
	require.NoError(t, err)
	bookings.confirmedID = ""

	// second delivery of the same webhook
	payment, err := svc.HandleWebhook(context.Background(), initiated.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentComplete, payment.Status)
	assert.Empty(t, bookings.confirmedID, "redelivery must not re-confirm")
}

func TestHandleWebhook_FailedChargeDoesNotConfirm(t *testing.T) {
	repo := newMockPaymentRepo()
	bookings := &mockBookings{booking: pendingBooking()}
	gw := &mockGateway{verifyStatus: model.PaymentFailed}
	svc := NewPaymentService(repo, gw, bookings, testConfig(t))

	initiated, err := svc.Initiate(context.Background(), bookings.booking.ID, "guest@example.com")
	require.NoError(t, err)

	payment, err := svc.HandleWebhook(context.Background(), initiated.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, payment.Status)
	assert.Empty(t, bookings.confirmedID)
	assert.Equal(t, model.BookingPending, bookings.booking.Status)
}
