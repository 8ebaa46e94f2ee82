package service

import (
	"context"
	"errors"

	paymentserrors "lodgebook/internal/payments/errors"
	"lodgebook/internal/payments/gateway"
	"lodgebook/internal/payments/repository"
	"lodgebook/pkg/config"
	apperrors "lodgebook/pkg/errors"
	"lodgebook/pkg/model"
)

// BookingConfirmer is the booking engine's confirmation entry point. A
// completed charge drives the pending-to-confirmed transition.
type BookingConfirmer interface {
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Confirm(ctx context.Context, id string, externalRef string) (*model.Booking, error)
}

type PaymentService interface {
	Initiate(ctx context.Context, bookingID, payerEmail string) (*model.Payment, error)
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	HandleWebhook(ctx context.Context, externalRef string) (*model.Payment, error)
}

type paymentService struct {
	repo     repository.PaymentRepository
	gateway  gateway.Gateway
	bookings BookingConfirmer
	cfg      *config.Config
}

func NewPaymentService(
	repo repository.PaymentRepository,
	gw gateway.Gateway,
	bookings BookingConfirmer,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo:     repo,
		gateway:  gw,
		bookings: bookings,
		cfg:      cfg,
	}
}

// Initiate opens a charge for the booking's total price and returns the
// provider-hosted checkout URL.
func (s *paymentService) Initiate(ctx context.Context, bookingID, payerEmail string) (*model.Payment, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if payerEmail == "" {
		return nil, apperrors.InvalidInput("Payer email cannot be empty")
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingPending {
		return nil, apperrors.Conflict("Only pending bookings can be paid for")
	}

	payment := &model.Payment{
		BookingID:   bookingID,
		AmountCents: booking.TotalPriceCents,
		Currency:    s.cfg.DefaultCurrency,
		PayerEmail:  payerEmail,
		Status:      model.PaymentCreated,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		s.cfg.Log.Error("Failed to create payment", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to create payment", err)
	}

	checkout, err := s.gateway.Initialize(ctx, payment)
	if err != nil {
		s.cfg.Log.Error("Payment initialization failed", "payment_id", payment.ID, "error", err)
		if updateErr := s.repo.UpdateStatus(ctx, payment.ID, model.PaymentFailed); updateErr != nil {
			s.cfg.Log.Error("Failed to mark payment failed", "payment_id", payment.ID, "error", updateErr)
		}
		if errors.Is(err, paymentserrors.ErrGatewayRejected) {
			return nil, apperrors.UnavailableWrap(err, "Payment provider rejected the charge")
		}
		return nil, apperrors.UnavailableWrap(err, "Payment provider unreachable")
	}

	payment.CheckoutURL = checkout.CheckoutURL
	payment.ExternalRef = checkout.ExternalRef
	payment.Status = model.PaymentProcessing
	if err := s.repo.Update(ctx, payment.ID, payment); err != nil {
		s.cfg.Log.Error("Failed to store checkout details", "payment_id", payment.ID, "error", err)
		return nil, apperrors.Internal("Failed to update payment", err)
	}

	s.cfg.Log.Info("Payment initiated", "payment_id", payment.ID, "booking_id", bookingID)
	return payment, nil
}

func (s *paymentService) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Payment ID cannot be empty")
	}

	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, paymentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Payment", id)
		}
		if errors.Is(err, paymentserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid payment ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}
	return payment, nil
}

// HandleWebhook processes the provider's callback for a charge. The webhook
// body is untrusted; the charge's outcome is re-verified against the provider
// before any state changes. A completed charge confirms the booking.
func (s *paymentService) HandleWebhook(ctx context.Context, externalRef string) (*model.Payment, error) {
	if externalRef == "" {
		return nil, apperrors.InvalidInput("Transaction reference cannot be empty")
	}

	verification, err := s.gateway.Verify(ctx, externalRef)
	if err != nil {
		s.cfg.Log.Error("Payment verification failed", "external_ref", externalRef, "error", err)
		if errors.Is(err, paymentserrors.ErrGatewayRejected) {
			return nil, apperrors.UnavailableWrap(err, "Payment provider rejected verification")
		}
		return nil, apperrors.UnavailableWrap(err, "Payment provider unreachable")
	}

	payment, err := s.repo.FindByID(ctx, externalRef)
	if err != nil {
		if errors.Is(err, paymentserrors.ErrNotFound) || errors.Is(err, paymentserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Payment", externalRef)
		}
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}

	if payment.Status == verification.Status {
		// redelivered webhook, nothing to do
		return payment, nil
	}

	if err := s.repo.UpdateStatus(ctx, payment.ID, verification.Status); err != nil {
		s.cfg.Log.Error("Failed to update payment status", "payment_id", payment.ID, "error", err)
		return nil, apperrors.Internal("Failed to update payment", err)
	}
	payment.Status = verification.Status

	if verification.Status == model.PaymentComplete {
		if _, err := s.bookings.Confirm(ctx, payment.BookingID, payment.ID); err != nil {
			s.cfg.Log.Error("Failed to confirm booking after payment",
				"payment_id", payment.ID,
				"booking_id", payment.BookingID,
				"error", err,
			)
			return nil, err
		}
	}

	s.cfg.Log.Info("Payment webhook processed",
		"payment_id", payment.ID,
		"booking_id", payment.BookingID,
		"status", payment.Status,
	)
	return payment, nil
}
