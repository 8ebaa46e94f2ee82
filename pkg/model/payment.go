package model

import "time"

// Payment statuses as reported by the external gateway.
const (
	PaymentCreated    = "created"
	PaymentProcessing = "processing"
	PaymentComplete   = "complete"
	PaymentFailed     = "failed"
)

// Payment records one capture attempt for a booking. The gateway protocol is
// the collaborator's business; the core only tracks enough state to drive the
// pending-to-confirmed transition when the webhook lands.
type Payment struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	BookingID   string    `json:"booking_id" bson:"booking_id" validate:"required,uuid4"`
	AmountCents int64     `json:"amount_cents" bson:"amount_cents" validate:"required,gt=0"`
	Currency    string    `json:"currency" bson:"currency" validate:"required,len=3"`
	PayerEmail  string    `json:"payer_email" bson:"payer_email" validate:"required,email"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=created processing complete failed"`
	CheckoutURL string    `json:"checkout_url,omitempty" bson:"checkout_url,omitempty"`
	ExternalRef string    `json:"external_ref,omitempty" bson:"external_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
