// Package gateway wraps the external payment provider's HTTP API. The
// provider hosts the checkout page; this side only initializes a charge and
// verifies its outcome when the webhook lands.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	paymentserrors "lodgebook/internal/payments/errors"
	"lodgebook/pkg/client"
	"lodgebook/pkg/config"
	"lodgebook/pkg/model"
)

type Gateway interface {
	Initialize(ctx context.Context, payment *model.Payment) (*Checkout, error)
	Verify(ctx context.Context, externalRef string) (*Verification, error)
}

// Checkout is the provider's answer to an initialize call.
type Checkout struct {
	CheckoutURL string
	ExternalRef string
}

// Verification is the provider's authoritative view of a charge.
type Verification struct {
	ExternalRef string
	Status      string
	AmountCents int64
	Currency    string
}

type httpGateway struct {
	client    *client.HttpClient
	secretKey string
}

func New(cfg *config.Config) Gateway {
	return &httpGateway{
		client:    client.NewHttpClient(cfg.PaymentAPIBaseURL),
		secretKey: cfg.PaymentSecretKey,
	}
}

func (g *httpGateway) authHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + g.secretKey,
	}
}

type initializeRequest struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Email     string `json:"email"`
	Reference string `json:"tx_ref"`
}

type initializeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

func (g *httpGateway) Initialize(ctx context.Context, payment *model.Payment) (*Checkout, error) {
	req := initializeRequest{
		Amount:    payment.AmountCents,
		Currency:  payment.Currency,
		Email:     payment.PayerEmail,
		Reference: payment.ID,
	}

	resp, err := g.client.POST(ctx, "/transaction/initialize", req, g.authHeaders())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: initialize returned %d", paymentserrors.ErrGatewayRejected, resp.StatusCode)
	}

	var body initializeResponse
	if err := resp.DecodeJSON(&body); err != nil {
		return nil, fmt.Errorf("failed to decode initialize response: %w", err)
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("%w: %s", paymentserrors.ErrGatewayRejected, body.Message)
	}

	return &Checkout{
		CheckoutURL: body.Data.CheckoutURL,
		ExternalRef: payment.ID,
	}, nil
}

type verifyResponse struct {
	Status string `json:"status"`
	Data   struct {
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Reference string `json:"tx_ref"`
	} `json:"data"`
}

// Verify asks the provider for the charge's real outcome. Webhook payloads
// are hints; this call is the authority.
func (g *httpGateway) Verify(ctx context.Context, externalRef string) (*Verification, error) {
	resp, err := g.client.GET(ctx, "/transaction/verify/"+externalRef, g.authHeaders())
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: verify returned %d", paymentserrors.ErrGatewayRejected, resp.StatusCode)
	}

	var body verifyResponse
	if err := resp.DecodeJSON(&body); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}

	status := model.PaymentProcessing
	switch body.Data.Status {
	case "success":
		status = model.PaymentComplete
	case "failed":
		status = model.PaymentFailed
	}

	return &Verification{
		ExternalRef: body.Data.Reference,
		Status:      status,
		AmountCents: body.Data.Amount,
		Currency:    body.Data.Currency,
	}, nil
}
