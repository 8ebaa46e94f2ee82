package handler

import (
	"encoding/json"
	"net/http"

	"lodgebook/internal/payments/service"
	httputil "lodgebook/pkg/http"
	"lodgebook/pkg/logger"
	"lodgebook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service       service.PaymentService
	webhookSecret string
	log           *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, webhookSecret string, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:       service,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

type initiatePaymentRequest struct {
	BookingID  string `json:"booking_id"`
	PayerEmail string `json:"payer_email"`
}

// webhookRequest mirrors the provider's callback body. Only the reference is
// trusted; everything else is re-verified against the provider.
type webhookRequest struct {
	Reference string `json:"tx_ref"`
	Status    string `json:"status"`
}

func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Initiate", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	payment, err := h.service.Initiate(r.Context(), req.BookingID, req.PayerEmail)
	if err != nil {
		h.writeError(w, "Initiate", err)
		return
	}

	if err := httputil.WriteCreated(w, payment); err != nil {
		h.log.Error("failed to write created response", "handler", "Initiate", "operation", "WriteCreated", "error", err)
	}
}

func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	payment, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, payment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Webhook", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	payment, err := h.service.HandleWebhook(r.Context(), req.Reference)
	if err != nil {
		h.writeError(w, "Webhook", err)
		return
	}

	if err := httputil.WriteSuccess(w, payment); err != nil {
		h.log.Error("failed to write success response", "handler", "Webhook", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments", h.Initiate)
	router.GET("/api/v1/payments/id/:id", h.GetByID)

	webhook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Webhook(w, r, nil)
	})
	if h.webhookSecret == "" {
		h.log.Warn("Payment webhook secret not configured, accepting unsigned deliveries")
		router.Handler(http.MethodPost, "/api/v1/payments/webhook", webhook)
		return
	}
	router.Handler(http.MethodPost, "/api/v1/payments/webhook",
		middleware.WebhookSignatureVerification(h.webhookSecret, h.log)(webhook))
}
