package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"lodgebook/internal/bookings/service"
	apperrors "lodgebook/pkg/errors"
	httputil "lodgebook/pkg/http"
	"lodgebook/pkg/logger"
	"lodgebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// createBookingRequest carries dates in the YYYY-MM-DD calendar form used
// throughout the API. End date is the checkout day and is not part of the
// stay.
type createBookingRequest struct {
	PropertyID  string `json:"property_id"`
	RequesterID string `json:"requester_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type updateBookingRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	end, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking := model.Booking{
		PropertyID:  req.PropertyID,
		RequesterID: req.RequesterID,
		DateRange:   model.DateRange{Start: start, End: end},
	}

	if err := h.service.Create(r.Context(), &booking); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	bookings, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) GetByProperty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("id")

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetByProperty", err)
		return
	}

	bookings, err := h.service.GetByProperty(r.Context(), propertyID, limit, offset)
	if err != nil {
		h.writeError(w, "GetByProperty", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByProperty", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UpdateDates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req updateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateDates", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	var updates model.BookingUpdate
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate, "start_date")
		if err != nil {
			h.writeError(w, "UpdateDates", err)
			return
		}
		updates.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate, "end_date")
		if err != nil {
			h.writeError(w, "UpdateDates", err)
			return
		}
		updates.EndDate = &end
	}

	booking, err := h.service.UpdateDates(r.Context(), id, &updates)
	if err != nil {
		h.writeError(w, "UpdateDates", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateDates", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func parseDate(value, field string) (time.Time, error) {
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + field + " format, must be YYYY-MM-DD")
	}
	return parsed, nil
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id", h.UpdateDates)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.GET("/api/v1/bookings/property/:id", h.GetByProperty)
}
