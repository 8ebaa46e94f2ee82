package handler

import (
	"net/http"

	"lodgebook/internal/aggregates/service"
	httputil "lodgebook/pkg/http"
	"lodgebook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AggregatesHandler struct {
	service service.AggregatesService
	log     *logger.Logger
}

func NewAggregatesHandler(service service.AggregatesService, log *logger.Logger) *AggregatesHandler {
	return &AggregatesHandler{
		service: service,
		log:     log,
	}
}

func (h *AggregatesHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("id")

	aggregates, err := h.service.Get(r.Context(), propertyID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, aggregates); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AggregatesHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/properties/id/:id/aggregates", h.Get)
}
