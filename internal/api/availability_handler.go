package api

import (
	"net/http"
	"strconv"

	apperrors "tavolo/internal/errors"
	"tavolo/internal/service"
)

type AvailabilityHandler struct {
	Service *service.AvailabilityService
}

func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{Service: svc}
}

// CheckAvailability serves GET /api/availability?restaurant_id=&date=&party_size=.
func (h *AvailabilityHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := strconv.Atoi(r.URL.Query().Get("restaurant_id"))
	if err != nil {
		writeError(w, apperrors.Validation("restaurant_id must be a number"))
		return
	}
	partySize, err := strconv.Atoi(r.URL.Query().Get("party_size"))
	if err != nil {
		writeError(w, apperrors.Validation("party_size must be a number"))
		return
	}
	date := r.URL.Query().Get("date")

	response, err := h.Service.CheckAvailability(restaurantID, date, partySize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
