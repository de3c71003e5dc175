package api

import (
	"encoding/json"
	"net/http"

	"tavolo/internal/entities"
	apperrors "tavolo/internal/errors"
	"tavolo/internal/service"

	"github.com/gorilla/mux"
)

type ReservationHandler struct {
	Service *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Service: svc}
}

// CreateReservation books directly from a complete draft, without a wizard
// session. The same validation and conflict rules apply.
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var draft entities.BookingDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	reservation, err := h.Service.Create(&draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

// GetReservation serves GET /api/reservations/{code}?email=. Both values must
// match for the reservation to be shown.
func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, apperrors.Validation("email is required"))
		return
	}
	reservation, err := h.Service.GetByCode(code, email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

// ListReservations serves GET /api/reservations?email=&filter=.
func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	filter := r.URL.Query().Get("filter")
	list, err := h.Service.ListByEmail(email, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req CancelReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.Service.CancelByDiner(code, req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reservation cancelled"})
}
