package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tavolo/internal/auth"
	"tavolo/internal/entities"
	apperrors "tavolo/internal/errors"
	"tavolo/internal/service"

	"github.com/gorilla/mux"
)

type OwnerHandler struct {
	Restaurants  *service.RestaurantService
	Reservations *service.ReservationService
}

func NewOwnerHandler(restaurants *service.RestaurantService, reservations *service.ReservationService) *OwnerHandler {
	return &OwnerHandler{Restaurants: restaurants, Reservations: reservations}
}

func (h *OwnerHandler) ListMyRestaurants(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerID(r)
	if !ok {
		writeError(w, apperrors.Unauthorized("not authenticated"))
		return
	}
	restaurants, err := h.Restaurants.ListMine(ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *OwnerHandler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerID(r)
	if !ok {
		writeError(w, apperrors.Unauthorized("not authenticated"))
		return
	}
	var req entities.RestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	details, err := h.Restaurants.Create(ownerID, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, details)
}

func (h *OwnerHandler) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	ownerID, restaurantID, ok := ownerAndID(w, r)
	if !ok {
		return
	}
	var req entities.RestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	details, err := h.Restaurants.Update(ownerID, restaurantID, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *OwnerHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	ownerID, restaurantID, ok := ownerAndID(w, r)
	if !ok {
		return
	}
	tables, err := h.Restaurants.ListTables(ownerID, restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (h *OwnerHandler) ReplaceTables(w http.ResponseWriter, r *http.Request) {
	ownerID, restaurantID, ok := ownerAndID(w, r)
	if !ok {
		return
	}
	var req ReplaceTablesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.Restaurants.ReplaceTables(ownerID, restaurantID, req.Tables); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tables updated"})
}

func (h *OwnerHandler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	ownerID, restaurantID, ok := ownerAndID(w, r)
	if !ok {
		return
	}
	var req entities.MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	id, err := h.Restaurants.AddMenuItem(ownerID, restaurantID, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"id": id})
}

// ListReservations serves GET /owner/restaurants/{id}/reservations?date=&status=.
func (h *OwnerHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	ownerID, restaurantID, ok := ownerAndID(w, r)
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")
	status := r.URL.Query().Get("status")
	list, err := h.Reservations.ListByRestaurantForOwner(ownerID, restaurantID, date, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateReservationStatus serves PATCH /owner/reservations/{id}/status.
func (h *OwnerHandler) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerID(r)
	if !ok {
		writeError(w, apperrors.Unauthorized("not authenticated"))
		return
	}
	reservationID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperrors.Validation("invalid reservation id"))
		return
	}
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.Reservations.UpdateStatusByOwner(ownerID, reservationID, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reservation updated"})
}

// ownerAndID pulls the authenticated owner and the {id} path variable, writing
// the error response itself when either is missing.
func ownerAndID(w http.ResponseWriter, r *http.Request) (ownerID, restaurantID int, ok bool) {
	ownerID, authed := auth.OwnerID(r)
	if !authed {
		writeError(w, apperrors.Unauthorized("not authenticated"))
		return 0, 0, false
	}
	restaurantID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperrors.Validation("invalid restaurant id"))
		return 0, 0, false
	}
	return ownerID, restaurantID, true
}
