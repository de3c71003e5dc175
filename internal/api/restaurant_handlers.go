package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tavolo/internal/entities"
	apperrors "tavolo/internal/errors"
	"tavolo/internal/service"

	"github.com/gorilla/mux"
)

type RestaurantHandler struct {
	Restaurants *service.RestaurantService
	Reviews     *service.ReviewService
}

func NewRestaurantHandler(restaurants *service.RestaurantService, reviews *service.ReviewService) *RestaurantHandler {
	return &RestaurantHandler{Restaurants: restaurants, Reviews: reviews}
}

// ListRestaurants serves GET /api/restaurants?city=&cuisine=.
func (h *RestaurantHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	cuisine := r.URL.Query().Get("cuisine")
	restaurants, err := h.Restaurants.Browse(city, cuisine)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *RestaurantHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	details, err := h.Restaurants.GetBySlug(mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *RestaurantHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.Restaurants.GetMenu(mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

// ListReviews serves GET /api/restaurants/{slug}/reviews?limit=&offset=.
func (h *RestaurantHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	list, err := h.Reviews.ListForRestaurant(mux.Vars(r)["slug"], limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RestaurantHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req entities.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	review, err := h.Reviews.Create(mux.Vars(r)["slug"], &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *RestaurantHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Reviews.Summary(mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
