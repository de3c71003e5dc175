package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"tavolo/internal/db"
	"tavolo/internal/entities"
	apperrors "tavolo/internal/errors"
	"tavolo/internal/repository"
	"tavolo/internal/utils"
)

const (
	maxTableSeats    = 20
	maxTablesPerRoom = 200
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type RestaurantService struct {
	restaurantRepo *repository.RestaurantRepository
}

func NewRestaurantService(restaurantRepo *repository.RestaurantRepository) *RestaurantService {
	return &RestaurantService{restaurantRepo: restaurantRepo}
}

// Browse lists restaurants for the public directory, optionally narrowed by
// city and cuisine.
func (s *RestaurantService) Browse(city, cuisine string) ([]entities.RestaurantSummary, error) {
	restaurants, err := s.restaurantRepo.List(city, cuisine)
	if err != nil {
		log.Printf("Error listing restaurants: %v", err)
		return nil, apperrors.Internal("could not list restaurants")
	}
	return restaurants, nil
}

func (s *RestaurantService) GetBySlug(slug string) (*entities.RestaurantDetails, error) {
	rt, err := s.restaurantRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error fetching restaurant '%s': %v", slug, err)
		return nil, apperrors.Internal("could not load the restaurant")
	}
	return restaurantDetails(rt), nil
}

func (s *RestaurantService) GetMenu(slug string) ([]entities.MenuItemResponse, error) {
	rt, err := s.restaurantRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error fetching restaurant '%s': %v", slug, err)
		return nil, apperrors.Internal("could not load the menu")
	}
	items, err := s.restaurantRepo.ListMenu(rt.ID)
	if err != nil {
		log.Printf("Error listing menu for restaurant %d: %v", rt.ID, err)
		return nil, apperrors.Internal("could not load the menu")
	}
	menu := make([]entities.MenuItemResponse, 0, len(items))
	for _, m := range items {
		menu = append(menu, entities.MenuItemResponse{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Category:    m.Category,
			PriceCents:  m.PriceCents,
			Available:   m.Available,
		})
	}
	return menu, nil
}

// ListMine returns the restaurants belonging to an owner.
func (s *RestaurantService) ListMine(ownerID int) ([]entities.RestaurantSummary, error) {
	restaurants, err := s.restaurantRepo.ListByOwner(ownerID)
	if err != nil {
		log.Printf("Error listing restaurants for owner %d: %v", ownerID, err)
		return nil, apperrors.Internal("could not list restaurants")
	}
	return restaurants, nil
}

func (s *RestaurantService) Create(ownerID int, req *entities.RestaurantRequest) (*entities.RestaurantDetails, error) {
	if err := validateRestaurantRequest(req); err != nil {
		return nil, err
	}
	id, err := s.restaurantRepo.Create(ownerID, req)
	if err != nil {
		log.Printf("Error creating restaurant '%s': %v", req.Slug, err)
		return nil, apperrors.Conflict("could not create the restaurant, the slug may already be taken")
	}
	rt, err := s.restaurantRepo.GetByID(id)
	if err != nil {
		log.Printf("Error reloading restaurant %d: %v", id, err)
		return nil, apperrors.Internal("could not load the restaurant")
	}
	return restaurantDetails(rt), nil
}

func (s *RestaurantService) Update(ownerID, restaurantID int, req *entities.RestaurantRequest) (*entities.RestaurantDetails, error) {
	if _, err := s.restaurantRepo.GetByIDForOwner(restaurantID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error checking restaurant ownership: %v", err)
		return nil, apperrors.Internal("could not update the restaurant")
	}
	if err := validateRestaurantRequest(req); err != nil {
		return nil, err
	}
	if err := s.restaurantRepo.Update(restaurantID, req); err != nil {
		log.Printf("Error updating restaurant %d: %v", restaurantID, err)
		return nil, apperrors.Internal("could not update the restaurant")
	}
	rt, err := s.restaurantRepo.GetByID(restaurantID)
	if err != nil {
		log.Printf("Error reloading restaurant %d: %v", restaurantID, err)
		return nil, apperrors.Internal("could not load the restaurant")
	}
	return restaurantDetails(rt), nil
}

func (s *RestaurantService) ListTables(ownerID, restaurantID int) ([]db.Table, error) {
	if _, err := s.restaurantRepo.GetByIDForOwner(restaurantID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error checking restaurant ownership: %v", err)
		return nil, apperrors.Internal("could not list tables")
	}
	tables, err := s.restaurantRepo.ListTables(restaurantID)
	if err != nil {
		log.Printf("Error listing tables for restaurant %d: %v", restaurantID, err)
		return nil, apperrors.Internal("could not list tables")
	}
	return tables, nil
}

// ReplaceTables swaps the floor plan. Labels must be unique and every table
// must seat at least one guest.
func (s *RestaurantService) ReplaceTables(ownerID, restaurantID int, tables []entities.TableRequest) error {
	if _, err := s.restaurantRepo.GetByIDForOwner(restaurantID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error checking restaurant ownership: %v", err)
		return apperrors.Internal("could not update tables")
	}
	if len(tables) == 0 {
		return apperrors.Validation("at least one table is required")
	}
	if len(tables) > maxTablesPerRoom {
		return apperrors.Validation(fmt.Sprintf("at most %d tables are supported", maxTablesPerRoom))
	}
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		if t.Label == "" {
			return apperrors.Validation("every table needs a label")
		}
		if seen[t.Label] {
			return apperrors.Validation(fmt.Sprintf("duplicate table label %q", t.Label))
		}
		seen[t.Label] = true
		if t.Seats < 1 || t.Seats > maxTableSeats {
			return apperrors.Validation(fmt.Sprintf("table %q must seat between 1 and %d", t.Label, maxTableSeats))
		}
	}
	if err := s.restaurantRepo.ReplaceTables(restaurantID, tables); err != nil {
		log.Printf("Error replacing tables for restaurant %d: %v", restaurantID, err)
		return apperrors.Internal("could not update tables")
	}
	return nil
}

func (s *RestaurantService) AddMenuItem(ownerID, restaurantID int, req *entities.MenuItemRequest) (int, error) {
	if _, err := s.restaurantRepo.GetByIDForOwner(restaurantID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error checking restaurant ownership: %v", err)
		return 0, apperrors.Internal("could not add the menu item")
	}
	if req.Name == "" {
		return 0, apperrors.Validation("menu item name is required")
	}
	if req.PriceCents < 0 {
		return 0, apperrors.Validation("price cannot be negative")
	}
	id, err := s.restaurantRepo.AddMenuItem(restaurantID, req)
	if err != nil {
		log.Printf("Error adding menu item to restaurant %d: %v", restaurantID, err)
		return 0, apperrors.Internal("could not add the menu item")
	}
	return id, nil
}

func validateRestaurantRequest(req *entities.RestaurantRequest) error {
	if req.Name == "" {
		return apperrors.Validation("name is required")
	}
	if !slugPattern.MatchString(req.Slug) {
		return apperrors.Validation("slug must be lowercase letters, digits and hyphens")
	}
	openH, openM, err := utils.ParseClock(req.OpenTime)
	if err != nil {
		return apperrors.Validation(err.Error())
	}
	closeH, closeM, err := utils.ParseClock(req.CloseTime)
	if err != nil {
		return apperrors.Validation(err.Error())
	}
	if closeH*60+closeM <= openH*60+openM {
		return apperrors.Validation("closing time must be after opening time")
	}
	if req.SlotMinutes < 15 || req.SlotMinutes > 120 {
		return apperrors.Validation("slot length must be between 15 and 120 minutes")
	}
	if req.DiningMinutes < 30 || req.DiningMinutes > 300 {
		return apperrors.Validation("dining duration must be between 30 and 300 minutes")
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return apperrors.Validation(fmt.Sprintf("unknown timezone %q", req.Timezone))
		}
	}
	return nil
}

func restaurantDetails(rt *db.Restaurant) *entities.RestaurantDetails {
	return &entities.RestaurantDetails{
		ID:            rt.ID,
		Slug:          rt.Slug,
		Name:          rt.Name,
		Description:   rt.Description,
		Cuisine:       rt.Cuisine,
		City:          rt.City,
		Address:       rt.Address,
		Phone:         rt.Phone,
		Timezone:      rt.Timezone,
		OpenTime:      rt.OpenTime,
		CloseTime:     rt.CloseTime,
		SlotMinutes:   rt.SlotMinutes,
		DiningMinutes: rt.DiningMinutes,
		RatingAvg:     rt.RatingAvg,
		RatingCount:   rt.RatingCount,
		CreatedAt:     rt.CreatedAt,
	}
}
