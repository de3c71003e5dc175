package entities

import "time"

type RestaurantSummary struct {
	ID          int     `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Cuisine     string  `json:"cuisine"`
	City        string  `json:"city"`
	RatingAvg   float64 `json:"rating_avg"`
	RatingCount int     `json:"rating_count"`
}

type RestaurantDetails struct {
	ID            int       `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Cuisine       string    `json:"cuisine"`
	City          string    `json:"city"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone,omitempty"`
	Timezone      string    `json:"timezone"`
	OpenTime      string    `json:"open_time"`  // "11:00"
	CloseTime     string    `json:"close_time"` // "22:00"
	SlotMinutes   int       `json:"slot_minutes"`
	DiningMinutes int       `json:"dining_minutes"`
	RatingAvg     float64   `json:"rating_avg"`
	RatingCount   int       `json:"rating_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type TableRequest struct {
	Label string `json:"label"`
	Seats int    `json:"seats"`
}

type RestaurantRequest struct {
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	Cuisine       string `json:"cuisine"`
	City          string `json:"city"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Timezone      string `json:"timezone"`
	OpenTime      string `json:"open_time"`
	CloseTime     string `json:"close_time"`
	SlotMinutes   int    `json:"slot_minutes"`
	DiningMinutes int    `json:"dining_minutes"`
}

type MenuItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int    `json:"price_cents"`
	Available   *bool  `json:"available"`
}
