package entities

import "time"

// GuestContact is the step-three contact block of the booking wizard.
type GuestContact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// BookingDraft is the validated payload handed from the wizard to reservation
// creation. It is owned by the wizard session and discarded once a reservation
// has been created (or the session is cancelled).
type BookingDraft struct {
	RestaurantID        int          `json:"restaurant_id"`
	Date                string       `json:"date"` // "2006-01-02", restaurant-local
	Time                string       `json:"time"` // "19:30", restaurant-local
	PartySize           int          `json:"party_size"`
	OccasionType        string       `json:"occasion_type,omitempty"`
	SpecialRequests     string       `json:"special_requests,omitempty"`
	Guest               GuestContact `json:"guest"`
	DietaryRestrictions []string     `json:"dietary_restrictions,omitempty"`
	AcceptTerms         bool         `json:"accept_terms"`
}

// ReservationResponse is the public view of a created reservation.
type ReservationResponse struct {
	ID              int       `json:"id"`
	Code            string    `json:"confirmation_code"`
	RestaurantID    int       `json:"restaurant_id"`
	RestaurantName  string    `json:"restaurant_name,omitempty"`
	TableLabel      string    `json:"table_label,omitempty"`
	ReservationTime time.Time `json:"reservation_time"`
	PartySize       int       `json:"party_size"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	OccasionType    string    `json:"occasion_type,omitempty"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	Dietary         []string  `json:"dietary_restrictions,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
