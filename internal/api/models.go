package api

import "tavolo/internal/entities"

// Wizard steps
type StartSessionRequest struct {
	RestaurantID int `json:"restaurant_id"`
}
type DatePartyRequest struct {
	Date      string `json:"date"` // "2006-01-02"
	PartySize int    `json:"party_size"`
}
type TimeSelectionRequest struct {
	Time string `json:"time"` // "19:30"
}
type GuestDetailsRequest struct {
	Guest               entities.GuestContact `json:"guest"`
	OccasionType        string                `json:"occasion_type"`
	SpecialRequests     string                `json:"special_requests"`
	DietaryRestrictions []string              `json:"dietary_restrictions"`
	AcceptTerms         bool                  `json:"accept_terms"`
}

// Diner reservation actions
type CancelReservationRequest struct {
	Email string `json:"email"`
}

// Owner actions
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
type ReplaceTablesRequest struct {
	Tables []entities.TableRequest `json:"tables"`
}
