package db

import "time"

// Reservation statuses. Transitions are explicit owner/diner actions; nothing in
// the system flips a status on a timer.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Restaurant struct {
	ID            int
	Slug          string
	Name          string
	Description   string
	Cuisine       string
	City          string
	Address       string
	Phone         string
	Timezone      string
	OpenTime      string // "11:00"
	CloseTime     string // "22:00"
	SlotMinutes   int
	DiningMinutes int
	RatingAvg     float64
	RatingCount   int
	OwnerID       int
	CreatedAt     time.Time
}

type Table struct {
	ID           int
	RestaurantID int
	Label        string
	Seats        int
}

type Reservation struct {
	ID                  int
	Code                string
	RestaurantID        int
	TableID             *int
	ReservationTime     time.Time
	PartySize           int
	FirstName           string
	LastName            string
	Email               string
	Phone               string
	OccasionType        string
	SpecialRequests     string
	DietaryRestrictions []string
	Status              string
	ReminderSentAt      *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Review struct {
	ID           int
	RestaurantID int
	AuthorName   string
	AuthorEmail  string
	Rating       int
	Comment      string
	CreatedAt    time.Time
}

type MenuItem struct {
	ID           int
	RestaurantID int
	Name         string
	Description  string
	Category     string
	PriceCents   int
	Available    bool
}
