package entities

import "time"

// AvailabilitySlot is one bookable time-of-day offering for a (date, party size)
// query. Slots are immutable snapshots: a fresh query is required whenever the
// date or the party size changes.
type AvailabilitySlot struct {
	Time           string `json:"time"` // "19:30", restaurant-local
	Available      bool   `json:"available"`
	SeatsAvailable int    `json:"seats_available"` // tables left that fit the party
}

type AvailabilityResponse struct {
	RestaurantID int                `json:"restaurant_id"`
	Date         string             `json:"date"` // "2006-01-02"
	PartySize    int                `json:"party_size"`
	Slots        []AvailabilitySlot `json:"slots"`
	Message      string             `json:"message,omitempty"`
	FetchedAt    time.Time          `json:"fetched_at"`
}

// HasBookableSlot reports whether at least one slot in the snapshot is open.
func (r *AvailabilityResponse) HasBookableSlot() bool {
	for _, s := range r.Slots {
		if s.Available {
			return true
		}
	}
	return false
}

// SlotAt returns the slot with the given time value, if present.
func (r *AvailabilityResponse) SlotAt(t string) (AvailabilitySlot, bool) {
	for _, s := range r.Slots {
		if s.Time == t {
			return s, true
		}
	}
	return AvailabilitySlot{}, false
}
