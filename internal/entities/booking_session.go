package entities

import "time"

// Wizard states. A session that does not exist (expired or never started) is the
// implicit Idle state; errors are carried on responses, not stored as a state.
const (
	StateDateParty     = "date_party"
	StateTimeSelection = "time_selection"
	StateGuestDetails  = "guest_details"
	StateConfirmed     = "confirmed"
)

// BookingSession is the wizard's working draft, stored in Redis for the lifetime
// of one booking attempt. Forward transitions validate their guard before
// advancing; Previous never clears already-entered data.
type BookingSession struct {
	ID           string `json:"id"`
	State        string `json:"state"`
	RestaurantID int    `json:"restaurant_id"`

	// Step 1: date and party size. Changing either invalidates the slot snapshot.
	Date      string `json:"date,omitempty"` // "2006-01-02"
	PartySize int    `json:"party_size,omitempty"`

	// Step 2: the selected time, valid only against the current slot snapshot.
	Time string `json:"time,omitempty"` // "19:30"

	// Step 3: guest details.
	Guest               GuestContact `json:"guest"`
	OccasionType        string       `json:"occasion_type,omitempty"`
	SpecialRequests     string       `json:"special_requests,omitempty"`
	DietaryRestrictions []string     `json:"dietary_restrictions,omitempty"`
	AcceptTerms         bool         `json:"accept_terms"`

	// Slot snapshot from the most recent availability fetch. FetchSeq increments
	// on every date/party change; a fetch result is applied only while its token
	// still matches FetchSeq, so a superseded fetch can never install stale slots.
	FetchSeq int64              `json:"fetch_seq"`
	Slots    []AvailabilitySlot `json:"slots,omitempty"`
	SlotsSeq int64              `json:"slots_seq"`

	// Set once the draft has been submitted successfully.
	ReservationID    int    `json:"reservation_id,omitempty"`
	ConfirmationCode string `json:"confirmation_code,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SlotsCurrent reports whether the slot snapshot belongs to the latest
// availability fetch for this session.
func (s *BookingSession) SlotsCurrent() bool {
	return s.SlotsSeq == s.FetchSeq && s.SlotsSeq > 0
}

// Draft packages the session into the submission payload.
func (s *BookingSession) Draft() BookingDraft {
	return BookingDraft{
		RestaurantID:        s.RestaurantID,
		Date:                s.Date,
		Time:                s.Time,
		PartySize:           s.PartySize,
		OccasionType:        s.OccasionType,
		SpecialRequests:     s.SpecialRequests,
		Guest:               s.Guest,
		DietaryRestrictions: s.DietaryRestrictions,
		AcceptTerms:         s.AcceptTerms,
	}
}

// WizardResponse is what every wizard endpoint returns: the session after the
// operation plus, where relevant, an inline error and the refreshed slot list.
type WizardResponse struct {
	Session     *BookingSession      `json:"session"`
	Reservation *ReservationResponse `json:"reservation,omitempty"`
	Error       string               `json:"error,omitempty"`
	ErrorKind   string               `json:"error_kind,omitempty"`
}
