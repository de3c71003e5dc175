package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"tavolo/internal/db"
	"tavolo/internal/entities"
	apperrors "tavolo/internal/errors"
	"tavolo/internal/utils"

	"github.com/google/uuid"
)

// SessionStore is what the wizard needs from session storage. Satisfied by
// repository.SessionRepository.
type SessionStore interface {
	Get(ctx context.Context, id string) (*entities.BookingSession, error)
	Save(ctx context.Context, session *entities.BookingSession) error
	Delete(ctx context.Context, id string) error
	AcquireLock(ctx context.Context, id string) (bool, error)
	ReleaseLock(ctx context.Context, id string)
}

// SlotProvider yields the slot grid for one query. Satisfied by
// AvailabilityService.
type SlotProvider interface {
	CheckAvailability(restaurantID int, date string, partySize int) (*entities.AvailabilityResponse, error)
}

// BookingCreator books a draft and looks a booking up again for idempotent
// re-submits. Satisfied by ReservationService.
type BookingCreator interface {
	Create(draft *entities.BookingDraft) (*entities.ReservationResponse, error)
	GetByCode(code, email string) (*entities.ReservationResponse, error)
}

// RestaurantGetter resolves a restaurant row. Satisfied by
// repository.RestaurantRepository.
type RestaurantGetter interface {
	GetByID(id int) (*db.Restaurant, error)
}

// WizardService drives the four-step booking flow. Sessions live in Redis; a
// per-session lock keeps mutations one at a time, and a fetch generation token
// makes sure a slow availability query can never overwrite the result of a
// newer one.
type WizardService struct {
	sessions     SessionStore
	availability SlotProvider
	reservations BookingCreator
	restaurants  RestaurantGetter
}

func NewWizardService(sessions SessionStore, availability SlotProvider, reservations BookingCreator, restaurants RestaurantGetter) *WizardService {
	return &WizardService{
		sessions:     sessions,
		availability: availability,
		reservations: reservations,
		restaurants:  restaurants,
	}
}

// StartSession opens a fresh booking draft for a restaurant, at the date and
// party step.
func (s *WizardService) StartSession(ctx context.Context, restaurantID int) (*entities.BookingSession, error) {
	if _, err := s.restaurants.GetByID(restaurantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error loading restaurant %d: %v", restaurantID, err)
		return nil, apperrors.Internal("could not start a booking")
	}

	now := time.Now().UTC()
	session := &entities.BookingSession{
		ID:           uuid.NewString(),
		State:        entities.StateDateParty,
		RestaurantID: restaurantID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		log.Printf("Error saving new session: %v", err)
		return nil, apperrors.Internal("could not start a booking")
	}
	return session, nil
}

func (s *WizardService) GetSession(ctx context.Context, id string) (*entities.BookingSession, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		log.Printf("Error loading session %s: %v", id, err)
		return nil, apperrors.Internal("could not load the booking")
	}
	if session == nil {
		return nil, apperrors.NotFound("booking session not found or expired")
	}
	return session, nil
}

// SetDateParty records the step-one choices and fetches the slot grid. It works
// from any step before confirmation: changing the date or the party size from a
// later step throws away the selected time and brings the booker back to slot
// selection with fresh data.
func (s *WizardService) SetDateParty(ctx context.Context, id, date string, partySize int) (*entities.BookingSession, error) {
	session, unlock, err := s.lockAndLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if session.State == entities.StateConfirmed {
		return nil, apperrors.Conflict("the booking is already complete")
	}

	rt, err := s.restaurants.GetByID(session.RestaurantID)
	if err != nil {
		log.Printf("Error loading restaurant %d: %v", session.RestaurantID, err)
		return nil, apperrors.Internal("could not update the booking")
	}
	loc := utils.LoadLocation(rt.Timezone)
	if err := ValidateBookingDate(date, loc, time.Now()); err != nil {
		return nil, err
	}
	if err := ValidatePartySize(partySize); err != nil {
		return nil, err
	}

	session.Date = date
	session.PartySize = partySize
	session.Time = ""
	session.State = entities.StateDateParty

	current, avail, err := s.bumpAndFetch(ctx, session)
	if err != nil {
		return nil, err
	}
	if avail == nil {
		// A newer generation superseded this fetch; its writer owns the state.
		return current, nil
	}

	if avail.HasBookableSlot() {
		current.State = entities.StateTimeSelection
	} else {
		current.State = entities.StateDateParty
	}
	if err := s.sessions.Save(ctx, current); err != nil {
		log.Printf("Error saving session %s: %v", id, err)
		return nil, apperrors.Internal("could not update the booking")
	}
	if !avail.HasBookableSlot() {
		return current, apperrors.Conflict(avail.Message)
	}
	return current, nil
}

// SetTime picks a slot from the current snapshot and moves on to guest details.
func (s *WizardService) SetTime(ctx context.Context, id, slotTime string) (*entities.BookingSession, error) {
	session, unlock, err := s.lockAndLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	switch session.State {
	case entities.StateTimeSelection, entities.StateGuestDetails:
	case entities.StateConfirmed:
		return nil, apperrors.Conflict("the booking is already complete")
	default:
		return nil, apperrors.Validation("pick a date and party size first")
	}

	if !session.SlotsCurrent() {
		return nil, apperrors.Conflict("the slot list is out of date, choose the date again")
	}
	slot, ok := snapshotSlot(session, slotTime)
	if !ok {
		return nil, apperrors.Validation("that time is not one of the offered slots")
	}
	if !slot.Available {
		return nil, apperrors.Conflict("that time is fully booked, pick another slot")
	}

	session.Time = slotTime
	session.State = entities.StateGuestDetails
	if err := s.sessions.Save(ctx, session); err != nil {
		log.Printf("Error saving session %s: %v", id, err)
		return nil, apperrors.Internal("could not update the booking")
	}
	return session, nil
}

// SetGuestDetails stores the step-three form. The session stays on the guest
// details step until Submit.
func (s *WizardService) SetGuestDetails(ctx context.Context, id string, guest entities.GuestContact, occasion, specialRequests string, dietary []string, acceptTerms bool) (*entities.BookingSession, error) {
	session, unlock, err := s.lockAndLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	switch session.State {
	case entities.StateGuestDetails:
	case entities.StateConfirmed:
		return nil, apperrors.Conflict("the booking is already complete")
	default:
		return nil, apperrors.Validation("pick a time first")
	}

	if err := ValidateGuestDetails(guest, occasion, specialRequests, dietary, acceptTerms); err != nil {
		return nil, err
	}

	session.Guest = guest
	session.OccasionType = occasion
	session.SpecialRequests = specialRequests
	session.DietaryRestrictions = dietary
	session.AcceptTerms = acceptTerms
	if err := s.sessions.Save(ctx, session); err != nil {
		log.Printf("Error saving session %s: %v", id, err)
		return nil, apperrors.Internal("could not update the booking")
	}
	return session, nil
}

// Submit books the table. Submitting an already confirmed session returns the
// existing reservation instead of creating a second one. When the slot was
// taken in the meantime the session drops back to time selection with a fresh
// slot grid and the conflict is reported to the caller.
func (s *WizardService) Submit(ctx context.Context, id string) (*entities.BookingSession, *entities.ReservationResponse, error) {
	session, unlock, err := s.lockAndLoad(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	if session.State == entities.StateConfirmed {
		response, err := s.confirmedResponse(session)
		if err != nil {
			return nil, nil, err
		}
		return session, response, nil
	}
	if session.State != entities.StateGuestDetails {
		return nil, nil, apperrors.Validation("the booking is not ready to submit")
	}
	if session.Date == "" || session.Time == "" || session.PartySize == 0 {
		return nil, nil, apperrors.Validation("the booking is missing its date or time")
	}

	draft := session.Draft()
	response, err := s.reservations.Create(&draft)
	if err != nil {
		var httpErr *apperrors.HTTPError
		if errors.As(err, &httpErr) && httpErr.Kind == apperrors.KindConflict {
			return s.handleSubmitConflict(ctx, session, err)
		}
		return nil, nil, err
	}

	session.State = entities.StateConfirmed
	session.ReservationID = response.ID
	session.ConfirmationCode = response.Code
	if err := s.sessions.Save(ctx, session); err != nil {
		// The reservation exists; losing the session state costs the booker the
		// in-wizard confirmation view, not the booking.
		log.Printf("Error saving confirmed session %s: %v", id, err)
	}
	return session, response, nil
}

// Previous steps back one screen without losing anything already entered.
func (s *WizardService) Previous(ctx context.Context, id string) (*entities.BookingSession, error) {
	session, unlock, err := s.lockAndLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	switch session.State {
	case entities.StateGuestDetails:
		session.State = entities.StateTimeSelection
	case entities.StateTimeSelection:
		session.State = entities.StateDateParty
	case entities.StateDateParty:
		return nil, apperrors.Validation("already at the first step")
	default:
		return nil, apperrors.Conflict("the booking is already complete")
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		log.Printf("Error saving session %s: %v", id, err)
		return nil, apperrors.Internal("could not update the booking")
	}
	return session, nil
}

// Abandon throws the draft away.
func (s *WizardService) Abandon(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		log.Printf("Error deleting session %s: %v", id, err)
		return apperrors.Internal("could not abandon the booking")
	}
	return nil
}

// lockAndLoad takes the session mutation lock and loads the session. The caller
// must run the returned unlock.
func (s *WizardService) lockAndLoad(ctx context.Context, id string) (*entities.BookingSession, func(), error) {
	ok, err := s.sessions.AcquireLock(ctx, id)
	if err != nil {
		log.Printf("Error acquiring lock for session %s: %v", id, err)
		return nil, nil, apperrors.Internal("could not load the booking")
	}
	if !ok {
		return nil, nil, apperrors.Busy("another action on this booking is still in progress")
	}
	unlock := func() { s.sessions.ReleaseLock(ctx, id) }

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		unlock()
		log.Printf("Error loading session %s: %v", id, err)
		return nil, nil, apperrors.Internal("could not load the booking")
	}
	if session == nil {
		unlock()
		return nil, nil, apperrors.NotFound("booking session not found or expired")
	}
	return session, unlock, nil
}

// bumpAndFetch starts a new fetch generation, persists it, runs the
// availability query, and applies the result only if no newer generation
// started while the query ran. A nil response with a nil error means the fetch
// was superseded and discarded.
func (s *WizardService) bumpAndFetch(ctx context.Context, session *entities.BookingSession) (*entities.BookingSession, *entities.AvailabilityResponse, error) {
	session.FetchSeq++
	token := session.FetchSeq
	session.Slots = nil
	session.SlotsSeq = 0
	if err := s.sessions.Save(ctx, session); err != nil {
		log.Printf("Error saving session %s: %v", session.ID, err)
		return nil, nil, apperrors.Internal("could not update the booking")
	}

	avail, err := s.availability.CheckAvailability(session.RestaurantID, session.Date, session.PartySize)
	if err != nil {
		return nil, nil, err
	}

	current, err := s.sessions.Get(ctx, session.ID)
	if err != nil {
		log.Printf("Error reloading session %s: %v", session.ID, err)
		return nil, nil, apperrors.Internal("could not update the booking")
	}
	if current == nil {
		return nil, nil, apperrors.NotFound("booking session not found or expired")
	}
	if current.FetchSeq != token {
		log.Printf("Discarding stale availability fetch (generation %d) for session %s", token, session.ID)
		return current, nil, nil
	}

	current.Slots = avail.Slots
	current.SlotsSeq = token
	return current, avail, nil
}

// handleSubmitConflict reacts to a slot lost between selection and submission:
// back to time selection with a fresh grid, the conflict reported alongside.
func (s *WizardService) handleSubmitConflict(ctx context.Context, session *entities.BookingSession, conflict error) (*entities.BookingSession, *entities.ReservationResponse, error) {
	session.Time = ""
	session.State = entities.StateTimeSelection

	current, avail, err := s.bumpAndFetch(ctx, session)
	if err != nil {
		log.Printf("Error refreshing slots after submit conflict on session %s: %v", session.ID, err)
		return session, nil, conflict
	}
	if avail == nil {
		return current, nil, conflict
	}
	if !avail.HasBookableSlot() {
		current.State = entities.StateDateParty
	}
	if err := s.sessions.Save(ctx, current); err != nil {
		log.Printf("Error saving session %s: %v", session.ID, err)
	}
	return current, nil, conflict
}

// confirmedResponse rebuilds the reservation view for an idempotent re-submit.
func (s *WizardService) confirmedResponse(session *entities.BookingSession) (*entities.ReservationResponse, error) {
	return s.reservations.GetByCode(session.ConfirmationCode, session.Guest.Email)
}

func snapshotSlot(session *entities.BookingSession, t string) (entities.AvailabilitySlot, bool) {
	for _, s := range session.Slots {
		if s.Time == t {
			return s, true
		}
	}
	return entities.AvailabilitySlot{}, false
}
