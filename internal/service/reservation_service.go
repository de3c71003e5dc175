package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tavolo/internal/db"
	"tavolo/internal/entities"
	apperrors "tavolo/internal/errors"
	"tavolo/internal/events"
	"tavolo/internal/repository"
	"tavolo/internal/utils"

	"github.com/google/uuid"
)

// Diners can cancel up to this long before the seating time. Later than that
// the restaurant has to be called.
const cancelCutoff = 2 * time.Hour

type ReservationService struct {
	Repo           *repository.ReservationRepository
	restaurantRepo *repository.RestaurantRepository
	sender         *SenderService
	publisher      *events.Publisher
}

func NewReservationService(repo *repository.ReservationRepository, restaurantRepo *repository.RestaurantRepository, sender *SenderService, publisher *events.Publisher) *ReservationService {
	return &ReservationService{
		Repo:           repo,
		restaurantRepo: restaurantRepo,
		sender:         sender,
		publisher:      publisher,
	}
}

// Create books a table for a validated draft. Everything the wizard checked is
// checked again here: the draft may be minutes old, and the wizard is not the
// only caller. A conflict (table race, duplicate) comes back as KindConflict so
// the booker lands on time selection with fresh slots.
func (s *ReservationService) Create(draft *entities.BookingDraft) (*entities.ReservationResponse, error) {
	rt, err := s.restaurantRepo.GetByID(draft.RestaurantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error loading restaurant %d: %v", draft.RestaurantID, err)
		return nil, apperrors.Internal("could not create the reservation")
	}

	now := time.Now()
	loc := utils.LoadLocation(rt.Timezone)
	if err := ValidatePartySize(draft.PartySize); err != nil {
		return nil, err
	}
	if err := ValidateBookingDate(draft.Date, loc, now); err != nil {
		return nil, err
	}
	if err := ValidateGuestDetails(draft.Guest, draft.OccasionType, draft.SpecialRequests, draft.DietaryRestrictions, draft.AcceptTerms); err != nil {
		return nil, err
	}
	at, err := s.slotInstant(rt, draft.Date, draft.Time, loc)
	if err != nil {
		return nil, err
	}
	if at.Before(now) {
		return nil, apperrors.Validation("that time has already passed")
	}

	duplicate, err := s.Repo.HasActiveDuplicate(draft.RestaurantID, draft.Guest.Email, at)
	if err != nil {
		log.Printf("Error checking duplicate reservation: %v", err)
		return nil, apperrors.Internal("could not create the reservation")
	}
	if duplicate {
		return nil, apperrors.Conflict("you already have a reservation at this restaurant for that time")
	}

	reservation := &db.Reservation{
		Code:                newConfirmationCode(),
		RestaurantID:        draft.RestaurantID,
		ReservationTime:     at,
		PartySize:           draft.PartySize,
		FirstName:           strings.TrimSpace(draft.Guest.FirstName),
		LastName:            strings.TrimSpace(draft.Guest.LastName),
		Email:               strings.ToLower(strings.TrimSpace(draft.Guest.Email)),
		Phone:               utils.NormalizePhone(draft.Guest.Phone),
		OccasionType:        draft.OccasionType,
		SpecialRequests:     draft.SpecialRequests,
		DietaryRestrictions: draft.DietaryRestrictions,
		Status:              db.StatusPending,
		CreatedAt:           now.UTC(),
		UpdatedAt:           now.UTC(),
	}

	err = s.Repo.CreateWithTable(reservation, rt.DiningMinutes)
	if err != nil {
		if errors.Is(err, repository.ErrNoTableFree) {
			return nil, apperrors.Conflict("that time was just booked by someone else, pick another slot")
		}
		log.Printf("Error creating reservation in repository: %v", err)
		return nil, apperrors.Internal("could not create the reservation")
	}

	response := buildReservationResponse(reservation, rt.Name)
	s.sender.SendReservationEmail(*response, rt.Timezone, "received")
	s.sender.SendReservationSMS(*response, rt.Timezone, "received")
	s.publisher.Publish(events.ReservationCreated, reservation.Code, response)

	return response, nil
}

func (s *ReservationService) GetByCode(code, email string) (*entities.ReservationResponse, error) {
	res, err := s.Repo.GetByCode(strings.ToUpper(strings.TrimSpace(code)), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("no reservation matches that code and email")
		}
		log.Printf("Error fetching reservation by code: %v", err)
		return nil, apperrors.Internal("could not look up the reservation")
	}
	return res, nil
}

func (s *ReservationService) ListByEmail(email, filter string) (*entities.ReservationsList, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	filter = utils.ParseReservationFilter(filter)
	reservations, err := s.Repo.ListByEmail(email, filter)
	if err != nil {
		log.Printf("Error listing reservations for %s: %v", email, err)
		return nil, apperrors.Internal("could not list reservations")
	}
	return &entities.ReservationsList{
		Total:        len(reservations),
		Filter:       filter,
		Reservations: reservations,
	}, nil
}

// CancelByDiner cancels a reservation identified by confirmation code and
// booking email, up to the cutoff before seating.
func (s *ReservationService) CancelByDiner(code, email string) error {
	res, err := s.Repo.GetByCodeOnly(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("no reservation matches that code and email")
		}
		log.Printf("Error fetching reservation %s: %v", code, err)
		return apperrors.Internal("could not cancel the reservation")
	}
	if !strings.EqualFold(res.Email, strings.TrimSpace(email)) {
		return apperrors.NotFound("no reservation matches that code and email")
	}
	if res.Status != db.StatusPending && res.Status != db.StatusConfirmed {
		return apperrors.Validation("this reservation can no longer be cancelled")
	}
	if time.Until(res.ReservationTime) < cancelCutoff {
		return apperrors.Validation("reservations can only be cancelled more than 2 hours before the seating time")
	}

	if err := s.Repo.UpdateStatus(res.ID, db.StatusCancelled); err != nil {
		log.Printf("Error cancelling reservation %s: %v", code, err)
		return apperrors.Internal("could not cancel the reservation")
	}
	s.notifyStatusChange(res, db.StatusCancelled)
	return nil
}

// UpdateStatusByOwner applies one owner-side lifecycle transition. Re-confirming
// a cancelled reservation re-checks the table, since the slot may have been
// given away in the meantime.
func (s *ReservationService) UpdateStatusByOwner(ownerID, reservationID int, newStatus string) error {
	if newStatus != db.StatusConfirmed && newStatus != db.StatusCancelled && newStatus != db.StatusCompleted {
		return apperrors.Validation(fmt.Sprintf("unknown status %q", newStatus))
	}

	res, err := s.Repo.GetByID(reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("reservation not found")
		}
		log.Printf("Error fetching reservation %d: %v", reservationID, err)
		return apperrors.Internal("could not update the reservation")
	}

	rt, err := s.restaurantRepo.GetByIDForOwner(res.RestaurantID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("reservation not found")
		}
		log.Printf("Error checking restaurant ownership: %v", err)
		return apperrors.Internal("could not update the reservation")
	}

	if !canTransition(res.Status, newStatus) {
		return apperrors.Conflict(fmt.Sprintf("a %s reservation cannot become %s", res.Status, newStatus))
	}

	if res.Status == db.StatusCancelled && newStatus == db.StatusConfirmed {
		if res.TableID == nil {
			return apperrors.Conflict("the original table no longer exists")
		}
		taken, err := s.Repo.HasTableConflict(*res.TableID, res.ReservationTime, rt.DiningMinutes, res.ID)
		if err != nil {
			log.Printf("Error checking table conflict: %v", err)
			return apperrors.Internal("could not update the reservation")
		}
		if taken {
			return apperrors.Conflict("the table has been booked by someone else for that time")
		}
	}

	if err := s.Repo.UpdateStatus(res.ID, newStatus); err != nil {
		log.Printf("Error updating reservation %d to %s: %v", reservationID, newStatus, err)
		return apperrors.Internal("could not update the reservation")
	}

	// Completing a visit is bookkeeping, the guest is not notified.
	if newStatus != db.StatusCompleted {
		s.notifyStatusChange(res, newStatus)
	} else {
		s.publishStatusChange(res, newStatus)
	}
	return nil
}

// ListByRestaurantForOwner is the owner dashboard view.
func (s *ReservationService) ListByRestaurantForOwner(ownerID, restaurantID int, date, status string) (*entities.ReservationsList, error) {
	if _, err := s.restaurantRepo.GetByIDForOwner(restaurantID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error checking restaurant ownership: %v", err)
		return nil, apperrors.Internal("could not list reservations")
	}
	if date != "" {
		if _, err := utils.ParseDate(date); err != nil {
			return nil, apperrors.Validation(err.Error())
		}
	}
	if status != "" && status != db.StatusPending && status != db.StatusConfirmed &&
		status != db.StatusCompleted && status != db.StatusCancelled {
		return nil, apperrors.Validation(fmt.Sprintf("unknown status %q", status))
	}

	reservations, err := s.Repo.ListByRestaurant(restaurantID, date, status)
	if err != nil {
		log.Printf("Error listing reservations for restaurant %d: %v", restaurantID, err)
		return nil, apperrors.Internal("could not list reservations")
	}
	return &entities.ReservationsList{
		Total:        len(reservations),
		Filter:       status,
		Reservations: reservations,
	}, nil
}

// slotInstant validates that the requested time lies on the restaurant's slot
// grid and inside seating hours, and returns the concrete instant.
func (s *ReservationService) slotInstant(rt *db.Restaurant, date, clock string, loc *time.Location) (time.Time, error) {
	at, err := utils.CombineDateClock(date, clock, loc)
	if err != nil {
		return time.Time{}, apperrors.Validation(err.Error())
	}
	open, err := utils.CombineDateClock(date, rt.OpenTime, loc)
	if err != nil {
		return time.Time{}, apperrors.Internal("restaurant has invalid opening hours")
	}
	close, err := utils.CombineDateClock(date, rt.CloseTime, loc)
	if err != nil {
		return time.Time{}, apperrors.Internal("restaurant has invalid opening hours")
	}
	lastSeating := close.Add(-time.Duration(rt.DiningMinutes) * time.Minute)
	if at.Before(open) || at.After(lastSeating) {
		return time.Time{}, apperrors.Validation("that time is outside seating hours")
	}
	if rt.SlotMinutes <= 0 || int(at.Sub(open).Minutes())%rt.SlotMinutes != 0 {
		return time.Time{}, apperrors.Validation("that time is not a bookable slot")
	}
	return at, nil
}

func (s *ReservationService) notifyStatusChange(res *db.Reservation, newStatus string) {
	rt, err := s.restaurantRepo.GetByID(res.RestaurantID)
	if err != nil {
		log.Printf("Error loading restaurant %d for notification: %v", res.RestaurantID, err)
		return
	}
	updated := *res
	updated.Status = newStatus
	response := buildReservationResponse(&updated, rt.Name)
	s.sender.SendReservationEmail(*response, rt.Timezone, newStatus)
	s.sender.SendReservationSMS(*response, rt.Timezone, newStatus)
	s.publisher.Publish(events.ReservationStatusChanged, res.Code, response)
}

func (s *ReservationService) publishStatusChange(res *db.Reservation, newStatus string) {
	updated := *res
	updated.Status = newStatus
	s.publisher.Publish(events.ReservationStatusChanged, res.Code, buildReservationResponse(&updated, ""))
}

func buildReservationResponse(res *db.Reservation, restaurantName string) *entities.ReservationResponse {
	return &entities.ReservationResponse{
		ID:              res.ID,
		Code:            res.Code,
		RestaurantID:    res.RestaurantID,
		RestaurantName:  restaurantName,
		ReservationTime: res.ReservationTime,
		PartySize:       res.PartySize,
		FirstName:       res.FirstName,
		LastName:        res.LastName,
		Email:           res.Email,
		Phone:           res.Phone,
		OccasionType:    res.OccasionType,
		SpecialRequests: res.SpecialRequests,
		Dietary:         res.DietaryRestrictions,
		Status:          res.Status,
		CreatedAt:       res.CreatedAt,
		UpdatedAt:       res.UpdatedAt,
	}
}

// canTransition encodes the reservation lifecycle. Completed is terminal;
// cancelled can be walked back to confirmed if the table is still free.
func canTransition(from, to string) bool {
	switch from {
	case db.StatusPending:
		return to == db.StatusConfirmed || to == db.StatusCancelled
	case db.StatusConfirmed:
		return to == db.StatusCompleted || to == db.StatusCancelled
	case db.StatusCancelled:
		return to == db.StatusConfirmed
	default:
		return false
	}
}

// newConfirmationCode returns a short code guests quote at the door, e.g.
// "9F2C41AB".
func newConfirmationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
