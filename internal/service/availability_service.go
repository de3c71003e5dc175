package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"tavolo/internal/db"
	"tavolo/internal/entities"
	apperrors "tavolo/internal/errors"
	"tavolo/internal/repository"
	"tavolo/internal/utils"
)

const (
	// MaxPartySize is the largest party bookable online. Bigger groups call the
	// restaurant.
	MaxPartySize = 12

	// MaxAdvanceDays is how far ahead a date can be booked.
	MaxAdvanceDays = 90
)

type AvailabilityService struct {
	restaurantRepo  *repository.RestaurantRepository
	reservationRepo *repository.ReservationRepository
}

func NewAvailabilityService(restaurantRepo *repository.RestaurantRepository, reservationRepo *repository.ReservationRepository) *AvailabilityService {
	return &AvailabilityService{
		restaurantRepo:  restaurantRepo,
		reservationRepo: reservationRepo,
	}
}

// CheckAvailability returns the slot grid for one (restaurant, date, party)
// query. Every call recomputes from live bookings; the result is a snapshot
// that goes stale as soon as someone else books.
func (s *AvailabilityService) CheckAvailability(restaurantID int, date string, partySize int) (*entities.AvailabilityResponse, error) {
	if err := ValidatePartySize(partySize); err != nil {
		return nil, err
	}

	rt, err := s.restaurantRepo.GetByID(restaurantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error loading restaurant %d: %v", restaurantID, err)
		return nil, apperrors.Internal("could not check availability")
	}

	now := time.Now()
	loc := utils.LoadLocation(rt.Timezone)
	if err := ValidateBookingDate(date, loc, now); err != nil {
		return nil, err
	}

	tables, err := s.restaurantRepo.ListTables(restaurantID)
	if err != nil {
		log.Printf("Error listing tables for restaurant %d: %v", restaurantID, err)
		return nil, apperrors.Internal("could not check availability")
	}

	open, err := utils.CombineDateClock(date, rt.OpenTime, loc)
	if err != nil {
		return nil, apperrors.Internal("restaurant has invalid opening hours")
	}
	close, err := utils.CombineDateClock(date, rt.CloseTime, loc)
	if err != nil {
		return nil, apperrors.Internal("restaurant has invalid opening hours")
	}
	dining := time.Duration(rt.DiningMinutes) * time.Minute

	// A booking blocks a slot when they are less than one dining duration
	// apart, so anything in [open-dining, close) can matter.
	booked, err := s.reservationRepo.GetDayBookings(restaurantID, open.Add(-dining), close)
	if err != nil {
		log.Printf("Error loading bookings for restaurant %d on %s: %v", restaurantID, date, err)
		return nil, apperrors.Internal("could not check availability")
	}

	slots, err := ComputeSlots(rt, tables, booked, date, partySize, now)
	if err != nil {
		return nil, apperrors.Internal(err.Error())
	}

	response := &entities.AvailabilityResponse{
		RestaurantID: restaurantID,
		Date:         date,
		PartySize:    partySize,
		Slots:        slots,
		FetchedAt:    now.UTC(),
	}
	if !response.HasBookableSlot() {
		response.Message = "No tables available on this date for your party size. Try another date or a smaller party."
	}
	return response, nil
}

// ComputeSlots builds the slot grid from open to the last seating (closing time
// minus one dining duration), stepped by the restaurant's slot length. Slots
// already past "now" are dropped when the date is today in the restaurant's
// timezone. Each slot counts the tables that seat the party and have no booking
// within one dining duration either side.
func ComputeSlots(rt *db.Restaurant, tables []db.Table, booked []repository.BookedSlot, date string, partySize int, now time.Time) ([]entities.AvailabilitySlot, error) {
	if rt.SlotMinutes <= 0 || rt.DiningMinutes <= 0 {
		return nil, fmt.Errorf("restaurant %d has invalid slot configuration", rt.ID)
	}

	loc := utils.LoadLocation(rt.Timezone)
	open, err := utils.CombineDateClock(date, rt.OpenTime, loc)
	if err != nil {
		return nil, err
	}
	close, err := utils.CombineDateClock(date, rt.CloseTime, loc)
	if err != nil {
		return nil, err
	}

	step := time.Duration(rt.SlotMinutes) * time.Minute
	dining := time.Duration(rt.DiningMinutes) * time.Minute
	lastSeating := close.Add(-dining)

	var fitting []db.Table
	for _, t := range tables {
		if t.Seats >= partySize {
			fitting = append(fitting, t)
		}
	}

	bookingsByTable := make(map[int][]time.Time)
	for _, b := range booked {
		bookingsByTable[b.TableID] = append(bookingsByTable[b.TableID], b.Time)
	}

	isToday := utils.SameCivilDate(now, open, loc)

	var slots []entities.AvailabilitySlot
	for t := open; !t.After(lastSeating); t = t.Add(step) {
		if isToday && t.Before(now) {
			continue
		}

		free := 0
		for _, table := range fitting {
			if tableFreeAt(bookingsByTable[table.ID], t, dining) {
				free++
			}
		}
		slots = append(slots, entities.AvailabilitySlot{
			Time:           t.Format(utils.ClockLayout),
			Available:      free > 0,
			SeatsAvailable: free,
		})
	}
	return slots, nil
}

// tableFreeAt reports whether no existing booking on the table lands within one
// dining duration of the candidate start.
func tableFreeAt(bookings []time.Time, at time.Time, dining time.Duration) bool {
	for _, b := range bookings {
		if b.After(at.Add(-dining)) && b.Before(at.Add(dining)) {
			return false
		}
	}
	return true
}
