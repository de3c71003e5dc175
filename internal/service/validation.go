package service

import (
	"fmt"
	"net/mail"
	"time"

	"tavolo/internal/entities"
	apperrors "tavolo/internal/errors"
	"tavolo/internal/utils"
)

const (
	maxNameLen            = 100
	maxSpecialRequestsLen = 500
	maxDietaryChoices     = 10
)

// Occasions offered by the guest-details step. Empty means none selected.
var occasionTypes = map[string]bool{
	"birthday":    true,
	"anniversary": true,
	"date":        true,
	"business":    true,
	"celebration": true,
	"other":       true,
}

func ValidatePartySize(partySize int) error {
	if partySize < 1 || partySize > MaxPartySize {
		return apperrors.Validation(fmt.Sprintf("party size must be between 1 and %d", MaxPartySize))
	}
	return nil
}

// ValidateBookingDate checks the civil date format and the booking window
// [today, today+MaxAdvanceDays], both judged in the restaurant's timezone.
func ValidateBookingDate(date string, loc *time.Location, now time.Time) error {
	if _, err := utils.ParseDate(date); err != nil {
		return apperrors.Validation(err.Error())
	}
	today := now.In(loc).Format(utils.DateLayout)
	lastDay := now.In(loc).AddDate(0, 0, MaxAdvanceDays).Format(utils.DateLayout)
	if date < today {
		return apperrors.Validation("date is in the past")
	}
	if date > lastDay {
		return apperrors.Validation(fmt.Sprintf("date is more than %d days ahead", MaxAdvanceDays))
	}
	return nil
}

// ValidateGuestDetails checks the step-three payload: contact block, optional
// occasion and requests, and the terms checkbox.
func ValidateGuestDetails(guest entities.GuestContact, occasion, specialRequests string, dietary []string, acceptTerms bool) error {
	if guest.FirstName == "" || guest.LastName == "" {
		return apperrors.Validation("first and last name are required")
	}
	if len(guest.FirstName) > maxNameLen || len(guest.LastName) > maxNameLen {
		return apperrors.Validation("name is too long")
	}
	if _, err := mail.ParseAddress(guest.Email); err != nil {
		return apperrors.Validation("a valid email address is required")
	}
	if !validPhone(utils.NormalizePhone(guest.Phone)) {
		return apperrors.Validation("a valid phone number is required")
	}
	if occasion != "" && !occasionTypes[occasion] {
		return apperrors.Validation(fmt.Sprintf("unknown occasion type %q", occasion))
	}
	if len(specialRequests) > maxSpecialRequestsLen {
		return apperrors.Validation(fmt.Sprintf("special requests must be at most %d characters", maxSpecialRequestsLen))
	}
	if len(dietary) > maxDietaryChoices {
		return apperrors.Validation("too many dietary restrictions")
	}
	for _, d := range dietary {
		if d == "" || len(d) > maxNameLen {
			return apperrors.Validation("invalid dietary restriction")
		}
	}
	if !acceptTerms {
		return apperrors.Validation("the terms must be accepted before booking")
	}
	return nil
}

// validPhone accepts an optional leading + followed by 7 to 15 digits.
func validPhone(p string) bool {
	if len(p) > 0 && p[0] == '+' {
		p = p[1:]
	}
	if len(p) < 7 || len(p) > 15 {
		return false
	}
	for _, c := range p {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
