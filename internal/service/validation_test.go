package service

import (
	"strings"
	"testing"
	"time"

	"tavolo/internal/entities"
)

func TestValidatePartySize(t *testing.T) {
	if err := ValidatePartySize(1); err != nil {
		t.Fatalf("expected party of 1 to pass: %v", err)
	}
	if err := ValidatePartySize(MaxPartySize); err != nil {
		t.Fatalf("expected party of %d to pass: %v", MaxPartySize, err)
	}
	if err := ValidatePartySize(0); err == nil {
		t.Fatal("expected party of 0 to fail")
	}
	if err := ValidatePartySize(MaxPartySize + 1); err == nil {
		t.Fatalf("expected party of %d to fail", MaxPartySize+1)
	}
}

func TestValidateBookingDate(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	if err := ValidateBookingDate("2026-03-15", time.UTC, now); err != nil {
		t.Fatalf("expected today to pass: %v", err)
	}
	if err := ValidateBookingDate("2026-06-13", time.UTC, now); err != nil {
		t.Fatalf("expected day 90 to pass: %v", err)
	}
	if err := ValidateBookingDate("2026-03-14", time.UTC, now); err == nil {
		t.Fatal("expected yesterday to fail")
	}
	if err := ValidateBookingDate("2026-06-14", time.UTC, now); err == nil {
		t.Fatal("expected day 91 to fail")
	}
	if err := ValidateBookingDate("15-03-2026", time.UTC, now); err == nil {
		t.Fatal("expected a malformed date to fail")
	}
}

func TestValidateBookingDate_UsesRestaurantTimezone(t *testing.T) {
	// 23:30 UTC on March 15 is already March 16 at UTC+2; booking March 15
	// there is booking the past.
	now := time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC)
	east := time.FixedZone("UTC+2", 2*60*60)

	if err := ValidateBookingDate("2026-03-15", east, now); err == nil {
		t.Fatal("expected the local yesterday to fail")
	}
	if err := ValidateBookingDate("2026-03-16", east, now); err != nil {
		t.Fatalf("expected the local today to pass: %v", err)
	}
}

func TestValidateGuestDetails(t *testing.T) {
	guest := validGuest()

	if err := ValidateGuestDetails(guest, "birthday", "quiet corner", []string{"vegan"}, true); err != nil {
		t.Fatalf("expected valid details to pass: %v", err)
	}

	missing := guest
	missing.FirstName = ""
	if err := ValidateGuestDetails(missing, "", "", nil, true); err == nil {
		t.Fatal("expected a missing first name to fail")
	}

	badEmail := guest
	badEmail.Email = "not-an-address"
	if err := ValidateGuestDetails(badEmail, "", "", nil, true); err == nil {
		t.Fatal("expected a malformed email to fail")
	}

	badPhone := guest
	badPhone.Phone = "12345"
	if err := ValidateGuestDetails(badPhone, "", "", nil, true); err == nil {
		t.Fatal("expected a short phone number to fail")
	}

	spaced := guest
	spaced.Phone = "+1 555 010 0123"
	if err := ValidateGuestDetails(spaced, "", "", nil, true); err != nil {
		t.Fatalf("expected a spaced phone number to pass: %v", err)
	}

	if err := ValidateGuestDetails(guest, "chrismukkah", "", nil, true); err == nil {
		t.Fatal("expected an unknown occasion to fail")
	}
	if err := ValidateGuestDetails(guest, "", strings.Repeat("x", maxSpecialRequestsLen+1), nil, true); err == nil {
		t.Fatal("expected oversized special requests to fail")
	}
	if err := ValidateGuestDetails(guest, "", "", make([]string, maxDietaryChoices+1), true); err == nil {
		t.Fatal("expected too many dietary restrictions to fail")
	}
	if err := ValidateGuestDetails(guest, "", "", nil, false); err == nil {
		t.Fatal("expected unaccepted terms to fail")
	}
}

func TestValidPhone(t *testing.T) {
	valid := []string{"+15550100123", "5550100", "442079460958"}
	for _, p := range valid {
		if !validPhone(p) {
			t.Fatalf("expected %q to be valid", p)
		}
	}
	invalid := []string{"123456", "phone number", "+1234567890123456", "555-0100"}
	for _, p := range invalid {
		if validPhone(p) {
			t.Fatalf("expected %q to be invalid", p)
		}
	}
}

func TestValidateRestaurantRequest(t *testing.T) {
	base := entities.RestaurantRequest{
		Name:          "Trattoria Da Mario",
		Slug:          "trattoria-da-mario",
		OpenTime:      "18:00",
		CloseTime:     "22:00",
		SlotMinutes:   30,
		DiningMinutes: 90,
	}
	if err := validateRestaurantRequest(&base); err != nil {
		t.Fatalf("expected a valid request to pass: %v", err)
	}

	req := base
	req.Slug = "Trattoria Da Mario"
	if err := validateRestaurantRequest(&req); err == nil {
		t.Fatal("expected an invalid slug to fail")
	}

	req = base
	req.CloseTime = "17:00"
	if err := validateRestaurantRequest(&req); err == nil {
		t.Fatal("expected closing before opening to fail")
	}

	req = base
	req.SlotMinutes = 10
	if err := validateRestaurantRequest(&req); err == nil {
		t.Fatal("expected a 10 minute slot length to fail")
	}

	req = base
	req.DiningMinutes = 10
	if err := validateRestaurantRequest(&req); err == nil {
		t.Fatal("expected a 10 minute dining duration to fail")
	}

	req = base
	req.Timezone = "Mars/Olympus"
	if err := validateRestaurantRequest(&req); err == nil {
		t.Fatal("expected an unknown timezone to fail")
	}
}
