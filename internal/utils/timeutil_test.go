package utils

import (
	"testing"
	"time"
)

func TestCombineDateClock(t *testing.T) {
	east := time.FixedZone("UTC+2", 2*60*60)

	at, err := CombineDateClock("2026-05-01", "19:30", east)
	if err != nil {
		t.Fatalf("CombineDateClock failed: %v", err)
	}
	want := time.Date(2026, 5, 1, 17, 30, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("expected %s, got %s", want, at.UTC())
	}

	if _, err := CombineDateClock("01/05/2026", "19:30", east); err == nil {
		t.Fatal("expected an error for a malformed date")
	}
	if _, err := CombineDateClock("2026-05-01", "7pm", east); err == nil {
		t.Fatal("expected an error for a malformed time")
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("19:30")
	if err != nil {
		t.Fatalf("ParseClock failed: %v", err)
	}
	if h != 19 || m != 30 {
		t.Fatalf("expected 19:30, got %d:%d", h, m)
	}
	if _, _, err := ParseClock("25:99"); err == nil {
		t.Fatal("expected an error for an impossible time")
	}
}

func TestSameCivilDate(t *testing.T) {
	a := time.Date(2026, 5, 1, 23, 30, 0, 0, time.UTC)
	b := time.Date(2026, 5, 2, 0, 30, 0, 0, time.UTC)

	if SameCivilDate(a, b, time.UTC) {
		t.Fatal("expected different days in UTC")
	}
	// At UTC+2 both instants land on May 2.
	east := time.FixedZone("UTC+2", 2*60*60)
	if !SameCivilDate(a, b, east) {
		t.Fatal("expected the same day at UTC+2")
	}
}

func TestLoadLocation(t *testing.T) {
	if loc := LoadLocation(""); loc != time.UTC {
		t.Fatalf("expected UTC for an empty name, got %v", loc)
	}
	if loc := LoadLocation("Mars/Olympus"); loc != time.UTC {
		t.Fatalf("expected UTC for an unknown name, got %v", loc)
	}
	if loc := LoadLocation("UTC"); loc != time.UTC {
		t.Fatalf("expected UTC, got %v", loc)
	}
}
