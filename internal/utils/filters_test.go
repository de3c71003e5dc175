package utils

import "testing"

func TestParseReservationFilter(t *testing.T) {
	cases := map[string]string{
		"today":      FilterToday,
		" Today ":    FilterToday,
		"UPCOMING":   FilterUpcoming,
		"pending":    FilterPending,
		"":           FilterAll,
		"all":        FilterAll,
		"everything": FilterAll,
	}
	for raw, want := range cases {
		if got := ParseReservationFilter(raw); got != want {
			t.Fatalf("expected %q for %q, got %q", want, raw, got)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	if got := NormalizePhone("+1 555 010 0123"); got != "+15550100123" {
		t.Fatalf("expected +15550100123, got %q", got)
	}
	if got := NormalizePhone("  +44 20 7946 0958 "); got != "+442079460958" {
		t.Fatalf("expected +442079460958, got %q", got)
	}
	if got := NormalizePhone(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
