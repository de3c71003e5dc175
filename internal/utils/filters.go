package utils

import "strings"

// Reservation list filters exposed by the diner-facing API.
const (
	FilterAll      = "all"
	FilterToday    = "today"
	FilterUpcoming = "upcoming"
	FilterPending  = "pending"
)

// ParseReservationFilter normalizes a filter query value. Unknown values map to
// "all" rather than erroring; the filter narrows a list, it is not a command.
func ParseReservationFilter(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case FilterToday:
		return FilterToday
	case FilterUpcoming:
		return FilterUpcoming
	case FilterPending:
		return FilterPending
	default:
		return FilterAll
	}
}

// NormalizePhone trims whitespace and collapses internal spaces so the stored
// value is stable for comparison. E.164 formatting is the caller's concern.
func NormalizePhone(raw string) string {
	fields := strings.Fields(raw)
	return strings.Join(fields, "")
}
