package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckAvailability_RejectsBadQuery(t *testing.T) {
	h := NewAvailabilityHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/availability?restaurant_id=abc&date=2026-09-10&party_size=2", nil)
	rw := httptest.NewRecorder()
	h.CheckAvailability(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad restaurant_id, got %d", rw.Code)
	}

	reqParty := httptest.NewRequest(http.MethodGet, "/api/availability?restaurant_id=1&date=2026-09-10&party_size=many", nil)
	rwParty := httptest.NewRecorder()
	h.CheckAvailability(rwParty, reqParty)
	if rwParty.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad party_size, got %d", rwParty.Code)
	}
}
