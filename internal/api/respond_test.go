package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tavolo/internal/entities"
	apperrors "tavolo/internal/errors"
)

func TestWriteError(t *testing.T) {
	rw := httptest.NewRecorder()
	writeError(rw, apperrors.NotFound("restaurant not found"))
	if rw.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rw.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rw.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["kind"] != "not_found" || body["error"] != "restaurant not found" {
		t.Fatalf("unexpected body: %v", body)
	}

	rwPlain := httptest.NewRecorder()
	writeError(rwPlain, errors.New("boom"))
	if rwPlain.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for an unclassified error, got %d", rwPlain.Code)
	}
	if err := json.NewDecoder(rwPlain.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["kind"] != "transport" {
		t.Fatalf("expected transport kind, got %v", body)
	}
}

func TestWriteWizard_StepErrorKeepsSession(t *testing.T) {
	session := &entities.BookingSession{ID: "s-1", State: entities.StateDateParty}

	rw := httptest.NewRecorder()
	writeWizard(rw, session, nil, apperrors.Conflict("no tables left"))
	if rw.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rw.Code)
	}
	var resp entities.WizardResponse
	if err := json.NewDecoder(rw.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Session == nil || resp.Session.ID != "s-1" {
		t.Fatalf("expected the session in the envelope, got %+v", resp.Session)
	}
	if resp.Error != "no tables left" || resp.ErrorKind != "conflict" {
		t.Fatalf("unexpected error fields: %q %q", resp.Error, resp.ErrorKind)
	}
}

func TestWriteWizard_SessionlessErrorDegrades(t *testing.T) {
	rw := httptest.NewRecorder()
	writeWizard(rw, nil, nil, apperrors.NotFound("booking session not found or expired"))
	if rw.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rw.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rw.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["kind"] != "not_found" {
		t.Fatalf("expected a plain error body, got %v", body)
	}
}

func TestWriteWizard_Success(t *testing.T) {
	session := &entities.BookingSession{ID: "s-1", State: entities.StateConfirmed}
	reservation := &entities.ReservationResponse{ID: 41, Code: "9F2C41AB"}

	rw := httptest.NewRecorder()
	writeWizard(rw, session, reservation, nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var resp entities.WizardResponse
	if err := json.NewDecoder(rw.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Reservation == nil || resp.Reservation.Code != "9F2C41AB" {
		t.Fatalf("expected the reservation in the envelope, got %+v", resp.Reservation)
	}
	if resp.Error != "" {
		t.Fatalf("expected no error, got %q", resp.Error)
	}
}
