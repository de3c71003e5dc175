package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tavolo/internal/entities"
	apperrors "tavolo/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError maps service errors onto the wire: classified errors keep their
// status and kind, anything else is a plain 500.
func writeError(w http.ResponseWriter, err error) {
	var httpErr *apperrors.HTTPError
	if errors.As(err, &httpErr) {
		writeJSON(w, httpErr.Code, map[string]string{
			"error": httpErr.Message,
			"kind":  string(httpErr.Kind),
		})
		return
	}
	log.Printf("Unclassified error: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal error",
		"kind":  string(apperrors.KindTransport),
	})
}

// writeWizard sends the wizard envelope. Step errors that leave the session
// usable (validation, conflict) carry the session alongside the error so the
// client can re-render the step; everything else degrades to a plain error.
func writeWizard(w http.ResponseWriter, session *entities.BookingSession, reservation *entities.ReservationResponse, err error) {
	if err != nil && session == nil {
		writeError(w, err)
		return
	}

	resp := entities.WizardResponse{Session: session, Reservation: reservation}
	status := http.StatusOK
	if err != nil {
		var httpErr *apperrors.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			resp.Error = httpErr.Message
			resp.ErrorKind = string(httpErr.Kind)
		} else {
			log.Printf("Unclassified wizard error: %v", err)
			status = http.StatusInternalServerError
			resp.Error = "internal error"
			resp.ErrorKind = string(apperrors.KindTransport)
		}
	}
	writeJSON(w, status, resp)
}
