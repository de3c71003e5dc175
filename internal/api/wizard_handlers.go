package api

import (
	"encoding/json"
	"net/http"

	apperrors "tavolo/internal/errors"
	"tavolo/internal/service"

	"github.com/gorilla/mux"
)

type WizardHandler struct {
	Service *service.WizardService
}

func NewWizardHandler(svc *service.WizardService) *WizardHandler {
	return &WizardHandler{Service: svc}
}

func (h *WizardHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	session, err := h.Service.StartSession(r.Context(), req.RestaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *WizardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeWizard(w, session, nil, nil)
}

func (h *WizardHandler) SetDateParty(w http.ResponseWriter, r *http.Request) {
	var req DatePartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	session, err := h.Service.SetDateParty(r.Context(), mux.Vars(r)["id"], req.Date, req.PartySize)
	writeWizard(w, session, nil, err)
}

func (h *WizardHandler) SetTime(w http.ResponseWriter, r *http.Request) {
	var req TimeSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	session, err := h.Service.SetTime(r.Context(), mux.Vars(r)["id"], req.Time)
	writeWizard(w, session, nil, err)
}

func (h *WizardHandler) SetGuestDetails(w http.ResponseWriter, r *http.Request) {
	var req GuestDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}
	session, err := h.Service.SetGuestDetails(r.Context(), mux.Vars(r)["id"],
		req.Guest, req.OccasionType, req.SpecialRequests, req.DietaryRestrictions, req.AcceptTerms)
	writeWizard(w, session, nil, err)
}

func (h *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, reservation, err := h.Service.Submit(r.Context(), mux.Vars(r)["id"])
	writeWizard(w, session, reservation, err)
}

func (h *WizardHandler) Previous(w http.ResponseWriter, r *http.Request) {
	session, err := h.Service.Previous(r.Context(), mux.Vars(r)["id"])
	writeWizard(w, session, nil, err)
}

func (h *WizardHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Abandon(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking abandoned"})
}
