package handlers

import (
	"log"
	"math"
	"net/http"

	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/session"
	"route-planner-service/internal/share"
)

// SessionHandler serves session lifecycle and state endpoints. Session
// mutation endpoints all answer with the fresh session state, so clients
// never need a follow-up read.
type SessionHandler struct {
	Store *session.Store
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := h.Store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "session not found")
	}
	return s, ok
}

// Create starts a new empty session.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.Store.Create()
	writeJSON(w, r, http.StatusCreated, sessionResponse(s.View()))
}

// Get returns the current session state.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(s.View()))
}

// Undo reverts the session to the previous snapshot.
func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if !s.Undo(r.Context()) {
		writeError(w, r, http.StatusConflict, "nothing to undo")
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(s.View()))
}

// SetRoundTrip toggles the return-to-start leg.
func (h *SessionHandler) SetRoundTrip(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req dto.ToggleRequest
	if !decodeStrict(w, r, &req) {
		return
	}
	s.SetRoundTrip(r.Context(), req.Enabled)
	writeJSON(w, r, http.StatusOK, sessionResponse(s.View()))
}

// SetSteepHighlight toggles the steep overlay flag.
func (h *SessionHandler) SetSteepHighlight(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req dto.ToggleRequest
	if !decodeStrict(w, r, &req) {
		return
	}
	s.SetSteepHighlight(r.Context(), req.Enabled)
	writeJSON(w, r, http.StatusOK, sessionResponse(s.View()))
}

// SetRouteName applies or clears the user's name override.
func (h *SessionHandler) SetRouteName(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req dto.RouteNameRequest
	if !decodeStrict(w, r, &req) {
		return
	}
	name, truncated := s.SetRouteName(req.Name)
	writeJSON(w, r, http.StatusOK, dto.RouteNameResponse{Name: name, Truncated: truncated})
}

// RetryAddresses re-issues reverse lookups for failed entries.
func (h *SessionHandler) RetryAddresses(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	s.RetryFailedAddresses(r.Context())
	writeJSON(w, r, http.StatusAccepted, sessionResponse(s.View()))
}

// Restore creates a new session from a share fragment. A fragment that does
// not decode is reported, not applied.
func (h *SessionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req dto.RestoreRequest
	if !decodeStrict(w, r, &req) {
		return
	}

	state, err := share.Decode(req.Fragment)
	if err != nil {
		log.Printf("op=restore err=%v", err)
		writeError(w, r, http.StatusBadRequest, "share link could not be decoded")
		return
	}

	s := h.Store.Create()
	s.Restore(r.Context(), state.Pins, state.IsRoundTrip, state.ShowSteepHighlight)
	writeJSON(w, r, http.StatusCreated, sessionResponse(s.View()))
}

func sessionResponse(v session.View) dto.SessionResponse {
	res := dto.SessionResponse{
		ID:                 v.ID,
		Pins:               make([]dto.PinResponse, 0, len(v.Pins)),
		Addresses:          make([]dto.AddressResponse, 0, len(v.Addresses)),
		IsRoundTrip:        v.IsRoundTrip,
		ShowSteepHighlight: v.ShowSteepHighlight,
		RouteName:          v.RouteName,
		NameOverridden:     v.NameOverridden,
		CanUndo:            v.CanUndo,
		Computing:          v.Computing,
	}
	for _, p := range v.Pins {
		res.Pins = append(res.Pins, dto.PinResponse{Lat: p.Lat, Lng: p.Lng})
	}
	for _, a := range v.Addresses {
		res.Addresses = append(res.Addresses, dto.AddressResponse{Status: string(a.Status), Address: a.Address})
	}
	if v.ComputeErr != nil {
		res.RouteError = "route calculation failed"
	}
	return res
}

func pinFromRequest(req dto.PinRequest) (domain.Pin, bool) {
	if math.IsNaN(req.Lat) || math.IsNaN(req.Lng) || !validCoordinate(req.Lat, req.Lng) {
		return domain.Pin{}, false
	}
	return domain.Pin{Lat: req.Lat, Lng: req.Lng}, true
}
