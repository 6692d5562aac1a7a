package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/session"
)

// Add appends a pin at the end of the route.
func (h *SessionHandler) Add(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req dto.PinRequest
	if !decodeStrict(w, r, &req) {
		return
	}
	pin, ok := pinFromRequest(req)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid coordinate")
		return
	}

	if err := s.AddPin(r.Context(), pin); err != nil {
		writePinError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(s.View()))
}

// Insert places a pin into the closest leg of the existing route.
func (h *SessionHandler) Insert(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req dto.PinRequest
	if !decodeStrict(w, r, &req) {
		return
	}
	pin, ok := pinFromRequest(req)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid coordinate")
		return
	}

	if err := s.InsertPin(r.Context(), pin); err != nil {
		writePinError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(s.View()))
}

// Remove deletes one pin by index.
func (h *SessionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid pin index")
		return
	}

	if err := s.RemovePin(r.Context(), index); err != nil {
		writePinError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(s.View()))
}

// Move repositions one pin, as after a marker drag.
func (h *SessionHandler) Move(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid pin index")
		return
	}
	var req dto.PinRequest
	if !decodeStrict(w, r, &req) {
		return
	}
	pin, ok := pinFromRequest(req)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid coordinate")
		return
	}

	if err := s.MovePin(r.Context(), index, pin); err != nil {
		writePinError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(s.View()))
}

// Clear removes every pin.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	s.Clear(r.Context())
	writeJSON(w, r, http.StatusOK, sessionResponse(s.View()))
}

// FetchAddress forces one pin's reverse lookup, used by the per-entry retry
// control.
func (h *SessionHandler) FetchAddress(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid pin index")
		return
	}

	if err := s.FetchAddress(r.Context(), index, true); err != nil {
		if errors.Is(err, session.ErrIndexOutOfRange) {
			writeError(w, r, http.StatusBadRequest, "pin index out of range")
			return
		}
		writeError(w, r, http.StatusBadGateway, "address lookup failed")
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(s.View()))
}

func writePinError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrPinLimit):
		writeError(w, r, http.StatusConflict, "pin limit of "+strconv.Itoa(domain.MaxPins)+" reached")
	case errors.Is(err, session.ErrIndexOutOfRange):
		writeError(w, r, http.StatusBadRequest, "pin index out of range")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
