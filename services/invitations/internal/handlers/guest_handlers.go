package handlers

import (
	"net/http"

	"github.com/cris-imc/invitaciones-sub002/pkg/response"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
)

func (h *Handlers) ListGuests(w http.ResponseWriter, r *http.Request) {
	id, ok := invitationID(w, r)
	if !ok {
		return
	}
	guests, err := h.guests.List(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, guests)
}

// CreateGuest adds a guest and returns it with the personal link.
func (h *Handlers) CreateGuest(w http.ResponseWriter, r *http.Request) {
	id, ok := invitationID(w, r)
	if !ok {
		return
	}
	var req domain.GuestInput
	if !decodeJSON(w, r, &req) {
		return
	}

	guest, err := h.gate.CreateGuest(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, guest)
}

func (h *Handlers) UpdateGuest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "guestId")
	if !ok {
		response.BadRequest(w, "Invalid guest ID")
		return
	}
	var patch domain.GuestPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	guest, err := h.guests.Update(r.Context(), id, &patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, guest)
}

func (h *Handlers) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "guestId")
	if !ok {
		response.BadRequest(w, "Invalid guest ID")
		return
	}
	if err := h.guests.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

// CreateRSVP records an RSVP that did not come through a personal link.
func (h *Handlers) CreateRSVP(w http.ResponseWriter, r *http.Request) {
	var req domain.RSVPInput
	if !decodeJSON(w, r, &req) {
		return
	}
	rsvp, err := h.gate.SubmitRSVP(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, rsvp)
}

func (h *Handlers) ListRSVPs(w http.ResponseWriter, r *http.Request) {
	id, ok := invitationID(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)
	filter := domain.RSVPFilter{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("attendance"); raw != "" {
		a, ok := domain.ParseAttendance(raw)
		if !ok {
			response.BadRequest(w, "Invalid attendance parameter")
			return
		}
		filter.Attendance = &a
	}

	list, err := h.rsvps.List(r.Context(), id, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}
