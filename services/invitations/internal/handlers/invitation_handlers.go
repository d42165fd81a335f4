package handlers

import (
	"net/http"

	"github.com/cris-imc/invitaciones-sub002/pkg/auth"
	"github.com/cris-imc/invitaciones-sub002/pkg/response"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/theme"
)

// CreateInvitation creates an invitation, owned by the caller when a host
// token is present.
func (h *Handlers) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvitationInput
	if !decodeJSON(w, r, &req) {
		return
	}

	inv, err := h.invitations.Create(r.Context(), auth.HostID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, inv)
}

// ListInvitations lists the caller's invitations, or all of them for
// anonymous requests.
func (h *Handlers) ListInvitations(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	list, err := h.invitations.List(r.Context(), auth.HostID(r.Context()), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := invitationID(w, r)
	if !ok {
		return
	}
	inv, err := h.invitations.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, inv)
}

func (h *Handlers) UpdateInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := invitationID(w, r)
	if !ok {
		return
	}
	var patch domain.InvitationPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	inv, err := h.invitations.Update(r.Context(), id, &patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, inv)
}

type themeResponse struct {
	Theme theme.Theme `json:"theme"`
	CSS   string      `json:"css"`
	// FontURL is empty when the fallback font stack is in use.
	FontURL string `json:"fontUrl"`
}

func newThemeResponse(t theme.Theme) themeResponse {
	return themeResponse{Theme: t, CSS: t.CSS(), FontURL: t.FontURL()}
}

// GetTheme returns the resolved theme and its CSS variable block.
func (h *Handlers) GetTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := invitationID(w, r)
	if !ok {
		return
	}
	t, err := h.invitations.Theme(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, newThemeResponse(t))
}

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := invitationID(w, r)
	if !ok {
		return
	}
	d, err := h.invitations.Dashboard(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, d)
}
