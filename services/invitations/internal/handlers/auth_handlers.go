package handlers

import (
	"net/http"

	"github.com/cris-imc/invitaciones-sub002/pkg/response"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, user.ToUserInfo())
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, res)
}
