package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/render"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/service"
)

const rsvpThanks = "¡Gracias! Tu respuesta quedó registrada."

// PublicPage renders the shareable invitation page without guest context.
func (h *Handlers) PublicPage(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invitations.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writePageError(w, r, err)
		return
	}
	page := render.InvitationPage{
		Invitation: inv,
		Theme:      inv.ResolvedTheme(),
		Photos:     h.approvedPhotos(r.Context(), inv),
	}
	h.writePage(w, r, page)
}

// GuestPage renders the personalized view behind a guest link.
func (h *Handlers) GuestPage(w http.ResponseWriter, r *http.Request) {
	view, ok := h.resolveGuest(w, r)
	if !ok {
		return
	}
	h.writePage(w, r, h.guestPage(r, view))
}

// GuestRSVP takes the RSVP form from the personalized view and renders the
// view again with the outcome.
func (h *Handlers) GuestRSVP(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "invitationId")
	if !ok {
		h.writePageError(w, r, domain.NotFound("Invitation"))
		return
	}
	token := chi.URLParam(r, "token")

	if err := r.ParseForm(); err != nil {
		h.writePageError(w, r, domain.Invalid("", "invalid form"))
		return
	}
	in := &domain.RSVPInput{
		Name:       r.PostFormValue("name"),
		Email:      r.PostFormValue("email"),
		Phone:      r.PostFormValue("phone"),
		Attendance: domain.Attendance(r.PostFormValue("attendance")),
		Message:    r.PostFormValue("message"),
	}
	if raw := strings.TrimSpace(r.PostFormValue("companions")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = -1
		}
		in.Companions = &n
	}

	view, _, err := h.gate.SubmitGuestRSVP(r.Context(), id, token, in)
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		view, ok := h.resolveGuest(w, r)
		if !ok {
			return
		}
		page := h.guestPage(r, view)
		page.Error = ve.Error()
		h.writePage(w, r, page)
		return
	}
	if err != nil {
		h.writePageError(w, r, err)
		return
	}

	page := h.guestPage(r, view)
	page.Notice = rsvpThanks
	h.writePage(w, r, page)
}

func (h *Handlers) resolveGuest(w http.ResponseWriter, r *http.Request) (*service.GuestView, bool) {
	id, ok := parseID(r, "invitationId")
	if !ok {
		h.writePageError(w, r, domain.NotFound("Invitation"))
		return nil, false
	}
	view, err := h.gate.Resolve(r.Context(), id, chi.URLParam(r, "token"))
	if err != nil {
		h.writePageError(w, r, err)
		return nil, false
	}
	return view, true
}

func (h *Handlers) guestPage(r *http.Request, view *service.GuestView) render.InvitationPage {
	return render.InvitationPage{
		Invitation: view.Invitation,
		Guest:      view.Guest,
		Theme:      view.Theme,
		Photos:     h.approvedPhotos(r.Context(), view.Invitation),
		RSVPAction: fmt.Sprintf("/invite/%d/%s/rsvp", view.Invitation.ID, view.Guest.Token),
	}
}

// approvedPhotos is best effort; a failing album never breaks the page.
func (h *Handlers) approvedPhotos(ctx context.Context, inv *domain.Invitation) []domain.Photo {
	if !inv.ResolvedTheme().Features.Gallery {
		return nil
	}
	album, err := h.albums.Photos(ctx, inv.Slug)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load album for page", "error", err, "invitation_id", inv.ID)
		return nil
	}
	return album.Photos
}

func (h *Handlers) writePage(w http.ResponseWriter, r *http.Request, page render.InvitationPage) {
	if err := h.pages.Invitation(w, page); err != nil {
		h.writePageError(w, r, err)
	}
}

// writePageError is the HTML counterpart of writeServiceError.
func (h *Handlers) writePageError(w http.ResponseWriter, r *http.Request, err error) {
	var renderErr error
	switch {
	case errors.Is(err, domain.ErrUnauthorizedAccess):
		logger.InfoContext(r.Context(), "Guest link denied", "invitation_id", chi.URLParam(r, "invitationId"))
		renderErr = h.pages.Denied(w)
	case errors.Is(err, domain.ErrNotFound):
		renderErr = h.pages.NotFound(w)
	default:
		logger.ErrorContext(r.Context(), "Page request failed", "error", err, "path", r.URL.Path)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if renderErr != nil {
		logger.ErrorContext(r.Context(), "Failed to render error page", "error", renderErr)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
