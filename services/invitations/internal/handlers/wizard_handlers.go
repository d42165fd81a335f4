package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cris-imc/invitaciones-sub002/pkg/auth"
	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
	"github.com/cris-imc/invitaciones-sub002/pkg/response"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/theme"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/wizard"
)

type wizardResponse struct {
	State   *wizard.State `json:"state"`
	Steps   []wizard.Step `json:"steps"`
	Preview theme.Theme   `json:"preview"`
}

func (h *Handlers) writeWizard(w http.ResponseWriter, r *http.Request, state *wizard.State) {
	if err := h.wizard.Save(w, r, state); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, wizardResponse{State: state, Steps: wizard.Steps, Preview: state.Preview()})
}

func (h *Handlers) GetWizard(w http.ResponseWriter, r *http.Request) {
	state := h.wizard.Load(r)
	response.WriteJSON(w, http.StatusOK, wizardResponse{State: state, Steps: wizard.Steps, Preview: state.Preview()})
}

// ApplyWizardStep stores the body as the payload of {step}.
func (h *Handlers) ApplyWizardStep(w http.ResponseWriter, r *http.Request) {
	step, ok := wizard.ParseStep(chi.URLParam(r, "step"))
	if !ok {
		response.NotFound(w, "Unknown wizard step")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	state := h.wizard.Load(r)
	if err := state.Apply(step, json.RawMessage(body)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeWizard(w, r, state)
}

func (h *Handlers) WizardBack(w http.ResponseWriter, r *http.Request) {
	state := h.wizard.Load(r)
	state.Back()
	h.writeWizard(w, r, state)
}

func (h *Handlers) ResetWizard(w http.ResponseWriter, r *http.Request) {
	if err := h.wizard.Clear(w, r); err != nil {
		logger.ErrorContext(r.Context(), "Failed to clear wizard session", "error", err)
		response.InternalError(w, "Internal server error")
		return
	}
	state := &wizard.State{}
	response.WriteJSON(w, http.StatusOK, wizardResponse{State: state, Steps: wizard.Steps, Preview: state.Preview()})
}

func (h *Handlers) PreviewWizard(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, newThemeResponse(h.wizard.Load(r).Preview()))
}

// SubmitWizard creates the invitation and clears the wizard.
func (h *Handlers) SubmitWizard(w http.ResponseWriter, r *http.Request) {
	state := h.wizard.Load(r)
	in, err := state.ToCreateInput()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	inv, err := h.invitations.Create(r.Context(), auth.HostID(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.wizard.Clear(w, r); err != nil {
		logger.WarnContext(r.Context(), "Failed to clear wizard session", "error", err, "invitation_id", inv.ID)
	}
	response.WriteJSON(w, http.StatusCreated, inv)
}
