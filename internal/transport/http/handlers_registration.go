package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"btoflow/internal/party"
	regmodels "btoflow/internal/registration/models"
	"btoflow/internal/transport/http/shared"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
)

// RegistrationService is the slice of the registration gate the handler needs.
type RegistrationService interface {
	Register(ctx context.Context, officerNRIC domain.NRIC, projectID domain.ProjectID) (*regmodels.Registration, error)
	Decide(ctx context.Context, id domain.RegistrationID, approve bool) (*regmodels.Registration, error)
	ListForProject(ctx context.Context, projectID domain.ProjectID) ([]*regmodels.Registration, error)
	ListForOfficer(ctx context.Context, officer domain.NRIC) ([]*regmodels.Registration, error)
}

// RegistrationHandler serves the officer registration endpoints.
type RegistrationHandler struct {
	registrations RegistrationService
}

func NewRegistrationHandler(registrations RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// Register mounts the registration routes.
func (h *RegistrationHandler) Register(r chi.Router) {
	r.With(requireRole(party.RoleOfficer)).Post("/registrations", h.handleRegister)
	r.With(requireRole(party.RoleOfficer)).Get("/registrations/mine", h.handleListMine)
	r.With(requireRole(party.RoleManager)).Post("/registrations/{registrationID}/decision", h.handleDecide)
	r.With(requireRole(party.RoleManager)).Get("/projects/{projectID}/registrations", h.handleListForProject)
}

type registrationView struct {
	ID          string `json:"id"`
	OfficerNRIC string `json:"officer_nric"`
	ProjectID   string `json:"project_id"`
	Status      string `json:"status"`
}

func viewRegistration(reg *regmodels.Registration) registrationView {
	return registrationView{
		ID:          reg.ID.String(),
		OfficerNRIC: reg.OfficerNRIC.String(),
		ProjectID:   reg.ProjectID.String(),
		Status:      string(reg.Status),
	}
}

type registerRequest struct {
	ProjectID string `json:"project_id"`
}

func (h *RegistrationHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	projectID, err := domain.ParseProjectID(req.ProjectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	reg, err := h.registrations.Register(r.Context(), actorNRIC(r), projectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, viewRegistration(reg))
}

func (h *RegistrationHandler) handleDecide(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	reg, err := h.registrations.Decide(r.Context(), id, req.Approve)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, viewRegistration(reg))
}

func (h *RegistrationHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.ListForOfficer(r.Context(), actorNRIC(r))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	views := make([]registrationView, 0, len(regs))
	for _, reg := range regs {
		views = append(views, viewRegistration(reg))
	}
	shared.WriteJSON(w, http.StatusOK, views)
}

func (h *RegistrationHandler) handleListForProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	regs, err := h.registrations.ListForProject(r.Context(), projectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	views := make([]registrationView, 0, len(regs))
	for _, reg := range regs {
		views = append(views, viewRegistration(reg))
	}
	shared.WriteJSON(w, http.StatusOK, views)
}
