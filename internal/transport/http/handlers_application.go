package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	appmodels "btoflow/internal/application/models"
	"btoflow/internal/party"
	"btoflow/internal/transport/http/shared"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/requestcontext"
)

// ApplicationService is the slice of the lifecycle engine the handler needs.
type ApplicationService interface {
	Submit(ctx context.Context, nric domain.NRIC, projectID domain.ProjectID, ft domain.FlatType) (*appmodels.Application, error)
	Decide(ctx context.Context, id domain.ApplicationID, approve bool) (*appmodels.Application, error)
	Book(ctx context.Context, id domain.ApplicationID) (*appmodels.Application, error)
	CurrentFor(ctx context.Context, nric domain.NRIC) (*appmodels.Application, error)
	ListForProject(ctx context.Context, projectID domain.ProjectID) ([]*appmodels.Application, error)
	RequestWithdrawal(ctx context.Context, nric domain.NRIC) (*appmodels.Application, error)
	DecideWithdrawal(ctx context.Context, id domain.ApplicationID, approve bool) (*appmodels.Application, error)
}

// ApplicationHandler serves the application lifecycle endpoints.
type ApplicationHandler struct {
	applications ApplicationService
}

func NewApplicationHandler(applications ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// Register mounts the application routes. All require authentication; role
// checks are per route.
func (h *ApplicationHandler) Register(r chi.Router) {
	r.With(requireRole(party.RoleApplicant)).Post("/applications", h.handleSubmit)
	r.With(requireRole(party.RoleApplicant)).Get("/applications/current", h.handleCurrent)
	r.With(requireRole(party.RoleApplicant)).Post("/applications/withdrawal", h.handleRequestWithdrawal)
	r.With(requireRole(party.RoleManager)).Post("/applications/{applicationID}/decision", h.handleDecide)
	r.With(requireRole(party.RoleManager)).Post("/applications/{applicationID}/withdrawal-decision", h.handleDecideWithdrawal)
	r.With(requireRole(party.RoleOfficer)).Post("/applications/{applicationID}/booking", h.handleBook)
	r.With(requireRole(party.RoleOfficer, party.RoleManager)).Get("/projects/{projectID}/applications", h.handleListForProject)
}

// applicationView is the JSON shape of an application. Status carries the
// display status, so an approved withdrawal shows WITHDRAWN.
type applicationView struct {
	ID            string `json:"id"`
	ApplicantNRIC string `json:"applicant_nric"`
	ProjectID     string `json:"project_id"`
	FlatType      string `json:"flat_type"`
	Status        string `json:"status"`
	Withdrawal    string `json:"withdrawal_status"`
}

func viewApplication(a *appmodels.Application) applicationView {
	return applicationView{
		ID:            a.ID.String(),
		ApplicantNRIC: a.ApplicantNRIC.String(),
		ProjectID:     a.ProjectID.String(),
		FlatType:      a.FlatType.String(),
		Status:        a.EffectiveStatus(),
		Withdrawal:    string(a.Withdrawal),
	}
}

type submitRequest struct {
	ProjectID string `json:"project_id"`
	FlatType  string `json:"flat_type"`
}

func (h *ApplicationHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	projectID, err := domain.ParseProjectID(req.ProjectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	ft, err := domain.ParseFlatType(req.FlatType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	app, err := h.applications.Submit(r.Context(), actorNRIC(r), projectID, ft)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, viewApplication(app))
}

func (h *ApplicationHandler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	app, err := h.applications.CurrentFor(r.Context(), actorNRIC(r))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, viewApplication(app))
}

type decisionRequest struct {
	Approve bool `json:"approve"`
}

func (h *ApplicationHandler) handleDecide(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.applications.Decide(r.Context(), id, req.Approve)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, viewApplication(app))
}

func (h *ApplicationHandler) handleBook(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	app, err := h.applications.Book(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, viewApplication(app))
}

func (h *ApplicationHandler) handleRequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	app, err := h.applications.RequestWithdrawal(r.Context(), actorNRIC(r))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, viewApplication(app))
}

func (h *ApplicationHandler) handleDecideWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.applications.DecideWithdrawal(r.Context(), id, req.Approve)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, viewApplication(app))
}

func (h *ApplicationHandler) handleListForProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	apps, err := h.applications.ListForProject(r.Context(), projectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	views := make([]applicationView, 0, len(apps))
	for _, a := range apps {
		views = append(views, viewApplication(a))
	}
	shared.WriteJSON(w, http.StatusOK, views)
}

// actorNRIC reads the authenticated party set by the auth middleware.
func actorNRIC(r *http.Request) domain.NRIC {
	return requestcontext.Actor(r.Context())
}
