package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"btoflow/internal/party"
	projmodels "btoflow/internal/project/models"
	projservice "btoflow/internal/project/service"
	"btoflow/internal/transport/http/shared"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/requestcontext"
)

// ProjectService is the slice of project administration the handler needs.
type ProjectService interface {
	Create(ctx context.Context, params projservice.CreateParams) (*projmodels.Project, error)
	SetVisibility(ctx context.Context, actor domain.NRIC, id domain.ProjectID, visible bool) (*projmodels.Project, error)
	SetFlatType(ctx context.Context, actor domain.NRIC, id domain.ProjectID, ft domain.FlatType, units int, price float64) (*projmodels.Project, error)
	Delete(ctx context.Context, actor domain.NRIC, id domain.ProjectID) error
	Get(ctx context.Context, id domain.ProjectID) (*projmodels.Project, error)
	ListOpen(ctx context.Context, now time.Time) ([]*projmodels.Project, error)
	ListAll(ctx context.Context) ([]*projmodels.Project, error)
}

// ProjectHandler serves the project administration and browsing endpoints.
type ProjectHandler struct {
	projects ProjectService
}

func NewProjectHandler(projects ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Register mounts the project routes.
func (h *ProjectHandler) Register(r chi.Router) {
	r.Get("/projects", h.handleList)
	r.Get("/projects/{projectID}", h.handleGet)
	r.With(requireRole(party.RoleManager)).Post("/projects", h.handleCreate)
	r.With(requireRole(party.RoleManager)).Put("/projects/{projectID}/visibility", h.handleSetVisibility)
	r.With(requireRole(party.RoleManager)).Put("/projects/{projectID}/flat-types", h.handleSetFlatType)
	r.With(requireRole(party.RoleManager)).Delete("/projects/{projectID}", h.handleDelete)
}

type flatTypeView struct {
	Units int     `json:"units"`
	Price float64 `json:"price"`
}

type projectView struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Neighborhood string                  `json:"neighborhood"`
	FlatTypes    map[string]flatTypeView `json:"flat_types"`
	OpensAt      string                  `json:"opens_at"`
	ClosesAt     string                  `json:"closes_at"`
	ManagerID    string                  `json:"manager_id"`
	OfficerSlot  int                     `json:"officer_slot"`
	Officers     []string                `json:"officers"`
	Visible      bool                    `json:"visible"`
}

const dateLayout = "2006-01-02"

func viewProject(p *projmodels.Project) projectView {
	flats := make(map[string]flatTypeView, len(p.Units))
	for ft, units := range p.Units {
		flats[ft.String()] = flatTypeView{Units: units, Price: p.Prices[ft]}
	}
	officers := make([]string, 0, len(p.OfficerIDs))
	for _, nric := range p.OfficerIDs {
		officers = append(officers, nric.String())
	}
	return projectView{
		ID:           p.ID.String(),
		Name:         p.Name,
		Neighborhood: p.Neighborhood,
		FlatTypes:    flats,
		OpensAt:      p.OpensAt.Format(dateLayout),
		ClosesAt:     p.ClosesAt.Format(dateLayout),
		ManagerID:    p.ManagerID.String(),
		OfficerSlot:  p.OfficerSlot,
		Officers:     officers,
		Visible:      p.Visible,
	}
}

// handleList shows applicants only the open, visible listings; staff see
// everything.
func (h *ProjectHandler) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		projects []*projmodels.Project
		err      error
	)
	if requestcontext.ActorRole(r.Context()) == string(party.RoleApplicant) {
		projects, err = h.projects.ListOpen(r.Context(), requestcontext.Now(r.Context()))
	} else {
		projects, err = h.projects.ListAll(r.Context())
	}
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, viewProject(p))
	}
	shared.WriteJSON(w, http.StatusOK, views)
}

func (h *ProjectHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	p, err := h.projects.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, viewProject(p))
}

type createProjectRequest struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Neighborhood string                  `json:"neighborhood"`
	OpensAt      string                  `json:"opens_at"`
	ClosesAt     string                  `json:"closes_at"`
	OfficerSlot  int                     `json:"officer_slot"`
	FlatTypes    map[string]flatTypeView `json:"flat_types"`
}

func (h *ProjectHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	id, err := domain.ParseProjectID(req.ID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	opensAt, err := time.Parse(dateLayout, req.OpensAt)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "opens_at must be YYYY-MM-DD"))
		return
	}
	closesAt, err := time.Parse(dateLayout, req.ClosesAt)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "closes_at must be YYYY-MM-DD"))
		return
	}

	units := make(map[domain.FlatType]int, len(req.FlatTypes))
	prices := make(map[domain.FlatType]float64, len(req.FlatTypes))
	for raw, flat := range req.FlatTypes {
		ft, err := domain.ParseFlatType(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		units[ft] = flat.Units
		prices[ft] = flat.Price
	}

	p, err := h.projects.Create(r.Context(), projservice.CreateParams{
		ID:           id,
		Name:         req.Name,
		Neighborhood: req.Neighborhood,
		OpensAt:      opensAt,
		ClosesAt:     closesAt,
		ManagerID:    actorNRIC(r),
		OfficerSlot:  req.OfficerSlot,
		Units:        units,
		Prices:       prices,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, viewProject(p))
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}

func (h *ProjectHandler) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	p, err := h.projects.SetVisibility(r.Context(), actorNRIC(r), id, req.Visible)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, viewProject(p))
}

type setFlatTypeRequest struct {
	FlatType string  `json:"flat_type"`
	Units    int     `json:"units"`
	Price    float64 `json:"price"`
}

func (h *ProjectHandler) handleSetFlatType(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req setFlatTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	ft, err := domain.ParseFlatType(req.FlatType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	p, err := h.projects.SetFlatType(r.Context(), actorNRIC(r), id, ft, req.Units, req.Price)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, viewProject(p))
}

func (h *ProjectHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.projects.Delete(r.Context(), actorNRIC(r), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
