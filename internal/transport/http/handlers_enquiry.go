package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	enqmodels "btoflow/internal/enquiry/models"
	"btoflow/internal/party"
	"btoflow/internal/transport/http/shared"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/requestcontext"
)

// EnquiryService is the slice of the enquiry desk the handler needs.
type EnquiryService interface {
	Submit(ctx context.Context, applicant domain.NRIC, projectID domain.ProjectID, question string) (*enqmodels.Enquiry, error)
	Edit(ctx context.Context, actor domain.NRIC, id domain.EnquiryID, question string) (*enqmodels.Enquiry, error)
	Delete(ctx context.Context, actor domain.NRIC, id domain.EnquiryID) error
	Reply(ctx context.Context, actor domain.NRIC, role party.Role, id domain.EnquiryID, reply string) (*enqmodels.Enquiry, error)
	ListForApplicant(ctx context.Context, nric domain.NRIC) ([]*enqmodels.Enquiry, error)
	ListForProject(ctx context.Context, projectID domain.ProjectID) ([]*enqmodels.Enquiry, error)
}

// EnquiryHandler serves the enquiry desk endpoints.
type EnquiryHandler struct {
	enquiries EnquiryService
}

func NewEnquiryHandler(enquiries EnquiryService) *EnquiryHandler {
	return &EnquiryHandler{enquiries: enquiries}
}

// Register mounts the enquiry routes.
func (h *EnquiryHandler) Register(r chi.Router) {
	r.With(requireRole(party.RoleApplicant)).Post("/enquiries", h.handleSubmit)
	r.With(requireRole(party.RoleApplicant)).Get("/enquiries/mine", h.handleListMine)
	r.With(requireRole(party.RoleApplicant)).Put("/enquiries/{enquiryID}", h.handleEdit)
	r.With(requireRole(party.RoleApplicant)).Delete("/enquiries/{enquiryID}", h.handleDelete)
	r.With(requireRole(party.RoleOfficer, party.RoleManager)).Post("/enquiries/{enquiryID}/reply", h.handleReply)
	r.With(requireRole(party.RoleOfficer, party.RoleManager)).Get("/projects/{projectID}/enquiries", h.handleListForProject)
}

type enquiryView struct {
	ID            string `json:"id"`
	ApplicantNRIC string `json:"applicant_nric"`
	ProjectID     string `json:"project_id"`
	Question      string `json:"question"`
	Reply         string `json:"reply,omitempty"`
	Status        string `json:"status"`
}

func viewEnquiry(e *enqmodels.Enquiry) enquiryView {
	return enquiryView{
		ID:            e.ID.String(),
		ApplicantNRIC: e.ApplicantNRIC.String(),
		ProjectID:     e.ProjectID.String(),
		Question:      e.Question,
		Reply:         e.Reply,
		Status:        string(e.Status),
	}
}

type submitEnquiryRequest struct {
	ProjectID string `json:"project_id"`
	Question  string `json:"question"`
}

func (h *EnquiryHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitEnquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	projectID, err := domain.ParseProjectID(req.ProjectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	e, err := h.enquiries.Submit(r.Context(), actorNRIC(r), projectID, req.Question)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, viewEnquiry(e))
}

type editEnquiryRequest struct {
	Question string `json:"question"`
}

func (h *EnquiryHandler) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseEnquiryID(chi.URLParam(r, "enquiryID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req editEnquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	e, err := h.enquiries.Edit(r.Context(), actorNRIC(r), id, req.Question)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, viewEnquiry(e))
}

func (h *EnquiryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseEnquiryID(chi.URLParam(r, "enquiryID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.enquiries.Delete(r.Context(), actorNRIC(r), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type replyEnquiryRequest struct {
	Reply string `json:"reply"`
}

func (h *EnquiryHandler) handleReply(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseEnquiryID(chi.URLParam(r, "enquiryID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req replyEnquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	role := party.Role(requestcontext.ActorRole(r.Context()))
	e, err := h.enquiries.Reply(r.Context(), actorNRIC(r), role, id, req.Reply)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, viewEnquiry(e))
}

func (h *EnquiryHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.enquiries.ListForApplicant(r.Context(), actorNRIC(r))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	views := make([]enquiryView, 0, len(list))
	for _, e := range list {
		views = append(views, viewEnquiry(e))
	}
	shared.WriteJSON(w, http.StatusOK, views)
}

func (h *EnquiryHandler) handleListForProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	list, err := h.enquiries.ListForProject(r.Context(), projectID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	views := make([]enquiryView, 0, len(list))
	for _, e := range list {
		views = append(views, viewEnquiry(e))
	}
	shared.WriteJSON(w, http.StatusOK, views)
}
