package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"btoflow/internal/party"
	"btoflow/internal/report"
	"btoflow/internal/transport/http/shared"
	"btoflow/pkg/domain"
)

// ReportService is the slice of the report generator the handler needs.
type ReportService interface {
	Bookings(ctx context.Context, filter report.Filter) ([]report.Row, error)
}

// ReportHandler serves the manager's booking report.
type ReportHandler struct {
	reports ReportService
}

func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Register mounts the report routes.
func (h *ReportHandler) Register(r chi.Router) {
	r.With(requireRole(party.RoleManager)).Get("/reports/bookings", h.handleBookings)
}

type reportRowView struct {
	ApplicantNRIC string `json:"applicant_nric"`
	ApplicantName string `json:"applicant_name"`
	Age           int    `json:"age"`
	MaritalStatus string `json:"marital_status"`
	FlatType      string `json:"flat_type"`
	ProjectID     string `json:"project_id"`
	ProjectName   string `json:"project_name"`
	Neighborhood  string `json:"neighborhood"`
	Withdrawn     bool   `json:"withdrawn"`
}

func (h *ReportHandler) handleBookings(w http.ResponseWriter, r *http.Request) {
	var filter report.Filter
	query := r.URL.Query()
	if raw := query.Get("marital_status"); raw != "" {
		status, err := domain.ParseMaritalStatus(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		filter.MaritalStatus = status
	}
	if raw := query.Get("flat_type"); raw != "" {
		ft, err := domain.ParseFlatType(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		filter.FlatType = ft
	}
	if raw := query.Get("project_id"); raw != "" {
		id, err := domain.ParseProjectID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		filter.ProjectID = id
	}

	rows, err := h.reports.Bookings(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	views := make([]reportRowView, 0, len(rows))
	for _, row := range rows {
		views = append(views, reportRowView{
			ApplicantNRIC: row.ApplicantNRIC.String(),
			ApplicantName: row.ApplicantName,
			Age:           row.Age,
			MaritalStatus: row.MaritalStatus.String(),
			FlatType:      row.FlatType.String(),
			ProjectID:     row.ProjectID.String(),
			ProjectName:   row.ProjectName,
			Neighborhood:  row.Neighborhood,
			Withdrawn:     row.Withdrawn,
		})
	}
	shared.WriteJSON(w, http.StatusOK, views)
}
