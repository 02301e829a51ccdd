package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"btoflow/internal/party"
	"btoflow/internal/platform/middleware"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger        *slog.Logger
	Validator     middleware.TokenValidator
	Auth          AuthService
	Applications  ApplicationService
	Projects      ProjectService
	Registrations RegistrationService
	Enquiries     EnquiryService
	Reports       ReportService
}

// NewRouter builds the API router: request plumbing on everything, bearer
// auth on everything except login and health.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	authHandler := NewAuthHandler(deps.Auth)
	authHandler.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		authHandler.Register(r)
		NewApplicationHandler(deps.Applications).Register(r)
		NewProjectHandler(deps.Projects).Register(r)
		NewRegistrationHandler(deps.Registrations).Register(r)
		NewEnquiryHandler(deps.Enquiries).Register(r)
		NewReportHandler(deps.Reports).Register(r)
	})

	return r
}

func requireRole(roles ...party.Role) func(http.Handler) http.Handler {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return middleware.RequireRole(names...)
}
