// Package httptransport is the thin HTTP layer over the workflow services.
// Handlers decode, delegate, and encode; business rules live in the services.
package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"btoflow/internal/party"
	"btoflow/internal/transport/http/shared"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
)

//go:generate mockgen -source=handlers_auth.go -destination=mocks/auth-mocks.go -package=mocks AuthService

// AuthService is the slice of the auth service the handler needs.
type AuthService interface {
	Login(ctx context.Context, nric domain.NRIC, password string) (party.Party, string, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, nric domain.NRIC, current, next string) error
}

// AuthHandler serves login, logout, and password rotation.
type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterPublic mounts the routes that need no bearer token.
func (h *AuthHandler) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
}

// Register mounts the authenticated routes.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/logout", h.handleLogout)
	r.Post("/auth/password", h.handleChangePassword)
}

type loginRequest struct {
	NRIC     string `json:"nric"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	nric, err := domain.ParseNRIC(req.NRIC)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	p, token, err := h.auth.Login(r.Context(), nric, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, loginResponse{
		Token: token,
		Role:  string(p.Role()),
		Name:  p.Name(),
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.auth.Logout(r.Context(), token); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	Current string `json:"current_password"`
	Next    string `json:"new_password"`
}

func (h *AuthHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.auth.ChangePassword(r.Context(), actorNRIC(r), req.Current, req.Next); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
