package httptransport

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"btoflow/internal/party"
	"btoflow/internal/transport/http/mocks"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/requestcontext"
)

func newAuthRouter(t *testing.T) (*mocks.MockAuthService, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockAuthService(ctrl)
	handler := NewAuthHandler(mockService)

	router := chi.NewRouter()
	handler.RegisterPublic(router)
	router.Group(func(r chi.Router) {
		// Stand-in for the auth middleware: fix the acting party.
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := requestcontext.WithActor(req.Context(), "S1234567A", string(party.RoleApplicant))
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		handler.Register(r)
	})
	return mockService, router
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleLogin(t *testing.T) {
	t.Run("valid credentials return token and role", func(t *testing.T) {
		mockService, router := newAuthRouter(t)
		applicant := &party.Applicant{Identity: party.Identity{ID: "S1234567A", FullName: "Jo Tan"}}
		mockService.EXPECT().
			Login(gomock.Any(), domain.NRIC("S1234567A"), "secret").
			Return(applicant, "signed-token", nil)

		rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
			"nric": "S1234567A", "password": "secret",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp loginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "signed-token", resp.Token)
		assert.Equal(t, string(party.RoleApplicant), resp.Role)
		assert.Equal(t, "Jo Tan", resp.Name)
	})

	t.Run("rejected credentials map to 401", func(t *testing.T) {
		mockService, router := newAuthRouter(t)
		mockService.EXPECT().
			Login(gomock.Any(), domain.NRIC("S1234567A"), "wrong").
			Return(nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))

		rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
			"nric": "S1234567A", "password": "wrong",
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed nric rejected before the service is called", func(t *testing.T) {
		_, router := newAuthRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
			"nric": "not-an-nric", "password": "secret",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("storage failure hides the message", func(t *testing.T) {
		mockService, router := newAuthRouter(t)
		mockService.EXPECT().
			Login(gomock.Any(), domain.NRIC("S1234567A"), "secret").
			Return(nil, "", dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeStorage, "failed to load party"))

		rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
			"nric": "S1234567A", "password": "secret",
		})

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		var envelope struct {
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Empty(t, envelope.Message)
	})
}

func TestHandleChangePassword(t *testing.T) {
	t.Run("delegates with the acting party", func(t *testing.T) {
		mockService, router := newAuthRouter(t)
		mockService.EXPECT().
			ChangePassword(gomock.Any(), domain.NRIC("S1234567A"), "old-secret", "new-secret").
			Return(nil)

		rec := doJSON(t, router, http.MethodPost, "/auth/password", map[string]string{
			"current_password": "old-secret", "new_password": "new-secret",
		})

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("short replacement maps to 400", func(t *testing.T) {
		mockService, router := newAuthRouter(t)
		mockService.EXPECT().
			ChangePassword(gomock.Any(), domain.NRIC("S1234567A"), "old-secret", "short").
			Return(dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters"))

		rec := doJSON(t, router, http.MethodPost, "/auth/password", map[string]string{
			"current_password": "old-secret", "new_password": "short",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleLogout(t *testing.T) {
	mockService, router := newAuthRouter(t)
	mockService.EXPECT().Logout(gomock.Any(), "the-token").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer the-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
