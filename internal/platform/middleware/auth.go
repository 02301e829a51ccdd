package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"btoflow/pkg/domain"
	"btoflow/pkg/requestcontext"
)

// TokenValidator checks a bearer token and returns the acting party.
type TokenValidator interface {
	ValidateToken(tokenString string) (domain.NRIC, string, error)
}

// RequireAuth rejects requests without a valid bearer token and injects the
// acting party into the request context.
func RequireAuth(validator TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			nric, role, err := validator.ValidateToken(token)
			if err != nil {
				log.WarnContext(r.Context(), "rejected token",
					"error", err.Error(),
					"request_id", requestcontext.RequestID(r.Context()),
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			ctx := requestcontext.WithActor(r.Context(), nric, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated callers whose role is not in the allow list.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[requestcontext.ActorRole(r.Context())]; !ok {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
