package middleware

import (
	"net/http"
	"time"

	"btoflow/pkg/requestcontext"
)

// RequestTime pins one timestamp per request so every mutation within the
// request observes the same clock reading.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
