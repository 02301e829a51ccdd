package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"btoflow/pkg/requestcontext"
)

const requestIDHeader = "X-Request-Id"

// RequestID assigns each request a unique ID, honoring one supplied by the
// caller, and echoes it back in the response headers. Services read it through
// requestcontext.RequestID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
