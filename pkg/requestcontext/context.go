// Package requestcontext provides transport-independent context accessors for
// request-scoped values. Values are set by HTTP middleware or by the console
// session loop and consumed by services, which stay free of transport imports.
//
// Usage in services (read values):
//
//	actor := requestcontext.Actor(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithActor(ctx, "S1234567A", "manager")
package requestcontext

import (
	"context"
	"time"

	"btoflow/pkg/domain"
)

type (
	actorKey       struct{}
	actorRoleKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Actor retrieves the acting party's NRIC from the context.
// Returns the empty NRIC if not set.
func Actor(ctx context.Context) domain.NRIC {
	if nric, ok := ctx.Value(actorKey{}).(domain.NRIC); ok {
		return nric
	}
	return ""
}

// ActorRole retrieves the acting party's role name from the context.
func ActorRole(ctx context.Context) string {
	if role, ok := ctx.Value(actorRoleKey{}).(string); ok {
		return role
	}
	return ""
}

// WithActor injects the acting party into the context.
func WithActor(ctx context.Context, nric domain.NRIC, role string) context.Context {
	ctx = context.WithValue(ctx, actorKey{}, nric)
	return context.WithValue(ctx, actorRoleKey{}, role)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (console loop, tests, workers).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for keeping one consistent timestamp across a batch operation.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
