// Package audit captures an append-only trail of lifecycle decisions.
package audit

import (
	"context"
	"time"

	"btoflow/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Actor     domain.NRIC
	Action    string
	Subject   string
	Decision  string
	Reason    string
}

// Actions recorded by the workflow services.
const (
	ActionApplicationSubmitted = "application.submitted"
	ActionApplicationDecided   = "application.decided"
	ActionApplicationBooked    = "application.booked"
	ActionWithdrawalRequested  = "withdrawal.requested"
	ActionWithdrawalDecided    = "withdrawal.decided"
	ActionRegistrationCreated  = "registration.created"
	ActionRegistrationDecided  = "registration.decided"
)

// Store is the persistence sink for events.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

func (p *Publisher) List(ctx context.Context) ([]Event, error) {
	return p.store.List(ctx)
}
