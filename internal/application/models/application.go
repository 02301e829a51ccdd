package models

import (
	"time"

	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
)

// Status is the approval axis of an application.
//
// Transitions: PENDING -> SUCCESSFUL | UNSUCCESSFUL (manager decision);
// SUCCESSFUL -> BOOKED (officer books a unit). UNSUCCESSFUL and BOOKED are
// terminal on this axis.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusSuccessful   Status = "SUCCESSFUL"
	StatusUnsuccessful Status = "UNSUCCESSFUL"
	StatusBooked       Status = "BOOKED"
)

// ParseStatus validates a stored status token.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusSuccessful, StatusUnsuccessful, StatusBooked:
		return Status(raw), nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown application status %q", raw)
	}
}

// WithdrawalStatus is the withdrawal axis, orthogonal to Status but
// cross-checked at booking and display time.
type WithdrawalStatus string

const (
	WithdrawalNone     WithdrawalStatus = "NONE"
	WithdrawalPending  WithdrawalStatus = "PENDING"
	WithdrawalApproved WithdrawalStatus = "APPROVED"
	WithdrawalRejected WithdrawalStatus = "REJECTED"
)

// ParseWithdrawalStatus validates a stored withdrawal status token.
func ParseWithdrawalStatus(raw string) (WithdrawalStatus, error) {
	switch WithdrawalStatus(raw) {
	case WithdrawalNone, WithdrawalPending, WithdrawalApproved, WithdrawalRejected:
		return WithdrawalStatus(raw), nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown withdrawal status %q", raw)
	}
}

// EffectiveStatusWithdrawn is what displays show once a withdrawal is approved.
const EffectiveStatusWithdrawn = "WITHDRAWN"

// Application is the aggregate root for one applicant's flat application.
// Applications are never deleted, only status-transitioned. The applicant and
// project are referenced by identity and resolved through their stores.
//
// Invariants:
//   - Status transitions follow the machine documented on Status
//   - Withdrawal transitions: NONE|REJECTED -> PENDING -> APPROVED|REJECTED
//   - An APPROVED withdrawal permanently blocks booking
type Application struct {
	ID            domain.ApplicationID
	ApplicantNRIC domain.NRIC
	ProjectID     domain.ProjectID
	FlatType      domain.FlatType
	Status        Status
	Withdrawal    WithdrawalStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New constructs a freshly submitted application.
func New(id domain.ApplicationID, applicant domain.NRIC, projectID domain.ProjectID, ft domain.FlatType, now time.Time) *Application {
	return &Application{
		ID:            id,
		ApplicantNRIC: applicant,
		ProjectID:     projectID,
		FlatType:      ft,
		Status:        StatusPending,
		Withdrawal:    WithdrawalNone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Active reports whether the application still blocks a new submission.
// Only UNSUCCESSFUL frees the applicant to reapply; BOOKED does not.
func (a *Application) Active() bool {
	return a.Status != StatusUnsuccessful
}

// CanDecide checks that a manager decision is still possible.
func (a *Application) CanDecide() error {
	if a.Status != StatusPending {
		return dErrors.Newf(dErrors.CodeRuleViolation, "application is %s, not PENDING", a.Status)
	}
	return nil
}

// ApplyDecision records the manager's verdict.
// Call CanDecide first.
func (a *Application) ApplyDecision(approve bool, now time.Time) {
	if approve {
		a.Status = StatusSuccessful
	} else {
		a.Status = StatusUnsuccessful
	}
	a.UpdatedAt = now
}

// CanBook checks that an officer may book a unit against this application:
// it must be SUCCESSFUL and must not carry an approved withdrawal.
func (a *Application) CanBook() error {
	if a.Withdrawal == WithdrawalApproved {
		return dErrors.New(dErrors.CodeRuleViolation, "application has been withdrawn")
	}
	if a.Status != StatusSuccessful {
		return dErrors.Newf(dErrors.CodeRuleViolation, "application is %s, not SUCCESSFUL", a.Status)
	}
	return nil
}

// ApplyBooking marks the unit as booked.
// Call CanBook first; the unit decrement happens in the project store's
// critical section, never here.
func (a *Application) ApplyBooking(now time.Time) {
	a.Status = StatusBooked
	a.UpdatedAt = now
}

// CanRequestWithdrawal checks that a withdrawal request may be raised.
func (a *Application) CanRequestWithdrawal() error {
	switch a.Withdrawal {
	case WithdrawalPending:
		return dErrors.New(dErrors.CodeRuleViolation, "a withdrawal request is already pending")
	case WithdrawalApproved:
		return dErrors.New(dErrors.CodeRuleViolation, "application has already been withdrawn")
	}
	return nil
}

// ApplyWithdrawalRequest raises the request.
// Call CanRequestWithdrawal first.
func (a *Application) ApplyWithdrawalRequest(now time.Time) {
	a.Withdrawal = WithdrawalPending
	a.UpdatedAt = now
}

// CanDecideWithdrawal checks that a withdrawal decision is still possible.
func (a *Application) CanDecideWithdrawal() error {
	if a.Withdrawal != WithdrawalPending {
		return dErrors.Newf(dErrors.CodeRuleViolation, "withdrawal is %s, not PENDING", a.Withdrawal)
	}
	return nil
}

// ApplyWithdrawalDecision records the manager's verdict on the request.
// Approving leaves Status untouched: a withdrawn BOOKED application stays
// BOOKED underneath and the reserved unit is not returned to the pool.
// EffectiveStatus is what callers display.
func (a *Application) ApplyWithdrawalDecision(approve bool, now time.Time) {
	if approve {
		a.Withdrawal = WithdrawalApproved
	} else {
		a.Withdrawal = WithdrawalRejected
	}
	a.UpdatedAt = now
}

// EffectiveStatus is the display status: an approved withdrawal dominates the
// approval axis.
func (a *Application) EffectiveStatus() string {
	if a.Withdrawal == WithdrawalApproved {
		return EffectiveStatusWithdrawn
	}
	return string(a.Status)
}

// Clone returns a copy so store snapshots stay isolated from callers.
func (a *Application) Clone() *Application {
	clone := *a
	return &clone
}
