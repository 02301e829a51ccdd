// Package models defines officer registration records and their transitions.
package models

import (
	"time"

	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
)

// Status is the registration review state.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ParseStatus validates a stored status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown registration status %q", s)
	}
}

// Registration is an officer's request to join a project team. Approval is
// what grants project-officer powers; the registration itself grants nothing.
type Registration struct {
	ID          domain.RegistrationID
	OfficerNRIC domain.NRIC
	ProjectID   domain.ProjectID
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New returns a PENDING registration.
func New(id domain.RegistrationID, officer domain.NRIC, projectID domain.ProjectID, now time.Time) *Registration {
	return &Registration{
		ID:          id,
		OfficerNRIC: officer,
		ProjectID:   projectID,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Pending reports whether the registration still awaits a verdict.
func (r *Registration) Pending() bool {
	return r.Status == StatusPending
}

// CanDecide checks that the registration is still open for a verdict.
// Decisions are final: an approved or rejected registration never changes.
func (r *Registration) CanDecide() error {
	if r.Status != StatusPending {
		return dErrors.Newf(dErrors.CodeRuleViolation, "registration is %s, not PENDING", r.Status)
	}
	return nil
}

// ApplyDecision records the manager's verdict. Callers must check CanDecide
// first.
func (r *Registration) ApplyDecision(approve bool, now time.Time) {
	if approve {
		r.Status = StatusApproved
	} else {
		r.Status = StatusRejected
	}
	r.UpdatedAt = now
}

// Clone returns a copy safe to hand across store boundaries.
func (r *Registration) Clone() *Registration {
	clone := *r
	return &clone
}
