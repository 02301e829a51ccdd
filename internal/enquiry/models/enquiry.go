// Package models defines applicant enquiries about projects.
package models

import (
	"strings"
	"time"

	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
)

// Status tracks whether staff have answered an enquiry.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusReplied Status = "REPLIED"
)

// ParseStatus validates a stored status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusReplied:
		return Status(s), nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown enquiry status %q", s)
	}
}

// Enquiry is a free-text question an applicant raises against a project.
type Enquiry struct {
	ID            domain.EnquiryID
	ApplicantNRIC domain.NRIC
	ProjectID     domain.ProjectID
	Question      string
	Reply         string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New returns a PENDING enquiry.
func New(id domain.EnquiryID, applicant domain.NRIC, projectID domain.ProjectID, question string, now time.Time) (*Enquiry, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "enquiry question must not be empty")
	}
	return &Enquiry{
		ID:            id,
		ApplicantNRIC: applicant,
		ProjectID:     projectID,
		Question:      question,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// OwnedBy reports whether the applicant raised this enquiry.
func (e *Enquiry) OwnedBy(nric domain.NRIC) bool {
	return e.ApplicantNRIC == nric
}

// CanEdit checks that the owner may still rewrite the question. Replied
// enquiries are frozen so the answer keeps its context.
func (e *Enquiry) CanEdit(actor domain.NRIC) error {
	if !e.OwnedBy(actor) {
		return dErrors.New(dErrors.CodeForbidden, "only the enquiry owner may edit it")
	}
	if e.Status != StatusPending {
		return dErrors.New(dErrors.CodeRuleViolation, "enquiry has been replied to and can no longer be edited")
	}
	return nil
}

// ApplyEdit replaces the question. Callers must check CanEdit first.
func (e *Enquiry) ApplyEdit(question string, now time.Time) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return dErrors.New(dErrors.CodeValidation, "enquiry question must not be empty")
	}
	e.Question = question
	e.UpdatedAt = now
	return nil
}

// CanDelete checks that the owner may remove the enquiry. Same freeze rule
// as editing.
func (e *Enquiry) CanDelete(actor domain.NRIC) error {
	if !e.OwnedBy(actor) {
		return dErrors.New(dErrors.CodeForbidden, "only the enquiry owner may delete it")
	}
	if e.Status != StatusPending {
		return dErrors.New(dErrors.CodeRuleViolation, "enquiry has been replied to and can no longer be deleted")
	}
	return nil
}

// CanReply checks that the enquiry still awaits an answer.
func (e *Enquiry) CanReply() error {
	if e.Status != StatusPending {
		return dErrors.New(dErrors.CodeRuleViolation, "enquiry has already been replied to")
	}
	return nil
}

// ApplyReply records the staff answer and closes the enquiry.
func (e *Enquiry) ApplyReply(reply string, now time.Time) error {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return dErrors.New(dErrors.CodeValidation, "reply must not be empty")
	}
	e.Reply = reply
	e.Status = StatusReplied
	e.UpdatedAt = now
	return nil
}

// Clone returns a copy safe to hand across store boundaries.
func (e *Enquiry) Clone() *Enquiry {
	clone := *e
	return &clone
}
