// Package domain defines the typed identifiers and enumerations shared by every
// bounded context. Keeping them in one place prevents accidental cross-assignment
// (an NRIC is not a project ID) and gives parsing a single trust boundary.
package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	dErrors "btoflow/pkg/domain-errors"
)

// NRIC identifies an applicant, officer, or manager.
type NRIC string

var nricPattern = regexp.MustCompile(`^[STFG]\d{7}[A-Z]$`)

// ParseNRIC validates and normalizes an NRIC token.
func ParseNRIC(raw string) (NRIC, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "nric is required")
	}
	if !nricPattern.MatchString(raw) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "nric must match the form S1234567A")
	}
	return NRIC(raw), nil
}

func (n NRIC) String() string { return string(n) }

// ProjectID identifies a housing project.
type ProjectID string

// ParseProjectID validates a project identifier.
func ParseProjectID(raw string) (ProjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "project id is required")
	}
	return ProjectID(raw), nil
}

func (p ProjectID) String() string { return string(p) }

// ApplicationID is the globally unique token attached to one application.
type ApplicationID uuid.UUID

// NewApplicationID mints a fresh application identifier.
func NewApplicationID() ApplicationID {
	return ApplicationID(uuid.New())
}

// ParseApplicationID validates an application identifier string.
func ParseApplicationID(raw string) (ApplicationID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ApplicationID{}, dErrors.New(dErrors.CodeInvalidInput, "application id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return ApplicationID{}, dErrors.New(dErrors.CodeInvalidInput, "application id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return ApplicationID{}, dErrors.New(dErrors.CodeInvalidInput, "application id cannot be the nil UUID")
	}
	return ApplicationID(parsed), nil
}

func (a ApplicationID) String() string { return uuid.UUID(a).String() }

// IsZero reports whether the ID is unset.
func (a ApplicationID) IsZero() bool { return uuid.UUID(a) == uuid.Nil }

// EnquiryID identifies an enquiry thread.
type EnquiryID uuid.UUID

// NewEnquiryID mints a fresh enquiry identifier.
func NewEnquiryID() EnquiryID {
	return EnquiryID(uuid.New())
}

// ParseEnquiryID validates an enquiry identifier string.
func ParseEnquiryID(raw string) (EnquiryID, error) {
	raw = strings.TrimSpace(raw)
	parsed, err := uuid.Parse(raw)
	if err != nil || parsed == uuid.Nil {
		return EnquiryID{}, dErrors.New(dErrors.CodeInvalidInput, "enquiry id must be a valid UUID")
	}
	return EnquiryID(parsed), nil
}

func (e EnquiryID) String() string { return uuid.UUID(e).String() }

// RegistrationID is the human-readable officer registration sequence (R0001, R0002, ...).
type RegistrationID string

var registrationPattern = regexp.MustCompile(`^R\d{4,}$`)

// FormatRegistrationID renders the nth registration in sequence form.
func FormatRegistrationID(n int) RegistrationID {
	return RegistrationID(fmt.Sprintf("R%04d", n))
}

// ParseRegistrationID validates a registration identifier string.
func ParseRegistrationID(raw string) (RegistrationID, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if !registrationPattern.MatchString(raw) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "registration id must match the form R0001")
	}
	return RegistrationID(raw), nil
}

func (r RegistrationID) String() string { return string(r) }

// SequenceNumber extracts the numeric part of a registration ID.
// Returns 0 for malformed IDs so callers can treat them as "before the sequence".
func (r RegistrationID) SequenceNumber() int {
	var n int
	if _, err := fmt.Sscanf(string(r), "R%d", &n); err != nil {
		return 0
	}
	return n
}
