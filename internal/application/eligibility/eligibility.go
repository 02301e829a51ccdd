// Package eligibility holds the pure decision function gating new
// applications. It has no side effects and no store access: callers resolve
// the applicant's current application and the target project first.
package eligibility

import (
	"errors"

	appmodels "btoflow/internal/application/models"
	"btoflow/internal/party"
	projmodels "btoflow/internal/project/models"
	"btoflow/pkg/domain"
)

// Rejection reasons, checked in order. Services wrap these into domain errors;
// tests and the console match on them directly.
var (
	ErrProjectUnavailable = errors.New("project is not open for applications")
	ErrAlreadyApplied     = errors.New("applicant already holds an active application")
	ErrIneligibleFlatType = errors.New("flat type not allowed for marital status")
	ErrNoUnitsAvailable   = errors.New("no units available for flat type")
)

// CanApply decides whether the applicant may submit for the flat type in the
// project. current is the applicant's existing application, nil if none; a
// terminal UNSUCCESSFUL application does not block reapplication.
//
// Rules, in order:
//  1. project must exist with visibility ON
//  2. applicant must not hold a non-terminal application
//  3. SINGLE applicants may only select TWO_ROOMS; MARRIED applicants may
//     select TWO_ROOMS or THREE_ROOMS
//  4. the selected flat type must have units remaining
func CanApply(applicant *party.Applicant, current *appmodels.Application, project *projmodels.Project, ft domain.FlatType) error {
	if project == nil || !project.Visible {
		return ErrProjectUnavailable
	}
	if current != nil && current.Active() {
		return ErrAlreadyApplied
	}
	if !flatTypeAllowed(applicant.MaritalStatus, ft) {
		return ErrIneligibleFlatType
	}
	if !project.Offers(ft) || project.UnitsFor(ft) <= 0 {
		return ErrNoUnitsAvailable
	}
	return nil
}

func flatTypeAllowed(marital domain.MaritalStatus, ft domain.FlatType) bool {
	switch marital {
	case domain.MaritalStatusSingle:
		return ft == domain.FlatTypeTwoRooms
	case domain.MaritalStatusMarried:
		return ft == domain.FlatTypeTwoRooms || ft == domain.FlatTypeThreeRooms
	default:
		return false
	}
}
