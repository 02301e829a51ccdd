// Package party models the three kinds of people in the system as a closed sum
// type. Role-keyed dynamic dispatch from the legacy design is replaced by a
// sealed interface plus type switches, and credential handling is expressed as
// capability interfaces implemented by every variant.
package party

import (
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/secrets"
)

// Role names a Party variant.
type Role string

const (
	RoleApplicant Role = "applicant"
	RoleOfficer   Role = "officer"
	RoleManager   Role = "manager"
)

// Party is the sealed sum over {Applicant, Officer, Manager}.
// The unexported method keeps the set of variants closed to this package.
type Party interface {
	NRIC() domain.NRIC
	Name() string
	Role() Role
	sealed()
}

// CredentialVerifier is the capability of checking a login password.
type CredentialVerifier interface {
	VerifyPassword(password string) error
}

// PasswordChanger is the capability of rotating a login password.
type PasswordChanger interface {
	ChangePassword(current, next string) error
}

// Identity carries the fields common to every variant.
type Identity struct {
	ID            domain.NRIC
	FullName      string
	Age           int
	MaritalStatus domain.MaritalStatus
	PasswordHash  string
}

func (i *Identity) NRIC() domain.NRIC { return i.ID }
func (i *Identity) Name() string      { return i.FullName }

// VerifyPassword implements CredentialVerifier.
func (i *Identity) VerifyPassword(password string) error {
	return secrets.Verify(password, i.PasswordHash)
}

// ChangePassword implements PasswordChanger. The current password must verify
// before the hash is replaced.
func (i *Identity) ChangePassword(current, next string) error {
	if err := i.VerifyPassword(current); err != nil {
		return err
	}
	if len(next) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	hash, err := secrets.Hash(next)
	if err != nil {
		return err
	}
	i.PasswordHash = hash
	return nil
}

// Applicant may hold at most one non-terminal application at a time;
// ApplicationID is nil when no application is active.
type Applicant struct {
	Identity
	ApplicationID *domain.ApplicationID
}

func (a *Applicant) Role() Role { return RoleApplicant }
func (a *Applicant) sealed()    {}

// HasActiveApplication reports whether an application reference is held.
// Whether that application is actually non-terminal must be read through the
// application store; the reference is cleared when one turns UNSUCCESSFUL.
func (a *Applicant) HasActiveApplication() bool { return a.ApplicationID != nil }

// LinkApplication attaches a newly submitted application.
func (a *Applicant) LinkApplication(id domain.ApplicationID) error {
	if a.ApplicationID != nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "applicant already holds an application")
	}
	a.ApplicationID = &id
	return nil
}

// UnlinkApplication releases the reference once the application is terminal.
func (a *Applicant) UnlinkApplication() {
	a.ApplicationID = nil
}

// Officer handles projects once a registration is approved. Officers are also
// eligible applicants in their own right, so they carry the same identity data.
type Officer struct {
	Identity
}

func (o *Officer) Role() Role { return RoleOfficer }
func (o *Officer) sealed()    {}

// Manager owns projects and arbitrates application, withdrawal, and
// registration decisions.
type Manager struct {
	Identity
}

func (m *Manager) Role() Role { return RoleManager }
func (m *Manager) sealed()    {}

var (
	_ CredentialVerifier = (*Applicant)(nil)
	_ PasswordChanger    = (*Applicant)(nil)
	_ Party              = (*Applicant)(nil)
	_ Party              = (*Officer)(nil)
	_ Party              = (*Manager)(nil)
)
