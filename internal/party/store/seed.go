package store

import (
	"context"

	"btoflow/internal/party"
	"btoflow/pkg/domain"
	"btoflow/pkg/secrets"
)

// Bootstrap is the store surface seeding needs.
type Bootstrap interface {
	ListManagers(ctx context.Context) ([]*party.Manager, error)
	CreateApplicant(ctx context.Context, a *party.Applicant) error
	CreateOfficer(ctx context.Context, o *party.Officer) error
	CreateManager(ctx context.Context, m *party.Manager) error
}

// SeedBootstrapParties creates one account per role on a fresh installation
// so the console is usable before anyone imports real data. The default
// password for all three is "password".
func SeedBootstrapParties(ctx context.Context, s Bootstrap) error {
	managers, err := s.ListManagers(ctx)
	if err != nil {
		return err
	}
	if len(managers) > 0 {
		return nil
	}

	hash, err := secrets.Hash("password")
	if err != nil {
		return err
	}
	identity := func(nric, name string, age int, marital domain.MaritalStatus) party.Identity {
		return party.Identity{
			ID:            domain.NRIC(nric),
			FullName:      name,
			Age:           age,
			MaritalStatus: marital,
			PasswordHash:  hash,
		}
	}

	if err := s.CreateManager(ctx, &party.Manager{
		Identity: identity("S9876543C", "Default Manager", 45, domain.MaritalStatusMarried),
	}); err != nil {
		return err
	}
	if err := s.CreateOfficer(ctx, &party.Officer{
		Identity: identity("T7654321B", "Default Officer", 30, domain.MaritalStatusSingle),
	}); err != nil {
		return err
	}
	return s.CreateApplicant(ctx, &party.Applicant{
		Identity: identity("S1234567A", "Default Applicant", 36, domain.MaritalStatusSingle),
	})
}
