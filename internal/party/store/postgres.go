package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"btoflow/internal/party"
	"btoflow/pkg/domain"
	"btoflow/pkg/platform/sentinel"
)

// Postgres persists parties in a single table with a role discriminator.
// Decoding pattern-matches the role back onto the sum type.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed party store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const partyColumns = "nric, role, name, age, marital_status, password_hash, application_id"

func (s *Postgres) insert(ctx context.Context, role party.Role, ident party.Identity, appID sql.NullString) error {
	query := `
		INSERT INTO parties (nric, role, name, age, marital_status, password_hash, application_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		ident.ID.String(), string(role), ident.FullName, ident.Age,
		string(ident.MaritalStatus), ident.PasswordHash, appID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert party: %w", err)
	}
	return nil
}

func (s *Postgres) CreateApplicant(ctx context.Context, a *party.Applicant) error {
	return s.insert(ctx, party.RoleApplicant, a.Identity, applicationIDParam(a.ApplicationID))
}

func (s *Postgres) CreateOfficer(ctx context.Context, o *party.Officer) error {
	return s.insert(ctx, party.RoleOfficer, o.Identity, sql.NullString{})
}

func (s *Postgres) CreateManager(ctx context.Context, m *party.Manager) error {
	return s.insert(ctx, party.RoleManager, m.Identity, sql.NullString{})
}

func applicationIDParam(id *domain.ApplicationID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

type partyRow struct {
	nric          string
	role          string
	name          string
	age           int
	maritalStatus string
	passwordHash  string
	applicationID sql.NullString
}

func (s *Postgres) findRow(ctx context.Context, nric domain.NRIC) (partyRow, error) {
	var row partyRow
	err := s.db.QueryRowContext(ctx,
		"SELECT "+partyColumns+" FROM parties WHERE nric = $1", nric.String(),
	).Scan(&row.nric, &row.role, &row.name, &row.age, &row.maritalStatus, &row.passwordHash, &row.applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return partyRow{}, sentinel.ErrNotFound
		}
		return partyRow{}, fmt.Errorf("find party: %w", err)
	}
	return row, nil
}

func toIdentity(row partyRow) (party.Identity, error) {
	nric, err := domain.ParseNRIC(row.nric)
	if err != nil {
		return party.Identity{}, err
	}
	marital, err := domain.ParseMaritalStatus(row.maritalStatus)
	if err != nil {
		return party.Identity{}, err
	}
	return party.Identity{
		ID:            nric,
		FullName:      row.name,
		Age:           row.age,
		MaritalStatus: marital,
		PasswordHash:  row.passwordHash,
	}, nil
}

func toParty(row partyRow) (party.Party, error) {
	ident, err := toIdentity(row)
	if err != nil {
		return nil, err
	}
	switch party.Role(row.role) {
	case party.RoleApplicant:
		a := &party.Applicant{Identity: ident}
		if row.applicationID.Valid {
			appID, err := domain.ParseApplicationID(row.applicationID.String)
			if err != nil {
				return nil, err
			}
			a.ApplicationID = &appID
		}
		return a, nil
	case party.RoleOfficer:
		return &party.Officer{Identity: ident}, nil
	case party.RoleManager:
		return &party.Manager{Identity: ident}, nil
	default:
		return nil, fmt.Errorf("unknown party role %q", row.role)
	}
}

func (s *Postgres) FindParty(ctx context.Context, nric domain.NRIC) (party.Party, error) {
	row, err := s.findRow(ctx, nric)
	if err != nil {
		return nil, err
	}
	return toParty(row)
}

func (s *Postgres) FindApplicant(ctx context.Context, nric domain.NRIC) (*party.Applicant, error) {
	p, err := s.FindParty(ctx, nric)
	if err != nil {
		return nil, err
	}
	a, ok := p.(*party.Applicant)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return a, nil
}

func (s *Postgres) FindOfficer(ctx context.Context, nric domain.NRIC) (*party.Officer, error) {
	p, err := s.FindParty(ctx, nric)
	if err != nil {
		return nil, err
	}
	o, ok := p.(*party.Officer)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return o, nil
}

func (s *Postgres) FindManager(ctx context.Context, nric domain.NRIC) (*party.Manager, error) {
	p, err := s.FindParty(ctx, nric)
	if err != nil {
		return nil, err
	}
	m, ok := p.(*party.Manager)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return m, nil
}

func (s *Postgres) UpdateApplicant(ctx context.Context, a *party.Applicant) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE parties
		SET name = $2, age = $3, marital_status = $4, password_hash = $5, application_id = $6
		WHERE nric = $1 AND role = $7
	`, a.ID.String(), a.FullName, a.Age, string(a.MaritalStatus), a.PasswordHash,
		applicationIDParam(a.ApplicationID), string(party.RoleApplicant))
	if err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}
	return requireOneRow(result)
}

func (s *Postgres) UpdateParty(ctx context.Context, p party.Party) error {
	if a, ok := p.(*party.Applicant); ok {
		return s.UpdateApplicant(ctx, a)
	}
	var ident party.Identity
	switch v := p.(type) {
	case *party.Officer:
		ident = v.Identity
	case *party.Manager:
		ident = v.Identity
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE parties
		SET name = $2, age = $3, marital_status = $4, password_hash = $5
		WHERE nric = $1
	`, ident.ID.String(), ident.FullName, ident.Age, string(ident.MaritalStatus), ident.PasswordHash)
	if err != nil {
		return fmt.Errorf("update party: %w", err)
	}
	return requireOneRow(result)
}

func requireOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListApplicants(ctx context.Context) ([]*party.Applicant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+partyColumns+" FROM parties WHERE role = $1 ORDER BY nric", string(party.RoleApplicant))
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	defer rows.Close()

	var out []*party.Applicant
	for rows.Next() {
		var row partyRow
		if err := rows.Scan(&row.nric, &row.role, &row.name, &row.age, &row.maritalStatus, &row.passwordHash, &row.applicationID); err != nil {
			return nil, fmt.Errorf("scan applicant: %w", err)
		}
		p, err := toParty(row)
		if err != nil {
			return nil, err
		}
		if a, ok := p.(*party.Applicant); ok {
			out = append(out, a)
		}
	}
	return out, rows.Err()
}
