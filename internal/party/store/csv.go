package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"btoflow/internal/party"
	"btoflow/internal/storage/csvstore"
	"btoflow/pkg/domain"
)

const (
	applicantsFile = "applicants.csv"
	officersFile   = "officers.csv"
	managersFile   = "managers.csv"
)

var (
	applicantHeader = []string{"nric", "name", "age", "marital_status", "password_hash", "application_id"}
	staffHeader     = []string{"nric", "name", "age", "marital_status", "password_hash"}
)

// CSV is the durable party store for console mode: an in-memory store loaded
// from CSV snapshots, rewriting the affected file after every mutation. A
// failed rewrite rolls the in-memory copy back so the mutation is not
// half-committed.
type CSV struct {
	*InMemory
	dir string
}

// OpenCSV loads the party tables from dir, creating empty ones on first run.
func OpenCSV(dir string) (*CSV, error) {
	s := &CSV{InMemory: NewInMemory(), dir: dir}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CSV) load() error {
	rows, err := csvstore.ReadAll(filepath.Join(s.dir, applicantsFile), len(applicantHeader))
	if err != nil {
		return err
	}
	for _, row := range rows {
		a, err := decodeApplicant(row)
		if err != nil {
			return fmt.Errorf("%s: %w", applicantsFile, err)
		}
		s.applicants[a.ID] = a
	}

	rows, err = csvstore.ReadAll(filepath.Join(s.dir, officersFile), len(staffHeader))
	if err != nil {
		return err
	}
	for _, row := range rows {
		ident, err := decodeIdentity(row)
		if err != nil {
			return fmt.Errorf("%s: %w", officersFile, err)
		}
		s.officers[ident.ID] = &party.Officer{Identity: ident}
	}

	rows, err = csvstore.ReadAll(filepath.Join(s.dir, managersFile), len(staffHeader))
	if err != nil {
		return err
	}
	for _, row := range rows {
		ident, err := decodeIdentity(row)
		if err != nil {
			return fmt.Errorf("%s: %w", managersFile, err)
		}
		s.managers[ident.ID] = &party.Manager{Identity: ident}
	}
	return nil
}

func decodeIdentity(row []string) (party.Identity, error) {
	nric, err := domain.ParseNRIC(row[0])
	if err != nil {
		return party.Identity{}, err
	}
	age, err := strconv.Atoi(row[2])
	if err != nil {
		return party.Identity{}, fmt.Errorf("bad age %q: %w", row[2], err)
	}
	marital, err := domain.ParseMaritalStatus(row[3])
	if err != nil {
		return party.Identity{}, err
	}
	return party.Identity{
		ID:            nric,
		FullName:      row[1],
		Age:           age,
		MaritalStatus: marital,
		PasswordHash:  row[4],
	}, nil
}

func decodeApplicant(row []string) (*party.Applicant, error) {
	ident, err := decodeIdentity(row[:5])
	if err != nil {
		return nil, err
	}
	a := &party.Applicant{Identity: ident}
	if row[5] != "" {
		appID, err := domain.ParseApplicationID(row[5])
		if err != nil {
			return nil, err
		}
		a.ApplicationID = &appID
	}
	return a, nil
}

func encodeIdentity(i party.Identity) []string {
	return []string{
		i.ID.String(),
		i.FullName,
		strconv.Itoa(i.Age),
		i.MaritalStatus.String(),
		i.PasswordHash,
	}
}

func (s *CSV) flushApplicants() error {
	s.mu.RLock()
	rows := make([][]string, 0, len(s.applicants))
	for _, a := range s.applicants {
		row := encodeIdentity(a.Identity)
		appID := ""
		if a.ApplicationID != nil {
			appID = a.ApplicationID.String()
		}
		rows = append(rows, append(row, appID))
	}
	s.mu.RUnlock()
	return csvstore.WriteAll(filepath.Join(s.dir, applicantsFile), applicantHeader, rows)
}

func (s *CSV) flushOfficers() error {
	s.mu.RLock()
	rows := make([][]string, 0, len(s.officers))
	for _, o := range s.officers {
		rows = append(rows, encodeIdentity(o.Identity))
	}
	s.mu.RUnlock()
	return csvstore.WriteAll(filepath.Join(s.dir, officersFile), staffHeader, rows)
}

func (s *CSV) flushManagers() error {
	s.mu.RLock()
	rows := make([][]string, 0, len(s.managers))
	for _, m := range s.managers {
		rows = append(rows, encodeIdentity(m.Identity))
	}
	s.mu.RUnlock()
	return csvstore.WriteAll(filepath.Join(s.dir, managersFile), staffHeader, rows)
}

func (s *CSV) CreateApplicant(ctx context.Context, a *party.Applicant) error {
	if err := s.InMemory.CreateApplicant(ctx, a); err != nil {
		return err
	}
	if err := s.flushApplicants(); err != nil {
		s.mu.Lock()
		delete(s.applicants, a.ID)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *CSV) CreateOfficer(ctx context.Context, o *party.Officer) error {
	if err := s.InMemory.CreateOfficer(ctx, o); err != nil {
		return err
	}
	if err := s.flushOfficers(); err != nil {
		s.mu.Lock()
		delete(s.officers, o.ID)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *CSV) CreateManager(ctx context.Context, m *party.Manager) error {
	if err := s.InMemory.CreateManager(ctx, m); err != nil {
		return err
	}
	if err := s.flushManagers(); err != nil {
		s.mu.Lock()
		delete(s.managers, m.ID)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *CSV) UpdateApplicant(ctx context.Context, a *party.Applicant) error {
	s.mu.Lock()
	prev, ok := s.applicants[a.ID]
	s.mu.Unlock()
	if err := s.InMemory.UpdateApplicant(ctx, a); err != nil {
		return err
	}
	if err := s.flushApplicants(); err != nil {
		if ok {
			s.mu.Lock()
			s.applicants[a.ID] = prev
			s.mu.Unlock()
		}
		return err
	}
	return nil
}

func (s *CSV) UpdateParty(ctx context.Context, p party.Party) error {
	if err := s.InMemory.UpdateParty(ctx, p); err != nil {
		return err
	}
	switch p.(type) {
	case *party.Applicant:
		return s.flushApplicants()
	case *party.Officer:
		return s.flushOfficers()
	default:
		return s.flushManagers()
	}
}
