package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"btoflow/internal/project/models"
	"btoflow/internal/storage/csvstore"
	"btoflow/pkg/domain"
)

const projectsFile = "projects.csv"

const dateLayout = "2006-01-02"

var projectHeader = []string{
	"project_id", "name", "neighborhood", "flat_types",
	"opening_date", "closing_date", "manager_id", "officer_slot", "officer_ids", "visibility",
}

// CSV is the durable project store for console mode.
type CSV struct {
	*InMemory
	dir string
}

// OpenCSV loads the project table from dir.
func OpenCSV(dir string) (*CSV, error) {
	s := &CSV{InMemory: NewInMemory(), dir: dir}
	rows, err := csvstore.ReadAll(filepath.Join(dir, projectsFile), len(projectHeader))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		p, err := decodeProject(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", projectsFile, err)
		}
		s.projects[p.ID] = p
	}
	return s, nil
}

// decodeProject parses one row. Flat-type data is encoded as
// "TYPE;units;price" entries joined by "|"; officer IDs are joined by ";".
func decodeProject(row []string) (*models.Project, error) {
	id, err := domain.ParseProjectID(row[0])
	if err != nil {
		return nil, err
	}
	managerID, err := domain.ParseNRIC(row[6])
	if err != nil {
		return nil, err
	}
	slot, err := strconv.Atoi(row[7])
	if err != nil {
		return nil, fmt.Errorf("bad officer slot %q: %w", row[7], err)
	}
	p, err := models.New(id, row[1], row[2], managerID, slot)
	if err != nil {
		return nil, err
	}

	if row[3] != "" {
		for _, entry := range strings.Split(row[3], "|") {
			parts := strings.Split(entry, ";")
			if len(parts) != 3 {
				return nil, fmt.Errorf("bad flat type entry %q", entry)
			}
			ft, err := domain.ParseFlatType(parts[0])
			if err != nil {
				return nil, err
			}
			units, err := strconv.Atoi(parts[1])
			if err != nil {
				return nil, fmt.Errorf("bad unit count %q: %w", parts[1], err)
			}
			price, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("bad price %q: %w", parts[2], err)
			}
			if err := p.SetFlatType(ft, units, price); err != nil {
				return nil, err
			}
		}
	}

	if p.OpensAt, err = time.Parse(dateLayout, row[4]); err != nil {
		return nil, fmt.Errorf("bad opening date %q: %w", row[4], err)
	}
	if p.ClosesAt, err = time.Parse(dateLayout, row[5]); err != nil {
		return nil, fmt.Errorf("bad closing date %q: %w", row[5], err)
	}

	if row[8] != "" {
		for _, raw := range strings.Split(row[8], ";") {
			nric, err := domain.ParseNRIC(raw)
			if err != nil {
				return nil, err
			}
			p.OfficerIDs = append(p.OfficerIDs, nric)
		}
	}
	p.Visible = row[9] == "ON"
	return p, nil
}

func encodeProject(p *models.Project) []string {
	flatEntries := make([]string, 0, len(p.Units))
	for _, ft := range domain.FlatTypes() {
		if !p.Offers(ft) {
			continue
		}
		flatEntries = append(flatEntries, fmt.Sprintf("%s;%d;%s",
			ft, p.Units[ft], strconv.FormatFloat(p.Prices[ft], 'f', -1, 64)))
	}
	officerIDs := make([]string, len(p.OfficerIDs))
	for i, id := range p.OfficerIDs {
		officerIDs[i] = id.String()
	}
	visibility := "OFF"
	if p.Visible {
		visibility = "ON"
	}
	return []string{
		p.ID.String(),
		p.Name,
		p.Neighborhood,
		strings.Join(flatEntries, "|"),
		p.OpensAt.Format(dateLayout),
		p.ClosesAt.Format(dateLayout),
		p.ManagerID.String(),
		strconv.Itoa(p.OfficerSlot),
		strings.Join(officerIDs, ";"),
		visibility,
	}
}

func (s *CSV) flush() error {
	s.mu.RLock()
	rows := make([][]string, 0, len(s.projects))
	for _, p := range s.projects {
		rows = append(rows, encodeProject(p))
	}
	s.mu.RUnlock()
	return csvstore.WriteAll(filepath.Join(s.dir, projectsFile), projectHeader, rows)
}

func (s *CSV) Create(ctx context.Context, p *models.Project) error {
	if err := s.InMemory.Create(ctx, p); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		s.mu.Lock()
		delete(s.projects, p.ID)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *CSV) Update(ctx context.Context, p *models.Project) error {
	prev, err := s.InMemory.FindByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := s.InMemory.Update(ctx, p); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		_ = s.InMemory.Update(ctx, prev)
		return err
	}
	return nil
}

func (s *CSV) Delete(ctx context.Context, id domain.ProjectID) error {
	prev, err := s.InMemory.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.InMemory.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		_ = s.InMemory.Create(ctx, prev)
		return err
	}
	return nil
}

// Execute applies the memory-store critical section, then persists the
// snapshot. On a failed rewrite the in-memory mutation is rolled back so the
// mutation is treated as not committed.
func (s *CSV) Execute(
	ctx context.Context,
	id domain.ProjectID,
	validate func(*models.Project) error,
	mutate func(*models.Project),
) (*models.Project, error) {
	prev, err := s.InMemory.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.InMemory.Execute(ctx, id, validate, mutate)
	if err != nil {
		return nil, err
	}
	if err := s.flush(); err != nil {
		_ = s.InMemory.Update(ctx, prev)
		return nil, err
	}
	return updated, nil
}
