package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"btoflow/internal/project/models"
	"btoflow/pkg/domain"
	"btoflow/pkg/platform/sentinel"
)

// Postgres persists projects. Execute wraps validate-then-mutate in a
// transaction holding SELECT ... FOR UPDATE on the project row, mirroring the
// in-memory store's lock discipline.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed project store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const projectColumns = "project_id, name, neighborhood, units, prices, opens_at, closes_at, manager_id, officer_slot, officer_ids, visible"

type projectRow struct {
	id           string
	name         string
	neighborhood string
	units        []byte
	prices       []byte
	opensAt      time.Time
	closesAt     time.Time
	managerID    string
	officerSlot  int
	officerIDs   pq.StringArray
	visible      bool
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(scanner rowScanner) (*models.Project, error) {
	var row projectRow
	err := scanner.Scan(&row.id, &row.name, &row.neighborhood, &row.units, &row.prices,
		&row.opensAt, &row.closesAt, &row.managerID, &row.officerSlot, &row.officerIDs, &row.visible)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}

	p := &models.Project{
		ID:           domain.ProjectID(row.id),
		Name:         row.name,
		Neighborhood: row.neighborhood,
		OpensAt:      row.opensAt,
		ClosesAt:     row.closesAt,
		ManagerID:    domain.NRIC(row.managerID),
		OfficerSlot:  row.officerSlot,
		Visible:      row.visible,
	}
	if err := json.Unmarshal(row.units, &p.Units); err != nil {
		return nil, fmt.Errorf("unmarshal units: %w", err)
	}
	if err := json.Unmarshal(row.prices, &p.Prices); err != nil {
		return nil, fmt.Errorf("unmarshal prices: %w", err)
	}
	for _, raw := range row.officerIDs {
		p.OfficerIDs = append(p.OfficerIDs, domain.NRIC(raw))
	}
	return p, nil
}

func projectParams(p *models.Project) ([]any, error) {
	units, err := json.Marshal(p.Units)
	if err != nil {
		return nil, fmt.Errorf("marshal units: %w", err)
	}
	prices, err := json.Marshal(p.Prices)
	if err != nil {
		return nil, fmt.Errorf("marshal prices: %w", err)
	}
	officerIDs := make(pq.StringArray, len(p.OfficerIDs))
	for i, id := range p.OfficerIDs {
		officerIDs[i] = id.String()
	}
	return []any{
		p.ID.String(), p.Name, p.Neighborhood, units, prices,
		p.OpensAt, p.ClosesAt, p.ManagerID.String(), p.OfficerSlot, officerIDs, p.Visible,
	}, nil
}

func (s *Postgres) Create(ctx context.Context, p *models.Project) error {
	params, err := projectParams(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (project_id, name, neighborhood, units, prices, opens_at, closes_at, manager_id, officer_slot, officer_ids, visible)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, params...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.ProjectID) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE project_id = $1", id.String())
	return scanProject(row)
}

func (s *Postgres) Update(ctx context.Context, p *models.Project) error {
	return s.update(ctx, s.db, p)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) update(ctx context.Context, db execer, p *models.Project) error {
	params, err := projectParams(p)
	if err != nil {
		return err
	}
	result, err := db.ExecContext(ctx, `
		UPDATE projects
		SET name = $2, neighborhood = $3, units = $4, prices = $5,
		    opens_at = $6, closes_at = $7, manager_id = $8, officer_slot = $9,
		    officer_ids = $10, visible = $11
		WHERE project_id = $1
	`, params...)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id domain.ProjectID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE project_id = $1", id.String())
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Execute validates and mutates one project inside a transaction that holds a
// row lock, so capacity and inventory checks cannot race a concurrent decision.
func (s *Postgres) Execute(
	ctx context.Context,
	id domain.ProjectID,
	validate func(*models.Project) error,
	mutate func(*models.Project),
) (*models.Project, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE project_id = $1 FOR UPDATE", id.String())
	p, err := scanProject(row)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(p); err != nil {
			return nil, err
		}
	}
	mutate(p)
	if err := s.update(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return p, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Project, error) {
	return s.list(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY project_id")
}

func (s *Postgres) ListVisible(ctx context.Context) ([]*models.Project, error) {
	return s.list(ctx, "SELECT "+projectColumns+" FROM projects WHERE visible ORDER BY project_id")
}

func (s *Postgres) ListByManager(ctx context.Context, managerID domain.NRIC) ([]*models.Project, error) {
	return s.list(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE manager_id = $1 ORDER BY project_id", managerID.String())
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
