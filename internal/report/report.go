// Package report assembles the manager's booking report: one row per BOOKED
// application, joined with applicant and project details.
package report

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	appmodels "btoflow/internal/application/models"
	"btoflow/internal/party"
	projmodels "btoflow/internal/project/models"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
)

// ApplicationLister returns all applications on record.
type ApplicationLister interface {
	List(ctx context.Context) ([]*appmodels.Application, error)
}

// ApplicantFinder resolves applicants by NRIC.
type ApplicantFinder interface {
	FindApplicant(ctx context.Context, nric domain.NRIC) (*party.Applicant, error)
}

// ProjectFinder resolves projects by ID.
type ProjectFinder interface {
	FindByID(ctx context.Context, id domain.ProjectID) (*projmodels.Project, error)
}

// Row is one line of the booking report.
type Row struct {
	ApplicantNRIC domain.NRIC
	ApplicantName string
	Age           int
	MaritalStatus domain.MaritalStatus
	FlatType      domain.FlatType
	ProjectID     domain.ProjectID
	ProjectName   string
	Neighborhood  string
	Withdrawn     bool
}

// Filter narrows the report. Zero values mean "no filter on this field".
type Filter struct {
	MaritalStatus domain.MaritalStatus
	FlatType      domain.FlatType
	ProjectID     domain.ProjectID
}

func (f Filter) matches(row Row) bool {
	if f.MaritalStatus != "" && row.MaritalStatus != f.MaritalStatus {
		return false
	}
	if f.FlatType != "" && row.FlatType != f.FlatType {
		return false
	}
	if f.ProjectID != "" && row.ProjectID != f.ProjectID {
		return false
	}
	return true
}

// Generator builds booking reports.
type Generator struct {
	applications ApplicationLister
	applicants   ApplicantFinder
	projects     ProjectFinder
}

// NewGenerator constructs a report generator.
func NewGenerator(applications ApplicationLister, applicants ApplicantFinder, projects ProjectFinder) *Generator {
	return &Generator{
		applications: applications,
		applicants:   applicants,
		projects:     projects,
	}
}

// bookingLookupConcurrency caps the fan-out when joining report rows.
const bookingLookupConcurrency = 8

// Bookings returns one row per BOOKED application that passes the filter,
// sorted by project then applicant for stable output. Row joins run
// concurrently with a bounded fan-out.
func (g *Generator) Bookings(ctx context.Context, filter Filter) ([]Row, error) {
	apps, err := g.applications.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list applications")
	}

	var (
		mu   sync.Mutex
		rows []Row
	)
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(bookingLookupConcurrency)
	for _, app := range apps {
		if app.Status != appmodels.StatusBooked {
			continue
		}
		app := app
		group.Go(func() error {
			row, err := g.buildRow(ctx, app)
			if err != nil {
				return err
			}
			if !filter.matches(row) {
				return nil
			}
			mu.Lock()
			rows = append(rows, row)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ProjectID != rows[j].ProjectID {
			return rows[i].ProjectID < rows[j].ProjectID
		}
		return rows[i].ApplicantNRIC < rows[j].ApplicantNRIC
	})
	return rows, nil
}

func (g *Generator) buildRow(ctx context.Context, app *appmodels.Application) (Row, error) {
	applicant, err := g.applicants.FindApplicant(ctx, app.ApplicantNRIC)
	if err != nil {
		return Row{}, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load applicant for report")
	}
	project, err := g.projects.FindByID(ctx, app.ProjectID)
	if err != nil {
		return Row{}, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load project for report")
	}
	return Row{
		ApplicantNRIC: applicant.ID,
		ApplicantName: applicant.FullName,
		Age:           applicant.Age,
		MaritalStatus: applicant.MaritalStatus,
		FlatType:      app.FlatType,
		ProjectID:     project.ID,
		ProjectName:   project.Name,
		Neighborhood:  project.Neighborhood,
		Withdrawn:     app.EffectiveStatus() == appmodels.EffectiveStatusWithdrawn,
	}, nil
}
