package console

import (
	"context"
	"time"

	appmodels "btoflow/internal/application/models"
	enqmodels "btoflow/internal/enquiry/models"
	"btoflow/internal/party"
	projmodels "btoflow/internal/project/models"
	projservice "btoflow/internal/project/service"
	"btoflow/internal/report"
	"btoflow/pkg/domain"
	"btoflow/pkg/requestcontext"
)

const menuDateLayout = "2006-01-02"

// applicantMenu returns true when the applicant logs out.
func (c *Console) applicantMenu(ctx context.Context, a *party.Applicant) bool {
	c.printf("\n--- Applicant: %s ---\n", a.FullName)
	c.printf("1. Browse open projects\n")
	c.printf("2. Apply for a flat\n")
	c.printf("3. View my application\n")
	c.printf("4. Request withdrawal\n")
	c.printf("5. Submit enquiry\n")
	c.printf("6. My enquiries\n")
	c.printf("7. Edit enquiry\n")
	c.printf("8. Delete enquiry\n")
	c.printf("9. Change password\n")
	c.printf("0. Logout\n")

	choice, ok := c.prompt("> ")
	if !ok {
		return true
	}
	switch choice {
	case "1":
		c.listOpenProjects(ctx)
	case "2":
		c.applyForFlat(ctx, a)
	case "3":
		c.showMyApplication(ctx, a)
	case "4":
		if app, err := c.services.Applications.RequestWithdrawal(ctx, a.ID); err != nil {
			c.fail(err)
		} else {
			c.printf("Withdrawal requested for application %s.\n", app.ID)
		}
	case "5":
		c.submitEnquiry(ctx, a)
	case "6":
		c.listMyEnquiries(ctx, a)
	case "7":
		c.editEnquiry(ctx, a)
	case "8":
		c.deleteEnquiry(ctx, a)
	case "9":
		c.changePassword(ctx, a.ID)
	case "0":
		return true
	}
	return false
}

// officerMenu returns true when the officer logs out.
func (c *Console) officerMenu(ctx context.Context, o *party.Officer) bool {
	c.printf("\n--- Officer: %s ---\n", o.FullName)
	c.printf("1. Browse projects\n")
	c.printf("2. Register for a project\n")
	c.printf("3. My registrations\n")
	c.printf("4. Book a flat for an application\n")
	c.printf("5. Project applications\n")
	c.printf("6. Project enquiries\n")
	c.printf("7. Reply to enquiry\n")
	c.printf("8. Change password\n")
	c.printf("0. Logout\n")

	choice, ok := c.prompt("> ")
	if !ok {
		return true
	}
	switch choice {
	case "1":
		c.listAllProjects(ctx)
	case "2":
		if raw, ok := c.prompt("Project ID: "); ok {
			c.registerForProject(ctx, o, raw)
		}
	case "3":
		c.listMyRegistrations(ctx, o)
	case "4":
		c.bookApplication(ctx)
	case "5":
		c.listProjectApplications(ctx)
	case "6":
		c.listProjectEnquiries(ctx)
	case "7":
		c.replyEnquiry(ctx, o.ID, party.RoleOfficer)
	case "8":
		c.changePassword(ctx, o.ID)
	case "0":
		return true
	}
	return false
}

// managerMenu returns true when the manager logs out.
func (c *Console) managerMenu(ctx context.Context, m *party.Manager) bool {
	c.printf("\n--- Manager: %s ---\n", m.FullName)
	c.printf("1. All projects\n")
	c.printf("2. Create project\n")
	c.printf("3. Toggle project visibility\n")
	c.printf("4. Delete project\n")
	c.printf("5. Decide application\n")
	c.printf("6. Decide withdrawal\n")
	c.printf("7. Decide officer registration\n")
	c.printf("8. Project registrations\n")
	c.printf("9. Booking report\n")
	c.printf("10. Reply to enquiry\n")
	c.printf("11. Change password\n")
	c.printf("0. Logout\n")

	choice, ok := c.prompt("> ")
	if !ok {
		return true
	}
	switch choice {
	case "1":
		c.listAllProjects(ctx)
	case "2":
		c.createProject(ctx, m)
	case "3":
		c.toggleVisibility(ctx, m)
	case "4":
		if raw, ok := c.prompt("Project ID: "); ok {
			if id, err := domain.ParseProjectID(raw); err != nil {
				c.fail(err)
			} else if err := c.services.Projects.Delete(ctx, m.ID, id); err != nil {
				c.fail(err)
			} else {
				c.printf("Project deleted.\n")
			}
		}
	case "5":
		c.decideApplication(ctx)
	case "6":
		c.decideWithdrawal(ctx)
	case "7":
		c.decideRegistration(ctx)
	case "8":
		c.listProjectRegistrations(ctx)
	case "9":
		c.bookingReport(ctx)
	case "10":
		c.replyEnquiry(ctx, m.ID, party.RoleManager)
	case "11":
		c.changePassword(ctx, m.ID)
	case "0":
		return true
	}
	return false
}

func (c *Console) listOpenProjects(ctx context.Context) {
	projects, err := c.services.Projects.ListOpen(ctx, requestcontext.Now(ctx))
	if err != nil {
		c.fail(err)
		return
	}
	c.printProjects(projects)
}

func (c *Console) listAllProjects(ctx context.Context) {
	projects, err := c.services.Projects.ListAll(ctx)
	if err != nil {
		c.fail(err)
		return
	}
	c.printProjects(projects)
}

func (c *Console) printProjects(projects []*projmodels.Project) {
	if len(projects) == 0 {
		c.printf("No projects.\n")
		return
	}
	for _, p := range projects {
		c.printf("%s  %s (%s)  %s to %s  visible=%t  slots %d/%d\n",
			p.ID, p.Name, p.Neighborhood,
			p.OpensAt.Format(menuDateLayout), p.ClosesAt.Format(menuDateLayout),
			p.Visible, len(p.OfficerIDs), p.OfficerSlot)
		for _, ft := range domain.FlatTypes() {
			if p.Offers(ft) {
				c.printf("    %s: %d units at $%.0f\n", ft, p.UnitsFor(ft), p.Prices[ft])
			}
		}
	}
}

func (c *Console) applyForFlat(ctx context.Context, a *party.Applicant) {
	rawProject, ok := c.prompt("Project ID: ")
	if !ok {
		return
	}
	projectID, err := domain.ParseProjectID(rawProject)
	if err != nil {
		c.fail(err)
		return
	}
	rawType, ok := c.prompt("Flat type (TWO_ROOMS/THREE_ROOMS): ")
	if !ok {
		return
	}
	ft, err := domain.ParseFlatType(rawType)
	if err != nil {
		c.fail(err)
		return
	}
	app, err := c.services.Applications.Submit(ctx, a.ID, projectID, ft)
	if err != nil {
		c.fail(err)
		return
	}
	c.printf("Application %s submitted (status %s).\n", app.ID, app.Status)
}

func (c *Console) showMyApplication(ctx context.Context, a *party.Applicant) {
	app, err := c.services.Applications.CurrentFor(ctx, a.ID)
	if err != nil {
		c.fail(err)
		return
	}
	c.printApplication(app)
}

func (c *Console) printApplication(app *appmodels.Application) {
	c.printf("%s  project=%s  flat=%s  status=%s  withdrawal=%s\n",
		app.ID, app.ProjectID, app.FlatType, app.EffectiveStatus(), app.Withdrawal)
}

func (c *Console) decideApplication(ctx context.Context) {
	raw, ok := c.prompt("Application ID: ")
	if !ok {
		return
	}
	id, err := domain.ParseApplicationID(raw)
	if err != nil {
		c.fail(err)
		return
	}
	approve, ok := c.promptYesNo("Approve?")
	if !ok {
		return
	}
	app, err := c.services.Applications.Decide(ctx, id, approve)
	if err != nil {
		c.fail(err)
		return
	}
	c.printf("Application %s is now %s.\n", app.ID, app.Status)
}

func (c *Console) decideWithdrawal(ctx context.Context) {
	raw, ok := c.prompt("Application ID: ")
	if !ok {
		return
	}
	id, err := domain.ParseApplicationID(raw)
	if err != nil {
		c.fail(err)
		return
	}
	approve, ok := c.promptYesNo("Approve withdrawal?")
	if !ok {
		return
	}
	app, err := c.services.Applications.DecideWithdrawal(ctx, id, approve)
	if err != nil {
		c.fail(err)
		return
	}
	c.printf("Withdrawal on %s is now %s.\n", app.ID, app.Withdrawal)
}

func (c *Console) bookApplication(ctx context.Context) {
	raw, ok := c.prompt("Application ID: ")
	if !ok {
		return
	}
	id, err := domain.ParseApplicationID(raw)
	if err != nil {
		c.fail(err)
		return
	}
	app, err := c.services.Applications.Book(ctx, id)
	if err != nil {
		c.fail(err)
		return
	}
	c.printf("Booked a %s unit in %s for %s.\n", app.FlatType, app.ProjectID, app.ApplicantNRIC)
}

func (c *Console) listProjectApplications(ctx context.Context) {
	raw, ok := c.prompt("Project ID: ")
	if !ok {
		return
	}
	projectID, err := domain.ParseProjectID(raw)
	if err != nil {
		c.fail(err)
		return
	}
	apps, err := c.services.Applications.ListForProject(ctx, projectID)
	if err != nil {
		c.fail(err)
		return
	}
	if len(apps) == 0 {
		c.printf("No applications.\n")
		return
	}
	for _, app := range apps {
		c.printApplication(app)
	}
}

func (c *Console) registerForProject(ctx context.Context, o *party.Officer, rawProject string) {
	projectID, err := domain.ParseProjectID(rawProject)
	if err != nil {
		c.fail(err)
		return
	}
	reg, err := c.services.Registrations.Register(ctx, o.ID, projectID)
	if err != nil {
		c.fail(err)
		return
	}
	c.printf("Registration %s filed (status %s).\n", reg.ID, reg.Status)
}

func (c *Console) listMyRegistrations(ctx context.Context, o *party.Officer) {
	regs, err := c.services.Registrations.ListForOfficer(ctx, o.ID)
	if err != nil {
		c.fail(err)
		return
	}
	if len(regs) == 0 {
		c.printf("No registrations.\n")
		return
	}
	for _, reg := range regs {
		c.printf("%s  project=%s  status=%s\n", reg.ID, reg.ProjectID, reg.Status)
	}
}

func (c *Console) listProjectRegistrations(ctx context.Context) {
	raw, ok := c.prompt("Project ID: ")
	if !ok {
		return
	}
	projectID, err := domain.ParseProjectID(raw)
	if err != nil {
		c.fail(err)
		return
	}
	regs, err := c.services.Registrations.ListForProject(ctx, projectID)
	if err != nil {
		c.fail(err)
		return
	}
	if len(regs) == 0 {
		c.printf("No registrations.\n")
		return
	}
	for _, reg := range regs {
		c.printf("%s  officer=%s  status=%s\n", reg.ID, reg.OfficerNRIC, reg.Status)
	}
}

func (c *Console) decideRegistration(ctx context.Context) {
	raw, ok := c.prompt("Registration ID: ")
	if !ok {
		return
	}
	id, err := domain.ParseRegistrationID(raw)
	if err != nil {
		c.fail(err)
		return
	}
	approve, ok := c.promptYesNo("Approve?")
	if !ok {
		return
	}
	reg, err := c.services.Registrations.Decide(ctx, id, approve)
	if err != nil {
		c.fail(err)
		return
	}
	c.printf("Registration %s is now %s.\n", reg.ID, reg.Status)
}

func (c *Console) createProject(ctx context.Context, m *party.Manager) {
	rawID, ok := c.prompt("Project ID: ")
	if !ok {
		return
	}
	id, err := domain.ParseProjectID(rawID)
	if err != nil {
		c.fail(err)
		return
	}
	name, ok := c.prompt("Name: ")
	if !ok {
		return
	}
	neighborhood, ok := c.prompt("Neighborhood: ")
	if !ok {
		return
	}
	rawOpens, ok := c.prompt("Opens (YYYY-MM-DD): ")
	if !ok {
		return
	}
	opensAt, err := time.Parse(menuDateLayout, rawOpens)
	if err != nil {
		c.printf("Bad date: %s\n", rawOpens)
		return
	}
	rawCloses, ok := c.prompt("Closes (YYYY-MM-DD): ")
	if !ok {
		return
	}
	closesAt, err := time.Parse(menuDateLayout, rawCloses)
	if err != nil {
		c.printf("Bad date: %s\n", rawCloses)
		return
	}
	slot, ok := c.promptInt("Officer slots: ")
	if !ok {
		return
	}

	units := make(map[domain.FlatType]int)
	prices := make(map[domain.FlatType]float64)
	for _, ft := range domain.FlatTypes() {
		count, ok := c.promptInt(string(ft) + " units: ")
		if !ok {
			return
		}
		price, ok := c.promptInt(string(ft) + " price: ")
		if !ok {
			return
		}
		units[ft] = count
		prices[ft] = float64(price)
	}

	p, err := c.services.Projects.Create(ctx, projservice.CreateParams{
		ID:           id,
		Name:         name,
		Neighborhood: neighborhood,
		OpensAt:      opensAt,
		ClosesAt:     closesAt,
		ManagerID:    m.ID,
		OfficerSlot:  slot,
		Units:        units,
		Prices:       prices,
	})
	if err != nil {
		c.fail(err)
		return
	}
	c.printf("Project %s created (hidden until you toggle visibility).\n", p.ID)
}

func (c *Console) toggleVisibility(ctx context.Context, m *party.Manager) {
	raw, ok := c.prompt("Project ID: ")
	if !ok {
		return
	}
	id, err := domain.ParseProjectID(raw)
	if err != nil {
		c.fail(err)
		return
	}
	visible, ok := c.promptYesNo("Visible?")
	if !ok {
		return
	}
	p, err := c.services.Projects.SetVisibility(ctx, m.ID, id, visible)
	if err != nil {
		c.fail(err)
		return
	}
	c.printf("Project %s visibility is now %t.\n", p.ID, p.Visible)
}

func (c *Console) submitEnquiry(ctx context.Context, a *party.Applicant) {
	raw, ok := c.prompt("Project ID: ")
	if !ok {
		return
	}
	projectID, err := domain.ParseProjectID(raw)
	if err != nil {
		c.fail(err)
		return
	}
	question, ok := c.prompt("Question: ")
	if !ok {
		return
	}
	e, err := c.services.Enquiries.Submit(ctx, a.ID, projectID, question)
	if err != nil {
		c.fail(err)
		return
	}
	c.printf("Enquiry %s submitted.\n", e.ID)
}

func (c *Console) listMyEnquiries(ctx context.Context, a *party.Applicant) {
	list, err := c.services.Enquiries.ListForApplicant(ctx, a.ID)
	if err != nil {
		c.fail(err)
		return
	}
	c.printEnquiries(list)
}

func (c *Console) listProjectEnquiries(ctx context.Context) {
	raw, ok := c.prompt("Project ID: ")
	if !ok {
		return
	}
	projectID, err := domain.ParseProjectID(raw)
	if err != nil {
		c.fail(err)
		return
	}
	list, err := c.services.Enquiries.ListForProject(ctx, projectID)
	if err != nil {
		c.fail(err)
		return
	}
	c.printEnquiries(list)
}

func (c *Console) printEnquiries(list []*enqmodels.Enquiry) {
	if len(list) == 0 {
		c.printf("No enquiries.\n")
		return
	}
	for _, e := range list {
		c.printf("%s  project=%s  [%s]\n  Q: %s\n", e.ID, e.ProjectID, e.Status, e.Question)
		if e.Reply != "" {
			c.printf("  A: %s\n", e.Reply)
		}
	}
}

func (c *Console) editEnquiry(ctx context.Context, a *party.Applicant) {
	raw, ok := c.prompt("Enquiry ID: ")
	if !ok {
		return
	}
	id, err := domain.ParseEnquiryID(raw)
	if err != nil {
		c.fail(err)
		return
	}
	question, ok := c.prompt("New question: ")
	if !ok {
		return
	}
	if _, err := c.services.Enquiries.Edit(ctx, a.ID, id, question); err != nil {
		c.fail(err)
		return
	}
	c.printf("Enquiry updated.\n")
}

func (c *Console) deleteEnquiry(ctx context.Context, a *party.Applicant) {
	raw, ok := c.prompt("Enquiry ID: ")
	if !ok {
		return
	}
	id, err := domain.ParseEnquiryID(raw)
	if err != nil {
		c.fail(err)
		return
	}
	if err := c.services.Enquiries.Delete(ctx, a.ID, id); err != nil {
		c.fail(err)
		return
	}
	c.printf("Enquiry deleted.\n")
}

func (c *Console) replyEnquiry(ctx context.Context, actor domain.NRIC, role party.Role) {
	raw, ok := c.prompt("Enquiry ID: ")
	if !ok {
		return
	}
	id, err := domain.ParseEnquiryID(raw)
	if err != nil {
		c.fail(err)
		return
	}
	reply, ok := c.prompt("Reply: ")
	if !ok {
		return
	}
	if _, err := c.services.Enquiries.Reply(ctx, actor, role, id, reply); err != nil {
		c.fail(err)
		return
	}
	c.printf("Reply recorded.\n")
}

func (c *Console) bookingReport(ctx context.Context) {
	var filter report.Filter
	if raw, ok := c.prompt("Filter marital status (blank for all): "); ok && raw != "" {
		status, err := domain.ParseMaritalStatus(raw)
		if err != nil {
			c.fail(err)
			return
		}
		filter.MaritalStatus = status
	}
	if raw, ok := c.prompt("Filter flat type (blank for all): "); ok && raw != "" {
		ft, err := domain.ParseFlatType(raw)
		if err != nil {
			c.fail(err)
			return
		}
		filter.FlatType = ft
	}

	rows, err := c.services.Reports.Bookings(ctx, filter)
	if err != nil {
		c.fail(err)
		return
	}
	if len(rows) == 0 {
		c.printf("No bookings.\n")
		return
	}
	for _, row := range rows {
		flag := ""
		if row.Withdrawn {
			flag = "  (withdrawn)"
		}
		c.printf("%s  %s  age=%d  %s  %s  %s (%s)%s\n",
			row.ApplicantNRIC, row.ApplicantName, row.Age, row.MaritalStatus,
			row.FlatType, row.ProjectName, row.Neighborhood, flag)
	}
}
