// Package console is the interactive terminal front end. It is a thin shell:
// every action delegates to the same services the HTTP transport uses.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	appservice "btoflow/internal/application/service"
	"btoflow/internal/auth"
	enqservice "btoflow/internal/enquiry/service"
	"btoflow/internal/party"
	projservice "btoflow/internal/project/service"
	regservice "btoflow/internal/registration/service"
	"btoflow/internal/report"
	"btoflow/pkg/domain"
	"btoflow/pkg/requestcontext"
)

// Services bundles everything the console drives.
type Services struct {
	Auth          *auth.Service
	Applications  *appservice.Service
	Projects      *projservice.Service
	Registrations *regservice.Service
	Enquiries     *enqservice.Service
	Reports       *report.Generator
}

// Console runs the interactive session loop.
type Console struct {
	services Services
	in       *bufio.Scanner
	out      io.Writer
	logger   *slog.Logger
}

// New constructs a console reading from in and writing to out.
func New(services Services, in io.Reader, out io.Writer, logger *slog.Logger) *Console {
	return &Console{
		services: services,
		in:       bufio.NewScanner(in),
		out:      out,
		logger:   logger,
	}
}

// Run loops login sessions until input ends or the context is cancelled.
func (c *Console) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.printf("\n=== BTO Workflow Console ===\n")
		c.printf("1. Login\n0. Exit\n")
		choice, ok := c.prompt("> ")
		if !ok || choice == "0" {
			return nil
		}
		if choice != "1" {
			continue
		}
		p, ok := c.login(ctx)
		if !ok {
			continue
		}
		c.session(requestcontext.WithActor(ctx, p.NRIC(), string(p.Role())), p)
	}
}

func (c *Console) login(ctx context.Context) (party.Party, bool) {
	raw, ok := c.prompt("NRIC: ")
	if !ok {
		return nil, false
	}
	nric, err := domain.ParseNRIC(raw)
	if err != nil {
		c.fail(err)
		return nil, false
	}
	password, ok := c.prompt("Password: ")
	if !ok {
		return nil, false
	}
	p, _, err := c.services.Auth.Login(ctx, nric, password)
	if err != nil {
		c.fail(err)
		return nil, false
	}
	c.printf("Welcome, %s (%s)\n", p.Name(), p.Role())
	return p, true
}

// session dispatches to the role menu until logout.
func (c *Console) session(ctx context.Context, p party.Party) {
	for {
		var done bool
		switch actor := p.(type) {
		case *party.Applicant:
			done = c.applicantMenu(ctx, actor)
		case *party.Officer:
			done = c.officerMenu(ctx, actor)
		case *party.Manager:
			done = c.managerMenu(ctx, actor)
		default:
			done = true
		}
		if done {
			return
		}
	}
}

func (c *Console) changePassword(ctx context.Context, nric domain.NRIC) {
	current, ok := c.prompt("Current password: ")
	if !ok {
		return
	}
	next, ok := c.prompt("New password: ")
	if !ok {
		return
	}
	if err := c.services.Auth.ChangePassword(ctx, nric, current, next); err != nil {
		c.fail(err)
		return
	}
	c.printf("Password changed.\n")
}

// prompt reads one trimmed line; ok is false when input has ended.
func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) promptInt(label string) (int, bool) {
	raw, ok := c.prompt(label)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.printf("Not a number: %s\n", raw)
		return 0, false
	}
	return n, true
}

func (c *Console) promptYesNo(label string) (bool, bool) {
	raw, ok := c.prompt(label + " [y/n]: ")
	if !ok {
		return false, false
	}
	return strings.EqualFold(raw, "y") || strings.EqualFold(raw, "yes"), true
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) fail(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	c.printf("Error: %s\n", err.Error())
}
