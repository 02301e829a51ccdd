// Command console runs the interactive workflow manager over the CSV record
// store. This is the single-operator mode: state loads at startup and every
// mutation rewrites the affected CSV before it is acknowledged.
package main

import (
	"context"
	"os"
	"os/signal"

	appservice "btoflow/internal/application/service"
	appstore "btoflow/internal/application/store"
	"btoflow/internal/audit"
	"btoflow/internal/auth"
	"btoflow/internal/console"
	enqservice "btoflow/internal/enquiry/service"
	enqstore "btoflow/internal/enquiry/store"
	partystore "btoflow/internal/party/store"
	"btoflow/internal/platform/config"
	"btoflow/internal/platform/logger"
	projservice "btoflow/internal/project/service"
	projstore "btoflow/internal/project/store"
	regservice "btoflow/internal/registration/service"
	regstore "btoflow/internal/registration/store"
	"btoflow/internal/report"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Error("failed to create data dir", "dir", cfg.DataDir, "error", err.Error())
		os.Exit(1)
	}

	parties, err := partystore.OpenCSV(cfg.DataDir)
	if err != nil {
		log.Error("failed to load parties", "error", err.Error())
		os.Exit(1)
	}
	projects, err := projstore.OpenCSV(cfg.DataDir)
	if err != nil {
		log.Error("failed to load projects", "error", err.Error())
		os.Exit(1)
	}
	applications, err := appstore.OpenCSV(cfg.DataDir)
	if err != nil {
		log.Error("failed to load applications", "error", err.Error())
		os.Exit(1)
	}
	registrations, err := regstore.OpenCSV(cfg.DataDir)
	if err != nil {
		log.Error("failed to load registrations", "error", err.Error())
		os.Exit(1)
	}
	enquiries, err := enqstore.OpenCSV(cfg.DataDir)
	if err != nil {
		log.Error("failed to load enquiries", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := partystore.SeedBootstrapParties(ctx, parties); err != nil {
		log.Error("failed to seed default accounts", "error", err.Error())
		os.Exit(1)
	}

	auditor := audit.NewPublisher(audit.NewInMemoryStore())

	services := console.Services{
		Auth: auth.New(parties, nil, auth.WithLogger(log)),
		Applications: appservice.New(applications, projects, parties,
			appservice.WithLogger(log),
			appservice.WithAuditPublisher(auditor),
		),
		Projects: projservice.New(projects, applications, projservice.WithLogger(log)),
		Registrations: regservice.New(registrations, projects, parties,
			regservice.WithLogger(log),
			regservice.WithAuditPublisher(auditor),
		),
		Enquiries: enqservice.New(enquiries, projects, enqservice.WithLogger(log)),
		Reports:   report.NewGenerator(applications, parties, projects),
	}

	if err := console.New(services, os.Stdin, os.Stdout, log).Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("console exited", "error", err.Error())
		os.Exit(1)
	}
}
