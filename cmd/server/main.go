// Command server runs the workflow manager as an HTTP service: postgres
// record stores, redis-backed sessions when configured, prometheus metrics on
// a separate listener.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	appservice "btoflow/internal/application/service"
	appstore "btoflow/internal/application/store"
	"btoflow/internal/audit"
	"btoflow/internal/auth"
	enqservice "btoflow/internal/enquiry/service"
	enqstore "btoflow/internal/enquiry/store"
	partystore "btoflow/internal/party/store"
	"btoflow/internal/platform/config"
	"btoflow/internal/platform/httpserver"
	"btoflow/internal/platform/logger"
	"btoflow/internal/platform/metrics"
	platformredis "btoflow/internal/platform/redis"
	projservice "btoflow/internal/project/service"
	projstore "btoflow/internal/project/store"
	regservice "btoflow/internal/registration/service"
	regstore "btoflow/internal/registration/store"
	"btoflow/internal/report"
	"btoflow/internal/session"
	schemapg "btoflow/internal/storage/postgres"
	httptransport "btoflow/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if cfg.DatabaseURL == "" {
		log.Error("BTOFLOW_DATABASE_URL is required in service mode")
		os.Exit(1)
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to open database", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	bootCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.PingContext(bootCtx); err != nil {
		log.Error("database unreachable", "error", err.Error())
		os.Exit(1)
	}
	if err := schemapg.Migrate(bootCtx, db); err != nil {
		log.Error("migration failed", "error", err.Error())
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	var sessions session.Store = session.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis())
	if err != nil {
		log.Warn("redis unavailable, sessions fall back to memory", "error", err.Error())
	} else if redisClient != nil {
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient)
	}
	tokens := session.NewTokenService(cfg.JWTSigningKey, "btoflow", cfg.SessionTTL, sessions)

	parties := partystore.NewPostgres(db)
	projects := projstore.NewPostgres(db)
	applications := appstore.NewPostgres(db)
	registrations := regstore.NewPostgres(db)
	enquiries := enqstore.NewPostgres(db)
	auditor := audit.NewPublisher(audit.NewPostgresStore(db))

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Validator: tokens,
		Auth:      auth.New(parties, tokens, auth.WithLogger(log), auth.WithMetrics(m)),
		Applications: appservice.New(applications, projects, parties,
			appservice.WithLogger(log),
			appservice.WithMetrics(m),
			appservice.WithAuditPublisher(auditor),
		),
		Projects: projservice.New(projects, applications, projservice.WithLogger(log)),
		Registrations: regservice.New(registrations, projects, parties,
			regservice.WithLogger(log),
			regservice.WithMetrics(m),
			regservice.WithAuditPublisher(auditor),
		),
		Enquiries: enqservice.New(enquiries, projects,
			enqservice.WithLogger(log), enqservice.WithMetrics(m)),
		Reports: report.NewGenerator(applications, parties, projects),
	})

	apiServer := httpserver.New(cfg.Addr, router)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := httpserver.New(cfg.MetricsAddr, metricsMux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("api listening", "addr", cfg.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		log.Info("metrics listening", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}
