package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trustlayer/internal/apikey"
	"trustlayer/internal/audit"
	"trustlayer/internal/bundle"
	credstore "trustlayer/internal/credential/store"
	"trustlayer/internal/identity"
	idstore "trustlayer/internal/identity/store"
	"trustlayer/internal/ingest"
	"trustlayer/internal/platform/config"
	"trustlayer/internal/platform/logger"
	"trustlayer/internal/recovery"
	"trustlayer/internal/seeder"
	"trustlayer/internal/session"
	"trustlayer/internal/share"
	httptransport "trustlayer/internal/transport/http"
	"trustlayer/internal/verification"
	"trustlayer/internal/verification/adapters"
	"trustlayer/internal/verification/metrics"
)

// trustedIssuers is the demo issuer registry. A production deployment
// would resolve these from an on-chain trust list.
var trustedIssuers = []string{"TechCorp Inc.", "Web3 Academy", "Security Labs"}

// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing trustlayer console",
		"addr", cfg.Addr,
		"check_timeout", cfg.CheckTimeout.String(),
		"seed_demo", cfg.SeedDemoData,
	)

	identities := idstore.NewInMemoryStore()
	credentials := credstore.NewInMemoryStore()
	activity := audit.NewPublisher(
		audit.NewInMemoryStore(),
		audit.WithAsyncBuffer(256),
		audit.WithPublisherLogger(log),
	)
	defer activity.Close()

	identityService := identity.NewService(identities, credentials,
		identity.WithLogger(log),
		identity.WithAuditor(activity),
	)

	verifyService := verification.New(
		credentials,
		adapters.NewResilientZKVerifier(adapters.SimulatedZKVerifier{Latency: 120 * time.Millisecond}, log),
		adapters.NewResilientStorageChecker(adapters.SimulatedStorageChecker{Latency: 200 * time.Millisecond}, log),
		adapters.NewResilientIssuerRegistry(adapters.NewSimulatedIssuerRegistry(80*time.Millisecond, trustedIssuers...), log),
		verification.WithLogger(log),
		verification.WithMetrics(metrics.New()),
		verification.WithAuditor(activity),
		verification.WithCheckTimeout(cfg.CheckTimeout),
	)

	recoveryService := recovery.NewService(identityService,
		recovery.WithLogger(log),
		recovery.WithAuditor(activity),
	)
	bundleService := bundle.NewService(identities, credentials,
		bundle.WithLogger(log),
		bundle.WithAuditor(activity),
	)
	ingestService := ingest.NewService(identities, credentials,
		ingest.WithLogger(log),
		ingest.WithAuditor(activity),
	)
	sessionService := session.NewService(
		session.NewTokenService(cfg.SessionSigningKey, cfg.SessionTTL),
		session.WithLogger(log),
		session.WithAuditor(activity),
	)
	shareService := share.NewService(identities, credentials)
	apikeyService := apikey.NewService(apikey.NewInMemoryStore(),
		apikey.WithLogger(log),
		apikey.WithAuditor(activity),
	)

	if cfg.SeedDemoData {
		if err := seeder.New(identityService, credentials, log).SeedAll(context.Background()); err != nil {
			log.Error("demo seeding failed", "error", err)
			os.Exit(1)
		}
	}

	handler := httptransport.NewHandler(httptransport.Services{
		Identity:     identityService,
		APIKeys:      apikeyService,
		Verification: verifyService,
		Recovery:     recoveryService,
		Bundle:       bundleService,
		Ingest:       ingestService,
		Session:      sessionService,
		Share:        shareService,
		Activity:     activity,
		Credentials:  credentials,
	}, log)

	root := chi.NewRouter()
	root.Handle("/metrics", promhttp.Handler())
	root.Mount("/", httptransport.NewRouter(handler, log))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
