package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"placement/internal/identity"
	lifecyclehandler "placement/internal/lifecycle/handler"
	lifecycleservice "placement/internal/lifecycle/service"
	"placement/internal/platform/config"
	"placement/internal/platform/httpserver"
	"placement/internal/platform/logger"
	"placement/internal/platform/metrics"
	postinghandler "placement/internal/posting/handler"
	postingservice "placement/internal/posting/service"
	profilehandler "placement/internal/profile/handler"
	profileservice "placement/internal/profile/service"
	ratelimit "placement/internal/ratelimit/middleware"
	httptransport "placement/internal/transport/http"
	"placement/pkg/platform/middleware/admin"
)

// main wires the stores, services and handlers, serves HTTP and drains the
// audit worker on shutdown.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open backends", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	postings := postingservice.New(b.postings, b.profiles,
		postingservice.WithLogger(log),
		postingservice.WithAuditPublisher(b.audit),
		postingservice.WithMetrics(m),
		postingservice.WithCache(b.cache),
	)
	profiles := profileservice.New(b.profiles, b.postings,
		profileservice.WithLogger(log),
		profileservice.WithAuditPublisher(b.audit),
		profileservice.WithMetrics(m),
	)
	lifecycle := lifecycleservice.New(b.postings, b.profiles, b.tx,
		lifecycleservice.WithLogger(log),
		lifecycleservice.WithAuditPublisher(b.audit),
		lifecycleservice.WithMetrics(m),
		lifecycleservice.WithListInvalidator(b.cache),
	)

	limiter := ratelimit.New(ratelimit.Config{PerMinute: cfg.RateLimitPerMinute}, log,
		ratelimit.WithDisabled(cfg.DisableRateLimit))
	defer limiter.Stop()

	if len(cfg.AdminEmails) == 0 {
		log.Warn("ADMIN_EMAILS is empty, admin routes will reject every caller")
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Verifier:       identity.NewVerifier(cfg.Identity.SigningKey, cfg.Identity.Issuer, cfg.Identity.Audience),
		Admins:         admin.NewAllowlist(cfg.AdminEmails),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Metrics:        m,
		Gatherer:       reg,
		RateLimit:      limiter.RateLimit,
		HealthChecks:   b.health,
		Handlers: []httptransport.Routes{
			postinghandler.New(postings, log),
			lifecyclehandler.New(lifecycle, log),
			profilehandler.New(profiles, log),
		},
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting placement api", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if b.auditWorker != nil {
		// The worker outlives request contexts; it stops when the inbox closes.
		g.Go(func() error { return b.auditWorker.Run(context.Background()) })
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// No handler can emit any more, so the worker may drain and exit.
		if b.auditInbox != nil {
			close(b.auditInbox)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b.close(closeCtx, log)
	log.Info("placement api stopped")
}
