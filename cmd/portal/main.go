// Command portal runs the club administration API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/hdcn/portal/pkg/api"
	"github.com/hdcn/portal/pkg/audit"
	"github.com/hdcn/portal/pkg/config"
	"github.com/hdcn/portal/pkg/httputil"
	"github.com/hdcn/portal/pkg/identity"
	"github.com/hdcn/portal/pkg/middleware"
	"github.com/hdcn/portal/pkg/observability"
	"github.com/hdcn/portal/pkg/permissions"
	"github.com/hdcn/portal/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "portal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.WithField("storage", cfg.Storage.Type).Info("Starting portal")

	metrics := observability.NewMetrics(prometheus.NewRegistry())

	shutdownTracing, err := observability.InitTracing(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	// Role catalog and resolver. The overlay lets the club amend the
	// built-in catalog without a rebuild.
	catalog := permissions.DefaultCatalog()
	if cfg.Authz.CatalogOverlayPath != "" {
		catalog, err = catalog.WithOverlay(cfg.Authz.CatalogOverlayPath)
		if err != nil {
			return fmt.Errorf("load role catalog overlay: %w", err)
		}
		logger.WithField("path", cfg.Authz.CatalogOverlayPath).Info("Loaded role catalog overlay")
	}
	resolver := permissions.NewResolver(catalog, logger, permissions.WithMetrics(metrics))
	permCache := permissions.NewCache(resolver, cfg.Authz.CacheSize, cfg.Authz.CacheTTL, metrics)

	verifier, err := identity.NewVerifier(ctx, cfg.Identity, logger, metrics)
	if err != nil {
		return fmt.Errorf("init token verifier: %w", err)
	}

	store, err := newStore(ctx, cfg.Storage, metrics)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	auditLogger, err := newAuditLogger(cfg.Audit)
	if err != nil {
		return fmt.Errorf("init audit log: %w", err)
	}
	defer auditLogger.Close()

	server := api.NewServer(store, logger, metrics, auditLogger)

	authn := middleware.NewAuthenticator(verifier, permCache, logger, false,
		middleware.WithAuditLogger(auditLogger))
	limit := newRateLimitMiddleware(cfg.RateLimit, logger)

	handler := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(logger),
		httputil.LoggingMiddleware(logger),
		metrics.HTTPMiddleware,
		authn.Handler,
		limit,
	)(server)
	if cfg.Observability.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "portal")
	}

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Probes and metrics live on their own port so they are never gated by
	// authentication or rate limits.
	health := observability.NewHealthHandler(cfg.Server.ReadTimeout)
	health.Register("storage", store.HealthCheck)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", health.Liveness)
	healthMux.HandleFunc("/readyz", health.Readiness)
	if cfg.Observability.MetricsEnabled {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("Health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return observability.WaitForShutdown(logger, cfg.Server.ShutdownTimeout,
			[]*http.Server{apiServer, healthServer}, shutdownTracing)
	})

	return g.Wait()
}

func newStore(ctx context.Context, cfg storage.Config, metrics *observability.Metrics) (storage.Store, error) {
	switch cfg.Type {
	case "dynamodb":
		return storage.NewDynamoStore(ctx, cfg, metrics)
	default:
		return storage.NewMemoryStore(), nil
	}
}

func newAuditLogger(cfg config.AuditConfig) (audit.Logger, error) {
	if cfg.FilePath == "" {
		return audit.NopLogger{}, nil
	}
	return audit.NewFileLogger(cfg.FilePath)
}

func newRateLimitMiddleware(cfg config.RateLimitConfig, logger *observability.Logger) func(http.Handler) http.Handler {
	limitCfg := &middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RequestsPerWindow,
		WindowDuration:    cfg.WindowDuration,
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		return middleware.NewDistributedRateLimiter(client, limitCfg, logger).Handler
	}
	return middleware.NewRateLimiter(limitCfg).Handler
}
