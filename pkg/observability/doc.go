// Package observability provides structured logging, Prometheus metrics,
// OpenTelemetry tracing and health checks for the portal.
//
// # Logging
//
// Logger wraps log/slog with JSON output and chainable context fields:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("member_id", id).Info("member updated")
//
// # Metrics
//
// Metrics registers every portal counter and histogram on one registry,
// including the authorization counters (permission checks, unknown role
// tokens, legacy role usage, cache hits/misses) consumed by pkg/permissions.
//
// # Health
//
// HealthHandler aggregates named readiness checks (storage, redis) behind
// /healthz and /readyz on the separate health port.
package observability
