package observability

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownFunc is a cleanup hook run during graceful shutdown.
type ShutdownFunc func(context.Context) error

// WaitForShutdown blocks until SIGINT or SIGTERM, then drains the HTTP
// servers and runs the cleanup hooks within the timeout.
func WaitForShutdown(logger *Logger, timeout time.Duration, servers []*http.Server, hooks ...ShutdownFunc) error {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Infof("Received signal %s, starting graceful shutdown", sig)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var failures int
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Errorf("HTTP server %s shutdown error", srv.Addr)
			failures++
		}
	}

	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			logger.WithError(err).Errorf("Shutdown hook %d failed", i)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("shutdown completed with %d errors", failures)
	}
	logger.Info("Graceful shutdown complete")
	return nil
}
