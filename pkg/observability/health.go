package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthCheck is a named readiness probe for a dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler serves liveness and readiness endpoints. Liveness always
// succeeds while the process runs; readiness runs every registered check.
type HealthHandler struct {
	checks  []HealthCheck
	timeout time.Duration
	mu      sync.RWMutex
}

// NewHealthHandler creates a health handler with a per-check timeout.
func NewHealthHandler(timeout time.Duration) *HealthHandler {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{timeout: timeout}
}

// Register adds a readiness check.
func (h *HealthHandler) Register(name string, check func(ctx context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, HealthCheck{Name: name, Check: check})
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeHealthJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// Readiness handles GET /readyz. It reports each check's outcome and returns
// 503 when any dependency is unavailable.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := make([]HealthCheck, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	results := make(map[string]string, len(checks))
	healthy := true
	for _, c := range checks {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		err := c.Check(ctx)
		cancel()
		if err != nil {
			healthy = false
			results[c.Name] = err.Error()
		} else {
			results[c.Name] = "ok"
		}
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "unavailable"
	}
	writeHealthJSON(w, status, map[string]interface{}{
		"status": overall,
		"checks": results,
	})
}

func writeHealthJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
