// Package health provides liveness and readiness checks for the formulary API.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/nlem-api/interfaces"
	"github.com/giygas/nlem-api/logging"
)

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// DefaultPingTimeout bounds the readiness database ping
const DefaultPingTimeout = 2 * time.Second

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	db          interfaces.Pinger
	pingTimeout time.Duration
	startTime   time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(db interfaces.Pinger) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		db:          db,
		pingTimeout: DefaultPingTimeout,
		startTime:   time.Now(),
	}
}

// Liveness reports that the process is up. It never touches the database.
func (h *HealthCheckerImpl) Liveness() map[string]string {
	return map[string]string{"status": "OK"}
}

// Readiness pings the database and reports pool usage.
// Used by /health HTTP endpoint
func (h *HealthCheckerImpl) Readiness(ctx context.Context) (status string, data map[string]any, httpStatus int) {
	data = map[string]any{
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	}

	if h.db == nil {
		data["database"] = "unconfigured"
		return "unhealthy", data, http.StatusServiceUnavailable
	}

	pingCtx, cancel := context.WithTimeout(ctx, h.pingTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(pingCtx)
	data["ping_ms"] = time.Since(start).Milliseconds()
	data["pool"] = h.db.Stats()

	if err != nil {
		logging.Warn("Readiness check failed", "error", err)
		data["database"] = "unreachable"
		return "unhealthy", data, http.StatusServiceUnavailable
	}

	data["database"] = "ok"
	return "healthy", data, http.StatusOK
}
