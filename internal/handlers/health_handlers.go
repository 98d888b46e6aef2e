package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// Dependency states reported by /health.
const (
	stateHealthy   = "healthy"
	stateUnhealthy = "unhealthy"
	stateDisabled  = "disabled"
	stateDegraded  = "degraded"
)

// Pinger is satisfied by *pgxpool.Pool and the directory cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandlers struct {
	db      Pinger
	cache   Pinger
	version string
	started time.Time
}

// NewHealthHandlers takes a nil cache when the directory cache is disabled.
func NewHealthHandlers(db Pinger, cache Pinger, version string) *HealthHandlers {
	return &HealthHandlers{db: db, cache: cache, version: version, started: time.Now()}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

func pingState(ctx context.Context, p Pinger) string {
	if p == nil {
		return stateDisabled
	}
	if err := p.Ping(ctx); err != nil {
		return stateUnhealthy
	}
	return stateHealthy
}

// HealthCheck answers 503 only when the database is down. A cache outage
// degrades lookups to the database and is reported as degraded.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	db, cache := pingState(ctx, h.db), pingState(ctx, h.cache)
	status, code := stateHealthy, http.StatusOK
	switch {
	case db != stateHealthy:
		status, code = stateUnhealthy, http.StatusServiceUnavailable
	case cache == stateUnhealthy:
		status = stateDegraded
	}

	return c.JSON(code, &HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  map[string]string{"database": db, "redis": cache},
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Version:   h.version,
	})
}

// ReadinessCheck only looks at the database; writes cannot proceed without it.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	if pingState(ctx, h.db) != stateHealthy {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Database unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
