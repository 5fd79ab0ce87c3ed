package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Checker is satisfied by the database and the risk cache.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckerFunc adapts a ping function, e.g. RiskCache.Ping.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) HealthCheck(ctx context.Context) error {
	return f(ctx)
}

// versioner is implemented by database.DB.
type versioner interface {
	GetVersion(ctx context.Context) (string, error)
}

type HealthHandler struct {
	db    Checker
	cache Checker
}

// NewHealthHandler takes an optional cache; a nil cache is reported as disabled.
func NewHealthHandler(db Checker, cache Checker) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health reports the database as required and the cache as degraded-only.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"

	if err := h.db.HealthCheck(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
		if v, ok := h.db.(versioner); ok {
			if version, err := v.GetVersion(ctx); err == nil {
				checks["database_version"] = version
			}
		}
	}

	switch {
	case h.cache == nil:
		checks["cache"] = "disabled"
	case h.cache.HealthCheck(ctx) != nil:
		checks["cache"] = "unavailable"
		if status == "healthy" {
			status = "degraded"
		}
	default:
		checks["cache"] = "healthy"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "not ready",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
