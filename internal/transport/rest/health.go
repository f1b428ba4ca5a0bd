package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

type probeStatus string

const (
	statusHealthy   probeStatus = "healthy"
	statusUnhealthy probeStatus = "unhealthy"
)

type componentCheck struct {
	Status     probeStatus `json:"status"`
	Message    string      `json:"message,omitempty"`
	DurationMs int64       `json:"duration_ms"`
}

type healthResponse struct {
	Status     probeStatus               `json:"status"`
	CheckedAt  time.Time                 `json:"checked_at"`
	Components map[string]componentCheck `json:"components"`
}

type HealthHandler struct {
	db      *sql.DB
	started time.Time
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// pingHandler is the liveness probe: the process is up and serving.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":         "OK",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// healthCheckHandler is the readiness probe: pings the database and reports
// per-component state.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)

	dbCheck := componentCheck{
		Status:     statusHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		dbCheck.Status = statusUnhealthy
		dbCheck.Message = err.Error()
	}

	resp := healthResponse{
		Status:     dbCheck.Status,
		CheckedAt:  time.Now(),
		Components: map[string]componentCheck{"postgres": dbCheck},
	}

	statusCode := http.StatusOK
	if resp.Status == statusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}
