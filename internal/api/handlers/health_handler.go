package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pnab-cultura/engine/internal/api/types"
	"github.com/pnab-cultura/engine/pkg/logger"
)

// Pinger is a dependency the service needs before it can take traffic.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: map[string]string{"status": "ok"}})
}

// Readiness pings every dependency and reports each one's state.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := map[string]string{}
	for name, c := range h.checks {
		if err := c.Ping(ctx); err != nil {
			logger.L().Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
			report[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "up"
	}
	data := map[string]any{"status": "ready", "dependencies": report}
	if status != http.StatusOK {
		data["status"] = "not_ready"
	}
	writeJSON(w, status, types.APIResponse{Success: status == http.StatusOK, Data: data})
}
