package health

import (
	"context"
	"net/http"
	"time"

	"github.com/hilthontt/encore/internal/infrastructure/json"
)

// Check reports whether a backing service is reachable.
type Check func(ctx context.Context) error

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type Handler struct {
	started time.Time
	checks  map[string]Check
}

func NewHandler(checks map[string]Check) *Handler {
	return &Handler{
		started: time.Now(),
		checks:  checks,
	}
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	data := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}
	status := http.StatusOK

	if len(h.checks) > 0 {
		data.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				data.Checks[name] = err.Error()
				data.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			data.Checks[name] = "ok"
		}
	}

	json.Write(w, status, data)
}
