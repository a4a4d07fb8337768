// Package health expone /healthz.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

// Pinger es el subconjunto del store que se chequea.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	store   Pinger
	version string
	started time.Time
}

func NewHealthController(store Pinger, version string) *HealthController {
	return &HealthController{store: store, version: version, started: time.Now()}
}

type response struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks"`
}

// Health responde 200 si la base responde, 503 si no.
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	res := response{
		Status:  "ok",
		Version: c.version,
		Uptime:  time.Since(c.started).Truncate(time.Second).String(),
		Checks:  map[string]string{"db": "ok"},
	}
	status := http.StatusOK
	if c.store != nil {
		if err := c.store.Ping(ctx); err != nil {
			logger.From(ctx).Warn("healthz: db ping failed", logger.Err(err))
			res.Status = "degraded"
			res.Checks["db"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, status, res)
}
