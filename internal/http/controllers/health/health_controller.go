// Package health contiene los controllers de health checks.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/syncup/internal/http/helpers"
	"github.com/dropDatabas3/syncup/internal/observability/logger"
	"github.com/dropDatabas3/syncup/internal/store"
)

// Controller maneja /healthz y /readyz.
type Controller struct {
	repo store.Repository
}

// NewController crea el controller de health.
func NewController(repo store.Repository) *Controller {
	return &Controller{repo: repo}
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// Healthz es el liveness check: el proceso responde.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Readyz es el readiness check: verifica las dependencias (store).
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	res := healthResponse{Status: "ready", Components: map[string]string{}}
	status := http.StatusOK

	if err := c.repo.Ping(ctx); err != nil {
		logger.From(r.Context()).Warn("store ping failed",
			logger.Component("health"),
			logger.Err(err),
		)
		res.Status = "unavailable"
		res.Components["store"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		res.Components["store"] = "ok"
	}

	helpers.WriteJSON(w, status, res)
}
