// Package router arma el árbol de rutas HTTP del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authctrl "github.com/dropDatabas3/syncup/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/syncup/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/syncup/internal/http/errors"
	mw "github.com/dropDatabas3/syncup/internal/http/middlewares"
	"github.com/dropDatabas3/syncup/internal/rate"
)

// Deps contiene las dependencias para armar el router.
type Deps struct {
	Auth        mw.AuthConfig
	MagicLink   *authctrl.MagicLinkController
	Me          *authctrl.MeController
	Health      *healthctrl.Controller
	SendLimiter rate.Limiter // nil = sin rate limit
	CORSOrigins []string
}

// New construye el handler raíz con middlewares globales y rutas.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares globales, del más externo al más interno
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(deps.CORSOrigins),
	)

	// ─── Infra ───
	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	// ─── Auth ───
	r.Route("/v1/auth", func(r chi.Router) {
		// Send manda emails: rate limit por IP+email
		r.Group(func(r chi.Router) {
			r.Use(mw.WithRateLimit(deps.SendLimiter, mw.EmailRateKey))
			r.Post("/magic/send", deps.MagicLink.Send)
		})

		r.Get("/magic/verify", deps.MagicLink.Verify)
		r.Post("/magic/authenticate", deps.MagicLink.Authenticate)
		r.Get("/magic/status/{token}", deps.MagicLink.Status)
		r.Delete("/magic/cleanup", deps.MagicLink.Cleanup)

		// Rutas autenticadas
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireIdentity(deps.Auth))
			r.Get("/me", deps.Me.Me)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	return r
}
