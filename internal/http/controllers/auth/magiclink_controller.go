// Package auth contiene los controllers del flujo de autenticación.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	dto "github.com/dropDatabas3/syncup/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/syncup/internal/http/errors"
	"github.com/dropDatabas3/syncup/internal/http/helpers"
	svc "github.com/dropDatabas3/syncup/internal/http/services/auth"
	"github.com/dropDatabas3/syncup/internal/observability/logger"
)

// SessionCookie configura la cookie de sesión que setean verify/authenticate.
type SessionCookie struct {
	Name     string
	Domain   string
	SameSite string
	Secure   bool
}

// MagicLinkController maneja las rutas /v1/auth/magic/*.
type MagicLinkController struct {
	service     *svc.MagicLinkService
	cookie      SessionCookie
	frontendURL string
}

// NewMagicLinkController crea el controller.
func NewMagicLinkController(service *svc.MagicLinkService, cookie SessionCookie, frontendURL string) *MagicLinkController {
	return &MagicLinkController{service: service, cookie: cookie, frontendURL: frontendURL}
}

// Send maneja POST /v1/auth/magic/send.
func (c *MagicLinkController) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MagicLinkController.Send"))

	var req dto.MagicSendRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.Send(ctx, req)
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, res)
}

// Verify maneja GET /v1/auth/magic/verify: consume el link, setea la cookie
// de sesión y redirige al frontend con el access token en la query.
func (c *MagicLinkController) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MagicLinkController.Verify"))

	q := r.URL.Query()
	raw := q.Get("token")
	if raw == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing token"))
		return
	}

	res, err := c.service.Authenticate(ctx, raw)
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	// URL final: base del frontend + path del callback + token y workspace
	base := strings.TrimRight(firstNonEmpty(q.Get("redirect_base_url"), c.frontendURL), "/")
	path := q.Get("redirect_path")
	if path == "" {
		path = "/auth-callback"
	}
	params := url.Values{}
	params.Set("token", res.AccessToken)
	if res.WorkspaceID != "" {
		params.Set("workspace_id", res.WorkspaceID)
	}
	finalURL := base + "/" + strings.TrimLeft(path, "/") + "?" + params.Encode()

	c.setSessionCookie(w, res.AccessToken, q.Get("cookie_domain"), base, res)

	http.Redirect(w, r, finalURL, http.StatusFound)
}

// Authenticate maneja POST /v1/auth/magic/authenticate: la variante
// programática que devuelve el token en el body además de la cookie.
func (c *MagicLinkController) Authenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MagicLinkController.Authenticate"))

	q := r.URL.Query()
	raw := q.Get("token")
	if raw == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing token"))
		return
	}

	res, err := c.service.Authenticate(ctx, raw)
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	c.setSessionCookie(w, res.AccessToken, q.Get("cookie_domain"), c.frontendURL, res)

	helpers.WriteJSON(w, http.StatusOK, dto.AuthenticateResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		User:        res.User,
		WorkspaceID: res.WorkspaceID,
	})
}

// Status maneja GET /v1/auth/magic/status/{token}. No consume el link y
// siempre responde 200: la validez va en el body.
func (c *MagicLinkController) Status(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "token")
	helpers.WriteJSON(w, http.StatusOK, c.service.Status(r.Context(), raw))
}

// Cleanup maneja DELETE /v1/auth/magic/cleanup.
func (c *MagicLinkController) Cleanup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MagicLinkController.Cleanup"))

	n, err := c.service.Cleanup(ctx)
	if err != nil {
		log.Error("cleanup failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.CleanupResponse{
		Message:      fmt.Sprintf("Cleaned up %d expired magic links", n),
		CleanedCount: n,
	})
}

// setSessionCookie setea la cookie HttpOnly con el session JWT. Contra
// localhost se relaja SameSite/Secure para que el flujo funcione en dev.
func (c *MagicLinkController) setSessionCookie(w http.ResponseWriter, access, domain, base string, res *svc.AuthResult) {
	sameSite := c.cookie.SameSite
	secure := c.cookie.Secure
	if isLocal(base) {
		sameSite = "lax"
		secure = false
	}
	if domain == "" {
		domain = c.cookie.Domain
	}
	http.SetCookie(w, helpers.BuildCookie(c.cookie.Name, access, domain, sameSite, secure, res.SessionTTL))
}

func isLocal(base string) bool {
	return strings.HasPrefix(base, "http://localhost") || strings.HasPrefix(base, "http://127.0.0.1")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

// handleError mapea errores del servicio a respuestas HTTP.
func (c *MagicLinkController) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	switch {
	case errors.Is(err, svc.ErrMissingEmail):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing email"))
	case errors.Is(err, svc.ErrUnknownEmail), errors.Is(err, svc.ErrUserNotFound):
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("user not found"))
	case errors.Is(err, svc.ErrLinkUsed):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("magic link has already been used"))
	case errors.Is(err, svc.ErrLinkExpired):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("magic link has expired"))
	case errors.Is(err, svc.ErrLinkInvalid):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid magic link token"))
	default:
		log.Error("unexpected magic link error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
	}
}
