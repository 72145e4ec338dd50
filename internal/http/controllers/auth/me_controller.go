package auth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/syncup/internal/http/errors"
	"github.com/dropDatabas3/syncup/internal/http/helpers"
	"github.com/dropDatabas3/syncup/internal/http/middlewares"
	svc "github.com/dropDatabas3/syncup/internal/http/services/auth"
)

// MeController maneja GET /v1/auth/me.
type MeController struct {
	identity *svc.IdentityService
}

// NewMeController crea el controller.
func NewMeController(identity *svc.IdentityService) *MeController {
	return &MeController{identity: identity}
}

// Me devuelve la identidad del request más el usuario/workspace resueltos.
// Corre detrás de RequireIdentity: si no hay identidad en contexto es un bug
// de wiring, no un 401.
func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	id := middlewares.GetIdentity(r.Context())
	if id == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, c.identity.Resolve(r.Context(), id))
}
