package auth

import "github.com/dropDatabas3/syncup/internal/token"

// MeResponse es la respuesta de GET /v1/auth/me: la identidad canónica del
// token más el usuario/workspace resueltos (si existen en el store).
type MeResponse struct {
	Identity    token.Identity `json:"identity"`
	User        *UserPayload   `json:"user,omitempty"`
	WorkspaceID string         `json:"workspace_id,omitempty"`
}
