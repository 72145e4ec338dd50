// Package auth contiene los DTOs del flujo de autenticación.
package auth

// MagicSendRequest es el body de POST /v1/auth/magic/send.
type MagicSendRequest struct {
	Email       string `json:"email"`
	Purpose     string `json:"purpose"` // login | signup | invite
	WorkspaceID string `json:"workspace_id,omitempty"`
}

// MagicSendResponse describe el link creado. No incluye el token: ese viaja
// solo por email.
type MagicSendResponse struct {
	TokenID     string `json:"token_id"`
	Email       string `json:"email"`
	ExpiresAt   int64  `json:"expires_at"`
	Purpose     string `json:"purpose"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	IsValid     bool   `json:"is_valid"`
}

// MagicStatusResponse es la respuesta del check no-consumidor.
type MagicStatusResponse struct {
	IsValid     bool   `json:"is_valid"`
	Email       string `json:"email,omitempty"`
	Purpose     string `json:"purpose,omitempty"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	ExpiresAt   int64  `json:"expires_at,omitempty"`
	Error       string `json:"error,omitempty"`
}

// UserPayload es la proyección del usuario que viaja en respuestas y en el
// session JWT.
type UserPayload struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Role     string `json:"role,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
}

// AuthenticateResponse es la respuesta de POST /v1/auth/magic/authenticate.
type AuthenticateResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        UserPayload `json:"user"`
	WorkspaceID string      `json:"workspace_id,omitempty"`
}

// CleanupResponse es la respuesta de DELETE /v1/auth/magic/cleanup.
type CleanupResponse struct {
	Message      string `json:"message"`
	CleanedCount int64  `json:"cleaned_count"`
}
