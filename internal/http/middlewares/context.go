package middlewares

import (
	"context"

	"github.com/dropDatabas3/syncup/internal/token"
)

// =================================================================================
// CONTEXT KEYS
// =================================================================================

type ctxKey string

const (
	// ctxIdentityKey guarda la Identity normalizada del token
	ctxIdentityKey ctxKey = "identity"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// =================================================================================
// CONTEXT SETTERS (Internos, usados por middlewares)
// =================================================================================

// WithIdentity inyecta la identidad normalizada en el contexto
func WithIdentity(ctx context.Context, id *token.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey, id)
}

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// =================================================================================
// CONTEXT GETTERS (Públicos, usados por handlers/services)
// =================================================================================

// GetIdentity obtiene la identidad normalizada del contexto.
// Retorna nil si no hay identidad (middleware no aplicado o ruta pública).
func GetIdentity(ctx context.Context) *token.Identity {
	if v := ctx.Value(ctxIdentityKey); v != nil {
		if id, ok := v.(*token.Identity); ok {
			return id
		}
	}
	return nil
}

// MustGetIdentity obtiene la identidad o hace panic.
// Usar solo en rutas donde RequireIdentity SIEMPRE se aplica.
func MustGetIdentity(ctx context.Context) *token.Identity {
	id := GetIdentity(ctx)
	if id == nil {
		panic("middlewares: identity not in context (RequireIdentity missing?)")
	}
	return id
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
