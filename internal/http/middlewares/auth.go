package middlewares

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/syncup/internal/http/errors"
	"github.com/dropDatabas3/syncup/internal/metrics"
	"github.com/dropDatabas3/syncup/internal/observability/logger"
	"github.com/dropDatabas3/syncup/internal/token"
)

// =================================================================================
// AUTHENTICATION MIDDLEWARE
// =================================================================================

// headerClientMode selecciona el salt de producción para tokens cifrados.
// Los clientes detrás del proxy de producción mandan `client-mode: prod`.
const headerClientMode = "client-mode"

// AuthConfig configura el middleware de identidad.
type AuthConfig struct {
	// Token es la configuración de verificación de JWT firmados.
	Token token.Config
	// CookieName es el nombre de la cookie de sesión (fallback sin header).
	CookieName string
	// Decoder descifra tokens de sesión con el salt inseguro (dev).
	Decoder *token.SessionDecoder
	// SecureDecoder descifra con el salt `__Secure-` (client-mode: prod).
	SecureDecoder *token.SessionDecoder
}

// NewAuthConfig construye la configuración con ambos decoders derivados
// del mismo secret. La derivación HKDF se hace una sola vez.
func NewAuthConfig(cfg token.Config, cookieName string) AuthConfig {
	return AuthConfig{
		Token:         cfg,
		CookieName:    cookieName,
		Decoder:       token.NewSessionDecoder(cfg.Secret, false),
		SecureDecoder: token.NewSessionDecoder(cfg.Secret, true),
	}
}

// RequireIdentity resuelve la identidad del request y la inyecta en el contexto.
//
// Orden de resolución:
//  1. Authorization: Bearer <token>. Se clasifica por cantidad de segmentos:
//     JWT firmado (3) se verifica con HMAC; JWE (5) se descifra con la clave
//     de sesión. En ambos casos las claims pasan por Normalize, que aplica
//     sinónimos y el enriquecimiento con el token anidado.
//  2. Cookie de sesión: verificación estricta, sin enriquecimiento.
//
// Cualquier falla responde el MISMO 401 genérico: el motivo interno solo va
// a logs de debug y a métricas, nunca al cliente.
func RequireIdentity(cfg AuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.From(r.Context())

			id, family, err := resolveIdentity(r, cfg)
			if err != nil {
				outcome := outcomeFor(err)
				metrics.AuthDecodeTotal.WithLabelValues(family.String(), outcome).Inc()
				log.Debug("auth failed",
					logger.Op("require_identity"),
					logger.TokenFamily(family.String()),
					logger.String("outcome", outcome),
					logger.Err(err),
				)
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}

			metrics.AuthDecodeTotal.WithLabelValues(family.String(), "ok").Inc()

			// Logger scoped con la identidad resuelta
			ctx := logger.ToContext(r.Context(), log.With(logger.Email(id.Email)))
			ctx = WithIdentity(ctx, id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// errMissingCredentials indica que el request no trajo token ni cookie.
var errMissingCredentials = stderrors.New("missing credentials")

// resolveIdentity implementa el orden header -> cookie.
func resolveIdentity(r *http.Request, cfg AuthConfig) (*token.Identity, token.Family, error) {
	if raw := bearerToken(r); raw != "" {
		return identityFromBearer(r, raw, cfg)
	}

	// Fallback: cookie de sesión. Camino estricto, sin token anidado.
	if c, err := r.Cookie(cfg.CookieName); err == nil && c.Value != "" {
		id, err := token.VerifySessionCookie(c.Value, cfg.Token)
		if err != nil {
			return nil, token.FamilySigned, err
		}
		return &id, token.FamilySigned, nil
	}

	return nil, token.FamilyUnknown, errMissingCredentials
}

func identityFromBearer(r *http.Request, raw string, cfg AuthConfig) (*token.Identity, token.Family, error) {
	family, err := token.Classify(raw)
	if err != nil {
		return nil, family, err
	}

	var claims token.Claims
	switch family {
	case token.FamilyEncrypted:
		decoder := cfg.Decoder
		if strings.EqualFold(strings.TrimSpace(r.Header.Get(headerClientMode)), "prod") {
			decoder = cfg.SecureDecoder
		}
		claims, err = decoder.Open(raw)
	default: // FamilySigned
		claims, err = token.VerifySigned(raw, cfg.Token)
	}
	if err != nil {
		return nil, family, err
	}

	id, err := token.Normalize(claims, cfg.Token)
	if err != nil {
		return nil, family, err
	}
	return &id, family, nil
}

// bearerToken extrae el token del header Authorization (case-insensitive).
func bearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[len("Bearer "):])
}

// outcomeFor mapea el error interno al label de métricas.
func outcomeFor(err error) string {
	switch {
	case stderrors.Is(err, errMissingCredentials):
		return "missing"
	case stderrors.Is(err, token.ErrMalformedToken):
		return "malformed"
	case stderrors.Is(err, token.ErrDecryptFailed):
		return "decrypt_failed"
	case stderrors.Is(err, token.ErrIdentityUnresolvable):
		return "unresolvable"
	default:
		return "invalid"
	}
}
