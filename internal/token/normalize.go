package token

import "fmt"

// Identity es la forma canónica que consume toda la autorización downstream,
// sin importar qué familia de token o sinónimo de claim la produjo.
type Identity struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Role     string `json:"role,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
	Subject  string `json:"sub,omitempty"`

	// Mail es el alias de compatibilidad: se puebla solo cuando el email se
	// obtuvo del token anidado, para consumidores que esperan cualquiera de
	// los dos nombres.
	Mail string `json:"mail,omitempty"`
}

// nestedTokenClaim es la claim convencional que transporta un token firmado
// embebido dentro de un session token.
const nestedTokenClaim = "accessToken"

// Normalize deriva la identidad canónica de un mapa de claims primario.
//
// Si primary trae un token firmado anidado en "accessToken", se intenta
// verificarlo con el secret compartido para enriquecer campos faltantes.
// El enriquecimiento es best-effort: si el token anidado no verifica, se
// continúa solo con las claims primarias. Regla de merge: primary gana en
// conflicto, nested solo llena campos vacíos.
//
// Orden de resolución de email: primario → anidado → ErrIdentityUnresolvable.
// Sin email no hay identidad: nunca se devuelve un valor parcialmente usable.
func Normalize(primary Claims, cfg Config) (Identity, error) {
	id := Identity{
		Email:    primary.Email(),
		Name:     primary.String("name"),
		Picture:  primary.String("picture"),
		Role:     primary.String("role"),
		TenantID: primary.String("tenant_id"),
		Subject:  primary.Subject(),
	}

	if nestedRaw := primary.String(nestedTokenClaim); nestedRaw != "" {
		if nested, err := verifyHMAC(nestedRaw, cfg); err == nil {
			fillIf(&id.Name, nested.String("name"))
			fillIf(&id.Picture, nested.String("picture"))
			fillIf(&id.Role, nested.String("role"))
			fillIf(&id.TenantID, nested.String("tenant_id"))
			fillIf(&id.Subject, nested.Subject())
			if id.Email == "" {
				if e := nested.Email(); e != "" {
					// Email proveniente del token anidado: espejar en ambos
					// nombres por compatibilidad.
					id.Email = e
					id.Mail = e
				}
			}
		}
		// Fallo de verificación del token anidado: ignorado a propósito.
	}

	if id.Email == "" {
		return Identity{}, fmt.Errorf("%w: no email-bearing claim in any source", ErrIdentityUnresolvable)
	}
	return id, nil
}

func fillIf(dst *string, val string) {
	if *dst == "" && val != "" {
		*dst = val
	}
}
