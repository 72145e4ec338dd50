package token

import "errors"

// Errores del pipeline de autenticación. Todos se traducen a 401 en el borde
// HTTP; el detalle interno solo se loguea, nunca se expone al cliente.
var (
	// ErrMalformedToken: la cantidad de segmentos no corresponde a ninguna
	// familia reconocida (ni 3 ni 5).
	ErrMalformedToken = errors.New("token: malformed token")

	// ErrInvalidToken: firma inválida, token expirado, o claim requerida
	// ausente (variante estricta de cookie).
	ErrInvalidToken = errors.New("token: invalid token")

	// ErrDecryptFailed: el JWE no pasó la decriptación autenticada, o el
	// plaintext no es JSON válido.
	ErrDecryptFailed = errors.New("token: decryption failed")

	// ErrIdentityUnresolvable: se agotaron todas las fuentes de email sin un
	// valor usable. La identidad nunca se devuelve parcialmente poblada.
	ErrIdentityUnresolvable = errors.New("token: identity unresolvable")
)
