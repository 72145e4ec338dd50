package token

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwe"
	"golang.org/x/crypto/hkdf"
)

// Salt labels de Auth.js: el emisor nombra su cookie de sesión distinto según
// el transporte sea TLS o no, y la clave de cifrado se deriva por label.
const (
	saltLabelSecure   = "__Secure-authjs.session-token"
	saltLabelInsecure = "authjs.session-token"

	// A256CBC-HS512 requiere una clave de 64 bytes (32 HMAC + 32 AES).
	sessionKeyLen = 64
)

// SessionDecoder abre (y sella, para fixtures/CLI) session tokens cifrados
// estilo Auth.js: JWE compacto con alg "dir" y enc "A256CBC-HS512".
// La clave derivada se memoiza en el constructor: los inputs son constantes
// durante la vida del proceso.
type SessionDecoder struct {
	salt string
	key  []byte
}

// NewSessionDecoder construye un decoder para el entorno dado. secureCookies
// selecciona el salt label de producción (__Secure-...) o el de desarrollo.
func NewSessionDecoder(secret string, secureCookies bool) *SessionDecoder {
	salt := saltLabelInsecure
	if secureCookies {
		salt = saltLabelSecure
	}
	return &SessionDecoder{
		salt: salt,
		key:  deriveSessionKey(secret, salt),
	}
}

// deriveSessionKey expande el secret por HKDF-SHA256 usando el salt label como
// salt y un info string que embebe el label, de modo que las claves difieren
// entre entornos aun con el mismo secret.
func deriveSessionKey(secret, salt string) []byte {
	info := fmt.Sprintf("Auth.js Generated Encryption Key (%s)", salt)
	r := hkdf.New(sha256.New, []byte(secret), []byte(salt), []byte(info))
	key := make([]byte, sessionKeyLen)
	// 64 bytes está muy por debajo del límite de expansión de HKDF-SHA256;
	// ReadFull no puede fallar acá.
	_, _ = io.ReadFull(r, key)
	return key
}

// Open decripta el JWE y parsea el plaintext como Claims.
// Cualquier fallo (autenticación, padding, JSON inválido) devuelve
// ErrDecryptFailed: el caller lo mapea a 401 sin distinguir la causa.
func (d *SessionDecoder) Open(raw string) (Claims, error) {
	plaintext, err := jwe.Decrypt([]byte(raw), jwe.WithKey(jwa.DIRECT, d.key))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	var c Claims
	if err := json.Unmarshal(plaintext, &c); err != nil {
		return nil, fmt.Errorf("%w: bad payload: %v", ErrDecryptFailed, err)
	}
	return c, nil
}

// Seal es la operación inversa a Open. La usa synctl y los tests para
// construir session tokens; el servicio solo decodifica.
func (d *SessionDecoder) Seal(c Claims) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}
	ct, err := jwe.Encrypt(payload,
		jwe.WithKey(jwa.DIRECT, d.key),
		jwe.WithContentEncryption(jwa.A256CBC_HS512),
	)
	if err != nil {
		return "", fmt.Errorf("encrypt session token: %w", err)
	}
	return string(ct), nil
}
