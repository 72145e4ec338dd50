package token

// Config es la configuración de firma/cifrado compartida por todo el proceso.
// Se construye una vez en startup y se pasa por inyección; no hay estado
// mutable, por lo que es segura para lectores concurrentes.
type Config struct {
	// Secret es el secreto compartido con el emisor (firma HMAC e IKM de HKDF).
	Secret string
	// Algorithm es el método de firma esperado (ej: "HS256").
	Algorithm string
}

// Claims es el mapa crudo de claims de un token decodificado/verificado.
// Las keys no son únicas entre sinónimos (email|mail|preferred_username);
// los helpers de abajo colapsan esa precedencia en un solo lugar.
type Claims map[string]any

// String devuelve la claim como string, o "" si no existe o no es string.
func (c Claims) String(key string) string {
	if c == nil {
		return ""
	}
	if v, ok := c[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// first devuelve el primer valor string no vacío entre las keys dadas.
func (c Claims) first(keys ...string) string {
	for _, k := range keys {
		if v := c.String(k); v != "" {
			return v
		}
	}
	return ""
}

// Email resuelve la claim de email con la precedencia documentada:
// email → mail → preferred_username.
func (c Claims) Email() string {
	return c.first("email", "mail", "preferred_username")
}

// Subject resuelve el identificador de sujeto: sub → user_id.
func (c Claims) Subject() string {
	return c.first("sub", "user_id")
}
