package token

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// verifyHMAC valida firma y exp/nbf de un JWT compacto con el secret
// compartido y devuelve el mapa crudo de claims.
func verifyHMAC(raw string, cfg Config) (Claims, error) {
	tok, err := jwtv5.Parse(raw,
		func(*jwtv5.Token) (any, error) { return []byte(cfg.Secret), nil },
		jwtv5.WithValidMethods([]string{cfg.Algorithm}),
	)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}
	return Claims(mc), nil
}

// Verify valida un token firmado y devuelve las claims crudas, sin colapso de
// sinónimos. Para tokens first-party con claims propias (magic links).
func Verify(raw string, cfg Config) (Claims, error) {
	return verifyHMAC(raw, cfg)
}

// VerifySigned verifica un token firmado del header Authorization y extrae el
// set fijo de claims reconocidas, colapsando sinónimos (email|mail|
// preferred_username; sub|user_id) con first-non-empty-wins.
func VerifySigned(raw string, cfg Config) (Claims, error) {
	payload, err := verifyHMAC(raw, cfg)
	if err != nil {
		return nil, err
	}
	out := Claims{}
	setIf := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	setIf("email", payload.Email())
	setIf("name", payload.String("name"))
	setIf("picture", payload.String("picture"))
	setIf("role", payload.String("role"))
	setIf("tenant_id", payload.String("tenant_id"))
	setIf("sub", payload.Subject())
	return out, nil
}

// VerifySessionCookie verifica el token firmado residente en la cookie de
// sesión (login por magic link). Es la variante estricta: email es
// obligatorio, sin email el token se rechaza aunque el resto esté presente.
// Los cookie tokens son first-party y mínimos, así que no pasa por el
// enriquecimiento anidado del normalizador.
func VerifySessionCookie(raw string, cfg Config) (Identity, error) {
	payload, err := verifyHMAC(raw, cfg)
	if err != nil {
		return Identity{}, err
	}
	email := payload.Email()
	if email == "" {
		return Identity{}, fmt.Errorf("%w: session cookie without email", ErrInvalidToken)
	}
	return Identity{
		Email:    email,
		Name:     payload.String("name"),
		Picture:  payload.String("picture"),
		Role:     payload.String("role"),
		TenantID: payload.String("tenant_id"),
		Subject:  payload.Subject(),
	}, nil
}

// Sign emite un token firmado con iat/exp agregados a las claims dadas.
// Lo usan el servicio de magic links (session JWT) y synctl.
func Sign(claims Claims, ttl time.Duration, cfg Config) (string, error) {
	method := jwtv5.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return "", fmt.Errorf("unknown signing algorithm %q", cfg.Algorithm)
	}
	now := time.Now().UTC()
	mc := jwtv5.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	for k, v := range claims {
		mc[k] = v
	}
	return jwtv5.NewWithClaims(method, mc).SignedString([]byte(cfg.Secret))
}
