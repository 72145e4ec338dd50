package token

import (
	"errors"
	"testing"
	"time"
)

var testCfg = Config{Secret: testSecret, Algorithm: "HS256"}

func mustSign(t *testing.T, claims Claims, ttl time.Duration) string {
	t.Helper()
	raw, err := Sign(claims, ttl, testCfg)
	if err != nil {
		t.Fatalf("Sign err: %v", err)
	}
	return raw
}

func TestVerifySigned_ExtractsCanonicalClaims(t *testing.T) {
	raw := mustSign(t, Claims{
		"email":     "a@x.com",
		"name":      "Ana",
		"picture":   "https://img/x.png",
		"role":      "Admin",
		"tenant_id": "T1",
		"sub":       "U1",
	}, time.Hour)

	claims, err := VerifySigned(raw, testCfg)
	if err != nil {
		t.Fatalf("VerifySigned err: %v", err)
	}
	want := map[string]string{
		"email": "a@x.com", "name": "Ana", "picture": "https://img/x.png",
		"role": "Admin", "tenant_id": "T1", "sub": "U1",
	}
	for k, v := range want {
		if claims.String(k) != v {
			t.Fatalf("claim %q = %q, want %q", k, claims.String(k), v)
		}
	}
}

func TestVerifySigned_EmailSynonyms(t *testing.T) {
	// mail sin email: gana mail
	raw := mustSign(t, Claims{"mail": "b@x.com", "user_id": "U2"}, time.Hour)
	claims, err := VerifySigned(raw, testCfg)
	if err != nil {
		t.Fatalf("VerifySigned err: %v", err)
	}
	if claims.String("email") != "b@x.com" {
		t.Fatalf("email = %q, want b@x.com", claims.String("email"))
	}
	if claims.String("sub") != "U2" {
		t.Fatalf("sub = %q, want U2 (user_id fallback)", claims.String("sub"))
	}

	// ambos presentes: email gana
	raw = mustSign(t, Claims{"email": "a@x.com", "mail": "b@x.com"}, time.Hour)
	claims, err = VerifySigned(raw, testCfg)
	if err != nil {
		t.Fatalf("VerifySigned err: %v", err)
	}
	if claims.String("email") != "a@x.com" {
		t.Fatalf("email = %q, want a@x.com", claims.String("email"))
	}

	// preferred_username como último recurso
	raw = mustSign(t, Claims{"preferred_username": "c@x.com"}, time.Hour)
	claims, err = VerifySigned(raw, testCfg)
	if err != nil {
		t.Fatalf("VerifySigned err: %v", err)
	}
	if claims.String("email") != "c@x.com" {
		t.Fatalf("email = %q, want c@x.com", claims.String("email"))
	}
}

func TestVerifySigned_BadSignature(t *testing.T) {
	raw, err := Sign(Claims{"email": "a@x.com"}, time.Hour, Config{Secret: "otro", Algorithm: "HS256"})
	if err != nil {
		t.Fatalf("Sign err: %v", err)
	}
	if _, err := VerifySigned(raw, testCfg); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifySigned_Expired(t *testing.T) {
	raw := mustSign(t, Claims{"email": "a@x.com"}, -time.Minute)
	if _, err := VerifySigned(raw, testCfg); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifySigned_RejectsWrongAlgorithm(t *testing.T) {
	raw := mustSign(t, Claims{"email": "a@x.com"}, time.Hour)
	cfg := Config{Secret: testSecret, Algorithm: "HS512"}
	if _, err := VerifySigned(raw, cfg); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifySessionCookie_RequiresEmail(t *testing.T) {
	// Token válido pero sin claim de email: la variante de cookie es estricta.
	raw := mustSign(t, Claims{"name": "Ana", "user_id": "U1", "tenant_id": "T1"}, time.Hour)
	if _, err := VerifySessionCookie(raw, testCfg); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifySessionCookie_OK(t *testing.T) {
	raw := mustSign(t, Claims{
		"email":     "a@x.com",
		"name":      "Ana",
		"user_id":   "U1",
		"tenant_id": "T1",
	}, time.Hour)

	id, err := VerifySessionCookie(raw, testCfg)
	if err != nil {
		t.Fatalf("VerifySessionCookie err: %v", err)
	}
	if id.Email != "a@x.com" || id.Name != "Ana" || id.Subject != "U1" || id.TenantID != "T1" {
		t.Fatalf("identity = %+v", id)
	}
}
