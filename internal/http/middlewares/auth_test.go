package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropDatabas3/syncup/internal/token"
)

const testSecret = "03f13061781d1cc91c8714e28cee1459d939339b0ed081299e98d42fd195fbd3"

var testTokenCfg = token.Config{Secret: testSecret, Algorithm: "HS256"}

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := NewAuthConfig(testTokenCfg, "access_token")
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := GetIdentity(r.Context())
		if id == nil {
			t.Fatal("identity missing from context after RequireIdentity")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(id)
	})
	return Chain(inner, RequireIdentity(cfg))
}

func doRequest(t *testing.T, h http.Handler, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func mustSign(t *testing.T, claims token.Claims) string {
	t.Helper()
	raw, err := token.Sign(claims, time.Hour, testTokenCfg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return raw
}

func mustSeal(t *testing.T, secret string, secure bool, claims token.Claims) string {
	t.Helper()
	raw, err := token.NewSessionDecoder(secret, secure).Seal(claims)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	return raw
}

func decodeIdentity(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return m
}

func TestRequireIdentity_SignedBearer(t *testing.T) {
	h := testHandler(t)
	raw := mustSign(t, token.Claims{"email": "a@x.com", "sub": "U1"})

	rec := doRequest(t, h, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+raw)
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	id := decodeIdentity(t, rec)
	if id["email"] != "a@x.com" {
		t.Errorf("email = %v, want a@x.com", id["email"])
	}
	if id["sub"] != "U1" {
		t.Errorf("sub = %v, want U1", id["sub"])
	}
	if v, ok := id["name"]; ok && v != "" {
		t.Errorf("name = %v, want empty", v)
	}
}

func TestRequireIdentity_EncryptedBearer_PrimaryWins(t *testing.T) {
	h := testHandler(t)
	nested := mustSign(t, token.Claims{"email": "c@x.com"})
	raw := mustSeal(t, testSecret, false, token.Claims{
		"mail":        "b@x.com",
		"user_id":     "U2",
		"accessToken": nested,
	})

	rec := doRequest(t, h, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+raw)
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	id := decodeIdentity(t, rec)
	if id["email"] != "b@x.com" {
		t.Errorf("email = %v, want b@x.com (primary wins over nested)", id["email"])
	}
	if id["sub"] != "U2" {
		t.Errorf("sub = %v, want U2", id["sub"])
	}
	// El alias mail solo se refleja cuando el email salió del token anidado
	if v, ok := id["mail"]; ok && v != "" {
		t.Errorf("mail = %v, want absent", v)
	}
}

func TestRequireIdentity_Unauthorized(t *testing.T) {
	h := testHandler(t)

	wrongKey := mustSeal(t, "another-secret-entirely-not-the-right-one", false,
		token.Claims{"email": "x@x.com"})
	badSig := mustSign(t, token.Claims{"email": "a@x.com"}) + "tampered"
	cookieNoEmail := mustSign(t, token.Claims{"sub": "U9", "name": "Nameless"})

	cases := []struct {
		name   string
		mutate func(*http.Request)
	}{
		{"encrypted wrong key", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+wrongKey)
		}},
		{"signed invalid signature", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+badSig)
		}},
		{"wrong segment count", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer a.b.c.d")
		}},
		{"cookie without email", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "access_token", Value: cookieNoEmail})
		}},
		{"no credentials", nil},
	}

	var firstBody string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, h, tc.mutate)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			// La respuesta es idéntica sin importar el motivo interno
			if firstBody == "" {
				firstBody = rec.Body.String()
			} else if rec.Body.String() != firstBody {
				t.Errorf("401 body differs between failure kinds:\n%s\nvs\n%s",
					rec.Body.String(), firstBody)
			}
		})
	}
}

func TestRequireIdentity_ClientModeSelectsSecureSalt(t *testing.T) {
	h := testHandler(t)
	raw := mustSeal(t, testSecret, true, token.Claims{"email": "p@x.com"})

	// Sin client-mode se usa el salt label sin prefijo y la clave no coincide
	rec := doRequest(t, h, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+raw)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without client-mode = %d, want 401", rec.Code)
	}

	rec = doRequest(t, h, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+raw)
		r.Header.Set("client-mode", "prod")
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status with client-mode: prod = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	if id := decodeIdentity(t, rec); id["email"] != "p@x.com" {
		t.Errorf("email = %v, want p@x.com", id["email"])
	}
}

func TestRequireIdentity_CookieFallback(t *testing.T) {
	h := testHandler(t)
	raw := mustSign(t, token.Claims{"email": "cookie@x.com", "user_id": "U7"})

	rec := doRequest(t, h, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "access_token", Value: raw})
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	id := decodeIdentity(t, rec)
	if id["email"] != "cookie@x.com" {
		t.Errorf("email = %v, want cookie@x.com", id["email"])
	}
	// user_id es fallback válido de sub también en el camino de cookie
	if id["sub"] != "U7" {
		t.Errorf("sub = %v, want U7", id["sub"])
	}
}
