package token

import (
	"errors"
	"testing"
	"time"
)

func TestNormalize_PrimaryOnly(t *testing.T) {
	id, err := Normalize(Claims{"email": "a@x.com", "sub": "U1"}, testCfg)
	if err != nil {
		t.Fatalf("Normalize err: %v", err)
	}
	if id.Email != "a@x.com" || id.Subject != "U1" {
		t.Fatalf("identity = %+v", id)
	}
	if id.Mail != "" {
		t.Fatalf("mail alias = %q, want empty (email no vino del anidado)", id.Mail)
	}
}

func TestNormalize_NestedFillsOnlyEmptyFields(t *testing.T) {
	nested := mustSign(t, Claims{
		"email":     "c@x.com",
		"name":      "Carla",
		"role":      "Member",
		"tenant_id": "T9",
		"user_id":   "U9",
	}, time.Hour)

	primary := Claims{
		"mail":        "b@x.com",
		"role":        "Admin",
		"accessToken": nested,
	}
	id, err := Normalize(primary, testCfg)
	if err != nil {
		t.Fatalf("Normalize err: %v", err)
	}

	// primary gana en conflicto
	if id.Email != "b@x.com" {
		t.Fatalf("email = %q, want b@x.com (primary wins)", id.Email)
	}
	if id.Role != "Admin" {
		t.Fatalf("role = %q, want Admin (primary wins)", id.Role)
	}
	// nested llena lo vacío
	if id.Name != "Carla" || id.TenantID != "T9" || id.Subject != "U9" {
		t.Fatalf("identity = %+v", id)
	}
	// el email NO vino del anidado: sin espejo mail
	if id.Mail != "" {
		t.Fatalf("mail alias = %q, want empty", id.Mail)
	}
}

func TestNormalize_EmailFromNestedMirrorsMail(t *testing.T) {
	nested := mustSign(t, Claims{"email": "c@x.com", "user_id": "U3"}, time.Hour)
	id, err := Normalize(Claims{"name": "Ana", "accessToken": nested}, testCfg)
	if err != nil {
		t.Fatalf("Normalize err: %v", err)
	}
	if id.Email != "c@x.com" {
		t.Fatalf("email = %q, want c@x.com", id.Email)
	}
	if id.Mail != "c@x.com" {
		t.Fatalf("mail alias = %q, want c@x.com", id.Mail)
	}
	if id.Subject != "U3" {
		t.Fatalf("sub = %q, want U3 (nested user_id fallback)", id.Subject)
	}
}

func TestNormalize_InvalidNestedIsNonFatal(t *testing.T) {
	// accessToken sintácticamente inválido: el enriquecimiento es best-effort
	id, err := Normalize(Claims{"email": "a@x.com", "accessToken": "no-es-un-jwt"}, testCfg)
	if err != nil {
		t.Fatalf("Normalize err: %v", err)
	}
	if id.Email != "a@x.com" {
		t.Fatalf("email = %q", id.Email)
	}
}

func TestNormalize_InvalidNestedCannotRescueMissingEmail(t *testing.T) {
	// Sin email primario y con anidado inválido: identidad irrecuperable.
	_, err := Normalize(Claims{"name": "Ana", "accessToken": "no-es-un-jwt"}, testCfg)
	if !errors.Is(err, ErrIdentityUnresolvable) {
		t.Fatalf("err = %v, want ErrIdentityUnresolvable", err)
	}
}

func TestNormalize_NoEmailAnywhere(t *testing.T) {
	_, err := Normalize(Claims{"name": "Ana", "sub": "U1"}, testCfg)
	if !errors.Is(err, ErrIdentityUnresolvable) {
		t.Fatalf("err = %v, want ErrIdentityUnresolvable", err)
	}
}

func TestNormalize_ExpiredNestedIgnored(t *testing.T) {
	nested := mustSign(t, Claims{"email": "c@x.com"}, -time.Minute)
	id, err := Normalize(Claims{"email": "a@x.com", "accessToken": nested}, testCfg)
	if err != nil {
		t.Fatalf("Normalize err: %v", err)
	}
	if id.Email != "a@x.com" || id.Mail != "" {
		t.Fatalf("identity = %+v", id)
	}
}
