package token

import (
	"errors"
	"strings"
	"testing"
)

const testSecret = "03f13061781d1cc91c8714e28cee1459d939339b0ed081299e98d42fd195fbd3"

func TestSessionDecoder_RoundTrip(t *testing.T) {
	d := NewSessionDecoder(testSecret, false)

	in := Claims{
		"email":     "a@x.com",
		"name":      "Ana",
		"tenant_id": "T1",
	}
	raw, err := d.Seal(in)
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}

	// El token sellado debe ser un JWE compacto de 5 segmentos
	if got := strings.Count(raw, "."); got != 4 {
		t.Fatalf("sealed token has %d dots, want 4", got)
	}
	if fam, err := Classify(raw); err != nil || fam != FamilyEncrypted {
		t.Fatalf("Classify(sealed) = %v, %v", fam, err)
	}

	out, err := d.Open(raw)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	for k, want := range in {
		if out.String(k) != want {
			t.Fatalf("claim %q = %q, want %q", k, out.String(k), want)
		}
	}
}

func TestSessionDecoder_SaltLabelSensitivity(t *testing.T) {
	prod := NewSessionDecoder(testSecret, true)
	dev := NewSessionDecoder(testSecret, false)

	raw, err := prod.Seal(Claims{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}

	// Mismo secret, distinto salt label: debe fallar, nunca devolver claims
	// equivocadas en silencio.
	if _, err := dev.Open(raw); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("cross-label Open err = %v, want ErrDecryptFailed", err)
	}
	if _, err := prod.Open(raw); err != nil {
		t.Fatalf("same-label Open err: %v", err)
	}
}

func TestSessionDecoder_WrongSecret(t *testing.T) {
	a := NewSessionDecoder(testSecret, false)
	b := NewSessionDecoder("otro-secreto-distinto", false)

	raw, err := a.Seal(Claims{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}
	if _, err := b.Open(raw); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("Open with wrong key err = %v, want ErrDecryptFailed", err)
	}
}

func TestSessionDecoder_TamperedCiphertext(t *testing.T) {
	d := NewSessionDecoder(testSecret, false)
	raw, err := d.Seal(Claims{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 5 {
		t.Fatalf("unexpected segment count: %d", len(parts))
	}
	// Corromper el ciphertext (cuarto segmento)
	ct := []byte(parts[3])
	if ct[0] == 'A' {
		ct[0] = 'B'
	} else {
		ct[0] = 'A'
	}
	parts[3] = string(ct)

	if _, err := d.Open(strings.Join(parts, ".")); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("Open tampered err = %v, want ErrDecryptFailed", err)
	}
}

func TestSessionDecoder_Garbage(t *testing.T) {
	d := NewSessionDecoder(testSecret, false)
	if _, err := d.Open("x.x.x.x.x"); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("Open garbage err = %v, want ErrDecryptFailed", err)
	}
}
