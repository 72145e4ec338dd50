package token

import (
	"errors"
	"strings"
	"testing"
)

func TestClassify_Signed(t *testing.T) {
	fam, err := Classify("aaa.bbb.ccc")
	if err != nil {
		t.Fatalf("Classify err: %v", err)
	}
	if fam != FamilySigned {
		t.Fatalf("family = %v, want signed", fam)
	}
}

func TestClassify_Encrypted(t *testing.T) {
	fam, err := Classify("a.b.c.d.e")
	if err != nil {
		t.Fatalf("Classify err: %v", err)
	}
	if fam != FamilyEncrypted {
		t.Fatalf("family = %v, want encrypted", fam)
	}
}

func TestClassify_RejectsOtherSegmentCounts(t *testing.T) {
	cases := []string{
		"",
		"sintokens",
		"a.b",
		"a.b.c.d",
		"a.b.c.d.e.f",
		strings.Repeat(".", 10),
	}
	for _, raw := range cases {
		fam, err := Classify(raw)
		if err == nil {
			t.Fatalf("Classify(%q) = %v, want error", raw, fam)
		}
		if !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("Classify(%q) err = %v, want ErrMalformedToken", raw, err)
		}
		if fam != FamilyUnknown {
			t.Fatalf("Classify(%q) family = %v, want unknown", raw, fam)
		}
	}
}
