package token

import (
	"fmt"
	"strings"
)

// Family clasifica un bearer token por su formato de segmentos.
type Family int

const (
	FamilyUnknown Family = iota
	// FamilySigned: JWT compacto de 3 segmentos (header.payload.signature).
	FamilySigned
	// FamilyEncrypted: JWE compacto de 5 segmentos.
	FamilyEncrypted
)

func (f Family) String() string {
	switch f {
	case FamilySigned:
		return "signed"
	case FamilyEncrypted:
		return "encrypted"
	default:
		return "unknown"
	}
}

// Classify determina la familia de un token contando delimitadores.
// Cualquier otra cantidad de segmentos es un error: nunca se coerciona
// silenciosamente a una familia.
func Classify(raw string) (Family, error) {
	switch strings.Count(raw, ".") {
	case 2:
		return FamilySigned, nil
	case 4:
		return FamilyEncrypted, nil
	default:
		return FamilyUnknown, fmt.Errorf("%w: %d segments", ErrMalformedToken, strings.Count(raw, ".")+1)
	}
}
