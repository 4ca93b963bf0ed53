// Package siret validates French SIRET establishment identifiers and derives
// intra-community VAT numbers from them.
package siret

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// PlaceholderSIRET is emitted as the seller legal id when no SIRET was supplied.
const PlaceholderSIRET = "00000000000000"

// Normalize strips whitespace and hyphens, the separators usually found in
// identifiers copied from registration documents.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		if unicode.IsSpace(r) || r == '-' {
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

// IsValid reports whether raw is a well-formed SIRET: after normalization,
// exactly 14 ASCII digits whose checksum is a multiple of 10. Digits at odd
// zero-based positions are doubled, minus 9 when the double exceeds 9.
func IsValid(raw string) bool {
	s := Normalize(raw)
	if len(s) != 14 {
		return false
	}

	sum := 0

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}

		d := int(c - '0')
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}

		sum += d
	}

	return sum%10 == 0
}

// VATNumber derives the French intra-community VAT identifier from a SIRET.
// The SIREN is the first nine digits; the two-digit key is
// (12 + 3*(SIREN mod 97)) mod 97. A value too short to carry a SIREN falls
// back to "FR00" plus the normalized input, which is not a compliant
// identifier but keeps the document emittable.
func VATNumber(raw string) string {
	s := Normalize(raw)
	if len(s) < 9 {
		return "FR00" + s
	}

	siren := s[:9]

	n, err := strconv.ParseInt(siren, 10, 64)
	if err != nil {
		return "FR00" + s
	}

	key := (12 + 3*(n%97)) % 97

	return fmt.Sprintf("FR%02d%s", key, siren)
}
