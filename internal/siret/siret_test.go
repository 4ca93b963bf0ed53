package siret_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LL7Baucarre/facture/internal/siret"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		siret string
		want  bool
	}{
		{name: "valid", siret: "39112356500016", want: true},
		{name: "valid other establishment", siret: "39112356500059", want: true},
		{name: "valid all zeros placeholder", siret: "00000000000000", want: true},
		{name: "valid with spaces", siret: "391 123 565 00016", want: true},
		{name: "valid with hyphens", siret: "391-123-565-00016", want: true},
		{name: "valid with surrounding whitespace", siret: "  39112356500016\t", want: true},
		{name: "checksum failure", siret: "39112356500017", want: false},
		{name: "checksum failure full range", siret: "12345678901234", want: false},
		{name: "too short", siret: "3911235650001", want: false},
		{name: "too long", siret: "391123565000160", want: false},
		{name: "non digit", siret: "3911235650001X", want: false},
		{name: "empty", siret: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, siret.IsValid(tt.siret))
		})
	}
}

func TestVATNumber(t *testing.T) {
	tests := []struct {
		name  string
		siret string
		want  string
	}{
		// SIREN 391123565: 391123565 mod 97 = 68, key = (12 + 3*68) mod 97 = 22.
		{name: "derived from siret", siret: "39112356500016", want: "FR22391123565"},
		{name: "derived from bare siren", siret: "391123565", want: "FR22391123565"},
		{name: "separators ignored", siret: "391 123 565 00016", want: "FR22391123565"},
		{name: "placeholder siret", siret: "00000000000000", want: "FR12000000000"},
		{name: "empty fallback", siret: "", want: "FR00"},
		{name: "short fallback kept verbatim", siret: "1234", want: "FR001234"},
		{name: "non numeric fallback", siret: "ABCDEFGHI12345", want: "FR00ABCDEFGHI12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, siret.VATNumber(tt.siret))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "39112356500016", siret.Normalize(" 391\t123-565 000-16\n"))
	assert.Equal(t, "", siret.Normalize("  "))
}
