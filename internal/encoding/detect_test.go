package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LL7Baucarre/facture/internal/encoding"
)

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	// Valid UTF-8 with French characters should pass through unchanged.
	input := "Désignation;Quantité;Prix unitaire HT;TVA\nPrestation de conseil;2;500,00;20\n"
	r, err := encoding.NewUTF8Reader(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	// UTF-8 BOM (0xEF 0xBB 0xBF) should be stripped.
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("Désignation;Quantité\n")
	input := append(bom, content...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Désignation;Quantité\n", string(got))
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	// Windows-1252 encoded "Désignation;Qté\n" (é = 0xE9).
	input := []byte{
		'D', 0xE9, 's', 'i', 'g', 'n', 'a', 't', 'i', 'o', 'n', ';',
		'Q', 't', 0xE9, '\n',
	}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Désignation;Qté\n", string(got))
}

func TestNewUTF8Reader_Latin9EuroSign(t *testing.T) {
	// ISO-8859-15 encoded "Prix € HT\n" (€ = 0xA4, the Latin-9 euro).
	input := []byte{'P', 'r', 'i', 'x', ' ', 0xA4, ' ', 'H', 'T', '\n'}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Prix € HT\n", string(got))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	// UTF-16 LE with BOM: "N°;Date\n".
	input := []byte{
		0xFF, 0xFE,
		'N', 0x00, 0xB0, 0x00, ';', 0x00,
		'D', 0x00, 'a', 0x00, 't', 0x00, 'e', 0x00, '\n', 0x00,
	}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "N°;Date\n", string(got))
}
