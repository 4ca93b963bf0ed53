package pdfa_test

import (
	"bytes"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LL7Baucarre/facture/internal/pdfa"
)

func basePDF(t *testing.T) []byte {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(40, 10, "FACTURE FAC-2025-001")

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))

	return buf.Bytes()
}

func TestEmbed_AttachesXML(t *testing.T) {
	base := basePDF(t)
	xml := []byte(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<rsm:CrossIndustryInvoice/>")

	out, err := pdfa.New().Embed(base, xml, pdfa.FlavorFacturX, "basic")
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.HasPrefix(out, base), "original bytes must be preserved")
	assert.Contains(t, string(out), pdfa.AttachmentName)
	assert.Contains(t, string(out), "/EmbeddedFiles")
	assert.Contains(t, string(out), "/AFRelationship /Data")
	assert.Contains(t, string(out), "/Prev ")
	assert.True(t, bytes.Contains(out, xml), "xml payload must be embedded verbatim")
	assert.True(t, bytes.HasSuffix(bytes.TrimRight(out, "\n"), []byte("%%EOF")))
	assert.Equal(t, 2, bytes.Count(out, []byte("trailer")))
}

func TestEmbed_SecondAttachmentRefused(t *testing.T) {
	base := basePDF(t)
	xml := []byte("<rsm:CrossIndustryInvoice/>")

	out, err := pdfa.New().Embed(base, xml, pdfa.FlavorFacturX, "basic")
	require.NoError(t, err)

	_, err = pdfa.New().Embed(out, xml, pdfa.FlavorFacturX, "basic")
	assert.ErrorIs(t, err, pdfa.ErrAlreadyAttached)
}

func TestEmbed_RejectsUnknownFlavor(t *testing.T) {
	_, err := pdfa.New().Embed(basePDF(t), []byte("<x/>"), "zugferd", "basic")
	assert.ErrorContains(t, err, "unsupported flavor")
}

func TestEmbed_RejectsNonPDF(t *testing.T) {
	_, err := pdfa.New().Embed([]byte("hello world"), []byte("<x/>"), pdfa.FlavorFacturX, "basic")
	assert.ErrorContains(t, err, "not a PDF")
}

func TestEmbed_RejectsCrossReferenceStream(t *testing.T) {
	// startxref points at an object header instead of a classic xref table.
	doc := []byte("%PDF-1.5\n12 0 obj\n<< /Type /XRef >>\nstream\nendstream\nendobj\nstartxref\n9\n%%EOF\n")

	_, err := pdfa.New().Embed(doc, []byte("<x/>"), pdfa.FlavorFacturX, "basic")
	assert.ErrorContains(t, err, "cross-reference streams")
}

func TestEmbed_RejectsEncrypted(t *testing.T) {
	base := basePDF(t)

	// Splice an /Encrypt entry into the trailer dictionary.
	idx := bytes.LastIndex(base, []byte("/Size"))
	require.GreaterOrEqual(t, idx, 0)

	doc := append([]byte{}, base[:idx]...)
	doc = append(doc, []byte("/Encrypt 9 0 R\n")...)
	doc = append(doc, base[idx:]...)

	_, err := pdfa.New().Embed(doc, []byte("<x/>"), pdfa.FlavorFacturX, "basic")
	assert.ErrorContains(t, err, "encrypted")
}
