package facturx_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LL7Baucarre/facture/internal/facturx"
	"github.com/LL7Baucarre/facture/internal/invoice"
)

type stubRenderer struct {
	renderFunc func(inv *invoice.Invoice) ([]byte, error)
	calls      int
}

func (s *stubRenderer) Render(inv *invoice.Invoice) ([]byte, error) {
	s.calls++
	if s.renderFunc != nil {
		return s.renderFunc(inv)
	}

	return []byte("%PDF-rendered"), nil
}

type stubEmbedder struct {
	embedFunc func(base, xmlDoc []byte, flavor, level string) ([]byte, error)
}

func (s *stubEmbedder) Embed(base, xmlDoc []byte, flavor, level string) ([]byte, error) {
	if s.embedFunc != nil {
		return s.embedFunc(base, xmlDoc, flavor, level)
	}

	return append(append([]byte{}, base...), xmlDoc...), nil
}

type stubChecker struct {
	err error
}

func (s *stubChecker) Check(doc []byte) error { return s.err }

func validDraft() invoice.Draft {
	return invoice.Draft{
		Number:    "FAC-2025-001",
		IssueDate: "2025-07-31",
		Issuer: invoice.PartyInput{
			Name:       "Atelier Baucarré",
			Address:    "12 rue de la République",
			PostalCode: "69001",
			City:       "Lyon",
			SIRET:      "39112356500016",
		},
		Recipient: invoice.PartyInput{
			Name:       "SARL Exemple",
			Address:    "8 avenue des Champs",
			PostalCode: "75008",
			City:       "Paris",
		},
		Items: []invoice.ItemInput{
			{Description: "Prestation de conseil", Quantity: "2", UnitPrice: "500", VATRate: "20"},
		},
	}
}

func TestGenerate_Success(t *testing.T) {
	renderer := &stubRenderer{}
	embedder := &stubEmbedder{
		embedFunc: func(base, xmlDoc []byte, flavor, level string) ([]byte, error) {
			assert.Equal(t, facturx.Flavor, flavor)
			assert.Equal(t, facturx.ConformanceLevel, level)
			assert.Equal(t, []byte("%PDF-rendered"), base)
			assert.Contains(t, string(xmlDoc), "CrossIndustryInvoice")
			return []byte("%PDF-embedded"), nil
		},
	}

	svc := facturx.New(renderer, embedder)

	result, err := svc.Generate(context.Background(), validDraft())
	require.NoError(t, err)

	assert.False(t, result.Degraded)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, []byte("%PDF-embedded"), result.PDF)
	assert.Contains(t, string(result.XML), "rsm:ExchangedDocument")
	assert.Equal(t, "FAC-2025-001", result.Invoice.Number)
}

func TestGenerate_EmbedFailureDegrades(t *testing.T) {
	renderer := &stubRenderer{}
	embedder := &stubEmbedder{
		embedFunc: func(_, _ []byte, _, _ string) ([]byte, error) {
			return nil, errors.New("boom")
		},
	}

	svc := facturx.New(renderer, embedder)

	result, err := svc.Generate(context.Background(), validDraft())
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, []byte("%PDF-rendered"), result.PDF, "rendered document must be retained")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "PDF généré sans XML intégré")
	assert.NotEmpty(t, result.XML)
}

func TestGenerate_ValidationFailureSkipsRendering(t *testing.T) {
	renderer := &stubRenderer{}
	svc := facturx.New(renderer, &stubEmbedder{})

	_, err := svc.Generate(context.Background(), invoice.Draft{})

	var verr *invoice.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Violations)
	assert.Zero(t, renderer.calls)
}

func TestGenerate_RendererFailure(t *testing.T) {
	renderer := &stubRenderer{
		renderFunc: func(_ *invoice.Invoice) ([]byte, error) {
			return nil, errors.New("out of ink")
		},
	}

	svc := facturx.New(renderer, &stubEmbedder{})

	_, err := svc.Generate(context.Background(), validDraft())
	assert.ErrorContains(t, err, "rendering document")
}

func TestGenerate_CheckerWarningDoesNotBlock(t *testing.T) {
	svc := facturx.New(&stubRenderer{}, &stubEmbedder{},
		facturx.WithChecker(&stubChecker{err: errors.New("élément manquant: rsm:ExchangedDocument")}))

	result, err := svc.Generate(context.Background(), validDraft())
	require.NoError(t, err)

	assert.False(t, result.Degraded)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "XML potentiellement non conforme")
	assert.NotEmpty(t, result.PDF)
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := facturx.New(&stubRenderer{}, &stubEmbedder{})

	_, err := svc.Generate(ctx, validDraft())
	assert.ErrorIs(t, err, context.Canceled)
}
