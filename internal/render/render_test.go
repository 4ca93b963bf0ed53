package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LL7Baucarre/facture/internal/invoice"
	"github.com/LL7Baucarre/facture/internal/render"
)

func TestRender_ProducesPDF(t *testing.T) {
	inv, err := invoice.Validate(invoice.Draft{
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
			{Description: "Prestation de conseil", Quantity: "2", UnitPrice: "500.00", VATRate: "20"},
			{Description: "Une description assez longue pour être tronquée dans le tableau", Quantity: "1.5", UnitPrice: "300", VATRate: "10"},
		},
	})
	require.NoError(t, err)

	data, err := render.New().Render(inv)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
	assert.Greater(t, len(data), 1000)
}

func TestRender_EmptyPartyOptionalFields(t *testing.T) {
	inv, err := invoice.Validate(invoice.Draft{
		Number:    "FAC-2025-002",
		IssueDate: "2025-08-01",
		Issuer: invoice.PartyInput{
			Name:       "Atelier Baucarré",
			Address:    "12 rue de la République",
			PostalCode: "69001",
			City:       "Lyon",
		},
		Recipient: invoice.PartyInput{
			Name:       "SARL Exemple",
			Address:    "8 avenue des Champs",
			PostalCode: "75008",
			City:       "Paris",
		},
		Items: []invoice.ItemInput{
			{Description: "Prestation", Quantity: "1", UnitPrice: "100", VATRate: "20"},
		},
	})
	require.NoError(t, err)

	data, err := render.New().Render(inv)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}
