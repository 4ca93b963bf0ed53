package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LL7Baucarre/facture/internal/invoice"
)

// flexString accepts any YAML scalar and keeps its exact source text, so an
// unquoted quantity or rate in a draft file survives as written.
type flexString string

func (s *flexString) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", value.Line)
	}

	*s = flexString(value.Value)

	return nil
}

type partyFile struct {
	Name       flexString `yaml:"name"`
	Address    flexString `yaml:"address"`
	PostalCode flexString `yaml:"postal_code"`
	City       flexString `yaml:"city"`
	SIRET      flexString `yaml:"siret"`
	VATNumber  flexString `yaml:"vat_number"`
}

type itemFile struct {
	Description flexString `yaml:"description"`
	Quantity    flexString `yaml:"quantity"`
	UnitPrice   flexString `yaml:"unit_price"`
	VATRate     flexString `yaml:"vat_rate"`
}

type draftFile struct {
	Number    flexString `yaml:"invoice_number"`
	Date      flexString `yaml:"date"`
	Issuer    partyFile  `yaml:"issuer"`
	Recipient partyFile  `yaml:"recipient"`
	Items     []itemFile `yaml:"items"`
}

func loadDraft(path string) (invoice.Draft, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return invoice.Draft{}, fmt.Errorf("reading draft file: %w", err)
	}

	var df draftFile
	if err := yaml.Unmarshal(raw, &df); err != nil {
		return invoice.Draft{}, fmt.Errorf("parsing draft file: %w", err)
	}

	items := make([]invoice.ItemInput, 0, len(df.Items))
	for _, it := range df.Items {
		items = append(items, invoice.ItemInput{
			Description: string(it.Description),
			Quantity:    string(it.Quantity),
			UnitPrice:   string(it.UnitPrice),
			VATRate:     string(it.VATRate),
		})
	}

	return invoice.Draft{
		Number:    string(df.Number),
		IssueDate: string(df.Date),
		Issuer:    toPartyInput(df.Issuer),
		Recipient: toPartyInput(df.Recipient),
		Items:     items,
	}, nil
}

func toPartyInput(p partyFile) invoice.PartyInput {
	return invoice.PartyInput{
		Name:       string(p.Name),
		Address:    string(p.Address),
		PostalCode: string(p.PostalCode),
		City:       string(p.City),
		SIRET:      string(p.SIRET),
		VATNumber:  string(p.VATNumber),
	}
}
