package invoice

import "strings"

// Draft is the raw, string-typed input an invoice is built from. It carries
// whatever the HTTP form, a YAML file or a line-item import delivered, before
// any rule has been checked.
type Draft struct {
	Number    string
	IssueDate string
	Issuer    PartyInput
	Recipient PartyInput
	Items     []ItemInput
}

// PartyInput mirrors Party with unparsed values.
type PartyInput struct {
	Name       string
	Address    string
	PostalCode string
	City       string
	SIRET      string
	VATNumber  string
}

// ItemInput mirrors LineItem with unparsed values.
type ItemInput struct {
	Description string
	Quantity    string
	UnitPrice   string
	VATRate     string
}

// ItemsFromColumns zips the four parallel input sequences into item inputs.
// The form posts a fixed set of rows and unused ones come back blank, so any
// entry whose description is empty is dropped here and never counts as a
// present item. Index alignment across the four columns is preserved; a
// missing trailing value reads as empty and will fail item validation.
func ItemsFromColumns(descriptions, quantities, unitPrices, vatRates []string) []ItemInput {
	items := make([]ItemInput, 0, len(descriptions))

	for i, desc := range descriptions {
		if strings.TrimSpace(desc) == "" {
			continue
		}

		items = append(items, ItemInput{
			Description: strings.TrimSpace(desc),
			Quantity:    column(quantities, i),
			UnitPrice:   column(unitPrices, i),
			VATRate:     column(vatRates, i),
		})
	}

	return items
}

func column(vals []string, i int) string {
	if i >= len(vals) {
		return ""
	}

	return strings.TrimSpace(vals[i])
}
