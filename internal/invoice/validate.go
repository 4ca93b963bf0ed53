package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LL7Baucarre/facture/internal/siret"
)

// ValidationError carries every rule violation found in a draft, in rule
// order. The draft is rejected as a whole; partial acceptance never happens.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder

	b.WriteString("Erreurs de validation:")

	for _, v := range e.Violations {
		b.WriteString("\n- ")
		b.WriteString(v)
	}

	return b.String()
}

var hundred = decimal.NewFromInt(100)

// Validate checks every business rule over the draft and either returns the
// typed record with all derived amounts computed, or a *ValidationError
// listing every violation found. It never stops at the first failure.
//
// Violation messages are the operator-facing French strings of the original
// web form and must stay stable.
func Validate(d Draft) (*Invoice, error) {
	var violations []string

	if strings.TrimSpace(d.IssueDate) == "" {
		violations = append(violations, "Date de facturation est obligatoire")
	}

	if strings.TrimSpace(d.Number) == "" {
		violations = append(violations, "Numéro de facture est obligatoire")
	}

	var issueDate time.Time

	if s := strings.TrimSpace(d.IssueDate); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			violations = append(violations, "Format de date invalide (YYYY-MM-DD attendu)")
		} else {
			issueDate = t
		}
	}

	violations = append(violations, partyViolations("Émetteur", d.Issuer)...)
	violations = append(violations, partyViolations("Destinataire", d.Recipient)...)

	if s := strings.TrimSpace(d.Issuer.SIRET); s != "" && !siret.IsValid(s) {
		violations = append(violations, "Issuer - Format SIRET invalide")
	}

	if s := strings.TrimSpace(d.Recipient.SIRET); s != "" && !siret.IsValid(s) {
		violations = append(violations, "Recipient - Format SIRET invalide")
	}

	items, itemViolations := validateItems(d.Items)
	violations = append(violations, itemViolations...)

	totalHT := decimal.Zero
	totalVAT := decimal.Zero
	totalTTC := decimal.Zero

	for _, it := range items {
		totalHT = totalHT.Add(it.AmountHT)
		totalVAT = totalVAT.Add(it.VATAmount)
		totalTTC = totalTTC.Add(it.AmountTTC)
	}

	if len(items) > 0 && !totalTTC.IsPositive() {
		violations = append(violations, "Le montant total doit être supérieur à 0")
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	return &Invoice{
		Number:    strings.TrimSpace(d.Number),
		IssueDate: issueDate,
		Issuer:    normalizeParty(d.Issuer),
		Recipient: normalizeParty(d.Recipient),
		Items:     items,
		TotalHT:   totalHT,
		TotalVAT:  totalVAT,
		TotalTTC:  totalTTC,
	}, nil
}

func partyViolations(label string, p PartyInput) []string {
	var out []string

	// Field labels are the original form's field keys, kept verbatim.
	fields := []struct {
		value string
		name  string
	}{
		{p.Name, "name"},
		{p.Address, "address"},
		{p.PostalCode, "postal_code"},
		{p.City, "city"},
	}

	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			out = append(out, fmt.Sprintf("%s - %s est obligatoire", label, f.name))
		}
	}

	return out
}

func validateItems(inputs []ItemInput) ([]LineItem, []string) {
	if len(inputs) == 0 {
		return nil, []string{"Au moins un article est obligatoire"}
	}

	var violations []string

	items := make([]LineItem, 0, len(inputs))

	for i, in := range inputs {
		n := i + 1
		ok := true

		desc := strings.TrimSpace(in.Description)
		if desc == "" {
			violations = append(violations, fmt.Sprintf("Article %d - Description obligatoire", n))
			ok = false
		}

		qty, err := decimal.NewFromString(strings.TrimSpace(in.Quantity))
		if err != nil {
			violations = append(violations, fmt.Sprintf("Article %d - Quantité invalide", n))
			ok = false
		} else if !qty.IsPositive() {
			violations = append(violations, fmt.Sprintf("Article %d - Quantité doit être supérieure à 0", n))
			ok = false
		}

		price, err := decimal.NewFromString(strings.TrimSpace(in.UnitPrice))
		if err != nil || price.IsNegative() {
			violations = append(violations, fmt.Sprintf("Article %d - Prix unitaire invalide", n))
			ok = false
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(in.VATRate))
		if err != nil {
			violations = append(violations, fmt.Sprintf("Article %d - Taux de TVA invalide", n))
			ok = false
		} else if rate.IsNegative() || rate.GreaterThan(hundred) {
			violations = append(violations, fmt.Sprintf("Article %d - Taux de TVA invalide (0-100%%)", n))
			ok = false
		}

		if !ok {
			continue
		}

		amountHT := qty.Mul(price).Round(2)
		vatAmount := amountHT.Mul(rate).Div(hundred).Round(2)

		items = append(items, LineItem{
			Description: desc,
			Quantity:    qty,
			UnitPrice:   price,
			VATRate:     rate,
			AmountHT:    amountHT,
			VATAmount:   vatAmount,
			AmountTTC:   amountHT.Add(vatAmount),
		})
	}

	return items, violations
}

func normalizeParty(p PartyInput) Party {
	return Party{
		Name:       strings.TrimSpace(p.Name),
		Address:    strings.TrimSpace(p.Address),
		PostalCode: strings.TrimSpace(p.PostalCode),
		City:       strings.TrimSpace(p.City),
		SIRET:      siret.Normalize(p.SIRET),
		VATNumber:  strings.TrimSpace(p.VATNumber),
	}
}
