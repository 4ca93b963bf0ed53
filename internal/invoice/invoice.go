// Package invoice holds the typed invoice domain model and the aggregate
// business-rule validator that produces it from raw input.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party identifies one side of the invoice. SIRET and VATNumber are optional;
// an empty value means the identifier was not supplied.
type Party struct {
	Name       string
	Address    string
	PostalCode string
	City       string
	SIRET      string // normalized, separators stripped
	VATNumber  string
}

// LineItem is one billed line. Derived amounts are computed during validation,
// rounded half up at 2 decimals, and never recomputed afterwards.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal

	AmountHT  decimal.Decimal
	VATAmount decimal.Decimal
	AmountTTC decimal.Decimal
}

// Invoice is a validated invoice record. It is built exactly once by Validate
// and treated as immutable from then on; nothing in this package persists it.
type Invoice struct {
	Number    string
	IssueDate time.Time
	Issuer    Party
	Recipient Party
	Items     []LineItem

	TotalHT  decimal.Decimal
	TotalVAT decimal.Decimal
	TotalTTC decimal.Decimal
}
