// Package export writes the register of generated documents as CSV for
// accounting handoff.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/LL7Baucarre/facture/internal/archive"
)

// registerHeader is the fixed column set of the register, in the order
// French accounting tools expect to read it back.
var registerHeader = []string{"Numéro", "Date", "Émetteur", "Destinataire", "Total TTC", "Fichier", "XML"}

// Service writes the document register.
type Service struct {
	documents *archive.Service
}

func NewService(documents *archive.Service) *Service {
	return &Service{documents: documents}
}

// WriteRegister streams the register as semicolon-separated CSV, one row per
// archived document matching the filter.
func (s *Service) WriteRegister(ctx context.Context, w io.Writer, filter archive.ListFilter) error {
	docs, err := s.documents.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(registerHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, doc := range docs {
		row := []string{
			doc.InvoiceNumber,
			doc.IssueDate.Format("2006-01-02"),
			doc.SellerName,
			doc.BuyerName,
			formatCents(doc.TotalTTC),
			doc.Filename,
			xmlFlag(doc.XMLAttached),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// formatCents renders a cent amount with a decimal comma.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%s%d,%02d", sign, cents/100, cents%100)
}

func xmlFlag(attached bool) string {
	if attached {
		return "oui"
	}

	return "non"
}
