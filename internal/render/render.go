// Package render draws the human-readable side of a Factur-X document:
// an A4 invoice sheet with party blocks, a line-item table and totals.
package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/LL7Baucarre/facture/internal/invoice"
)

const footerText = "Facture générée électroniquement - Format Factur-X conforme EN 16931"

type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(inv *invoice.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(15, 20, "FACTURE")

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(140, 16, tr(fmt.Sprintf("N° %s", inv.Number)))
	pdf.Text(140, 22, "Date: "+inv.IssueDate.Format("2006-01-02"))

	writeParty(pdf, tr, 15, "ÉMETTEUR", inv.Issuer)
	writeParty(pdf, tr, 110, "DESTINATAIRE", inv.Recipient)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(15, 100, tr("DÉTAIL DE LA FACTURE"))

	pdf.SetY(105)
	writeItemTable(pdf, tr, inv.Items)

	y := pdf.GetY() + 2
	pdf.Line(15, y, 195, y)

	pdf.SetY(y + 4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Total HT: %s €", inv.TotalHT.StringFixed(2))), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Total TVA: %s €", inv.TotalVAT.StringFixed(2))), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Total TTC: %s €", inv.TotalTTC.StringFixed(2))), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func writeParty(pdf *gofpdf.Fpdf, tr func(string) string, x float64, title string, p invoice.Party) {
	y := 40.0

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(x, y, tr(title))
	y += 8

	lines := []string{p.Name, p.Address, p.PostalCode + " " + p.City}
	if p.SIRET != "" {
		lines = append(lines, "SIRET: "+p.SIRET)
	}

	if p.VATNumber != "" {
		lines = append(lines, "N° TVA: "+p.VATNumber)
	}

	pdf.SetFont("Helvetica", "", 10)

	for _, line := range lines {
		pdf.Text(x, y, tr(line))
		y += 6
	}
}

func writeItemTable(pdf *gofpdf.Fpdf, tr func(string) string, items []invoice.LineItem) {
	headers := []string{"Description", "Qté", "Prix U. HT", "Total HT", "TVA", "Total TTC"}
	widths := []float64{70, 15, 25, 25, 15, 30}

	pdf.SetFont("Helvetica", "B", 10)

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "B", 0, "L", false, 0, "")
	}

	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)

	for _, item := range items {
		pdf.CellFormat(widths[0], 6, tr(truncate(item.Description, 30)), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, item.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(item.UnitPrice.StringFixed(2)+" €"), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, tr(item.AmountHT.StringFixed(2)+" €"), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, item.VATRate.String()+"%", "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, tr(item.AmountTTC.StringFixed(2)+" €"), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max])
}
