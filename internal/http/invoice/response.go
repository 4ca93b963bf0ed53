package invoice

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LL7Baucarre/facture/internal/archive"
	"github.com/LL7Baucarre/facture/internal/facturx"
)

type generateResponse struct {
	ID            uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	IssueDate     time.Time `json:"issue_date"`
	TotalHT       string    `json:"total_ht"`
	TotalVAT      string    `json:"total_vat"`
	TotalTTC      string    `json:"total_ttc"`
	Filename      string    `json:"filename"`
	XMLAttached   bool      `json:"xml_attached"`
	Degraded      bool      `json:"degraded,omitempty"`
	Warnings      []string  `json:"warnings,omitempty"`
	DownloadURL   string    `json:"download_url"`
	CreatedAt     time.Time `json:"created_at"`
}

func toResponse(doc *archive.Document, result *facturx.Result) generateResponse {
	return generateResponse{
		ID:            doc.ID,
		InvoiceNumber: doc.InvoiceNumber,
		IssueDate:     doc.IssueDate,
		TotalHT:       result.Invoice.TotalHT.StringFixed(2),
		TotalVAT:      result.Invoice.TotalVAT.StringFixed(2),
		TotalTTC:      result.Invoice.TotalTTC.StringFixed(2),
		Filename:      doc.Filename,
		XMLAttached:   doc.XMLAttached,
		Degraded:      result.Degraded,
		Warnings:      result.Warnings,
		DownloadURL:   fmt.Sprintf("/api/v1/documents/%s/download", doc.ID),
		CreatedAt:     doc.CreatedAt,
	}
}
