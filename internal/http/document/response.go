package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/LL7Baucarre/facture/internal/archive"
)

type documentResponse struct {
	ID            uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	IssueDate     time.Time `json:"issue_date"`
	SellerName    string    `json:"seller_name"`
	BuyerName     string    `json:"buyer_name"`
	TotalTTC      int64     `json:"total_ttc"`
	Filename      string    `json:"filename"`
	XMLAttached   bool      `json:"xml_attached"`
	CreatedAt     time.Time `json:"created_at"`
}

func toResponse(doc *archive.Document) documentResponse {
	return documentResponse{
		ID:            doc.ID,
		InvoiceNumber: doc.InvoiceNumber,
		IssueDate:     doc.IssueDate,
		SellerName:    doc.SellerName,
		BuyerName:     doc.BuyerName,
		TotalTTC:      doc.TotalTTC,
		Filename:      doc.Filename,
		XMLAttached:   doc.XMLAttached,
		CreatedAt:     doc.CreatedAt,
	}
}

func toResponseList(docs []*archive.Document) []documentResponse {
	resp := make([]documentResponse, len(docs))
	for i, doc := range docs {
		resp[i] = toResponse(doc)
	}

	return resp
}
