package invoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LL7Baucarre/facture/internal/archive"
	"github.com/LL7Baucarre/facture/internal/facturx"
	"github.com/LL7Baucarre/facture/internal/invoice"
)

type Handler struct {
	generator *facturx.Service
	documents *archive.Service
}

func NewHandler(generator *facturx.Service, documents *archive.Service) *Handler {
	return &Handler{generator: generator, documents: documents}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
}

type partyRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	SIRET      string `json:"siret,omitempty"`
	VATNumber  string `json:"vat_number,omitempty"`
}

type itemRequest struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	VATRate     string `json:"vat_rate"`
}

type createInvoiceRequest struct {
	Number    string        `json:"invoice_number"`
	Date      string        `json:"date"`
	Issuer    partyRequest  `json:"issuer"`
	Recipient partyRequest  `json:"recipient"`
	Items     []itemRequest `json:"items"`
}

func (req createInvoiceRequest) toDraft() invoice.Draft {
	items := make([]invoice.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, invoice.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			VATRate:     it.VATRate,
		})
	}

	return invoice.Draft{
		Number:    req.Number,
		IssueDate: req.Date,
		Issuer:    toPartyInput(req.Issuer),
		Recipient: toPartyInput(req.Recipient),
		Items:     items,
	}
}

func toPartyInput(p partyRequest) invoice.PartyInput {
	return invoice.PartyInput{
		Name:       p.Name,
		Address:    p.Address,
		PostalCode: p.PostalCode,
		City:       p.City,
		SIRET:      p.SIRET,
		VATNumber:  p.VATNumber,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.generator.Generate(r.Context(), req.toDraft())
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	doc, err := h.documents.Store(r.Context(), storeParams(result), result.PDF)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(doc, result)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// GenerateForm serves the historical HTML form contract: flat issuer_* and
// recipient_* fields plus four parallel item arrays. The answer is the
// finished PDF as a download, not JSON.
func (h *Handler) GenerateForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	draft := invoice.Draft{
		Number:    r.PostFormValue("invoice_number"),
		IssueDate: r.PostFormValue("date"),
		Issuer:    partyFromForm(r, "issuer"),
		Recipient: partyFromForm(r, "recipient"),
		Items: invoice.ItemsFromColumns(
			r.PostForm["description[]"],
			r.PostForm["quantity[]"],
			r.PostForm["unit_price[]"],
			r.PostForm["vat_rate[]"],
		),
	}

	result, err := h.generator.Generate(r.Context(), draft)
	if err != nil {
		var verr *invoice.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, fmt.Sprintf("Erreur lors de la génération: %v", err), http.StatusInternalServerError)

		return
	}

	if _, err := h.documents.Store(r.Context(), storeParams(result), result.PDF); err != nil {
		http.Error(w, fmt.Sprintf("Erreur lors de la génération: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"facture_%s.pdf\"", result.Invoice.Number))

	if _, err := w.Write(result.PDF); err != nil {
		slog.Error("failed to write document", "error", err)
	}
}

func partyFromForm(r *http.Request, prefix string) invoice.PartyInput {
	return invoice.PartyInput{
		Name:       r.PostFormValue(prefix + "_name"),
		Address:    r.PostFormValue(prefix + "_address"),
		PostalCode: r.PostFormValue(prefix + "_postal"),
		City:       r.PostFormValue(prefix + "_city"),
		SIRET:      r.PostFormValue(prefix + "_siret"),
		VATNumber:  r.PostFormValue(prefix + "_vat"),
	}
}

func storeParams(result *facturx.Result) archive.StoreParams {
	return archive.StoreParams{
		InvoiceNumber: result.Invoice.Number,
		IssueDate:     result.Invoice.IssueDate,
		SellerName:    result.Invoice.Issuer.Name,
		BuyerName:     result.Invoice.Recipient.Name,
		TotalTTC:      result.Invoice.TotalTTC,
		XMLAttached:   !result.Degraded,
	}
}

type validationErrorResponse struct {
	Errors []string `json:"errors"`
}

func writeGenerateError(w http.ResponseWriter, err error) {
	var verr *invoice.ValidationError
	if errors.As(err, &verr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)

		if err := json.NewEncoder(w).Encode(validationErrorResponse{Errors: verr.Violations}); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

		return
	}

	http.Error(w, err.Error(), http.StatusInternalServerError)
}
