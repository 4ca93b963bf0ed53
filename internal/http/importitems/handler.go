package importitems

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LL7Baucarre/facture/internal/importer"
	"github.com/LL7Baucarre/facture/internal/invoice"
)

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/import", h.importItems)
}

type itemDTO struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	VATRate     string `json:"vat_rate"`
}

type importSuccessResponse struct {
	Imported int       `json:"imported"`
	Items    []itemDTO `json:"items"`
}

func (h *Handler) importItems(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	format, err := importer.FormatFromFilename(header.Filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.importSvc.Import(format, file)
	if err != nil {
		if errors.Is(err, importer.ErrNoItemHeader) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusUnprocessableEntity)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toSuccessResponse(items)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toSuccessResponse(items []invoice.ItemInput) importSuccessResponse {
	dtos := make([]itemDTO, 0, len(items))
	for _, it := range items {
		dtos = append(dtos, itemDTO{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			VATRate:     it.VATRate,
		})
	}

	return importSuccessResponse{
		Imported: len(dtos),
		Items:    dtos,
	}
}
