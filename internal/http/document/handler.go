package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/LL7Baucarre/facture/internal/archive"
	"github.com/LL7Baucarre/facture/internal/export"
)

type Handler struct {
	documents *archive.Service
	register  *export.Service
}

func NewHandler(documents *archive.Service, register *export.Service) *Handler {
	return &Handler{documents: documents, register: register}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/export", h.exportRegister)
	r.Get("/{id}", h.get)
	r.Get("/{id}/download", h.download)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := listFilter(r)

	docs, err := h.documents.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(docs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	doc, err := h.documents.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(doc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	doc, rc, err := h.documents.Open(r.Context(), id)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"%s\"", doc.Filename))

	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("failed to write document", "error", err)
	}
}

func (h *Handler) exportRegister(w http.ResponseWriter, r *http.Request) {
	filter := listFilter(r)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"registre_factures_%s.csv\"", time.Now().Format("20060102")))

	if err := h.register.WriteRegister(r.Context(), w, filter); err != nil {
		slog.Error("failed to write register", "error", err)
	}
}

func listFilter(r *http.Request) archive.ListFilter {
	filter := archive.ListFilter{}

	if s := r.URL.Query().Get("since"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.Since = new(t)
		}
	}

	if s := r.URL.Query().Get("until"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.Until = new(t)
		}
	}

	return filter
}
