package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LL7Baucarre/facture/internal/http/document"
	"github.com/LL7Baucarre/facture/internal/http/importitems"
	"github.com/LL7Baucarre/facture/internal/http/invoice"
)

func New(
	timeout time.Duration,
	invoicesV1 *invoice.Handler,
	documentsV1 *document.Handler,
	importV1 *importitems.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(timeout))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Form endpoint kept compatible with the historical HTML front-end.
	router.Post("/generate_invoice", invoicesV1.GenerateForm)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			invoicesV1.Routes(r)
		})

		r.Route("/documents", documentsV1.Routes)

		r.Route("/items", importV1.Routes)
	})

	return router
}
