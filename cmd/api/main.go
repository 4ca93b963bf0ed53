package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/LL7Baucarre/facture/internal/archive"
	archiveStore "github.com/LL7Baucarre/facture/internal/archive/store"
	"github.com/LL7Baucarre/facture/internal/cii"
	"github.com/LL7Baucarre/facture/internal/config"
	"github.com/LL7Baucarre/facture/internal/database"
	"github.com/LL7Baucarre/facture/internal/export"
	"github.com/LL7Baucarre/facture/internal/facturx"
	factureHttp "github.com/LL7Baucarre/facture/internal/http"
	documentHandler "github.com/LL7Baucarre/facture/internal/http/document"
	importHandler "github.com/LL7Baucarre/facture/internal/http/importitems"
	invoiceHandler "github.com/LL7Baucarre/facture/internal/http/invoice"
	"github.com/LL7Baucarre/facture/internal/importer"
	"github.com/LL7Baucarre/facture/internal/metrics"
	"github.com/LL7Baucarre/facture/internal/pdfa"
	"github.com/LL7Baucarre/facture/internal/render"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	files, err := archive.NewDirStore(cfg.Archive.Dir)
	if err != nil {
		slog.Error("failed to open archive directory", "error", err)
		os.Exit(1)
	}

	checker, err := cii.NewChecker(cfg.Schema.Path)
	if err != nil {
		slog.Error("failed to load schema", "error", err)
		os.Exit(1)
	}
	defer checker.Close()

	var (
		documentService = archive.NewService(archiveStore.New(db), files)
		generateService = facturx.New(render.New(), pdfa.New(),
			facturx.WithChecker(checker),
			facturx.WithMetrics(metrics.New()),
		)
		importService   = importer.NewService()
		registerService = export.NewService(documentService)
	)

	var (
		invoiceH  = invoiceHandler.NewHandler(generateService, documentService)
		documentH = documentHandler.NewHandler(documentService, registerService)
		importH   = importHandler.NewHandler(importService)
	)

	router := factureHttp.New(cfg.Pipeline.Timeout, invoiceH, documentH, importH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
