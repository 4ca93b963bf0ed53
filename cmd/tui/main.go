package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/LL7Baucarre/facture/cmd/tui/internal/view"
	"github.com/LL7Baucarre/facture/internal/archive"
	archiveStore "github.com/LL7Baucarre/facture/internal/archive/store"
	"github.com/LL7Baucarre/facture/internal/config"
	"github.com/LL7Baucarre/facture/internal/database"
	"github.com/LL7Baucarre/facture/internal/facturx"
	"github.com/LL7Baucarre/facture/internal/importer"
	"github.com/LL7Baucarre/facture/internal/pdfa"
	"github.com/LL7Baucarre/facture/internal/render"
)

type model struct {
	generateService *facturx.Service
	documentService *archive.Service
	importService   *importer.Service

	currentView View

	composeView view.ComposeModel
	archiveView view.ArchiveModel
}

type View int

const (
	ViewMenu    View = 0
	ViewCompose View = 1
	ViewArchive View = 2
)

func initialModel() model {
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

	files, err := archive.NewDirStore(cfg.Archive.Dir)
	if err != nil {
		slog.Error("failed to open archive directory", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to bubbletea; pipeline warnings surface in the
	// result view instead of the log.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	docSvc := archive.NewService(archiveStore.New(db), files)
	genSvc := facturx.New(render.New(), pdfa.New(), facturx.WithLogger(quiet))
	impSvc := importer.NewService()

	return model{
		generateService: genSvc,
		documentService: docSvc,
		importService:   impSvc,
		currentView:     ViewMenu,
		composeView:     view.NewComposeModel(genSvc, docSvc, impSvc),
		archiveView:     view.NewArchiveModel(docSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewCompose
				m.composeView = view.NewComposeModel(m.generateService, m.documentService, m.importService)

				return m, m.composeView.Init()
			case "2":
				m.currentView = ViewArchive
				m.archiveView = view.NewArchiveModel(m.documentService)

				return m, m.archiveView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewCompose:
		var newModel tea.Model
		newModel, cmd = m.composeView.Update(msg)
		m.composeView = newModel.(view.ComposeModel)
	case ViewArchive:
		var newModel tea.Model
		newModel, cmd = m.archiveView.Update(msg)
		m.archiveView = newModel.(view.ArchiveModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Facture TUI\n\n" +
				"1. Nouvelle facture\n" +
				"2. Archives\n\n" +
				"q. Quitter",
		)
	case ViewCompose:
		return m.composeView.View()
	case ViewArchive:
		return m.archiveView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
