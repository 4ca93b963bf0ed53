package view

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/LL7Baucarre/facture/internal/archive"
)

type ArchiveModel struct {
	CommonModel
	documents *archive.Service

	table   table.Model
	docs    []*archive.Document
	loading bool
	err     error
	status  string
}

func NewArchiveModel(documents *archive.Service) ArchiveModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Numéro", Width: 16},
		{Title: "Émetteur", Width: 22},
		{Title: "Destinataire", Width: 22},
		{Title: "Total TTC", Width: 12},
		{Title: "XML", Width: 4},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ArchiveModel{documents: documents, table: t}
}

func (m ArchiveModel) Title() string { return "Archives" }

func (m ArchiveModel) ShortHelp() string {
	return "Esc: menu | s: enregistrer une copie | r: rafraîchir"
}

func (m ArchiveModel) Init() tea.Cmd {
	return m.loadDocsCmd()
}

func (m ArchiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDocsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.docs = msg.docs
		m.refreshTable()

		return m, nil

	case saveCopyMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Erreur: %v", msg.err))
		} else {
			m.status = successStyle.Render("Copie enregistrée: " + msg.path)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			m.status = ""

			return m, m.loadDocsCmd()
		case "s":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.docs) {
				return m, m.saveCopyCmd(m.docs[idx].ID)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ArchiveModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Chargement des documents...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(
			errorStyle.Render(fmt.Sprintf("Erreur: %v", m.err)),
		)
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView
	if m.status != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, tableView, m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ArchiveModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.docs))

	for _, doc := range m.docs {
		xml := "non"
		if doc.XMLAttached {
			xml = "oui"
		}

		rows = append(rows, table.Row{
			FormatDate(doc.IssueDate),
			doc.InvoiceNumber,
			doc.SellerName,
			doc.BuyerName,
			FormatEuros(doc.TotalTTC),
			xml,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadDocsMsg struct {
	docs []*archive.Document
	err  error
}

func (m ArchiveModel) loadDocsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		docs, err := m.documents.List(ctx, archive.ListFilter{})

		return loadDocsMsg{docs: docs, err: err}
	}
}

type saveCopyMsg struct {
	path string
	err  error
}

func (m ArchiveModel) saveCopyCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		doc, rc, err := m.documents.Open(ctx, id)
		if err != nil {
			return saveCopyMsg{err: err}
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return saveCopyMsg{err: err}
		}

		if err := os.WriteFile(doc.Filename, data, 0o644); err != nil {
			return saveCopyMsg{err: err}
		}

		return saveCopyMsg{path: doc.Filename}
	}
}
