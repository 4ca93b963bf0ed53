package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/LL7Baucarre/facture/internal/archive"
	"github.com/LL7Baucarre/facture/internal/facturx"
	"github.com/LL7Baucarre/facture/internal/importer"
	"github.com/LL7Baucarre/facture/internal/invoice"
)

const generateTimeout = 2 * time.Minute

type composeState int

const (
	composeStateForm composeState = iota
	composeStateItems
	composeStateItemForm
	composeStateFilePick
	composeStateGenerating
	composeStateResult
)

type headerFields struct {
	number string
	date   string
}

type partyFields struct {
	name, address, postal, city, siret, vat string
}

type itemFields struct {
	desc, qty, price, rate string
}

type ComposeModel struct {
	CommonModel
	generator     *facturx.Service
	documents     *archive.Service
	importService *importer.Service

	state composeState

	form       *huh.Form
	itemForm   *huh.Form
	filePicker filepicker.Model
	spinner    spinner.Model

	header    headerFields
	issuer    partyFields
	recipient partyFields

	item       itemFields
	items      []invoice.ItemInput
	itemCursor int

	doc    *archive.Document
	result *facturx.Result
	status string
	err    error
}

func NewComposeModel(generator *facturx.Service, documents *archive.Service, impSvc *importer.Service) ComposeModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".xlsx"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ComposeModel{
		generator:     generator,
		documents:     documents,
		importService: impSvc,
		filePicker:    fp,
		spinner:       s,
		header:        headerFields{date: time.Now().Format("2006-01-02")},
	}
	m.form = m.buildForm()

	return m
}

func (m ComposeModel) Title() string { return "Nouvelle facture" }

func (m ComposeModel) ShortHelp() string {
	switch m.state {
	case composeStateItems:
		return "a: ajouter | i: importer | d: supprimer | g: générer | Esc: menu"
	case composeStateGenerating:
		return "Génération..."
	case composeStateResult:
		return "Esc: retour"
	}

	return "Navigate form | Esc: back"
}

func (m ComposeModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ComposeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case composeImportMsg:
		m.state = composeStateItems
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Erreur d'import: %v", msg.err))
			return m, nil
		}

		m.items = append(m.items, msg.items...)
		m.status = fmt.Sprintf("%d article(s) importé(s)", len(msg.items))

		return m, nil

	case composeDoneMsg:
		m.state = composeStateResult
		m.doc = msg.doc
		m.result = msg.result
		m.err = msg.err

		return m, nil
	}

	switch m.state {
	case composeStateForm:
		return m.updateForm(msg)
	case composeStateItems:
		return m.updateItems(msg)
	case composeStateItemForm:
		return m.updateItemForm(msg)
	case composeStateFilePick:
		return m.updateFilePick(msg)
	case composeStateGenerating:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case composeStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ComposeModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.syncForm()
	m.state = composeStateItems

	return m, nil
}

// syncForm copies the completed form values back into the model. The form
// holds pointers into an older copy of the model, so the bound fields cannot
// be trusted after bubbletea has copied it around.
func (m *ComposeModel) syncForm() {
	m.header.number = m.form.GetString("invoice_number")
	m.header.date = m.form.GetString("date")
	m.issuer = partyFromKeys(m.form, "issuer")
	m.recipient = partyFromKeys(m.form, "recipient")
}

func partyFromKeys(form *huh.Form, prefix string) partyFields {
	return partyFields{
		name:    form.GetString(prefix + "_name"),
		address: form.GetString(prefix + "_address"),
		postal:  form.GetString(prefix + "_postal"),
		city:    form.GetString(prefix + "_city"),
		siret:   form.GetString(prefix + "_siret"),
		vat:     form.GetString(prefix + "_vat"),
	}
}

func (m ComposeModel) updateItems(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "up", "k":
		if m.itemCursor > 0 {
			m.itemCursor--
		}
	case "down", "j":
		if m.itemCursor < len(m.items)-1 {
			m.itemCursor++
		}
	case "a":
		m.item = itemFields{qty: "1", rate: "20"}
		m.itemForm = m.buildItemForm()
		m.state = composeStateItemForm
		m.status = ""

		return m, m.itemForm.Init()
	case "d":
		if m.itemCursor >= 0 && m.itemCursor < len(m.items) {
			m.items = append(m.items[:m.itemCursor], m.items[m.itemCursor+1:]...)
			if m.itemCursor >= len(m.items) && m.itemCursor > 0 {
				m.itemCursor--
			}
		}
	case "i":
		m.state = composeStateFilePick
		m.status = ""

		return m, m.filePicker.Init()
	case "g":
		m.state = composeStateGenerating
		m.err = nil

		return m, tea.Batch(m.spinner.Tick, m.generateCmd())
	}

	return m, nil
}

func (m ComposeModel) updateItemForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = composeStateItems
			m.itemForm = nil

			return m, nil
		}
	}

	form, cmd := m.itemForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.itemForm = f
	}

	if m.itemForm.State != huh.StateCompleted {
		return m, cmd
	}

	m.items = append(m.items, invoice.ItemInput{
		Description: m.itemForm.GetString("description"),
		Quantity:    m.itemForm.GetString("quantity"),
		UnitPrice:   m.itemForm.GetString("unit_price"),
		VATRate:     m.itemForm.GetString("vat_rate"),
	})
	m.itemCursor = len(m.items) - 1
	m.itemForm = nil
	m.state = composeStateItems

	return m, nil
}

func (m ComposeModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = composeStateItems
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = composeStateItems
		m.status = fmt.Sprintf("Import de %s...", path)

		return m, m.importItemsCmd(path)
	}

	return m, cmd
}

func (m ComposeModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || keyMsg.Type != tea.KeyEsc {
		return m, nil
	}

	if m.err != nil {
		// Back to the item list so the draft can be fixed and retried.
		m.err = nil
		m.state = composeStateItems

		return m, nil
	}

	return m, Back
}

func (m ComposeModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("invoice_number").
				Title("Numéro de facture").
				Placeholder("FAC-2025-001").
				Value(&m.header.number),
			huh.NewInput().
				Key("date").
				Title("Date (YYYY-MM-DD)").
				Value(&m.header.date),
		).Title("Facture"),
		newPartyGroup("Émetteur", "issuer", &m.issuer),
		newPartyGroup("Destinataire", "recipient", &m.recipient),
	).WithWidth(60).WithShowHelp(false)
}

func newPartyGroup(title, prefix string, p *partyFields) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Key(prefix+"_name").Title("Nom").Value(&p.name),
		huh.NewInput().Key(prefix+"_address").Title("Adresse").Value(&p.address),
		huh.NewInput().Key(prefix+"_postal").Title("Code postal").Value(&p.postal),
		huh.NewInput().Key(prefix+"_city").Title("Ville").Value(&p.city),
		huh.NewInput().Key(prefix+"_siret").Title("SIRET (optionnel)").Value(&p.siret),
		huh.NewInput().Key(prefix+"_vat").Title("N° TVA (optionnel)").Value(&p.vat),
	).Title(title)
}

func (m ComposeModel) buildItemForm() *huh.Form {
	numberCheck := func(s string) error {
		if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
			return fmt.Errorf("nombre attendu")
		}

		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.item.desc).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description obligatoire")
					}

					return nil
				}),
			huh.NewInput().Key("quantity").Title("Quantité").Value(&m.item.qty).Validate(numberCheck),
			huh.NewInput().Key("unit_price").Title("Prix unitaire HT").Value(&m.item.price).Validate(numberCheck),
			huh.NewInput().Key("vat_rate").Title("Taux de TVA (%)").Value(&m.item.rate).Validate(numberCheck),
		).Title("Article"),
	).WithWidth(45).WithShowHelp(false)
}

func (m ComposeModel) View() string {
	switch m.state {
	case composeStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case composeStateItems:
		return m.viewItems()
	case composeStateItemForm:
		return lipgloss.NewStyle().Padding(1).Render(m.itemForm.View())
	case composeStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Fichier d'articles (CSV ou XLSX):\n\n%s", m.filePicker.View()),
		)
	case composeStateGenerating:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Génération du document Factur-X...", m.spinner.View()),
		)
	case composeStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ComposeModel) viewItems() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Facture %s du %s - %d article(s)\n\n", m.header.number, m.header.date, len(m.items))

	if len(m.items) == 0 {
		b.WriteString("  (aucun article)\n")
	}

	for i, it := range m.items {
		cursor := " "
		if i == m.itemCursor {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s - %s x %s HT, TVA %s%%\n",
			cursor, it.Description, it.Quantity, it.UnitPrice, it.VATRate)
	}

	b.WriteString("\na: ajouter | i: importer | d: supprimer | g: générer | Esc: menu")

	if m.status != "" {
		b.WriteString("\n\n" + m.status)
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m ComposeModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(1, 2)

	if m.err != nil {
		var verr *invoice.ValidationError
		if errors.As(m.err, &verr) {
			var b strings.Builder

			b.WriteString(errorStyle.Render("Erreurs de validation:") + "\n\n")

			for _, v := range verr.Violations {
				b.WriteString("  - " + v + "\n")
			}

			b.WriteString("\n(Esc pour corriger)")

			return style.Render(b.String())
		}

		return style.Render(errorStyle.Render(fmt.Sprintf("Erreur: %v", m.err)) + "\n\n(Esc pour corriger)")
	}

	var b strings.Builder

	b.WriteString(successStyle.Render("Facture Factur-X générée avec succès!") + "\n\n")
	fmt.Fprintf(&b, "Fichier:   %s\n", m.doc.Filename)
	fmt.Fprintf(&b, "Total TTC: %s\n", FormatEuros(m.doc.TotalTTC))

	for _, warning := range m.result.Warnings {
		b.WriteString("\n" + errorStyle.Render("! ") + warning)
	}

	b.WriteString("\n\n(Esc pour revenir au menu)")

	return style.Render(b.String())
}

// Messages

type composeImportMsg struct {
	items []invoice.ItemInput
	err   error
}

type composeDoneMsg struct {
	doc    *archive.Document
	result *facturx.Result
	err    error
}

func (m ComposeModel) importItemsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		format, err := importer.FormatFromFilename(path)
		if err != nil {
			return composeImportMsg{err: err}
		}

		f, err := os.Open(path)
		if err != nil {
			return composeImportMsg{err: err}
		}
		defer f.Close()

		items, err := m.importService.Import(format, f)
		if err != nil {
			return composeImportMsg{err: err}
		}

		return composeImportMsg{items: items}
	}
}

func (m ComposeModel) generateCmd() tea.Cmd {
	draft := invoice.Draft{
		Number:    m.header.number,
		IssueDate: m.header.date,
		Issuer:    toPartyInput(m.issuer),
		Recipient: toPartyInput(m.recipient),
		Items:     m.items,
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
		defer cancel()

		result, err := m.generator.Generate(ctx, draft)
		if err != nil {
			return composeDoneMsg{err: err}
		}

		doc, err := m.documents.Store(ctx, archive.StoreParams{
			InvoiceNumber: result.Invoice.Number,
			IssueDate:     result.Invoice.IssueDate,
			SellerName:    result.Invoice.Issuer.Name,
			BuyerName:     result.Invoice.Recipient.Name,
			TotalTTC:      result.Invoice.TotalTTC,
			XMLAttached:   !result.Degraded,
		}, result.PDF)
		if err != nil {
			return composeDoneMsg{err: err}
		}

		return composeDoneMsg{doc: doc, result: result}
	}
}

func toPartyInput(p partyFields) invoice.PartyInput {
	return invoice.PartyInput{
		Name:       p.name,
		Address:    p.address,
		PostalCode: p.postal,
		City:       p.city,
		SIRET:      p.siret,
		VATNumber:  p.vat,
	}
}
