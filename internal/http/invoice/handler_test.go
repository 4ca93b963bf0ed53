package invoice_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/LL7Baucarre/facture/internal/archive"
	"github.com/LL7Baucarre/facture/internal/facturx"
	"github.com/LL7Baucarre/facture/internal/http/invoice"
	"github.com/LL7Baucarre/facture/internal/pdfa"
	"github.com/LL7Baucarre/facture/internal/render"
)

func newTestRouter(t *testing.T, repo archive.Repository) http.Handler {
	t.Helper()

	files, err := archive.NewDirStore(t.TempDir())
	require.NoError(t, err)

	h := invoice.NewHandler(
		facturx.New(render.New(), pdfa.New()),
		archive.NewService(repo, files),
	)

	r := chi.NewRouter()
	r.Post("/generate_invoice", h.GenerateForm)
	r.Route("/api/v1/invoices", h.Routes)

	return r
}

func validForm() url.Values {
	form := url.Values{}
	form.Set("invoice_number", "FAC-2025-001")
	form.Set("date", "2025-07-31")
	form.Set("issuer_name", "Atelier Baucarré")
	form.Set("issuer_address", "12 rue des Lilas")
	form.Set("issuer_postal", "75011")
	form.Set("issuer_city", "Paris")
	form.Set("issuer_siret", "39112356500016")
	form.Set("recipient_name", "SARL Exemple")
	form.Set("recipient_address", "8 avenue du Port")
	form.Set("recipient_postal", "69002")
	form.Set("recipient_city", "Lyon")
	form["description[]"] = []string{"Prestation de conseil", ""}
	form["quantity[]"] = []string{"2", ""}
	form["unit_price[]"] = []string{"500.00", ""}
	form["vat_rate[]"] = []string{"20", ""}

	return form
}

func TestGenerateForm_ReturnsDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := archive.NewMockRepository(ctrl)

	repo.EXPECT().
		CreateDocument(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, doc *archive.Document) error {
			assert.Equal(t, "FAC-2025-001", doc.InvoiceNumber)
			assert.Equal(t, int64(120000), doc.TotalTTC)
			assert.True(t, doc.XMLAttached)
			doc.ID = uuid.New()

			return nil
		})

	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/generate_invoice",
		strings.NewReader(validForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="facture_FAC-2025-001.pdf"`,
		rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	assert.Contains(t, rec.Body.String(), "factur-x.xml")
}

func TestGenerateForm_ValidationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := archive.NewMockRepository(ctrl)

	router := newTestRouter(t, repo)

	form := validForm()
	form.Set("issuer_name", "")
	form["quantity[]"] = []string{"abc", ""}

	req := httptest.NewRequest(http.MethodPost, "/generate_invoice",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Erreurs de validation:")
	assert.Contains(t, rec.Body.String(), "- Émetteur - name est obligatoire")
	assert.Contains(t, rec.Body.String(), "- Article 1 - Quantité invalide")
}

func TestCreate_JSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := archive.NewMockRepository(ctrl)

	docID := uuid.New()
	repo.EXPECT().
		CreateDocument(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, doc *archive.Document) error {
			doc.ID = docID

			return nil
		})

	router := newTestRouter(t, repo)

	body := map[string]any{
		"invoice_number": "FAC-2025-002",
		"date":           "2025-08-01",
		"issuer": map[string]string{
			"name":        "Atelier Baucarré",
			"address":     "12 rue des Lilas",
			"postal_code": "75011",
			"city":        "Paris",
		},
		"recipient": map[string]string{
			"name":        "SARL Exemple",
			"address":     "8 avenue du Port",
			"postal_code": "69002",
			"city":        "Lyon",
		},
		"items": []map[string]string{
			{"description": "Maintenance", "quantity": "1", "unit_price": "150", "vat_rate": "20"},
		},
	}

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID            uuid.UUID `json:"id"`
		InvoiceNumber string    `json:"invoice_number"`
		TotalHT       string    `json:"total_ht"`
		TotalVAT      string    `json:"total_vat"`
		TotalTTC      string    `json:"total_ttc"`
		XMLAttached   bool      `json:"xml_attached"`
		Degraded      bool      `json:"degraded"`
		DownloadURL   string    `json:"download_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, docID, resp.ID)
	assert.Equal(t, "FAC-2025-002", resp.InvoiceNumber)
	assert.Equal(t, "150.00", resp.TotalHT)
	assert.Equal(t, "30.00", resp.TotalVAT)
	assert.Equal(t, "180.00", resp.TotalTTC)
	assert.True(t, resp.XMLAttached)
	assert.False(t, resp.Degraded)
	assert.Equal(t, "/api/v1/documents/"+docID.String()+"/download", resp.DownloadURL)
}

func TestCreate_ValidationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := archive.NewMockRepository(ctrl)

	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices",
		strings.NewReader(`{"invoice_number":"","date":"2025-08-01","items":[]}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Contains(t, resp.Errors, "Numéro de facture est obligatoire")
	assert.Contains(t, resp.Errors, "Au moins un article est obligatoire")
}
