package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/LL7Baucarre/facture/internal/importer"
)

func TestCSVParser_FrenchExport(t *testing.T) {
	csv := `Export articles - 31/07/2025
Société;Atelier Baucarré

Désignation;Quantité;Prix unitaire HT;TVA
Prestation de conseil;2;500,00 €;20 %
Développement spécifique;1,5;300,00 €;10 %
;;;
;;Page 1/1;
`

	items, err := importer.NewCSVParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Prestation de conseil", items[0].Description)
	assert.Equal(t, "2", items[0].Quantity)
	assert.Equal(t, "500.00", items[0].UnitPrice)
	assert.Equal(t, "20", items[0].VATRate)

	assert.Equal(t, "Développement spécifique", items[1].Description)
	assert.Equal(t, "1.5", items[1].Quantity)
	assert.Equal(t, "300.00", items[1].UnitPrice)
	assert.Equal(t, "10", items[1].VATRate)
}

func TestCSVParser_EnglishCommaSeparated(t *testing.T) {
	csv := `description,quantity,unit_price,vat_rate
Consulting,2,500.00,20
Hosting,1,49.90,20
`

	items, err := importer.NewCSVParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Consulting", items[0].Description)
	assert.Equal(t, "500.00", items[0].UnitPrice)
	assert.Equal(t, "49.90", items[1].UnitPrice)
}

func TestCSVParser_ThousandsSeparators(t *testing.T) {
	csv := `Désignation;Qté;Prix unitaire;Taux TVA
Machine outil;1;1.234,56;20
Maintenance;12;1 000,00;20
`

	items, err := importer.NewCSVParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "1234.56", items[0].UnitPrice)
	assert.Equal(t, "1000.00", items[1].UnitPrice)
}

func TestCSVParser_NoHeader(t *testing.T) {
	csv := `une;deux;trois
1;2;3
`

	_, err := importer.NewCSVParser().Parse(strings.NewReader(csv))
	assert.ErrorIs(t, err, importer.ErrNoItemHeader)
}

func TestCSVParser_Windows1252(t *testing.T) {
	utf8CSV := "Désignation;Quantité;Prix unitaire HT;TVA\nCafé et accueil;1;25,00;5,5\n"

	encoder := charmap.Windows1252.NewEncoder()
	latin1Bytes, err := encoder.Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	items, err := importer.NewCSVParser().Parse(strings.NewReader(string(latin1Bytes)))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Café et accueil", items[0].Description)
	assert.Equal(t, "5.5", items[0].VATRate)
}

func TestXLSXParser_FirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	cells := map[string]any{
		"A1": "Désignation", "B1": "Quantité", "C1": "Prix unitaire HT", "D1": "TVA",
		"A2": "Prestation de conseil", "B2": 2, "C2": 500, "D2": 20,
		"A3": "", "B3": "", "C3": "", "D3": "",
		"A4": "Formation", "B4": 1, "C4": 800, "D4": 20,
	}
	for cell, value := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, value))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	items, err := importer.NewXLSXParser().Parse(buf)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Prestation de conseil", items[0].Description)
	assert.Equal(t, "2", items[0].Quantity)
	assert.Equal(t, "500", items[0].UnitPrice)
	assert.Equal(t, "Formation", items[1].Description)
}

func TestXLSXParser_NoHeader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "notes"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = importer.NewXLSXParser().Parse(buf)
	assert.ErrorIs(t, err, importer.ErrNoItemHeader)
}

func TestService_Import(t *testing.T) {
	svc := importer.NewService()

	csv := "description,quantity,unit_price,vat_rate\nConsulting,1,100,20\n"

	items, err := svc.Import(importer.FormatCSV, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.Import(importer.Format("pdf"), strings.NewReader(""))
	assert.ErrorContains(t, err, "unknown format")
}

func TestFormatFromFilename(t *testing.T) {
	format, err := importer.FormatFromFilename("articles.CSV")
	require.NoError(t, err)
	assert.Equal(t, importer.FormatCSV, format)

	format, err = importer.FormatFromFilename("articles.xlsx")
	require.NoError(t, err)
	assert.Equal(t, importer.FormatXLSX, format)

	_, err = importer.FormatFromFilename("articles.pdf")
	assert.ErrorContains(t, err, "unsupported file type")
}
