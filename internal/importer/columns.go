package importer

import (
	"slices"
	"strings"
	"unicode"

	"github.com/LL7Baucarre/facture/internal/invoice"
)

// Header spellings accepted for the four item columns. French names first,
// the English ones cover exports from non-localized tools.
var (
	descAliases  = []string{"description", "désignation", "designation", "libellé", "libelle"}
	qtyAliases   = []string{"quantité", "quantite", "qté", "qte", "quantity", "qty"}
	priceAliases = []string{"prix unitaire ht", "prix unitaire", "pu ht", "prix", "unit price", "unit_price"}
	rateAliases  = []string{"taux tva", "tva (%)", "tva", "vat rate", "vat_rate", "vat"}
)

// columnIndex locates the four item columns inside a header row.
type columnIndex struct {
	desc  int
	qty   int
	price int
	rate  int
}

// detectHeader scans rows for the first one carrying all four item columns.
// Returns the mapping and the header row index.
func detectHeader(rows [][]string) (*columnIndex, int) {
	for rowIdx, row := range rows {
		idx := columnIndex{desc: -1, qty: -1, price: -1, rate: -1}

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))

			switch {
			case idx.desc < 0 && slices.Contains(descAliases, name):
				idx.desc = i
			case idx.qty < 0 && slices.Contains(qtyAliases, name):
				idx.qty = i
			case idx.price < 0 && slices.Contains(priceAliases, name):
				idx.price = i
			case idx.rate < 0 && slices.Contains(rateAliases, name):
				idx.rate = i
			}
		}

		if idx.desc >= 0 && idx.qty >= 0 && idx.price >= 0 && idx.rate >= 0 {
			return &idx, rowIdx
		}
	}

	return nil, 0
}

// itemsFromRows converts data rows to raw item inputs. Rows without a
// description are dropped, mirroring how blank form lines are handled.
func itemsFromRows(cols *columnIndex, rows [][]string) []invoice.ItemInput {
	var items []invoice.ItemInput

	for _, row := range rows {
		desc := cellValue(row, cols.desc)
		if desc == "" {
			continue
		}

		items = append(items, invoice.ItemInput{
			Description: desc,
			Quantity:    normalizeNumber(cellValue(row, cols.qty)),
			UnitPrice:   normalizeNumber(cellValue(row, cols.price)),
			VATRate:     normalizeNumber(cellValue(row, cols.rate)),
		})
	}

	return items
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

// normalizeNumber converts French numeric spellings ("1 234,56", "20 %",
// "500,00 €") to the dotted form the validator parses.
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSuffix(s, "€")

	var b strings.Builder

	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}

		b.WriteRune(r)
	}

	s = b.String()

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	return s
}
