package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	enc "github.com/LL7Baucarre/facture/internal/encoding"
	"github.com/LL7Baucarre/facture/internal/invoice"
)

// ErrNoItemHeader reports an upload without a recognizable item header row.
var ErrNoItemHeader = errors.New("no item header found: expected description, quantité, prix unitaire and TVA columns")

// CSVParser reads line items from a CSV export. The header row is
// auto-detected anywhere in the file and both `;` and `,` separators are
// accepted.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Parse(r io.Reader) ([]invoice.ItemInput, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffSeparator(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx := detectHeader(rows)
	if cols == nil {
		return nil, ErrNoItemHeader
	}

	return itemsFromRows(cols, rows[headerIdx+1:]), nil
}

// sniffSeparator picks the column separator from the first line. French
// exports default to semicolons.
func sniffSeparator(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}

	if bytes.Count(line, []byte(",")) > bytes.Count(line, []byte(";")) {
		return ','
	}

	return ';'
}
