package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/LL7Baucarre/facture/internal/invoice"
)

// XLSXParser reads line items from the first sheet of an XLSX workbook,
// using the same column contract as the CSV parser.
type XLSXParser struct{}

func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

func (p *XLSXParser) Parse(r io.Reader) ([]invoice.ItemInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	cols, headerIdx := detectHeader(rows)
	if cols == nil {
		return nil, ErrNoItemHeader
	}

	return itemsFromRows(cols, rows[headerIdx+1:]), nil
}
