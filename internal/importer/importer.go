// Package importer parses uploaded line-item files into the raw item inputs
// the validator consumes. CSV and XLSX uploads share one column contract:
// a header row carrying description, quantity, unit price and VAT rate
// columns, in French or English spelling, found anywhere in the file.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/LL7Baucarre/facture/internal/invoice"
)

// Format identifies a supported upload container.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

type Parser interface {
	Parse(r io.Reader) ([]invoice.ItemInput, error)
}

type Service struct {
	csvParser  Parser
	xlsxParser Parser
}

func NewService() *Service {
	return &Service{
		csvParser:  NewCSVParser(),
		xlsxParser: NewXLSXParser(),
	}
}

func (s *Service) Import(format Format, r io.Reader) ([]invoice.ItemInput, error) {
	var parser Parser

	switch format {
	case FormatCSV:
		parser = s.csvParser
	case FormatXLSX:
		parser = s.xlsxParser
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	return parser.Parse(r)
}

// FormatFromFilename maps an uploaded file's extension to its Format.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}

	return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(name))
}
