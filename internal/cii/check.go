package cii

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	xsdvalidate "github.com/terminalstatic/go-xsd-validate"
)

// requiredElements are the top-level names every generated document must
// contain, matched by local name.
var requiredElements = []string{
	"CrossIndustryInvoice",
	"ExchangedDocumentContext",
	"ExchangedDocument",
	"SupplyChainTradeTransaction",
}

// Checker runs the advisory structural check over generated documents: a
// well-formedness parse plus presence of the mandatory top-level elements,
// and optionally validation against a configured XSD. A non-nil Check result
// is a warning for the caller to surface; generation proceeds regardless.
type Checker struct {
	xsd *xsdvalidate.XsdHandler
}

// NewChecker returns a structural checker. With a non-empty schemaPath the
// Factur-X XSD is loaded once and every document is additionally validated
// against it.
func NewChecker(schemaPath string) (*Checker, error) {
	c := &Checker{}

	if schemaPath == "" {
		return c, nil
	}

	if err := xsdvalidate.Init(); err != nil {
		return nil, fmt.Errorf("init xsd runtime: %w", err)
	}

	handler, err := xsdvalidate.NewXsdHandlerUrl(schemaPath, xsdvalidate.ParsErrDefault)
	if err != nil {
		xsdvalidate.Cleanup()
		return nil, fmt.Errorf("load xsd %s: %w", schemaPath, err)
	}

	c.xsd = handler

	return c, nil
}

// Close releases the XSD handler when one was loaded.
func (c *Checker) Close() {
	if c.xsd != nil {
		c.xsd.Free()
		xsdvalidate.Cleanup()
		c.xsd = nil
	}
}

// Check reports nil when the document is well-formed and structurally sound,
// and a descriptive error otherwise.
func (c *Checker) Check(doc []byte) error {
	seen := make(map[string]bool)

	dec := xml.NewDecoder(bytes.NewReader(doc))

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("document mal formé: %w", err)
		}

		if start, ok := tok.(xml.StartElement); ok {
			seen[start.Name.Local] = true
		}
	}

	for _, name := range requiredElements {
		if !seen[name] {
			return fmt.Errorf("élément manquant: %s", name)
		}
	}

	if c.xsd == nil {
		return nil
	}

	if err := c.xsd.ValidateMem(doc, xsdvalidate.ValidErrDefault); err != nil {
		var verr xsdvalidate.ValidationError
		if errors.As(err, &verr) && len(verr.Errors) > 0 {
			first := verr.Errors[0]
			return fmt.Errorf("validation XSD (ligne %d): %s", first.Line, first.Message)
		}

		return fmt.Errorf("validation XSD: %w", err)
	}

	return nil
}
