package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LL7Baucarre/facture/internal/facturx"
	"github.com/LL7Baucarre/facture/internal/pdfa"
	"github.com/LL7Baucarre/facture/internal/render"
)

var (
	outputDir string
	writeXML  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <draft.yaml>",
	Short: "Generate a Factur-X PDF from a YAML draft file",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "directory the files are written to")
	generateCmd.Flags().BoolVar(&writeXML, "xml", false, "also write the embedded XML next to the PDF")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	draft, err := loadDraft(args[0])
	if err != nil {
		return err
	}

	svc := facturx.New(render.New(), pdfa.New())

	result, err := svc.Generate(cmd.Context(), draft)
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", warning)
	}

	base := "facture_" + safeName(result.Invoice.Number)

	pdfPath := filepath.Join(outputDir, base+".pdf")
	if err := os.WriteFile(pdfPath, result.PDF, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", pdfPath, err)
	}

	fmt.Println("wrote", pdfPath)

	if writeXML {
		xmlPath := filepath.Join(outputDir, base+".xml")
		if err := os.WriteFile(xmlPath, result.XML, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", xmlPath, err)
		}

		fmt.Println("wrote", xmlPath)
	}

	return nil
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		}

		return '_'
	}, s)
}
