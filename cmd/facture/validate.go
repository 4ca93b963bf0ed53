package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LL7Baucarre/facture/internal/invoice"
)

var validateCmd = &cobra.Command{
	Use:   "validate <draft.yaml>",
	Short: "Check a YAML draft file against every business rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	draft, err := loadDraft(args[0])
	if err != nil {
		return err
	}

	if _, err := invoice.Validate(draft); err != nil {
		return err
	}

	fmt.Println("ok")

	return nil
}
