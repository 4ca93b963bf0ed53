package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facture",
	Short: "Factur-X invoice generator",
	Long: `Generate and validate Factur-X invoices (EN 16931, profile Basic)
from YAML draft files, without a running server or database.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
