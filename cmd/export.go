package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phantompay/invoice-cli/internal/export"
)

var (
	exportJSONDir string
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export converted invoice JSON files to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := export.ToXLSX(exportJSONDir, exportOut)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d invoice(s) to %s\n", n, exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportJSONDir, "json-dir", "json_output", "directory of converted invoice JSON files")
	exportCmd.Flags().StringVar(&exportOut, "out", "invoices.xlsx", "output XLSX path")
	rootCmd.AddCommand(exportCmd)
}
