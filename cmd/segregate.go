package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phantompay/invoice-cli/internal/segregate"
)

var segregateDir string

var segregateCmd = &cobra.Command{
	Use:   "segregate",
	Short: "Sort a mixed document folder into PDF and text destinations",
	RunE: func(cmd *cobra.Command, args []string) error {
		txt, pdf, err := segregate.Segregate(segregateDir)
		if err != nil {
			return err
		}
		fmt.Printf("Moved %d PDF(s) and %d text file(s)\n", pdf, txt)
		return nil
	},
}

func init() {
	segregateCmd.Flags().StringVar(&segregateDir, "dir", "data", "directory of mixed invoice documents")
	rootCmd.AddCommand(segregateCmd)
}
