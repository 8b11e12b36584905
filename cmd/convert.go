package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phantompay/invoice-cli/internal/pipeline"
)

var (
	convertDir string
	convertOut string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert PDF invoices in a directory to JSON files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, cleanup, err := initPipeline(ctx, false)
		if err != nil {
			return err
		}
		defer cleanup()

		out := convertOut
		if out == "" {
			out = "json_output"
		}

		results, err := p.Convert(ctx, convertDir, out)
		if err != nil {
			return err
		}

		fmt.Print(pipeline.FormatReport(results))
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertDir, "dir", "data_2", "directory containing PDF invoices")
	convertCmd.Flags().StringVar(&convertOut, "out", "", "output directory for JSON files (default json_output)")
	rootCmd.AddCommand(convertCmd)
}
