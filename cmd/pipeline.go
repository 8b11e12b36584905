package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phantompay/invoice-cli/internal/pipeline"
)

var pipelineDir string

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Segregate, extract, and upload invoices to Convex",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("pipeline"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, cleanup, err := initPipeline(ctx, true)
		if err != nil {
			return err
		}
		defer cleanup()

		results, err := p.Run(ctx, pipelineDir)
		if err != nil {
			return err
		}

		fmt.Print(pipeline.FormatReport(results))
		return nil
	},
}

func init() {
	pipelineCmd.Flags().StringVar(&pipelineDir, "dir", "data", "directory of mixed invoice documents")
	rootCmd.AddCommand(pipelineCmd)
}
