package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phantompay/invoice-cli/internal/model"
	"github.com/phantompay/invoice-cli/internal/store"
)

var (
	runsStatus string
	runsMode   string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded batch runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(runsStatus),
			Mode:   model.RunMode(runsMode),
			Limit:  runsLimit,
		})
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		for _, r := range runs {
			succeeded, failed := model.Summarize(r.Results)
			fmt.Printf("%s  %-8s  %-8s  %s  (%d ok, %d failed)\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"),
				r.Mode, r.Status, r.ID, succeeded, failed)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status (running|complete|failed)")
	runsCmd.Flags().StringVar(&runsMode, "mode", "", "filter by mode (convert|pipeline)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "max runs to list")
	rootCmd.AddCommand(runsCmd)
}
