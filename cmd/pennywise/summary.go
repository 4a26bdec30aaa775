package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/spf13/cobra"
)

func init() {
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income and expense totals by category",
		Long: `Total income and expenses per category over a date range.

Without --from/--to the current month is summarized.`,
		Args: cobra.NoArgs,
		RunE: runSummary,
	}
	summaryCmd.Flags().String("from", "", "Start date (YYYY-MM-DD)")
	summaryCmd.Flags().String("to", "", "End date (YYYY-MM-DD)")

	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	start, end, err := parseDateRange(from, to, time.Now())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.store.SummarizeRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to summarize: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSummary(summary, a.catalog, a.localizer))
	return nil
}
