package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/spf13/cobra"
)

func init() {
	transactionsCmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "List and remove saved transactions",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions in a date range",
		Long: `List saved transactions, newest first.

Without --from/--to the current month is shown.

Examples:
  pennywise transactions list
  pennywise transactions list --from 2024-01-01 --to 2024-03-31 --type income`,
		Args: cobra.NoArgs,
		RunE: runTransactionsList,
	}
	listCmd.Flags().String("from", "", "Start date (YYYY-MM-DD)")
	listCmd.Flags().String("to", "", "End date (YYYY-MM-DD)")
	listCmd.Flags().String("type", "", "Only expense or income")
	listCmd.Flags().Int("limit", 0, "Maximum number of rows (0 for all)")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE:  runTransactionsDelete,
	}

	transactionsCmd.AddCommand(listCmd, deleteCmd)
	rootCmd.AddCommand(transactionsCmd)
}

func runTransactionsList(cmd *cobra.Command, _ []string) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	typeFlag, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	start, end, err := parseDateRange(from, to, time.Now())
	if err != nil {
		return err
	}
	filter := service.TransactionFilter{Start: &start, End: &end, Limit: limit}
	if typeFlag != "" {
		txnType, parseErr := model.ParseTransactionType(typeFlag)
		if parseErr != nil {
			return common.NewUserError(fmt.Sprintf("invalid --type %q", typeFlag), parseErr)
		}
		filter.Type = txnType
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	txns, err := a.store.GetTransactions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s → %s", start.Format(dateLayout), end.Format(dateLayout))))
	fmt.Fprintln(out, cli.RenderTransactions(txns, a.catalog, a.localizer))
	return nil
}

func runTransactionsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.DeleteTransaction(ctx, args[0]); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("no transaction with id %s", args[0]), err)
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+args[0]))
	return nil
}
