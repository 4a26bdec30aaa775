package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/spf13/cobra"
)

// maxFollowUps bounds how often add asks for missing details.
const maxFollowUps = 3

func init() {
	addCmd := &cobra.Command{
		Use:   "add <text...>",
		Short: "Record transactions from a plain sentence",
		Long: `Parse a sentence such as "lunch 120, taxi 250" into transactions.

Complete transactions with a confident category are saved right away.
When the amount or category is missing you are asked for it.

Examples:
  pennywise add "lunch 120"
  pennywise add 早餐 80 午餐 150
  pennywise add --save=false "salary 50000"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAdd,
	}

	addCmd.Flags().BoolP("save", "s", true, "Save complete transactions (--save=false only shows the result)")
	addCmd.Flags().BoolP("yes", "y", false, "Also save complete transactions that need category confirmation")
	addCmd.Flags().Bool("no-input", false, "Never ask follow-up questions")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	save, _ := cmd.Flags().GetBool("save")
	force, _ := cmd.Flags().GetBool("yes")
	noInput, _ := cmd.Flags().GetBool("no-input")

	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	var reader *cli.LineReader
	if !noInput {
		reader = cli.NewLineReader(cmd.InOrStdin(), out)
	}

	result, err := processWithFollowUps(ctx, a, reader, out, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if !save {
		return nil
	}

	txns, err := promoteAll(result.Transactions, force)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		if result.HasIncomplete {
			fmt.Fprintln(out, cli.FormatWarning("Nothing saved; some details are still missing."))
		}
		return nil
	}

	if err := a.store.AddTransactions(ctx, txns); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved %d transaction(s)", len(txns))))
	return nil
}

// processWithFollowUps runs the processor and, while details are missing,
// asks the follow-up question and reprocesses the combined text.
func processWithFollowUps(ctx context.Context, a *app, reader *cli.LineReader, out io.Writer, text string) (*model.ProcessResult, error) {
	result, err := a.processor.Process(ctx, text)
	if err != nil {
		return nil, aiError(err, a.localizer)
	}
	fmt.Fprintln(out, cli.RenderProcessResult(result, a.localizer))

	for round := 0; reader != nil && round < maxFollowUps; round++ {
		if !result.HasIncomplete || result.FollowUpQuestion == "" {
			break
		}

		answer, err := reader.Ask(ctx, "")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, cli.ErrInputCancelled) {
				break
			}
			return nil, err
		}
		if answer == "" {
			break
		}

		text = text + " " + answer
		result, err = a.processor.Process(ctx, text)
		if err != nil {
			return nil, aiError(err, a.localizer)
		}
		fmt.Fprintln(out, cli.RenderProcessResult(result, a.localizer))
	}
	return result, nil
}
