package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	categorizeCmd := &cobra.Command{
		Use:   "categorize <description...>",
		Short: "Show which category the local rules pick",
		Long: `Run the offline categorizer against a description, optionally with an
AI suggestion to compare against. Nothing is saved and no AI call is made.

Examples:
  pennywise categorize 午餐
  pennywise categorize --merchant starbucks "coffee"
  pennywise categorize --ai-category expense_shopping --ai-confidence 0.9 "new shoes"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCategorize,
	}

	categorizeCmd.Flags().String("merchant", "", "Merchant name")
	categorizeCmd.Flags().String("ai-category", "", "Category suggested by the AI")
	categorizeCmd.Flags().Float64("ai-confidence", 0, "Confidence of the AI suggestion (0-1)")
	categorizeCmd.Flags().String("type", "", "Transaction type (expense or income)")

	rootCmd.AddCommand(categorizeCmd)
}

func runCategorize(cmd *cobra.Command, args []string) error {
	merchant, _ := cmd.Flags().GetString("merchant")
	aiCategory, _ := cmd.Flags().GetString("ai-category")
	aiConfidence, _ := cmd.Flags().GetFloat64("ai-confidence")
	typeFlag, _ := cmd.Flags().GetString("type")

	if aiConfidence < 0 || aiConfidence > 1 {
		return common.NewUserError("--ai-confidence must be between 0 and 1", nil)
	}

	var txnType model.TransactionType
	if typeFlag != "" {
		parsed, err := model.ParseTransactionType(typeFlag)
		if err != nil {
			return common.NewUserError(fmt.Sprintf("invalid --type %q", typeFlag), err)
		}
		txnType = parsed
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.categorizer.Categorize(engine.CategorizeInput{
		Description:  strings.Join(args, " "),
		MerchantName: merchant,
		AISuggestion: aiCategory,
		AIConfidence: aiConfidence,
		Type:         txnType,
	})

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCategorization(result, a.catalog, a.localizer))
	return nil
}
