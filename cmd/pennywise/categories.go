package main

import (
	"fmt"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	categoriesCmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cats"},
		Short:   "List the category catalog",
		Args:    cobra.NoArgs,
		RunE:    runCategories,
	}

	categoriesCmd.Flags().String("type", "", "Only show expense or income categories")

	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	typeFlag, _ := cmd.Flags().GetString("type")

	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	var categories []model.Category
	if typeFlag == "" {
		categories, err = a.store.GetCategories(ctx)
	} else {
		txnType, parseErr := model.ParseTransactionType(typeFlag)
		if parseErr != nil {
			return common.NewUserError(fmt.Sprintf("invalid --type %q", typeFlag), parseErr)
		}
		categories, err = a.store.GetCategoriesByType(ctx, txnType)
	}
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCategories(categories, a.localizer))
	return nil
}
