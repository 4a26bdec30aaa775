package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/llm"
	"github.com/spf13/cobra"
)

const maxReceiptBytes = 10 << 20

func init() {
	receiptCmd := &cobra.Command{
		Use:   "receipt <image>",
		Short: "Record a transaction from a receipt photo",
		Long: `Read the merchant, date, items and total from a receipt image.

Supported formats: JPEG, PNG, WebP, GIF and HEIC.

Examples:
  pennywise receipt ~/Pictures/lunch.jpg
  pennywise receipt --save=false receipt.png`,
		Args: cobra.ExactArgs(1),
		RunE: runReceipt,
	}

	receiptCmd.Flags().BoolP("save", "s", true, "Save the receipt (--save=false only shows the result)")
	receiptCmd.Flags().BoolP("yes", "y", false, "Save even when the category needs confirmation")

	rootCmd.AddCommand(receiptCmd)
}

func runReceipt(cmd *cobra.Command, args []string) error {
	save, _ := cmd.Flags().GetBool("save")
	force, _ := cmd.Flags().GetBool("yes")

	mime, err := imageMIME(args[0])
	if err != nil {
		return err
	}
	info, err := os.Stat(args[0])
	if err != nil {
		return common.NewUserError(fmt.Sprintf("cannot read %s", args[0]), err)
	}
	if info.Size() > maxReceiptBytes {
		return common.NewUserError(fmt.Sprintf("%s is larger than 10MB", args[0]), nil)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	processed, err := a.processor.ProcessReceipt(ctx, llm.Image{MIMEType: mime, Data: data})
	if err != nil {
		return aiError(err, a.localizer)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderReceipt(processed))

	if !save || processed.Receipt.TotalAmount == nil {
		return nil
	}
	if !processed.CanAutoSave() && !force {
		fmt.Fprintln(out, cli.FormatWarning("Category needs confirmation; rerun with --yes to save."))
		return nil
	}

	txn, err := engine.PromoteReceipt(*processed)
	if err != nil {
		return err
	}
	if err := a.store.AddTransaction(ctx, txn); err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess("Saved receipt from "+txn.MerchantName))
	return nil
}
