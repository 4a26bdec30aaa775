package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/pennywise/internal/cli"
	"github.com/Veraticus/pennywise/internal/ofx"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func init() {
	importOFXCmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import statements exported from your bank as OFX or QFX files.

Rows are categorized by the local rules only; no AI call is made.
Rows already imported are skipped.

Examples:
  # Import single file
  pennywise import-ofx ~/Downloads/checking_jan.qfx

  # Import all QFX files in a directory
  pennywise import-ofx ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	importOFXCmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	importOFXCmd.Flags().BoolP("verbose", "v", false, "Show the parsed transactions")

	rootCmd.AddCommand(importOFXCmd)
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	handler := cli.NewInterruptHandler(out)
	ctx := handler.HandleInterrupts(cmd.Context(), "Import")

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	importer := ofx.NewImporter(a.store, a.categorizer, slog.Default())
	bar := newProgressBar(out, len(files))

	var total ofx.ImportResult
	failed := 0
	for _, path := range files {
		if handler.WasInterrupted() || ctx.Err() != nil {
			break
		}

		result, err := importFile(ctx, importer, path, dryRun, verbose, a, out)
		if err != nil {
			slog.Error("Failed to import file", "file", filepath.Base(path), "error", err)
			failed++
		} else {
			total.Parsed += result.Parsed
			total.Categorized += result.Categorized
			total.Inserted += result.Inserted
		}

		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	summary := fmt.Sprintf("%d file(s): %d parsed, %d categorized", len(files)-failed, total.Parsed, total.Categorized)
	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo(summary+" (dry run, nothing saved)"))
	} else {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s, %d new", summary, total.Inserted)))
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to import", failed)
	}
	return nil
}

func importFile(ctx context.Context, importer *ofx.Importer, path string, dryRun, verbose bool, a *app, out io.Writer) (ofx.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ofx.ImportResult{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close file", "file", path, "error", closeErr)
		}
	}()

	if !dryRun && !verbose {
		return importer.Import(ctx, f)
	}

	txns, result, err := importer.Preview(ctx, f)
	if err != nil {
		return result, err
	}
	if verbose {
		fmt.Fprintln(out, cli.RenderTransactions(txns, a.catalog, a.localizer))
	}
	if dryRun || len(txns) == 0 {
		return result, nil
	}

	inserted, err := a.store.ImportTransactions(ctx, txns)
	if err != nil {
		return result, fmt.Errorf("failed to store statement: %w", err)
	}
	result.Inserted = inserted
	return result, nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing statements...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
