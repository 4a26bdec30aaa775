package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
)

// ImportResult summarizes one statement import.
type ImportResult struct {
	Parsed      int
	Categorized int
	Inserted    int
}

// Importer parses statements, categorizes them offline and stores new rows.
type Importer struct {
	parser      *Parser
	categorizer *engine.AutoCategorizer
	store       service.TransactionStore
	logger      *slog.Logger
}

// NewImporter creates an importer.
func NewImporter(store service.TransactionStore, categorizer *engine.AutoCategorizer, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		parser:      NewParser(logger),
		categorizer: categorizer,
		store:       store,
		logger:      logger,
	}
}

// Preview parses and categorizes one statement without storing it.
func (i *Importer) Preview(ctx context.Context, r io.Reader) ([]model.Transaction, ImportResult, error) {
	transactions, err := i.parser.ParseFile(ctx, r)
	if err != nil {
		return nil, ImportResult{}, err
	}

	result := ImportResult{Parsed: len(transactions)}
	for idx := range transactions {
		if i.categorize(&transactions[idx]) {
			result.Categorized++
		}
	}
	return transactions, result, nil
}

// Import reads one statement. Rows already stored (same hash) are skipped.
// Rows whose rule match is not confident enough are stored uncategorized.
func (i *Importer) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	transactions, result, err := i.Preview(ctx, r)
	if err != nil {
		return ImportResult{}, err
	}
	if len(transactions) == 0 {
		return result, nil
	}

	inserted, err := i.store.ImportTransactions(ctx, transactions)
	if err != nil {
		return result, fmt.Errorf("failed to store statement: %w", err)
	}
	result.Inserted = inserted

	i.logger.Info("Imported statement",
		"parsed", result.Parsed,
		"categorized", result.Categorized,
		"inserted", result.Inserted)
	return result, nil
}

func (i *Importer) categorize(txn *model.Transaction) bool {
	decision := i.categorizer.Categorize(engine.CategorizeInput{
		Description:  txn.Description,
		MerchantName: txn.MerchantName,
		Type:         txn.Type,
	})
	if decision.NeedsUserConfirmation || !decision.HasCategory() {
		return false
	}
	// A rule for the other direction (say a refund matching a shop) would
	// put the row under a category of the wrong type.
	if decision.SuggestedType != txn.Type {
		return false
	}
	txn.CategoryID = decision.CategoryID
	return true
}
