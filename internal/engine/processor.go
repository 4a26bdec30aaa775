package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/pennywise/internal/i18n"
	"github.com/Veraticus/pennywise/internal/llm"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
)

const labelSeparator = " · "

// Processor turns user input into categorized drafts ready for review.
// It does not persist anything.
type Processor struct {
	categories  service.CategoryReader
	parser      TransactionParser
	categorizer *AutoCategorizer
	localizer   *i18n.Localizer
	logger      *slog.Logger
}

// NewProcessor creates a processor. A nil localizer uses English and a nil
// logger uses slog.Default.
func NewProcessor(categories service.CategoryReader, parser TransactionParser, categorizer *AutoCategorizer, localizer *i18n.Localizer, logger *slog.Logger) *Processor {
	if localizer == nil {
		localizer = i18n.New("en")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		categories:  categories,
		parser:      parser,
		categorizer: categorizer,
		localizer:   localizer,
		logger:      logger,
	}
}

// Process parses free text into drafts and categorizes them. Errors from the
// AI parser are returned unchanged.
func (p *Processor) Process(ctx context.Context, userInput string) (*model.ProcessResult, error) {
	catalog, err := p.categories.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	parsed, err := p.parser.ParseNaturalInput(ctx, userInput, catalog)
	if err != nil {
		p.logger.Debug("AI parsing failed", "kind", llm.KindOf(err), "error", err)
		return nil, err
	}

	categorized := p.categorizer.CategorizeAll(parsed)
	result := &model.ProcessResult{
		Transactions: make([]model.ProcessedTransaction, 0, len(categorized)),
	}
	for _, ct := range categorized {
		processed := model.ProcessedTransaction{
			Parsed:         ct.Parsed,
			Categorization: alignType(catalog, ct.Categorization),
			DisplayLabel:   p.displayLabel(catalog, ct.Categorization.CategoryID, ct.Parsed.MerchantName, ct.Parsed.Description),
			IsComplete:     ct.Parsed.IsComplete(),
		}
		if !processed.IsComplete {
			result.HasIncomplete = true
		}
		result.Transactions = append(result.Transactions, processed)
	}

	switch {
	case len(result.Transactions) == 0:
		result.FollowUpQuestion = p.localizer.NothingFound()
	case result.HasIncomplete:
		result.FollowUpQuestion = p.followUpQuestion(result.Transactions)
	}

	p.logger.Debug("Processed input",
		"transactions", len(result.Transactions),
		"has_incomplete", result.HasIncomplete)
	return result, nil
}

// ProcessReceipt parses a receipt image and categorizes it by merchant name
// and the AI suggestion.
func (p *Processor) ProcessReceipt(ctx context.Context, image llm.Image) (*model.ProcessedReceipt, error) {
	catalog, err := p.categories.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	receipt, err := p.parser.ParseReceiptImage(ctx, image, catalog)
	if err != nil {
		p.logger.Debug("AI receipt parsing failed", "kind", llm.KindOf(err), "error", err)
		return nil, err
	}

	categorization := alignType(catalog, p.categorizer.Categorize(CategorizeInput{
		Description:  receipt.MerchantName,
		MerchantName: receipt.MerchantName,
		AISuggestion: receipt.SuggestedCategoryID,
		AIConfidence: receipt.Confidence,
		Type:         receipt.SuggestedType,
	}))

	return &model.ProcessedReceipt{
		Receipt:        *receipt,
		Categorization: categorization,
		DisplayLabel:   p.displayLabel(catalog, categorization.CategoryID, receipt.MerchantName, ""),
	}, nil
}

// followUpQuestion asks for the distinct fields missing across incomplete drafts.
func (p *Processor) followUpQuestion(txns []model.ProcessedTransaction) string {
	fields := missingFields(txns)

	switch {
	case len(fields) == 1 && fields[0] == model.FieldAmount:
		return p.localizer.AskAmount()
	case len(fields) == 1 && fields[0] == model.FieldCategoryID:
		return p.localizer.AskCategory()
	case len(fields) > 1:
		return p.localizer.AskFields(fields)
	default:
		return p.localizer.AskGeneric()
	}
}

// missingFields collects distinct missing fields of incomplete drafts in
// order of first appearance.
func missingFields(txns []model.ProcessedTransaction) []string {
	var fields []string
	seen := make(map[string]bool)
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}

	for _, txn := range txns {
		if txn.IsComplete {
			continue
		}
		for _, f := range txn.Parsed.MissingFields {
			add(f)
		}
		if txn.Parsed.Amount == nil {
			add(model.FieldAmount)
		}
	}
	return fields
}

// alignType sets the suggested type to the chosen category's type, so an AI
// suggestion of the other direction cannot carry a mismatched type.
func alignType(catalog model.Catalog, result model.CategorizationResult) model.CategorizationResult {
	if cat, ok := catalog.Find(result.CategoryID); ok {
		result.SuggestedType = cat.Type
	}
	return result
}

func (p *Processor) displayLabel(catalog model.Catalog, categoryID, merchant, description string) string {
	label := p.localizer.Uncategorized()
	if cat, ok := catalog.Find(categoryID); ok {
		label = p.localizer.CategoryLabel(cat)
	}

	subject := strings.TrimSpace(merchant)
	if subject == "" {
		subject = strings.TrimSpace(description)
	}
	if subject == "" {
		return label
	}
	return label + labelSeparator + subject
}
