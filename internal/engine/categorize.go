// Package engine combines rule matching and AI parsing into processed drafts.
package engine

import (
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/pattern"
)

// AI suggestion thresholds.
const (
	// AIAcceptThreshold is the minimum confidence at which an AI category is used.
	AIAcceptThreshold = 0.7
	// AIConfirmThreshold is the confidence below which an accepted AI category
	// still needs user confirmation.
	AIConfirmThreshold = 0.85
)

// CategorizeInput is the text and optional AI suggestion for one transaction.
type CategorizeInput struct {
	Description  string
	MerchantName string
	AISuggestion string
	Type         model.TransactionType
	AIConfidence float64
}

// AutoCategorizer decides a category from local rules first and the AI
// suggestion second. It never fails; an undecided category is empty.
type AutoCategorizer struct {
	matcher pattern.Matcher
}

// NewAutoCategorizer creates a categorizer over matcher.
func NewAutoCategorizer(matcher pattern.Matcher) *AutoCategorizer {
	return &AutoCategorizer{matcher: matcher}
}

// Categorize decides the category for one transaction.
func (a *AutoCategorizer) Categorize(in CategorizeInput) model.CategorizationResult {
	txnType := in.Type
	if !txnType.Valid() {
		txnType = model.TypeExpense
	}

	match := a.matcher.FindMatch(in.Description, in.MerchantName)
	if a.matcher.ShouldUseMatch(match) {
		suggested := match.SuggestedType
		if !suggested.Valid() {
			suggested = txnType
		}
		return model.CategorizationResult{
			CategoryID:            match.CategoryID,
			SuggestedType:         suggested,
			Source:                match.Source,
			Confidence:            match.Confidence,
			NeedsUserConfirmation: false,
		}
	}

	if in.AISuggestion != "" && in.AIConfidence >= AIAcceptThreshold {
		return model.CategorizationResult{
			CategoryID:            in.AISuggestion,
			SuggestedType:         txnType,
			Source:                model.SourceAISuggestion,
			Confidence:            in.AIConfidence,
			NeedsUserConfirmation: in.AIConfidence < AIConfirmThreshold,
		}
	}

	// Neither source is confident. A weak local match still beats the AI.
	if match != nil {
		suggested := match.SuggestedType
		if !suggested.Valid() {
			suggested = txnType
		}
		return model.CategorizationResult{
			CategoryID:            match.CategoryID,
			SuggestedType:         suggested,
			Source:                match.Source,
			Confidence:            match.Confidence,
			NeedsUserConfirmation: true,
		}
	}

	return model.CategorizationResult{
		SuggestedType:         txnType,
		Source:                model.SourceAISuggestion,
		Confidence:            in.AIConfidence,
		NeedsUserConfirmation: true,
	}
}

// FromParsedTransaction categorizes an AI draft, treating its category as the AI suggestion.
func (a *AutoCategorizer) FromParsedTransaction(parsed model.ParsedTransaction) model.CategorizationResult {
	return a.Categorize(CategorizeInput{
		Description:  parsed.Description,
		MerchantName: parsed.MerchantName,
		AISuggestion: parsed.CategoryID,
		AIConfidence: parsed.Confidence,
		Type:         parsed.Type,
	})
}

// CategorizeAll categorizes each draft, preserving order.
func (a *AutoCategorizer) CategorizeAll(parsed []model.ParsedTransaction) []model.CategorizedTransaction {
	out := make([]model.CategorizedTransaction, len(parsed))
	for i, p := range parsed {
		out[i] = model.CategorizedTransaction{
			Parsed:         p,
			Categorization: a.FromParsedTransaction(p),
		}
	}
	return out
}
