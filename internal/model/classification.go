// Package model defines the core domain models used throughout the application.
package model

import "time"

// MatchSource indicates where a category decision came from.
type MatchSource string

// Match source constants.
const (
	// SourceUserRule is reserved for rules learned from user corrections.
	SourceUserRule     MatchSource = "user-rule"
	SourceKeywordRule  MatchSource = "keyword-rule"
	SourceMerchantRule MatchSource = "merchant-rule"
	SourceAISuggestion MatchSource = "ai-suggestion"
)

// Missing field names reported by the AI parser.
const (
	FieldAmount     = "amount"
	FieldCategoryID = "categoryId"
	FieldDate       = "date"
)

// CategoryMatch is the result of matching text against the rule tables.
type CategoryMatch struct {
	CategoryID    string          `json:"categoryId"`
	Source        MatchSource     `json:"source"`
	SuggestedType TransactionType `json:"suggestedType,omitempty"`
	Confidence    float64         `json:"confidence"`
}

// CategorizationResult is the final category decision for one transaction.
type CategorizationResult struct {
	CategoryID            string          `json:"categoryId,omitempty"`
	SuggestedType         TransactionType `json:"suggestedType"`
	Source                MatchSource     `json:"source,omitempty"`
	Confidence            float64         `json:"confidence"`
	NeedsUserConfirmation bool            `json:"needsUserConfirmation"`
}

// HasCategory reports whether a category was decided.
func (r CategorizationResult) HasCategory() bool {
	return r.CategoryID != ""
}

// ParsedTransaction is a draft transaction extracted from free text.
type ParsedTransaction struct {
	Date          time.Time       `json:"date"`
	Amount        *float64        `json:"amount,omitempty"`
	Type          TransactionType `json:"type"`
	MerchantName  string          `json:"merchantName,omitempty"`
	CategoryID    string          `json:"categoryId,omitempty"`
	Description   string          `json:"description"`
	MissingFields []string        `json:"missingFields"`
	Confidence    float64         `json:"confidence"`
}

// IsComplete reports whether the draft has every required field.
func (p ParsedTransaction) IsComplete() bool {
	return len(p.MissingFields) == 0 && p.Amount != nil
}

// ParsedReceipt is the structured content extracted from a receipt image.
type ParsedReceipt struct {
	Date                time.Time       `json:"date"`
	TotalAmount         *float64        `json:"totalAmount,omitempty"`
	MerchantName        string          `json:"merchantName"`
	SuggestedCategoryID string          `json:"suggestedCategoryId,omitempty"`
	SuggestedType       TransactionType `json:"suggestedType"`
	Confidence          float64         `json:"confidence"`
}

// CategorizedTransaction pairs a draft with its category decision.
type CategorizedTransaction struct {
	Parsed         ParsedTransaction    `json:"parsed"`
	Categorization CategorizationResult `json:"categorization"`
}

// ProcessedTransaction is a draft ready to be shown to the user.
type ProcessedTransaction struct {
	Parsed         ParsedTransaction    `json:"parsed"`
	Categorization CategorizationResult `json:"categorization"`
	DisplayLabel   string               `json:"displayLabel"`
	IsComplete     bool                 `json:"isComplete"`
}

// CanAutoSave reports whether the transaction may be persisted without asking the user.
func (p ProcessedTransaction) CanAutoSave() bool {
	return p.IsComplete && !p.Categorization.NeedsUserConfirmation && p.Parsed.Amount != nil
}

// ProcessResult is the outcome of processing one natural-language input.
type ProcessResult struct {
	FollowUpQuestion string                 `json:"followUpQuestion,omitempty"`
	Transactions     []ProcessedTransaction `json:"transactions"`
	HasIncomplete    bool                   `json:"hasIncomplete"`
}

// AutoSavable returns the transactions that can be persisted without confirmation.
func (r ProcessResult) AutoSavable() []ProcessedTransaction {
	var out []ProcessedTransaction
	for _, txn := range r.Transactions {
		if txn.CanAutoSave() {
			out = append(out, txn)
		}
	}
	return out
}

// ProcessedReceipt is a receipt with its category decision.
type ProcessedReceipt struct {
	Receipt        ParsedReceipt        `json:"receipt"`
	Categorization CategorizationResult `json:"categorization"`
	DisplayLabel   string               `json:"displayLabel"`
}

// CanAutoSave reports whether the receipt may be persisted without asking the user.
func (p ProcessedReceipt) CanAutoSave() bool {
	return p.Receipt.TotalAmount != nil && !p.Categorization.NeedsUserConfirmation
}
