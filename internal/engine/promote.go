package engine

import (
	"fmt"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/google/uuid"
)

// Promote converts a processed draft into a transaction ready to persist.
// Drafts without an amount cannot be promoted. A categorized draft takes the
// category's type.
func Promote(processed model.ProcessedTransaction, source model.TransactionSource) (*model.Transaction, error) {
	parsed := processed.Parsed
	if parsed.Amount == nil {
		return nil, fmt.Errorf("cannot save %q: %w", parsed.Description, common.ErrIncomplete)
	}

	// A chosen category fixes the direction; the parsed type only applies to
	// uncategorized drafts.
	txnType := parsed.Type
	if processed.Categorization.HasCategory() || !txnType.Valid() {
		txnType = processed.Categorization.SuggestedType
	}

	return newTransaction(transactionFields{
		date:        parsed.Date,
		amount:      *parsed.Amount,
		txnType:     txnType,
		categoryID:  processed.Categorization.CategoryID,
		merchant:    parsed.MerchantName,
		description: parsed.Description,
		source:      source,
	}), nil
}

// PromoteReceipt converts a processed receipt into a transaction ready to persist.
func PromoteReceipt(processed model.ProcessedReceipt) (*model.Transaction, error) {
	receipt := processed.Receipt
	if receipt.TotalAmount == nil {
		return nil, fmt.Errorf("cannot save receipt from %q: %w", receipt.MerchantName, common.ErrIncomplete)
	}

	return newTransaction(transactionFields{
		date:        receipt.Date,
		amount:      *receipt.TotalAmount,
		txnType:     processed.Categorization.SuggestedType,
		categoryID:  processed.Categorization.CategoryID,
		merchant:    receipt.MerchantName,
		description: receipt.MerchantName,
		source:      model.SourceAIReceipt,
	}), nil
}

type transactionFields struct {
	date        time.Time
	txnType     model.TransactionType
	categoryID  string
	merchant    string
	description string
	source      model.TransactionSource
	amount      float64
}

func newTransaction(f transactionFields) *model.Transaction {
	if !f.txnType.Valid() {
		f.txnType = model.TypeExpense
	}
	if f.date.IsZero() {
		f.date = time.Now()
	}

	now := time.Now()
	txn := &model.Transaction{
		ID:           uuid.NewString(),
		Date:         f.date,
		Amount:       f.amount,
		Type:         f.txnType,
		CategoryID:   f.categoryID,
		MerchantName: f.merchant,
		Description:  f.description,
		Source:       f.source,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	txn.Hash = txn.GenerateHash()
	return txn
}
