package engine

import (
	"context"

	"github.com/Veraticus/pennywise/internal/llm"
	"github.com/Veraticus/pennywise/internal/model"
)

// TransactionParser extracts draft transactions with an AI provider.
// Errors are *llm.Error values.
type TransactionParser interface {
	ParseNaturalInput(ctx context.Context, text string, categories []model.Category) ([]model.ParsedTransaction, error)
	ParseReceiptImage(ctx context.Context, image llm.Image, categories []model.Category) (*model.ParsedReceipt, error)
}
