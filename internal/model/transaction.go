package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionSource records how a persisted transaction was entered.
type TransactionSource string

// Transaction source constants.
const (
	SourceManual    TransactionSource = "manual"
	SourceAIText    TransactionSource = "ai_text"
	SourceAIReceipt TransactionSource = "ai_receipt"
	SourceStatement TransactionSource = "statement"
)

// Transaction is a persisted ledger entry.
type Transaction struct {
	Date         time.Time         `json:"date"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	ID           string            `json:"id"`
	Type         TransactionType   `json:"type"`
	CategoryID   string            `json:"categoryId,omitempty"`
	MerchantName string            `json:"merchantName,omitempty"`
	Description  string            `json:"description"`
	Note         string            `json:"note,omitempty"`
	Source       TransactionSource `json:"source"`
	Hash         string            `json:"-"`
	Amount       float64           `json:"amount"`
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Type,
		t.MerchantName,
		t.Description)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// TypeSummary aggregates the transactions of one type over a period.
type TypeSummary struct {
	ByCategory map[string]float64 `json:"byCategory"`
	Total      float64            `json:"total"`
	Count      int                `json:"count"`
}

// PeriodSummary totals income and expenses over a date range.
type PeriodSummary struct {
	Start   time.Time   `json:"start"`
	End     time.Time   `json:"end"`
	Income  TypeSummary `json:"income"`
	Expense TypeSummary `json:"expense"`
	Net     float64     `json:"net"`
}
