// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/pennywise/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	Start *time.Time
	End   *time.Time
	Type  model.TransactionType
	Limit int
}

// CategoryReader is the read side of the category store.
type CategoryReader interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoriesByType(ctx context.Context, categoryType model.TransactionType) ([]model.Category, error)
}

// CategoryStore manages the category catalog.
type CategoryStore interface {
	CategoryReader
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	SeedCategories(ctx context.Context, categories []model.Category) error
}

// TransactionStore persists confirmed transactions.
type TransactionStore interface {
	AddTransaction(ctx context.Context, txn *model.Transaction) error
	AddTransactions(ctx context.Context, txns []*model.Transaction) error
	ImportTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionsByRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	SummarizeRange(ctx context.Context, start, end time.Time) (*model.PeriodSummary, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	CategoryStore
	TransactionStore

	// Database management
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	// ShouldRetry decides whether a failed attempt may be repeated.
	// A nil ShouldRetry retries every error.
	ShouldRetry  func(error) bool
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
