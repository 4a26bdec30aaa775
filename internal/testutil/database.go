// Package testutil provides shared test fixtures for packages that need a
// real database.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/pennywise/internal/classification"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/Veraticus/pennywise/internal/storage"
	"github.com/google/uuid"
)

// TestDB is a migrated in-memory database seeded with a category catalog.
type TestDB struct {
	Storage    service.Storage
	t          *testing.T
	Categories model.Catalog
}

// TestDBOptions configures SetupTestDBWithOptions.
type TestDBOptions struct {
	CustomSetup func(context.Context, service.Storage) error
	// Categories replaces the default catalog when non-nil.
	Categories model.Catalog
}

// SetupTestDB creates an in-memory database seeded with the default catalog.
// It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	cats := opts.Categories
	if cats == nil {
		cats = classification.Default().Catalog()
	}
	if err := store.SeedCategories(ctx, cats); err != nil {
		t.Fatalf("failed to seed categories: %v", err)
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage:    store,
		Categories: cats,
		t:          t,
	}
}

// MustAddTransaction stores a manual transaction and returns it.
func (db *TestDB) MustAddTransaction(date time.Time, txnType model.TransactionType, amount float64, categoryID, description string) *model.Transaction {
	db.t.Helper()

	txn := &model.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Type:        txnType,
		Amount:      amount,
		CategoryID:  categoryID,
		Description: description,
		Source:      model.SourceManual,
	}
	if err := db.Storage.AddTransaction(context.Background(), txn); err != nil {
		db.t.Fatalf("failed to add transaction: %v", err)
	}
	return txn
}
