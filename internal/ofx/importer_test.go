package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/pennywise/internal/classification"
	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/pattern"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/Veraticus/pennywise/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImporter(t *testing.T) (*Importer, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	categorizer := engine.NewAutoCategorizer(pattern.NewMatcher(classification.Default()))
	return NewImporter(db.Storage, categorizer, nil), db
}

func TestImporterCategorizesAndStores(t *testing.T) {
	importer, db := newTestImporter(t)
	ctx := context.Background()

	result, err := importer.Import(ctx, strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Parsed: 5, Categorized: 2, Inserted: 5}, result)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local)
	stored, err := db.Storage.GetTransactions(ctx, service.TransactionFilter{Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, stored, 5)

	byDescription := make(map[string]string)
	for _, txn := range stored {
		byDescription[txn.Description] = txn.CategoryID
	}
	assert.Equal(t, "expense_food", byDescription["STARBUCKS STORE #1234"])
	assert.Equal(t, "income_salary", byDescription["ACME CORP PAYROLL"])
	assert.Empty(t, byDescription["Whole Foods Market"])
	assert.Empty(t, byDescription["CHECK #1234"])
	// Shop rule is an expense rule; a refund credit stays uncategorized.
	assert.Empty(t, byDescription["AMAZON REFUND"])
}

func TestImporterSkipsAlreadyImportedRows(t *testing.T) {
	importer, _ := newTestImporter(t)
	ctx := context.Background()

	first, err := importer.Import(ctx, strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)

	second, err := importer.Import(ctx, strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Parsed)
	assert.Equal(t, 0, second.Inserted)
}

func TestImporterParseError(t *testing.T) {
	importer, _ := newTestImporter(t)

	_, err := importer.Import(context.Background(), strings.NewReader("garbage"))
	require.Error(t, err)
}

func TestImporterPreviewDoesNotStore(t *testing.T) {
	importer, db := newTestImporter(t)
	ctx := context.Background()

	txns, result, err := importer.Preview(ctx, strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Len(t, txns, 5)
	assert.Equal(t, ImportResult{Parsed: 5, Categorized: 2}, result)

	stored, err := db.Storage.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}
