package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.Local)
}

func newTxn(id string, date time.Time, txnType model.TransactionType, amount float64, categoryID, description string) *model.Transaction {
	return &model.Transaction{
		ID:          id,
		Date:        date,
		Type:        txnType,
		Amount:      amount,
		CategoryID:  categoryID,
		Description: description,
		Source:      model.SourceManual,
	}
}

func TestAddAndGetTransaction(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txn := newTxn("t1", day(17), model.TypeExpense, 80, "expense_food", "早餐")
	txn.MerchantName = "早餐店"
	txn.Note = "with egg"
	require.NoError(t, store.AddTransaction(ctx, txn))
	assert.NotEmpty(t, txn.Hash)
	assert.False(t, txn.CreatedAt.IsZero())

	got, err := store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", got.Date.Format(dateLayout))
	assert.Equal(t, model.TypeExpense, got.Type)
	assert.InDelta(t, 80.0, got.Amount, 0.001)
	assert.Equal(t, "expense_food", got.CategoryID)
	assert.Equal(t, "早餐店", got.MerchantName)
	assert.Equal(t, "with egg", got.Note)
	assert.Equal(t, model.SourceManual, got.Source)
	assert.Equal(t, txn.Hash, got.Hash)
}

func TestAddTransactionErrors(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.AddTransaction(ctx, newTxn("dup", day(1), model.TypeExpense, 1, "", "x")))

	tests := []struct {
		txn     *model.Transaction
		wantErr error
		name    string
	}{
		{name: "nil", txn: nil, wantErr: ErrNilParameter},
		{name: "missing id", txn: newTxn("", day(1), model.TypeExpense, 1, "", "x"), wantErr: ErrInvalidTransaction},
		{name: "missing date", txn: newTxn("a", time.Time{}, model.TypeExpense, 1, "", "x"), wantErr: ErrInvalidTransaction},
		{name: "bad type", txn: newTxn("a", day(1), "transfer", 1, "", "x"), wantErr: ErrInvalidTransaction},
		{name: "negative amount", txn: newTxn("a", day(1), model.TypeExpense, -1, "", "x"), wantErr: ErrInvalidTransaction},
		{name: "unknown category", txn: newTxn("a", day(1), model.TypeExpense, 1, "expense_pets", "x"), wantErr: ErrInvalidTransaction},
		{name: "expense under income category", txn: newTxn("a", day(1), model.TypeExpense, 1, "income_salary", "x"), wantErr: ErrInvalidTransaction},
		{name: "income under expense category", txn: newTxn("a", day(1), model.TypeIncome, 1, "expense_food", "x"), wantErr: ErrInvalidTransaction},
		{name: "duplicate id", txn: newTxn("dup", day(2), model.TypeExpense, 2, "", "y"), wantErr: common.ErrDuplicateEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, store.AddTransaction(ctx, tt.txn), tt.wantErr)
		})
	}
}

func TestAddTransactions(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	batch := []*model.Transaction{
		newTxn("b1", day(1), model.TypeExpense, 80, "expense_food", "早餐"),
		newTxn("b2", day(1), model.TypeExpense, 80, "expense_food", "早餐"),
		newTxn("b3", day(1), model.TypeIncome, 1000, "income_salary", "薪水"),
	}
	require.NoError(t, store.AddTransactions(ctx, batch))

	stored, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 3, "identical manual entries are both kept")
	assert.NotEmpty(t, batch[0].Hash)

	require.NoError(t, store.AddTransactions(ctx, nil))
}

func TestAddTransactionsIsAllOrNothing(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	err := store.AddTransactions(ctx, []*model.Transaction{
		newTxn("ok", day(1), model.TypeExpense, 80, "expense_food", "早餐"),
		newTxn("bad", day(1), model.TypeExpense, 50000, "income_salary", "薪水"),
	})
	require.ErrorIs(t, err, ErrInvalidTransaction)

	_, err = store.GetTransaction(ctx, "ok")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.AddTransactions(ctx, []*model.Transaction{
		newTxn("ok", day(1), model.TypeExpense, 80, "expense_food", "早餐"),
		newTxn("", day(1), model.TypeExpense, 1, "", "x"),
	})
	require.ErrorIs(t, err, ErrInvalidTransaction)
	_, err = store.GetTransaction(ctx, "ok")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateTransactionRejectsMismatchedCategory(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txn := newTxn("t1", day(3), model.TypeExpense, 300, "expense_food", "午餐")
	require.NoError(t, store.AddTransaction(ctx, txn))

	txn.Type = model.TypeIncome
	require.ErrorIs(t, store.UpdateTransaction(ctx, txn), ErrInvalidTransaction)
}

func TestImportTransactionsRejectsMismatchedCategory(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, err := store.ImportTransactions(ctx, []model.Transaction{
		*newTxn("s1", day(1), model.TypeIncome, 20, "expense_shopping", "REFUND"),
	})
	require.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestUncategorizedTransaction(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.AddTransaction(ctx, newTxn("u1", day(5), model.TypeExpense, 300, "", "買了東西")))

	got, err := store.GetTransaction(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)
}

func TestUpdateTransaction(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txn := newTxn("t1", day(3), model.TypeExpense, 300, "", "買了東西")
	require.NoError(t, store.AddTransaction(ctx, txn))
	oldHash := txn.Hash

	txn.CategoryID = "expense_shopping"
	txn.Amount = 320
	require.NoError(t, store.UpdateTransaction(ctx, txn))
	assert.NotEqual(t, oldHash, txn.Hash)

	got, err := store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "expense_shopping", got.CategoryID)
	assert.InDelta(t, 320.0, got.Amount, 0.001)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	missing := newTxn("nope", day(3), model.TypeExpense, 1, "", "x")
	assert.ErrorIs(t, store.UpdateTransaction(ctx, missing), common.ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.AddTransaction(ctx, newTxn("t1", day(3), model.TypeExpense, 1, "", "x")))
	require.NoError(t, store.DeleteTransaction(ctx, "t1"))

	_, err := store.GetTransaction(ctx, "t1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteTransaction(ctx, "t1"), common.ErrNotFound)
}

func TestGetTransactionsByRange(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	for i, d := range []int{1, 5, 10, 15, 20} {
		txn := newTxn(string(rune('a'+i)), day(d), model.TypeExpense, float64(d), "", "x")
		require.NoError(t, store.AddTransaction(ctx, txn))
	}

	got, err := store.GetTransactionsByRange(ctx, day(5), day(15))
	require.NoError(t, err)
	require.Len(t, got, 3, "range is inclusive on both ends")
	assert.Equal(t, "2026-10-15", got[0].Date.Format(dateLayout), "newest first")
	assert.Equal(t, "2026-10-05", got[2].Date.Format(dateLayout))

	// Times within the end day still include it.
	got, err = store.GetTransactionsByRange(ctx, day(20), day(20).Add(23*time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = store.GetTransactionsByRange(ctx, day(15), day(5))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestGetTransactionsFilter(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.AddTransaction(ctx, newTxn("e1", day(1), model.TypeExpense, 10, "expense_food", "a")))
	require.NoError(t, store.AddTransaction(ctx, newTxn("e2", day(2), model.TypeExpense, 20, "expense_food", "b")))
	require.NoError(t, store.AddTransaction(ctx, newTxn("i1", day(3), model.TypeIncome, 100, "income_salary", "c")))

	income, err := store.GetTransactions(ctx, service.TransactionFilter{Type: model.TypeIncome})
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, "i1", income[0].ID)

	limited, err := store.GetTransactions(ctx, service.TransactionFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "i1", limited[0].ID)

	all, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestImportTransactionsDedupesByHash(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	batch := []model.Transaction{
		*newTxn("s1", day(1), model.TypeExpense, 45.5, "", "COFFEE"),
		*newTxn("s2", day(2), model.TypeIncome, 1000, "income_salary", "PAYROLL"),
	}
	for i := range batch {
		batch[i].Source = model.SourceStatement
	}

	inserted, err := store.ImportTransactions(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Same statement again with fresh ids.
	again := []model.Transaction{
		*newTxn("s3", day(1), model.TypeExpense, 45.5, "", "COFFEE"),
		*newTxn("s4", day(3), model.TypeExpense, 12, "", "NEW"),
	}
	for i := range again {
		again[i].Source = model.SourceStatement
	}

	inserted, err = store.ImportTransactions(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	all, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSummarizeRange(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txns := []*model.Transaction{
		newTxn("a", day(1), model.TypeExpense, 0.1, "expense_food", "a"),
		newTxn("b", day(2), model.TypeExpense, 0.2, "expense_food", "b"),
		newTxn("c", day(3), model.TypeExpense, 300, "", "c"),
		newTxn("d", day(4), model.TypeIncome, 50000, "income_salary", "d"),
		newTxn("e", day(30), model.TypeExpense, 999, "expense_food", "outside"),
	}
	for _, txn := range txns {
		require.NoError(t, store.AddTransaction(ctx, txn))
	}

	summary, err := store.SummarizeRange(ctx, day(1), day(10))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Expense.Count)
	assert.Equal(t, 300.3, summary.Expense.Total, "totals are exact to the cent")
	assert.Equal(t, 0.3, summary.Expense.ByCategory["expense_food"])
	assert.Equal(t, 300.0, summary.Expense.ByCategory[""])

	assert.Equal(t, 1, summary.Income.Count)
	assert.Equal(t, 50000.0, summary.Income.Total)
	assert.Equal(t, 49699.7, summary.Net)

	_, err = store.SummarizeRange(ctx, day(10), day(1))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestSummarizeEmptyRange(t *testing.T) {
	store := newTestStorage(t)

	summary, err := store.SummarizeRange(context.Background(), day(1), day(31))
	require.NoError(t, err)
	assert.Zero(t, summary.Expense.Count)
	assert.Zero(t, summary.Net)
	assert.NotNil(t, summary.Income.ByCategory)
}

func TestDeletingCategoryUncategorizesTransactions(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.AddTransaction(ctx, newTxn("t1", day(1), model.TypeExpense, 1, "expense_other", "x")))
	_, err := store.db.ExecContext(ctx, `DELETE FROM categories WHERE id = 'expense_other'`)
	require.NoError(t, err)

	got, err := store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)
}
