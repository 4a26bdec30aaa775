package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// dateLayout is how transaction dates are stored; ranges compare lexically.
const dateLayout = "2006-01-02"

const transactionColumns = `id, hash, date, type, amount, category_id, merchant_name, description, note, source, created_at, updated_at`

// AddTransaction persists a new transaction. The hash is computed when empty.
func (s *SQLiteStorage) AddTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, s.db, txn); err != nil {
		return err
	}

	prepareForInsert(txn)
	if err := insertTransaction(ctx, s.db, txn); err != nil {
		return err
	}

	slog.Debug("added transaction", "id", txn.ID, "amount", txn.Amount, "category", txn.CategoryID)
	return nil
}

// AddTransactions persists a batch in one database transaction. Either every
// transaction is stored or none is. Hashes are not deduplicated.
func (s *SQLiteStorage) AddTransactions(ctx context.Context, txns []*model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i, txn := range txns {
		if err := validateTransaction(txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	if len(txns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, txn := range txns {
		if err := s.checkCategory(ctx, tx, txn); err != nil {
			return err
		}
		prepareForInsert(txn)
		if err := insertTransaction(ctx, tx, txn); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}

	slog.Debug("added transactions", "count", len(txns))
	return nil
}

// ImportTransactions inserts transactions whose hash is not already stored and
// returns how many were inserted.
func (s *SQLiteStorage) ImportTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return 0, fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for i := range transactions {
		txn := &transactions[i]
		prepareForInsert(txn)

		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM transactions WHERE hash = ?)`, txn.Hash).Scan(&exists); err != nil {
			return 0, fmt.Errorf("failed to check duplicate: %w", err)
		}
		if exists {
			continue
		}
		if err := s.checkCategory(ctx, tx, txn); err != nil {
			return 0, err
		}
		if err := insertTransaction(ctx, tx, txn); err != nil {
			return 0, err
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	slog.Info("imported transactions", "received", len(transactions), "inserted", inserted)
	return inserted, nil
}

// UpdateTransaction replaces the stored fields of an existing transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, s.db, txn); err != nil {
		return err
	}

	txn.UpdatedAt = time.Now().UTC()
	txn.Hash = txn.GenerateHash()

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET
			hash = ?, date = ?, type = ?, amount = ?, category_id = ?,
			merchant_name = ?, description = ?, note = ?, source = ?, updated_at = ?
		WHERE id = ?`,
		txn.Hash, txn.Date.Format(dateLayout), string(txn.Type), txn.Amount, nullString(txn.CategoryID),
		txn.MerchantName, txn.Description, txn.Note, string(txn.Source), txn.UpdatedAt,
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return expectOneRow(result, "transaction "+txn.ID)
}

// DeleteTransaction removes a transaction by id.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return expectOneRow(result, "transaction "+id)
}

// GetTransaction returns a transaction by id, or common.ErrNotFound.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// GetTransactionsByRange returns the transactions dated within [start, end]
// by calendar day, newest first.
func (s *SQLiteStorage) GetTransactionsByRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}
	return s.GetTransactions(ctx, service.TransactionFilter{Start: &start, End: &end})
}

// GetTransactions returns transactions matching filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		clauses []string
		args    []any
	)
	if filter.Start != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.Start.Format(dateLayout))
	}
	if filter.End != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.End.Format(dateLayout))
	}
	if filter.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, string(filter.Type))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// SummarizeRange totals income and expenses per category for [start, end].
// Uncategorized amounts are keyed by the empty string.
func (s *SQLiteStorage) SummarizeRange(ctx context.Context, start, end time.Time) (*model.PeriodSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT type, COALESCE(category_id, ''), amount
		FROM transactions
		WHERE date >= ? AND date <= ?`,
		start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	income := newTotals()
	expense := newTotals()
	for rows.Next() {
		var (
			txnType    string
			categoryID string
			amount     float64
		)
		if err := rows.Scan(&txnType, &categoryID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		if model.TransactionType(txnType) == model.TypeIncome {
			income.add(categoryID, amount)
		} else {
			expense.add(categoryID, amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary: %w", err)
	}

	return &model.PeriodSummary{
		Start:   start,
		End:     end,
		Income:  income.summary(),
		Expense: expense.summary(),
		Net:     income.total.Sub(expense.total).Round(2).InexactFloat64(),
	}, nil
}

type totals struct {
	byCategory map[string]decimal.Decimal
	total      decimal.Decimal
	count      int
}

func newTotals() *totals {
	return &totals{byCategory: make(map[string]decimal.Decimal)}
}

func (t *totals) add(categoryID string, amount float64) {
	d := decimal.NewFromFloat(amount)
	t.byCategory[categoryID] = t.byCategory[categoryID].Add(d)
	t.total = t.total.Add(d)
	t.count++
}

func (t *totals) summary() model.TypeSummary {
	out := model.TypeSummary{
		ByCategory: make(map[string]float64, len(t.byCategory)),
		Total:      t.total.Round(2).InexactFloat64(),
		Count:      t.count,
	}
	for id, sum := range t.byCategory {
		out.ByCategory[id] = sum.Round(2).InexactFloat64()
	}
	return out
}

func prepareForInsert(txn *model.Transaction) {
	now := time.Now().UTC()
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = now
	}
	if txn.UpdatedAt.IsZero() {
		txn.UpdatedAt = txn.CreatedAt
	}
	if txn.Hash == "" {
		txn.Hash = txn.GenerateHash()
	}
}

func insertTransaction(ctx context.Context, q queryable, txn *model.Transaction) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.Hash, txn.Date.Format(dateLayout), string(txn.Type), txn.Amount, nullString(txn.CategoryID),
		txn.MerchantName, txn.Description, txn.Note, string(txn.Source), txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("transaction %s: %w", txn.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// checkCategory rejects category ids that are not in the catalog or whose
// type differs from the transaction's.
func (s *SQLiteStorage) checkCategory(ctx context.Context, q queryable, txn *model.Transaction) error {
	if txn.CategoryID == "" {
		return nil
	}
	var categoryType string
	err := q.QueryRowContext(ctx, `SELECT type FROM categories WHERE id = ?`, txn.CategoryID).Scan(&categoryType)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTransaction, txn.CategoryID)
	}
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if model.TransactionType(categoryType) != txn.Type {
		return fmt.Errorf("%w: %s transaction cannot use %s category %q",
			ErrInvalidTransaction, txn.Type, categoryType, txn.CategoryID)
	}
	return nil
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn        model.Transaction
		date       string
		txnType    string
		source     string
		categoryID sql.NullString
	)
	if err := row.Scan(
		&txn.ID, &txn.Hash, &date, &txnType, &txn.Amount, &categoryID,
		&txn.MerchantName, &txn.Description, &txn.Note, &source, &txn.CreatedAt, &txn.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	txn.Date = parsed
	txn.Type = model.TransactionType(txnType)
	txn.Source = model.TransactionSource(source)
	txn.CategoryID = categoryID.String
	return &txn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func expectOneRow(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, common.ErrNotFound)
	}
	return nil
}
