package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
)

const categoryColumns = `id, name, display_name, type, icon, sort_order, is_default, created_at`

// GetCategories returns the whole catalog, expenses first, in display order.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY CASE type WHEN 'expense' THEN 0 ELSE 1 END, sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories, err := scanCategories(rows)
	if err != nil {
		return nil, err
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoriesByType returns the categories of one transaction type.
func (s *SQLiteStorage) GetCategoriesByType(ctx context.Context, categoryType model.TransactionType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !categoryType.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidCategory, categoryType)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE type = ?
		ORDER BY sort_order, id`, string(categoryType))
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanCategories(rows)
}

// GetCategory returns a category by id, or common.ErrNotFound.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// SeedCategories upserts categories by id. Running it twice with the same
// catalog leaves the table unchanged.
func (s *SQLiteStorage) SeedCategories(ctx context.Context, categories []model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range categories {
		if err := validateCategory(&categories[i]); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO categories (id, name, display_name, type, icon, sort_order, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			display_name = excluded.display_name,
			type = excluded.type,
			icon = excluded.icon,
			sort_order = excluded.sort_order,
			is_default = excluded.is_default`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, cat := range categories {
		if _, err := stmt.ExecContext(ctx,
			cat.ID, cat.Name, cat.DisplayName, string(cat.Type), cat.Icon, cat.SortOrder, cat.IsDefault,
		); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", cat.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit categories: %w", err)
	}

	slog.Debug("seeded categories", "count", len(categories))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var cat model.Category
	var catType string
	if err := row.Scan(
		&cat.ID, &cat.Name, &cat.DisplayName, &catType, &cat.Icon, &cat.SortOrder, &cat.IsDefault, &cat.CreatedAt,
	); err != nil {
		return nil, err
	}
	cat.Type = model.TransactionType(catType)
	return &cat, nil
}

func scanCategories(rows *sql.Rows) ([]model.Category, error) {
	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}
