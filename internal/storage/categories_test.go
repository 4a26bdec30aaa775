package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/pennywise/internal/classification"
	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCategories(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	catalog := classification.Default().Catalog()

	// Seeding again must not duplicate anything.
	require.NoError(t, store.SeedCategories(ctx, catalog))

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, len(catalog))

	for _, cat := range categories {
		want, ok := catalog.Find(cat.ID)
		require.True(t, ok, cat.ID)
		assert.Equal(t, want.Name, cat.Name)
		assert.Equal(t, want.DisplayName, cat.DisplayName)
		assert.Equal(t, want.Type, cat.Type)
		assert.True(t, cat.IsDefault)
		assert.False(t, cat.CreatedAt.IsZero())
	}

	// Expenses come first.
	assert.Equal(t, model.TypeExpense, categories[0].Type)
	assert.Equal(t, model.TypeIncome, categories[len(categories)-1].Type)
}

func TestSeedCategoriesUpdatesExisting(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SeedCategories(ctx, []model.Category{
		{ID: "expense_food", Name: "Dining", DisplayName: "吃飯", Type: model.TypeExpense},
	}))

	cat, err := store.GetCategory(ctx, "expense_food")
	require.NoError(t, err)
	assert.Equal(t, "Dining", cat.Name)
	assert.Equal(t, "吃飯", cat.DisplayName)
}

func TestSeedCategoriesValidation(t *testing.T) {
	store := newTestStorage(t)

	tests := []struct {
		name string
		cat  model.Category
	}{
		{name: "missing id", cat: model.Category{Name: "x", Type: model.TypeExpense}},
		{name: "missing name", cat: model.Category{ID: "x", Type: model.TypeExpense}},
		{name: "bad type", cat: model.Category{ID: "x", Name: "x", Type: "transfer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SeedCategories(context.Background(), []model.Category{tt.cat})
			assert.ErrorIs(t, err, ErrInvalidCategory)
		})
	}
}

func TestGetCategoriesByType(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	income, err := store.GetCategoriesByType(ctx, model.TypeIncome)
	require.NoError(t, err)
	require.NotEmpty(t, income)
	for _, cat := range income {
		assert.Equal(t, model.TypeIncome, cat.Type)
	}
	assert.Equal(t, "income_salary", income[0].ID)

	_, err = store.GetCategoriesByType(ctx, "transfer")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestGetCategory(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	cat, err := store.GetCategory(ctx, "expense_transport")
	require.NoError(t, err)
	assert.Equal(t, "Transport", cat.Name)

	_, err = store.GetCategory(ctx, "expense_pets")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.GetCategory(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyString)
}
