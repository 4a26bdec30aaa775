package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestParsedTransaction_IsComplete(t *testing.T) {
	tests := []struct {
		name   string
		parsed ParsedTransaction
		want   bool
	}{
		{
			name:   "amount present and nothing missing",
			parsed: ParsedTransaction{Amount: floatPtr(85)},
			want:   true,
		},
		{
			name:   "amount missing",
			parsed: ParsedTransaction{MissingFields: []string{FieldAmount}},
			want:   false,
		},
		{
			name:   "amount present but category missing",
			parsed: ParsedTransaction{Amount: floatPtr(85), MissingFields: []string{FieldCategoryID}},
			want:   false,
		},
		{
			name:   "no amount and no missing fields reported",
			parsed: ParsedTransaction{},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.parsed.IsComplete())
		})
	}
}

func TestProcessedTransaction_CanAutoSave(t *testing.T) {
	complete := ParsedTransaction{Amount: floatPtr(120)}

	assert.True(t, ProcessedTransaction{Parsed: complete, IsComplete: true}.CanAutoSave())
	assert.False(t, ProcessedTransaction{
		Parsed:         complete,
		IsComplete:     true,
		Categorization: CategorizationResult{NeedsUserConfirmation: true},
	}.CanAutoSave())
	assert.False(t, ProcessedTransaction{Parsed: ParsedTransaction{}, IsComplete: true}.CanAutoSave())
	assert.False(t, ProcessedTransaction{Parsed: complete, IsComplete: false}.CanAutoSave())
}

func TestProcessResult_AutoSavable(t *testing.T) {
	result := ProcessResult{
		Transactions: []ProcessedTransaction{
			{Parsed: ParsedTransaction{Description: "lunch", Amount: floatPtr(85)}, IsComplete: true},
			{Parsed: ParsedTransaction{Description: "dinner"}, IsComplete: false},
		},
	}

	saved := result.AutoSavable()
	require.Len(t, saved, 1)
	assert.Equal(t, "lunch", saved[0].Parsed.Description)
}

func TestParseTransactionType(t *testing.T) {
	typ, err := ParseTransactionType(" EXPENSE ")
	require.NoError(t, err)
	assert.Equal(t, TypeExpense, typ)

	typ, err = ParseTransactionType("income")
	require.NoError(t, err)
	assert.Equal(t, TypeIncome, typ)

	_, err = ParseTransactionType("transfer")
	assert.Error(t, err)
}

func TestCatalog_Find(t *testing.T) {
	catalog := Catalog{
		{ID: "expense_food", Name: "Food", DisplayName: "餐飲", Type: TypeExpense},
		{ID: "income_salary", Name: "Salary", Type: TypeIncome},
	}

	cat, ok := catalog.Find("expense_food")
	require.True(t, ok)
	assert.Equal(t, "餐飲", cat.Label())

	cat, ok = catalog.Find("income_salary")
	require.True(t, ok)
	assert.Equal(t, "Salary", cat.Label())

	assert.False(t, catalog.Contains("expense_pets"))
}
