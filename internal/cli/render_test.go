package cli

import (
	"testing"
	"time"

	"github.com/Veraticus/pennywise/internal/classification"
	"github.com/Veraticus/pennywise/internal/i18n"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/stretchr/testify/assert"
)

func floatPtr(f float64) *float64 { return &f }

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		expected string
		amount   float64
	}{
		{amount: 0, expected: "0.00"},
		{amount: 80, expected: "80.00"},
		{amount: 1234.5, expected: "1,234.50"},
		{amount: 1234567.891, expected: "1,234,567.89"},
		{amount: -999.999, expected: "-1,000.00"},
		{amount: 100000, expected: "100,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAmount(tt.amount))
		})
	}
}

func TestRenderProcessResult(t *testing.T) {
	loc := i18n.New("en")
	date := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	result := &model.ProcessResult{
		Transactions: []model.ProcessedTransaction{
			{
				Parsed:         model.ParsedTransaction{Date: date, Amount: floatPtr(80), Type: model.TypeExpense},
				Categorization: model.CategorizationResult{CategoryID: "expense_food", Source: model.SourceKeywordRule, Confidence: 0.9},
				DisplayLabel:   "Food · 早餐",
				IsComplete:     true,
			},
			{
				Parsed:       model.ParsedTransaction{Date: date, Type: model.TypeExpense},
				DisplayLabel: "Uncategorized · 午餐",
			},
		},
		FollowUpQuestion: "How much was it?",
		HasIncomplete:    true,
	}

	out := RenderProcessResult(result, loc)
	assert.Contains(t, out, "Food · 早餐")
	assert.Contains(t, out, "-80.00")
	assert.Contains(t, out, "keyword-rule 90%")
	assert.Contains(t, out, "2026-10-18")
	assert.Contains(t, out, "Uncategorized · 午餐")
	assert.Contains(t, out, "How much was it?")

	assert.Contains(t, RenderProcessResult(&model.ProcessResult{}, loc), loc.NothingFound())
}

func TestRenderCategories(t *testing.T) {
	catalog := classification.Default().Catalog()

	en := RenderCategories(catalog, i18n.New("en"))
	assert.Contains(t, en, "Food")
	assert.Contains(t, en, "income_salary")

	zh := RenderCategories(catalog, i18n.New("zh-TW"))
	assert.Contains(t, zh, "餐飲")
	assert.Contains(t, zh, "薪資")
}

func TestRenderTransactions(t *testing.T) {
	catalog := classification.Default().Catalog()
	loc := i18n.New("en")

	assert.Contains(t, RenderTransactions(nil, catalog, loc), "No transactions.")

	out := RenderTransactions([]model.Transaction{
		{
			ID:          "0123456789abcdef",
			Date:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			Type:        model.TypeIncome,
			CategoryID:  "income_salary",
			Description: "October salary",
			Amount:      52000,
		},
		{
			ID:           "fedcba98",
			Date:         time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
			Type:         model.TypeExpense,
			MerchantName: "Starbucks",
			Amount:       150,
		},
	}, catalog, loc)

	assert.Contains(t, out, "Salary")
	assert.Contains(t, out, "+52,000.00")
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "Starbucks")
	assert.Contains(t, out, "Uncategorized")
	assert.Contains(t, out, "-150.00")
}

func TestRenderSummary(t *testing.T) {
	catalog := classification.Default().Catalog()
	summary := &model.PeriodSummary{
		Start: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC),
		Income: model.TypeSummary{
			ByCategory: map[string]float64{"income_salary": 52000},
			Total:      52000,
			Count:      1,
		},
		Expense: model.TypeSummary{
			ByCategory: map[string]float64{"expense_food": 1200, "": 300},
			Total:      1500,
			Count:      4,
		},
		Net: 50500,
	}

	out := RenderSummary(summary, catalog, i18n.New("zh-TW"))
	assert.Contains(t, out, "2026-10-01")
	assert.Contains(t, out, "薪資")
	assert.Contains(t, out, "餐飲")
	assert.Contains(t, out, "未分類")
	assert.Contains(t, out, "50,500.00")
}

func TestRenderCategorization(t *testing.T) {
	catalog := classification.Default().Catalog()
	loc := i18n.New("en")

	out := RenderCategorization(model.CategorizationResult{
		CategoryID:            "expense_transport",
		SuggestedType:         model.TypeExpense,
		Source:                model.SourceAISuggestion,
		Confidence:            0.75,
		NeedsUserConfirmation: true,
	}, catalog, loc)

	assert.Contains(t, out, "Transport")
	assert.Contains(t, out, "ai-suggestion 75%")
	assert.Contains(t, out, "needs confirmation")
}
