package classification

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	rs := Default()
	require.NotNil(t, rs)

	assert.Same(t, rs, Default(), "built-in rules are decoded once")
	assert.NotEmpty(t, rs.KeywordRules)
	assert.NotEmpty(t, rs.MerchantRules)

	catalog := rs.Catalog()
	food, ok := catalog.Find("expense_food")
	require.True(t, ok)
	assert.Equal(t, model.TypeExpense, food.Type)
	assert.Equal(t, "餐飲", food.DisplayName)
	assert.True(t, food.IsDefault)

	salary, ok := catalog.Find("income_salary")
	require.True(t, ok)
	assert.Equal(t, model.TypeIncome, salary.Type)
}

func TestDefault_RulesTargetCatalog(t *testing.T) {
	rs := Default()
	catalog := rs.Catalog()

	for _, rule := range rs.KeywordRules {
		assert.True(t, catalog.Contains(rule.CategoryID), rule.CategoryID)
	}
	for _, rule := range rs.MerchantRules {
		assert.True(t, catalog.Contains(rule.CategoryID), rule.CategoryID)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "empty document",
			doc:     "keyword_rules: []\n",
			wantErr: ErrEmptyRuleSet,
		},
		{
			name: "rule references unknown category",
			doc: `
categories:
  - {id: expense_food, name: Food, type: expense}
keyword_rules:
  - {category_id: expense_pets, type: expense, keywords: [dog food]}
`,
			wantErr: ErrUnknownCategory,
		},
		{
			name: "rule type disagrees with category",
			doc: `
categories:
  - {id: expense_food, name: Food, type: expense}
merchant_rules:
  - {merchant: starbucks, category_id: expense_food, type: income}
`,
			wantErr: ErrInvalidRule,
		},
		{
			name: "blank keyword",
			doc: `
categories:
  - {id: expense_food, name: Food, type: expense}
keyword_rules:
  - {category_id: expense_food, type: expense, keywords: ["  "]}
`,
			wantErr: ErrInvalidRule,
		},
		{
			name: "unknown category type",
			doc: `
categories:
  - {id: transfer, name: Transfer, type: transfer}
`,
			wantErr: ErrInvalidRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("categories: []\npriority: 3\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	rs, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), rs)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	doc := `
categories:
  - {id: expense_pets, name: Pets, type: expense}
keyword_rules:
  - {category_id: expense_pets, type: expense, keywords: [飼料, vet]}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	rs, err = Load(path)
	require.NoError(t, err)
	require.Len(t, rs.KeywordRules, 1)
	assert.Equal(t, []string{"飼料", "vet"}, rs.KeywordRules[0].Keywords)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
