package engine

import (
	"context"
	"sync"

	"github.com/Veraticus/pennywise/internal/llm"
	"github.com/Veraticus/pennywise/internal/model"
)

// MockParser is a scripted TransactionParser for tests.
type MockParser struct {
	Err          error
	Receipt      *model.ParsedReceipt
	ParseFunc    func(text string) ([]model.ParsedTransaction, error)
	Transactions []model.ParsedTransaction
	inputs       []string
	images       int
	mu           sync.Mutex
}

// ParseNaturalInput returns the scripted drafts.
func (m *MockParser) ParseNaturalInput(_ context.Context, text string, _ []model.Category) ([]model.ParsedTransaction, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, text)
	parseFunc := m.ParseFunc
	m.mu.Unlock()

	if parseFunc != nil {
		return parseFunc(text)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]model.ParsedTransaction, len(m.Transactions))
	copy(out, m.Transactions)
	return out, nil
}

// ParseReceiptImage returns the scripted receipt.
func (m *MockParser) ParseReceiptImage(_ context.Context, _ llm.Image, _ []model.Category) (*model.ParsedReceipt, error) {
	m.mu.Lock()
	m.images++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Receipt == nil {
		return nil, llm.NewError(llm.KindInvalidResponse, "no receipt scripted", nil)
	}
	receipt := *m.Receipt
	return &receipt, nil
}

// Inputs returns the texts passed to ParseNaturalInput.
func (m *MockParser) Inputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.inputs))
	copy(out, m.inputs)
	return out
}

// ReceiptCalls returns how many receipts were parsed.
func (m *MockParser) ReceiptCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.images
}

// StaticCategories is an in-memory service.CategoryReader.
type StaticCategories []model.Category

// GetCategories returns every category.
func (s StaticCategories) GetCategories(context.Context) ([]model.Category, error) {
	return append([]model.Category(nil), s...), nil
}

// GetCategoriesByType returns the categories of one type.
func (s StaticCategories) GetCategoriesByType(_ context.Context, categoryType model.TransactionType) ([]model.Category, error) {
	var out []model.Category
	for _, cat := range s {
		if cat.Type == categoryType {
			out = append(out, cat)
		}
	}
	return out, nil
}
