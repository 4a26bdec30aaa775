package model

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType indicates whether money left or entered the wallet.
type TransactionType string

const (
	// TypeExpense represents money spent.
	TypeExpense TransactionType = "expense"
	// TypeIncome represents money received.
	TypeIncome TransactionType = "income"
)

// ParseTransactionType converts a loosely formatted type name into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "expenses", "debit":
		return TypeExpense, nil
	case "income", "credit":
		return TypeIncome, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// Category is an entry in the user's category catalog.
type Category struct {
	CreatedAt   time.Time       `json:"createdAt"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName,omitempty"` // Localized name shown to users
	Type        TransactionType `json:"type"`
	Icon        string          `json:"icon,omitempty"`
	SortOrder   int             `json:"sortOrder"`
	IsDefault   bool            `json:"isDefault"`
}

// Label returns the name users should see for the category.
func (c Category) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

// Catalog is an ordered list of categories with id lookup.
type Catalog []Category

// Find returns the category with the given id.
func (c Catalog) Find(id string) (Category, bool) {
	for _, cat := range c {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// Contains reports whether the catalog holds a category with the given id.
func (c Catalog) Contains(id string) bool {
	_, ok := c.Find(id)
	return ok
}
