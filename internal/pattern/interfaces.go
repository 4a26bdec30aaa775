// Package pattern provides offline, rule-based category matching.
package pattern

import "github.com/Veraticus/pennywise/internal/model"

// Matcher finds a category for transaction text without calling any external service.
type Matcher interface {
	// FindMatch returns the best rule match, or nil when no rule applies.
	FindMatch(description, merchantName string) *model.CategoryMatch
	// ShouldUseMatch reports whether a match is confident enough to use without confirmation.
	ShouldUseMatch(match *model.CategoryMatch) bool
}
