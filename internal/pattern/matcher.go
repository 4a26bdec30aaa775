package pattern

import (
	"strings"

	"github.com/Veraticus/pennywise/internal/classification"
	"github.com/Veraticus/pennywise/internal/model"
)

// Confidence values assigned to rule matches.
const (
	KeywordConfidence               = 0.9
	MerchantConfidence              = 0.9
	MerchantInDescriptionConfidence = 0.85

	// MatchThreshold is the minimum confidence at which a rule match is used as-is.
	MatchThreshold = 0.7
)

// CategoryMatcher matches text against keyword and merchant rule tables.
// Rules are evaluated in table order and the first hit wins.
type CategoryMatcher struct {
	keywords  []keywordEntry
	merchants []merchantEntry
}

type keywordEntry struct {
	keyword    string
	categoryID string
	txnType    model.TransactionType
}

type merchantEntry struct {
	merchant   string
	categoryID string
	txnType    model.TransactionType
}

// NewMatcher creates a matcher over the given rule set. Keywords and merchant
// names are lower-cased once here so matching only normalizes the input.
func NewMatcher(rules *classification.RuleSet) *CategoryMatcher {
	m := &CategoryMatcher{}
	if rules == nil {
		return m
	}

	for _, rule := range rules.KeywordRules {
		for _, kw := range rule.Keywords {
			kw = normalize(kw)
			if kw == "" {
				continue
			}
			m.keywords = append(m.keywords, keywordEntry{
				keyword:    kw,
				categoryID: rule.CategoryID,
				txnType:    rule.Type,
			})
		}
	}

	for _, rule := range rules.MerchantRules {
		name := normalize(rule.Merchant)
		if name == "" {
			continue
		}
		m.merchants = append(m.merchants, merchantEntry{
			merchant:   name,
			categoryID: rule.CategoryID,
			txnType:    rule.Type,
		})
	}

	return m
}

// FindMatch evaluates keyword rules against the description, then merchant rules
// against the merchant name, then merchant names embedded in the description.
func (m *CategoryMatcher) FindMatch(description, merchantName string) *model.CategoryMatch {
	desc := normalize(description)
	merchant := normalize(merchantName)

	if desc != "" {
		for _, entry := range m.keywords {
			if strings.Contains(desc, entry.keyword) {
				return &model.CategoryMatch{
					CategoryID:    entry.categoryID,
					Confidence:    KeywordConfidence,
					Source:        model.SourceKeywordRule,
					SuggestedType: entry.txnType,
				}
			}
		}
	}

	if merchant != "" {
		for _, entry := range m.merchants {
			if strings.Contains(merchant, entry.merchant) || strings.Contains(entry.merchant, merchant) {
				return &model.CategoryMatch{
					CategoryID:    entry.categoryID,
					Confidence:    MerchantConfidence,
					Source:        model.SourceMerchantRule,
					SuggestedType: entry.txnType,
				}
			}
		}
	}

	if desc != "" {
		for _, entry := range m.merchants {
			if strings.Contains(desc, entry.merchant) {
				return &model.CategoryMatch{
					CategoryID:    entry.categoryID,
					Confidence:    MerchantInDescriptionConfidence,
					Source:        model.SourceMerchantRule,
					SuggestedType: entry.txnType,
				}
			}
		}
	}

	return nil
}

// ShouldUseMatch reports whether match meets the rule confidence threshold.
func (m *CategoryMatcher) ShouldUseMatch(match *model.CategoryMatch) bool {
	return match != nil && match.Confidence >= MatchThreshold
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
