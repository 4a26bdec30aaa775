// Package classification holds the static category catalog and the keyword and
// merchant rule tables used for offline categorization.
package classification

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Veraticus/pennywise/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// Rule table errors.
var (
	ErrEmptyRuleSet    = errors.New("rule set has no categories")
	ErrInvalidRule     = errors.New("invalid rule")
	ErrUnknownCategory = errors.New("rule references unknown category")
)

// CategoryDef is a catalog entry as written in the rules document.
type CategoryDef struct {
	ID          string                `yaml:"id"`
	Name        string                `yaml:"name"`
	DisplayName string                `yaml:"display_name"`
	Type        model.TransactionType `yaml:"type"`
	Icon        string                `yaml:"icon"`
}

// KeywordRule maps any of its keywords to a category.
type KeywordRule struct {
	CategoryID string                `yaml:"category_id"`
	Type       model.TransactionType `yaml:"type"`
	Keywords   []string              `yaml:"keywords"`
}

// MerchantRule maps a merchant name to a category.
type MerchantRule struct {
	Merchant   string                `yaml:"merchant"`
	CategoryID string                `yaml:"category_id"`
	Type       model.TransactionType `yaml:"type"`
}

// RuleSet is an immutable set of rule tables. It must not be modified after loading;
// a single instance is shared by every matcher in the process.
type RuleSet struct {
	Categories    []CategoryDef  `yaml:"categories"`
	KeywordRules  []KeywordRule  `yaml:"keyword_rules"`
	MerchantRules []MerchantRule `yaml:"merchant_rules"`
}

var (
	defaultOnce sync.Once
	defaultSet  *RuleSet
)

// Default returns the built-in rule set. It is decoded once per process.
func Default() *RuleSet {
	defaultOnce.Do(func() {
		rs, err := Parse(defaultRulesYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded rule tables are invalid: %v", err))
		}
		defaultSet = rs
	})
	return defaultSet
}

// Load returns the rule set at path, or the built-in set when path is empty.
func Load(path string) (*RuleSet, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	return rs, nil
}

// Parse decodes and validates a rules document.
func Parse(data []byte) (*RuleSet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var rs RuleSet
	if err := dec.Decode(&rs); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	if err := rs.validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (r *RuleSet) validate() error {
	if len(r.Categories) == 0 {
		return ErrEmptyRuleSet
	}

	known := make(map[string]model.TransactionType, len(r.Categories))
	for i, cat := range r.Categories {
		if cat.ID == "" || cat.Name == "" {
			return fmt.Errorf("%w: category %d needs an id and a name", ErrInvalidRule, i)
		}
		if !cat.Type.Valid() {
			return fmt.Errorf("%w: category %s has type %q", ErrInvalidRule, cat.ID, cat.Type)
		}
		if _, dup := known[cat.ID]; dup {
			return fmt.Errorf("%w: duplicate category %s", ErrInvalidRule, cat.ID)
		}
		known[cat.ID] = cat.Type
	}

	for i, rule := range r.KeywordRules {
		if err := checkTarget(known, rule.CategoryID, rule.Type); err != nil {
			return fmt.Errorf("keyword rule %d: %w", i, err)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("keyword rule %d: %w: no keywords", i, ErrInvalidRule)
		}
		for _, kw := range rule.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("keyword rule %d: %w: blank keyword", i, ErrInvalidRule)
			}
		}
	}

	for i, rule := range r.MerchantRules {
		if err := checkTarget(known, rule.CategoryID, rule.Type); err != nil {
			return fmt.Errorf("merchant rule %d: %w", i, err)
		}
		if strings.TrimSpace(rule.Merchant) == "" {
			return fmt.Errorf("merchant rule %d: %w: blank merchant", i, ErrInvalidRule)
		}
	}

	return nil
}

func checkTarget(known map[string]model.TransactionType, id string, typ model.TransactionType) error {
	catType, ok := known[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, id)
	}
	if typ != catType {
		return fmt.Errorf("%w: type %q does not match category %s (%s)", ErrInvalidRule, typ, id, catType)
	}
	return nil
}

// Catalog returns the category catalog described by the rule set.
func (r *RuleSet) Catalog() model.Catalog {
	catalog := make(model.Catalog, len(r.Categories))
	for i, def := range r.Categories {
		catalog[i] = model.Category{
			ID:          def.ID,
			Name:        def.Name,
			DisplayName: def.DisplayName,
			Type:        def.Type,
			Icon:        def.Icon,
			SortOrder:   i,
			IsDefault:   true,
		}
	}
	return catalog
}
