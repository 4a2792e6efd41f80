package resolver

import (
	"context"
	"maps"
	"slices"

	"github.com/lukman83/sheetgen/internal/models"
	"github.com/lukman83/sheetgen/internal/rules"
)

// ExactStrategy looks the identifier up in the known-products table.
type ExactStrategy struct {
	rules *rules.Rules
}

func NewExactStrategy(r *rules.Rules) *ExactStrategy {
	return &ExactStrategy{rules: r}
}

func (s *ExactStrategy) Name() string { return "exact" }

func (s *ExactStrategy) Resolve(_ context.Context, id models.Identifier) (*models.ProductDetail, error) {
	kp, ok := s.rules.Known(id.Value)
	if !ok {
		return nil, ErrNoMatch
	}
	d := FromTemplate(kp.ProductTemplate, 95)
	return &d, nil
}

// HeuristicStrategy applies the ordered prefix/substring rules; first match wins.
type HeuristicStrategy struct {
	rules *rules.Rules
}

func NewHeuristicStrategy(r *rules.Rules) *HeuristicStrategy {
	return &HeuristicStrategy{rules: r}
}

func (s *HeuristicStrategy) Name() string { return "heuristic" }

func (s *HeuristicStrategy) Resolve(_ context.Context, id models.Identifier) (*models.ProductDetail, error) {
	for i := range s.rules.PrefixRules {
		rule := &s.rules.PrefixRules[i]
		if rule.Matches(string(id.Kind), id.Value) {
			d := FromTemplate(rule.Product, 70)
			return &d, nil
		}
	}
	return nil, ErrNoMatch
}

// FromTemplate copies a rules template into a fresh detail payload.
func FromTemplate(t rules.ProductTemplate, defaultConfidence int) models.ProductDetail {
	d := models.ProductDetail{
		Name:        t.Name,
		Brand:       t.Brand,
		Type:        t.Type,
		Price:       t.Price,
		Description: t.Description,
		ImageURL:    t.Image,
		Confidence:  t.Confidence,
		Specs:       maps.Clone(t.Specs),
		Colors:      slices.Clone(t.Colors),
		Sizes:       slices.Clone(t.Sizes),
	}
	if t.OriginalPrice != nil {
		op := *t.OriginalPrice
		d.OriginalPrice = &op
	}
	if d.Confidence == 0 {
		d.Confidence = defaultConfidence
	}
	return d
}
