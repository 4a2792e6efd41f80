// Package lookup implements the resolver strategies that identify a product
// through third-party search engines and barcode APIs.
package lookup

import (
	"regexp"
	"strings"

	"github.com/lukman83/sheetgen/internal/models"
	"github.com/lukman83/sheetgen/internal/resolver"
	"github.com/lukman83/sheetgen/internal/rules"
	"github.com/shopspring/decimal"
)

// Snippet is one search result: a title, its link and the summary text.
type Snippet struct {
	Title string
	URL   string
	Text  string
	Image string
	Price string // structured price when the source provides one
}

// Candidate is a scored snippet with the fields extracted from it.
type Candidate struct {
	Snippet
	Score    int
	Brand    string
	Type     string
	Price    decimal.Decimal
	HasPrice bool
}

// Score weights. A snippet naming the identifier, a known brand and a
// product type on a trusted shop scores 30+40+20+10+10+10 = 120, clamped to 100.
const (
	scoreBase          = 30
	scoreIdentifier    = 40
	scoreBrand         = 20
	scoreType          = 10
	scoreTrustedDomain = 10
	scoreKeyword       = 5
	maxKeywordScore    = 10
)

// Amounts must sit next to a currency marker and stand alone as a number, so
// the tail of a barcode never reads as a price.
var priceRe = regexp.MustCompile(`[€$£]\s?(\d{1,5}(?:[.,]\d{1,2})?)\b|\b(\d{1,5}(?:[.,]\d{1,2})?)\s?(?:€|EUR\b)`)

// maxPrice bounds any amount taken from search results.
var maxPrice = decimal.NewFromInt(50000)

// Scorer votes across search snippets using the brand, type and domain tables.
type Scorer struct {
	rules *rules.Rules
}

func NewScorer(r *rules.Rules) *Scorer {
	return &Scorer{rules: r}
}

// Score extracts brand/type/price from one snippet and rates it.
func (s *Scorer) Score(id models.Identifier, sn Snippet) Candidate {
	text := sn.Title + " " + sn.Text
	lower := strings.ToLower(text)
	c := Candidate{Snippet: sn, Score: scoreBase}

	if strings.Contains(lower, strings.ToLower(id.Value)) {
		c.Score += scoreIdentifier
	}
	if b := s.rules.MatchBrand(text); b != "" {
		c.Brand = b
		c.Score += scoreBrand
	}
	if t, ok := s.rules.MatchType(text); ok {
		c.Type = t.Label
		c.Score += scoreType
	}
	if s.rules.IsTrustedDomain(sn.URL) {
		c.Score += scoreTrustedDomain
	}
	kw := 0
	for _, k := range s.rules.Remote.Keywords {
		if strings.Contains(lower, k) {
			kw += scoreKeyword
		}
	}
	c.Score += min(kw, maxKeywordScore)

	if p, ok := ParseAmount(sn.Price); ok {
		c.Price, c.HasPrice = p, true
	} else if p, ok := ParsePrice(text); ok {
		c.Price, c.HasPrice = p, true
	}
	c.Score = resolver.ClampConfidence(c.Score)
	return c
}

// Best returns the highest-scoring snippet; ties keep the earlier result.
func (s *Scorer) Best(id models.Identifier, snippets []Snippet) (Candidate, bool) {
	var best Candidate
	found := false
	for _, sn := range snippets {
		if strings.TrimSpace(sn.Title) == "" {
			continue
		}
		c := s.Score(id, sn)
		if !found || c.Score > best.Score {
			best, found = c, true
		}
	}
	return best, found
}

// Detail turns the winning candidate into a product payload.
func (s *Scorer) Detail(id models.Identifier, c Candidate) models.ProductDetail {
	brand := c.Brand
	if brand == "" {
		brand = s.rules.Fallback.Brand
	}
	typ := c.Type
	if typ == "" {
		typ = s.rules.Fallback.Type
	}
	price := s.rules.Remote.DefaultPrice
	if c.HasPrice {
		price = c.Price
	}
	desc := truncateRunes(strings.TrimSpace(c.Text), 200)
	if desc == "" {
		desc = brand + " " + typ + " identifié par recherche web"
	}
	return models.ProductDetail{
		Name:        truncateRunes(strings.TrimSpace(c.Title), 60),
		Brand:       brand,
		Type:        typ,
		Price:       price,
		Description: desc,
		ImageURL:    c.Image,
		Confidence:  c.Score,
	}
}

// ParseAmount reads a structured price field such as "119.99" or "89,90".
func ParseAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, false
	}
	p, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return checkPrice(p)
}

// ParsePrice finds the first amount written with a currency sign in free text.
// Both 89,90 and 89.90 are accepted.
func ParsePrice(text string) (decimal.Decimal, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return decimal.Decimal{}, false
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	p, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return checkPrice(p)
}

func checkPrice(p decimal.Decimal) (decimal.Decimal, bool) {
	if !p.IsPositive() || p.GreaterThan(maxPrice) {
		return decimal.Decimal{}, false
	}
	return p.Round(2), true
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
