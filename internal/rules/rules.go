// Package rules holds the catalog tables the resolver and the sheet generator
// read: known products, identifier heuristics, brand and type keywords,
// fallback defaults and per-family sheet presets.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultRules []byte

// Product families select a sheet preset.
const (
	FamilyFootwear = "footwear"
	FamilyApparel  = "apparel"
	FamilyGeneric  = "generic"
)

// Match modes for prefix rules.
const (
	MatchPrefix   = "prefix"
	MatchContains = "contains"
	MatchRegexp   = "regexp"
)

type Rules struct {
	KnownProducts []KnownProduct `yaml:"known_products"`
	PrefixRules   []PrefixRule   `yaml:"prefix_rules"`
	Brands        []string       `yaml:"brands"`
	Types         []TypeKeyword  `yaml:"types"`
	Fallback      Fallback       `yaml:"fallback"`
	Remote        Remote         `yaml:"remote"`
	Presets       Presets        `yaml:"presets"`

	known map[string]*KnownProduct
}

// ProductTemplate is a product-detail payload written in the rules file.
type ProductTemplate struct {
	Name          string            `yaml:"name"`
	Brand         string            `yaml:"brand"`
	Type          string            `yaml:"type"`
	Price         decimal.Decimal   `yaml:"price"`
	OriginalPrice *decimal.Decimal  `yaml:"original_price"`
	Description   string            `yaml:"description"`
	Image         string            `yaml:"image"`
	Confidence    int               `yaml:"confidence"`
	Specs         map[string]string `yaml:"specs"`
	Colors        []string          `yaml:"colors"`
	Sizes         []string          `yaml:"sizes"`
}

type KnownProduct struct {
	Identifier      string `yaml:"identifier"`
	ProductTemplate `yaml:",inline"`
}

type PrefixRule struct {
	Name      string          `yaml:"name"`
	Match     string          `yaml:"match"`
	Pattern   string          `yaml:"pattern"`
	Kind      string          `yaml:"kind"`
	MinLength int             `yaml:"min_length"`
	Product   ProductTemplate `yaml:"product"`

	re *regexp.Regexp
}

// Matches reports whether the rule applies to an identifier of the given kind.
// An empty rule kind applies to both EAN and SKU.
func (p *PrefixRule) Matches(kind, value string) bool {
	if p.Kind != "" && !strings.EqualFold(p.Kind, kind) {
		return false
	}
	if len(value) < p.MinLength {
		return false
	}
	switch p.Match {
	case MatchPrefix:
		return strings.HasPrefix(value, p.Pattern)
	case MatchContains:
		return strings.Contains(value, p.Pattern)
	case MatchRegexp:
		return p.re != nil && p.re.MatchString(value)
	}
	return false
}

type TypeKeyword struct {
	Keyword string `yaml:"keyword"`
	Label   string `yaml:"label"`
	Family  string `yaml:"family"`
}

type Fallback struct {
	NamePrefix  string          `yaml:"name_prefix"`
	NameChars   int             `yaml:"name_chars"`
	Brand       string          `yaml:"brand"`
	Type        string          `yaml:"type"`
	Price       decimal.Decimal `yaml:"price"`
	Description string          `yaml:"description"`
	Confidence  int             `yaml:"confidence"`
}

type Remote struct {
	DefaultPrice      decimal.Decimal `yaml:"default_price"`
	MinConfidence     int             `yaml:"min_confidence"`
	BarcodePrice      decimal.Decimal `yaml:"barcode_price"`
	BarcodeConfidence int             `yaml:"barcode_confidence"`
	TrustedDomains    []string        `yaml:"trusted_domains"`
	Keywords          []string        `yaml:"keywords"`
}

type Presets struct {
	Footwear Preset `yaml:"footwear"`
	Apparel  Preset `yaml:"apparel"`
	Generic  Preset `yaml:"generic"`
}

// Preset describes the sheet of one product family.
// Category and characteristic values may use {brand} and {type} placeholders.
type Preset struct {
	Category        string            `yaml:"category"`
	Weight          float64           `yaml:"weight"`
	EANSuffix       string            `yaml:"ean_suffix"` // "size" or "index"
	Characteristics map[string]string `yaml:"characteristics"`
	Colors          []string          `yaml:"colors"`
	Sizes           []SizeSpec        `yaml:"sizes"`
	Options         []OptionSpec      `yaml:"options"`
}

type SizeSpec struct {
	Size       string         `yaml:"size"`
	Stock      int            `yaml:"stock"`
	Chest      string         `yaml:"chest"`
	ColorStock map[string]int `yaml:"color_stock"`
}

// StockFor returns the stock of the size in the given color.
func (s SizeSpec) StockFor(color string) int {
	if n, ok := s.ColorStock[color]; ok {
		return n
	}
	return s.Stock
}

type OptionSpec struct {
	Option string `yaml:"option"`
	Stock  int    `yaml:"stock"`
}

// Default returns the embedded rules.
func Default() (*Rules, error) {
	return Parse(defaultRules)
}

// Load reads rules from path, or the embedded defaults when path is empty.
func Load(path string) (*Rules, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a rules document.
func Parse(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := r.prepare(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rules) prepare() error {
	r.known = make(map[string]*KnownProduct, len(r.KnownProducts))
	for i := range r.KnownProducts {
		kp := &r.KnownProducts[i]
		if kp.Identifier == "" {
			return fmt.Errorf("known_products[%d]: empty identifier", i)
		}
		r.known[kp.Identifier] = kp
	}
	for i := range r.PrefixRules {
		pr := &r.PrefixRules[i]
		switch pr.Match {
		case MatchPrefix, MatchContains:
		case MatchRegexp:
			re, err := regexp.Compile(pr.Pattern)
			if err != nil {
				return fmt.Errorf("prefix_rules[%d] %q: %w", i, pr.Name, err)
			}
			pr.re = re
		default:
			return fmt.Errorf("prefix_rules[%d] %q: unknown match mode %q", i, pr.Name, pr.Match)
		}
		if pr.Pattern == "" {
			return fmt.Errorf("prefix_rules[%d] %q: empty pattern", i, pr.Name)
		}
	}
	for i, t := range r.Types {
		switch t.Family {
		case FamilyFootwear, FamilyApparel, FamilyGeneric:
		default:
			return fmt.Errorf("types[%d] %q: unknown family %q", i, t.Keyword, t.Family)
		}
	}
	if r.Fallback.Brand == "" || r.Fallback.Type == "" {
		return fmt.Errorf("fallback: brand and type are required")
	}
	if r.Fallback.NameChars <= 0 {
		r.Fallback.NameChars = 8
	}
	if len(r.Presets.Generic.Options) == 0 {
		return fmt.Errorf("presets.generic: at least one option is required")
	}
	return nil
}

// Known returns the known product registered for identifier, if any.
func (r *Rules) Known(identifier string) (*KnownProduct, bool) {
	kp, ok := r.known[identifier]
	return kp, ok
}

// MatchBrand returns the first brand of the table found in text.
func (r *Rules) MatchBrand(text string) string {
	lower := strings.ToLower(text)
	for _, b := range r.Brands {
		if strings.Contains(lower, strings.ToLower(b)) {
			return b
		}
	}
	return ""
}

// MatchType returns the first type keyword found in text.
func (r *Rules) MatchType(text string) (TypeKeyword, bool) {
	lower := strings.ToLower(text)
	for _, t := range r.Types {
		if strings.Contains(lower, t.Keyword) {
			return t, true
		}
	}
	return TypeKeyword{}, false
}

// IsKnownBrand reports whether brand is listed in the brand table.
func (r *Rules) IsKnownBrand(brand string) bool {
	for _, b := range r.Brands {
		if strings.EqualFold(b, brand) {
			return true
		}
	}
	return false
}

// Family maps a product type label to its preset family.
func (r *Rules) Family(productType string) string {
	for _, t := range r.Types {
		if strings.EqualFold(t.Label, productType) {
			return t.Family
		}
	}
	if t, ok := r.MatchType(productType); ok {
		return t.Family
	}
	return FamilyGeneric
}

// Preset returns the preset of a family.
func (r *Rules) Preset(family string) Preset {
	switch family {
	case FamilyFootwear:
		return r.Presets.Footwear
	case FamilyApparel:
		return r.Presets.Apparel
	default:
		return r.Presets.Generic
	}
}

// IsTrustedDomain reports whether a result URL belongs to a known e-commerce site.
func (r *Rules) IsTrustedDomain(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, d := range r.Remote.TrustedDomains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}
