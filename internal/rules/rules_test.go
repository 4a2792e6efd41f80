package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultRules(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	kp, ok := r.Known("48SMA0097-21G")
	if !ok {
		t.Fatal("expected 48SMA0097-21G to be a known product")
	}
	if kp.Brand != "Lacoste" || kp.Type != "Sneakers" {
		t.Fatalf("unexpected known product %+v", kp)
	}
	if !kp.Price.Equal(decimal.RequireFromString("90.99")) {
		t.Fatalf("price = %s, want 90.99", kp.Price)
	}
	if kp.OriginalPrice == nil || !kp.OriginalPrice.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("original price = %v, want 130", kp.OriginalPrice)
	}
	if len(r.Presets.Footwear.Sizes) != 7 {
		t.Fatalf("footwear sizes = %d, want 7", len(r.Presets.Footwear.Sizes))
	}
}

func TestPrefixRuleMatches(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	rule := func(name string) *PrefixRule {
		for i := range r.PrefixRules {
			if r.PrefixRules[i].Name == name {
				return &r.PrefixRules[i]
			}
		}
		t.Fatalf("rule %q not found", name)
		return nil
	}

	tests := []struct {
		rule  string
		kind  string
		value string
		want  bool
	}{
		{"lacoste-ean-prefix", "EAN", "3608077000000", true},
		{"lacoste-ean-prefix", "SKU", "3608077000000", false},
		{"lacoste-ean-prefix", "EAN", "4008077000000", false},
		{"lacoste-sneaker-line", "SKU", "49SMA0006-02H", true},
		{"lacoste-sneaker-line", "SKU", "SMA1", false},
		{"nike-style-code", "SKU", "DH2987-101", true},
		{"nike-style-code", "SKU", "dh2987-101", false},
	}
	for _, tt := range tests {
		if got := rule(tt.rule).Matches(tt.kind, tt.value); got != tt.want {
			t.Errorf("%s.Matches(%s, %s) = %v, want %v", tt.rule, tt.kind, tt.value, got, tt.want)
		}
	}
}

func TestMatchTypeOrder(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	tk, ok := r.MatchType("Lacoste T-Shirt col rond")
	if !ok || tk.Label != "T-shirt" {
		t.Fatalf("MatchType = %+v, %v; want T-shirt", tk, ok)
	}
	if got := r.Family("Sneakers"); got != FamilyFootwear {
		t.Fatalf("Family(Sneakers) = %s", got)
	}
	if got := r.Family("Produit"); got != FamilyGeneric {
		t.Fatalf("Family(Produit) = %s", got)
	}
	if got := r.MatchBrand("chaussures NEW BALANCE 574"); got != "New Balance" {
		t.Fatalf("MatchBrand = %q", got)
	}
}

func TestSizeSpecStockFor(t *testing.T) {
	s := SizeSpec{Size: "M", Stock: 25, ColorStock: map[string]int{"Marine": 22}}
	if s.StockFor("Blanc") != 25 || s.StockFor("Marine") != 22 {
		t.Fatalf("StockFor: got %d / %d", s.StockFor("Blanc"), s.StockFor("Marine"))
	}
}

func TestParseRejectsBadRules(t *testing.T) {
	bad := []string{
		"prefix_rules: [{name: x, match: glob, pattern: a}]",
		"prefix_rules: [{name: x, match: regexp, pattern: '('}]",
		"fallback: {brand: ''}",
		"types: [{keyword: x, label: X, family: hats}]",
	}
	for _, doc := range bad {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("Parse(%q): expected error", doc)
		}
	}
}

func TestLoadFile(t *testing.T) {
	doc := strings.Replace(string(defaultRules), `brands: ["Lacoste"`, `brands: ["Kappa", "Lacoste"`, 1)
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !r.IsKnownBrand("kappa") {
		t.Fatal("expected Kappa from the rules file")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
