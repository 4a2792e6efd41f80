package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lukman83/sheetgen/internal/models"
	"github.com/shopspring/decimal"
)

func TestFormatPrice(t *testing.T) {
	if got := formatPrice(decimal.RequireFromString("90.9")); got != "90.90 €" {
		t.Fatalf("formatPrice = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Polo", 10, "Polo"},
		{"Chaussures été", 10, "Chaussu..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestLatest(t *testing.T) {
	records := []models.Record{
		{Product: models.Product{ID: "a"}},
		{Product: models.Product{ID: "b"}},
		{Product: models.Product{ID: "c"}},
	}
	if got := latest(records, 0); len(got) != 3 {
		t.Fatalf("limit 0 kept %d", len(got))
	}
	got := latest(records, 2)
	if len(got) != 2 || got[0].Product.ID != "b" || got[1].Product.ID != "c" {
		t.Fatalf("latest(2) = %+v", got)
	}
}

func TestPrintRecordsTable(t *testing.T) {
	orig := decimal.RequireFromString("120")
	records := []models.Record{
		{
			Product: models.Product{
				ID: "p1", EAN: "3608077027028", Name: "Sneakers Carnaby", Brand: "Lacoste",
				Type: "Sneakers", Price: decimal.RequireFromString("90.99"), OriginalPrice: &orig,
				Source: "exact", Confidence: 95,
			},
			Sheet: &models.Sheet{
				Category:     "Accueil > Chaussures",
				SEOTitle:     "Lacoste Sneakers Carnaby - 90.99€",
				CanonicalURL: "https://monsite.com/produit/lacoste-sneakers",
				Variations: []models.Variation{
					{Kind: models.VariationSized, Size: "40", Color: "Blanc", Stock: 5},
					{Kind: models.VariationSized, Size: "40", Color: "Noir", Stock: 3},
					{Kind: models.VariationSized, Size: "41", Color: "Blanc", Stock: 4},
				},
			},
		},
		{Product: models.Product{ID: "p2", SKU: "X-1", Name: "Sac", Brand: "Marque", Price: decimal.Zero}},
	}

	var buf bytes.Buffer
	printRecordsTable(&buf, records)
	out := buf.String()
	for _, want := range []string{
		" 1. Lacoste Sneakers Carnaby",
		"Prix: 90.99 €  (au lieu de 120.00 €)",
		"Réf: 3608077027028",
		"Source: exact (95%)",
		"Déclinaisons: 3 (40, 41)  |  Stock: 12",
		" 2. Marque Sac",
		"Fiche: supprimée",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
