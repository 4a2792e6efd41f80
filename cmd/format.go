package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lukman83/sheetgen/internal/models"
	"github.com/shopspring/decimal"
)

// printRecordsTable prints stored records in a human-friendly card layout.
func printRecordsTable(w io.Writer, records []models.Record) {
	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printRecord(w, i+1, rec)
	}
}

func printRecord(w io.Writer, n int, rec models.Record) {
	p := rec.Product
	fmt.Fprintf(w, " %d. %s %s\n", n, p.Brand, truncate(p.Name, 60))

	priceLine := "    Prix: " + formatPrice(p.Price)
	if p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price) {
		priceLine += fmt.Sprintf("  (au lieu de %s)", formatPrice(*p.OriginalPrice))
	}
	priceLine += "  |  Type: " + p.Type
	fmt.Fprintln(w, priceLine)

	ref := "    Réf: " + p.Reference()
	if p.EAN != "" && p.SKU != "" {
		ref += "  |  EAN: " + p.EAN
	}
	fmt.Fprintf(w, "%s  |  Source: %s (%d%%)\n", ref, p.Source, p.Confidence)
	fmt.Fprintf(w, "    ID: %s\n", p.ID)

	if rec.Sheet == nil {
		fmt.Fprintln(w, "    Fiche: supprimée")
		return
	}
	s := rec.Sheet
	fmt.Fprintf(w, "    Catégorie: %s\n", s.Category)
	fmt.Fprintf(w, "    SEO: %s\n", s.SEOTitle)
	if len(s.Variations) > 0 {
		labels := make([]string, 0, len(s.Variations))
		seen := make(map[string]bool)
		for _, v := range s.Variations {
			if l := v.Label(); !seen[l] {
				seen[l] = true
				labels = append(labels, l)
			}
		}
		fmt.Fprintf(w, "    Déclinaisons: %d (%s)  |  Stock: %d\n", len(s.Variations), strings.Join(labels, ", "), s.TotalStock())
	}
	fmt.Fprintf(w, "    %s\n", s.CanonicalURL)
}

// formatPrice formats a price as "90.99 €".
func formatPrice(d decimal.Decimal) string {
	return d.StringFixed(2) + " €"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
