package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lukman83/sheetgen/internal/export"
	"github.com/lukman83/sheetgen/internal/identifier"
	"github.com/lukman83/sheetgen/internal/resolver"
	"github.com/lukman83/sheetgen/internal/rules"
	"github.com/lukman83/sheetgen/internal/sheet"
	"github.com/lukman83/sheetgen/internal/store"
	"github.com/shopspring/decimal"
)

func newService(t *testing.T) *Service {
	t.Helper()
	r, err := rules.Default()
	if err != nil {
		t.Fatalf("rules.Default: %v", err)
	}
	st, err := store.OpenJSONLog(filepath.Join(t.TempDir(), "products.jsonl"))
	if err != nil {
		t.Fatalf("OpenJSONLog: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	res := resolver.New([]resolver.Strategy{resolver.NewExactStrategy(r), resolver.NewHeuristicStrategy(r)}, resolver.NewFallback(r), time.Second)
	return NewService(res, sheet.NewGenerator(r, ""), st)
}

func exportRow(t *testing.T, svc *Service, productID string) map[string]string {
	t.Helper()
	var buf bytes.Buffer
	if err := svc.Export(context.Background(), &buf, productID, export.FormatCSV, export.UTF8); err != nil {
		t.Fatalf("Export: %v", err)
	}
	r := csv.NewReader(&buf)
	r.Comma = ';'
	rows, err := r.ReadAll()
	if err != nil || len(rows) != 2 {
		t.Fatalf("csv rows = %v, err = %v", rows, err)
	}
	out := make(map[string]string, len(rows[0]))
	for i, h := range rows[0] {
		out[h] = rows[1][i]
	}
	return out
}

func TestSearchExportRoundTrip(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	byEAN, err := svc.Search(ctx, "3608077027028", "")
	if err != nil {
		t.Fatalf("Search EAN: %v", err)
	}
	if byEAN.Product.Brand != "Lacoste" || byEAN.Product.Type != "Polo" {
		t.Fatalf("product = %+v", byEAN.Product)
	}
	if byEAN.Sheet == nil || byEAN.Sheet.ProductID != byEAN.Product.ID {
		t.Fatalf("sheet = %+v", byEAN.Sheet)
	}
	row := exportRow(t, svc, byEAN.Product.ID)
	if row["EAN-13"] != "3608077027028" || row["Référence"] != "3608077027028" {
		t.Fatalf("EAN export row = %v", row)
	}

	bySKU, err := svc.Search(ctx, "", "  48SMA0097-21G ")
	if err != nil {
		t.Fatalf("Search SKU: %v", err)
	}
	row = exportRow(t, svc, bySKU.Product.ID)
	if row["Référence"] != "48SMA0097-21G" || row["EAN-13"] != "" {
		t.Fatalf("SKU export row = %v", row)
	}
	if row["Prix TTC"] != "109.19" {
		t.Fatalf("Prix TTC = %q, want 90.99 x 1.2", row["Prix TTC"])
	}
}

func TestSearchIsNotIdempotent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	a, err := svc.Search(ctx, "3608077027028", "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Search(ctx, "3608077027028", "")
	if err != nil {
		t.Fatal(err)
	}
	if a.Product.ID == b.Product.ID {
		t.Fatal("two searches produced the same id")
	}
	all, _ := svc.List(ctx)
	if len(all) != 2 {
		t.Fatalf("stored %d records, want 2", len(all))
	}
}

func TestSearchValidation(t *testing.T) {
	svc := newService(t)
	var verr *identifier.ValidationError
	if _, err := svc.Search(context.Background(), "12345", ""); !errors.As(err, &verr) {
		t.Fatalf("short EAN: err = %v", err)
	}
	if _, err := svc.Search(context.Background(), "", "   "); !errors.Is(err, identifier.ErrMissingIdentifier) {
		t.Fatalf("blank SKU: err = %v", err)
	}
	if all, _ := svc.List(context.Background()); len(all) != 0 {
		t.Fatalf("invalid searches stored %d records", len(all))
	}
}

func TestGenerateManual(t *testing.T) {
	svc := newService(t)
	rec, err := svc.Generate(context.Background(), ManualEntry{
		SKU:   "CUSTOM-1",
		Name:  "Sac Lacoste Chantaco",
		Brand: "Lacoste",
		Type:  "Sac",
		Price: decimal.RequireFromString("149.5"),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rec.Product.Source != SourceManual || rec.Product.Confidence != 100 {
		t.Fatalf("product = %+v", rec.Product)
	}
	if rec.Sheet.SEOTitle == "" || len(rec.Sheet.Variations) != 2 {
		t.Fatalf("sheet = %+v", rec.Sheet)
	}

	both, err := svc.Generate(context.Background(), ManualEntry{
		EAN: "3608077027028", SKU: "PH4012", Name: "Polo", Brand: "Lacoste", Type: "Polo",
		Price: decimal.RequireFromString("95"),
	})
	if err != nil || both.Product.EAN != "3608077027028" || both.Product.SKU != "PH4012" {
		t.Fatalf("both identifiers: %+v, %v", both.Product, err)
	}

	var verr *identifier.ValidationError
	if _, err := svc.Generate(context.Background(), ManualEntry{SKU: "X"}); !errors.As(err, &verr) || verr.Field != "name" {
		t.Fatalf("missing name: err = %v", err)
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	rec, err := svc.Search(ctx, "", "DH2987-100")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteSheet(ctx, rec.Sheet.ID); err != nil {
		t.Fatalf("DeleteSheet: %v", err)
	}
	if err := svc.DeleteProduct(ctx, rec.Product.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf, rec.Product.ID, export.FormatCSV, export.UTF8); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("export deleted product: err = %v", err)
	}
}
