package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lukman83/sheetgen/internal/models"
	"github.com/shopspring/decimal"
)

func record(productID, sheetID, ean string) models.Record {
	return models.Record{
		Product: models.Product{
			ID:        productID,
			EAN:       ean,
			Name:      "Polo Lacoste",
			Brand:     "Lacoste",
			Type:      "Polo",
			Price:     decimal.RequireFromString("95.00"),
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		Sheet: &models.Sheet{
			ID:        sheetID,
			ProductID: productID,
			URLSlug:   "lacoste-polo",
			Variations: []models.Variation{
				{Kind: models.VariationSized, Size: "M", Color: "Blanc", Stock: 25},
			},
		},
	}
}

// exerciseStore runs the behaviour every driver shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	// Same identifier twice: two records, no dedup.
	for _, rec := range []models.Record{
		record("p1", "s1", "3608077027028"),
		record("p2", "s2", "3608077027028"),
		record("p3", "s3", "1234567890123"),
	} {
		if err := s.Append(ctx, rec); err != nil {
			t.Fatalf("Append %s: %v", rec.Product.ID, err)
		}
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].Product.ID != "p1" || all[2].Product.ID != "p3" {
		t.Fatalf("List order = %v", Products(all))
	}

	got, err := s.FindByProductID(ctx, "p2")
	if err != nil {
		t.Fatalf("FindByProductID: %v", err)
	}
	if got.Sheet == nil || got.Sheet.ID != "s2" || !got.Product.Price.Equal(decimal.NewFromInt(95)) {
		t.Fatalf("found record = %+v", got)
	}
	if got.Sheet.Variations[0].Stock != 25 {
		t.Fatalf("variation stock = %d", got.Sheet.Variations[0].Stock)
	}

	if _, err := s.FindByProductID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing product: err = %v", err)
	}

	if err := s.DeleteSheet(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSheet: %v", err)
	}
	if err := s.DeleteSheet(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteSheet: err = %v", err)
	}
	p1, err := s.FindByProductID(ctx, "p1")
	if err != nil || p1.Sheet != nil {
		t.Fatalf("after sheet delete: %+v, %v", p1, err)
	}

	if err := s.DeleteProduct(ctx, "p3"); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if err := s.DeleteProduct(ctx, "p3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteProduct: err = %v", err)
	}

	all, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("records after delete = %d", len(all))
	}
	if sheets := Sheets(all); len(sheets) != 1 || sheets[0].ID != "s2" {
		t.Fatalf("sheets = %+v", sheets)
	}
}

func TestJSONLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "products.jsonl")
	s, err := OpenJSONLog(path)
	if err != nil {
		t.Fatalf("OpenJSONLog: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("log file should be created on first write")
	}
	exerciseStore(t, s)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Replay rebuilds the same state.
	reopened, err := OpenJSONLog(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	all, _ := reopened.List(context.Background())
	if len(all) != 2 || all[0].Sheet != nil || all[1].Sheet == nil {
		t.Fatalf("replayed records = %+v", all)
	}
}

func TestJSONLogSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.jsonl")
	good := `{"op":"append","at":"2026-03-01T10:00:00Z","record":{"product":{"id":"p1","name":"x","brand":"y","type":"z","price":1,"description":"","confidence":30,"source":"fallback","created_at":"2026-03-01T10:00:00Z"}}}`
	if err := os.WriteFile(path, []byte(good+"\n{\"op\":\"app"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := OpenJSONLog(path)
	if err != nil {
		t.Fatalf("OpenJSONLog: %v", err)
	}
	defer s.Close()
	all, _ := s.List(context.Background())
	if len(all) != 1 || all[0].Product.ID != "p1" {
		t.Fatalf("records = %+v", all)
	}
}

func TestJSONLogAppendAfterTornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.jsonl")
	if err := os.WriteFile(path, []byte(`{"op":"app`), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	s, err := OpenJSONLog(path)
	if err != nil {
		t.Fatalf("OpenJSONLog: %v", err)
	}
	if err := s.Append(ctx, record("p1", "s1", "3608077027028")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, record("p2", "s2", "")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenJSONLog(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	all, _ := reopened.List(ctx)
	if len(all) != 2 || all[0].Product.ID != "p1" || all[1].Product.ID != "p2" {
		t.Fatalf("records after reopen = %+v", all)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "{\"op\":\"app\n{") {
		t.Fatalf("torn tail not terminated before the first event: %q", data[:20])
	}
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheetgen.db")
	s, err := Open(context.Background(), Options{Driver: DriverSQLite, Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	exerciseStore(t, s)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQL(context.Background(), DriverSQLite, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	all, _ := reopened.List(context.Background())
	if len(all) != 2 {
		t.Fatalf("records after reopen = %d", len(all))
	}
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{driver: DriverPostgres}
	if got := pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"); got != "SELECT * FROM t WHERE a = $1 AND b = $2" {
		t.Fatalf("rebind = %q", got)
	}
	lite := &SQLStore{driver: DriverSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite rebind = %q", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mongo"})
	if err == nil || !strings.Contains(err.Error(), "mongo") {
		t.Fatalf("err = %v", err)
	}
}
