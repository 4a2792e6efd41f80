package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lukman83/sheetgen/internal/catalog"
	"github.com/lukman83/sheetgen/internal/models"
	"github.com/lukman83/sheetgen/internal/resolver"
	"github.com/lukman83/sheetgen/internal/rules"
	"github.com/lukman83/sheetgen/internal/sheet"
	"github.com/lukman83/sheetgen/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) http.Handler {
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
	res := resolver.New(
		[]resolver.Strategy{resolver.NewExactStrategy(r), resolver.NewHeuristicStrategy(r)},
		resolver.NewFallback(r),
		time.Second,
	)
	svc := catalog.NewService(res, sheet.NewGenerator(r, ""), st)
	return NewRouter(svc, Options{Version: "test"})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

type searchResponse struct {
	Success bool           `json:"success"`
	Product models.Product `json:"product"`
	Sheet   *models.Sheet  `json:"sheet"`
}

func TestSearchValidation(t *testing.T) {
	h := newTestServer(t)
	tests := []struct {
		body string
		want int
	}{
		{`{"ean":"12345"}`, http.StatusBadRequest},
		{`{"ean":"12345678901ab"}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
		{`{"sku":"   "}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
		{`{"ean":"3608077027028"}`, http.StatusOK},
		{`{"sku":"anything at all"}`, http.StatusOK},
	}
	for _, tt := range tests {
		rec := do(t, h, http.MethodPost, "/api/search", tt.body)
		if rec.Code != tt.want {
			t.Errorf("%s: status %d, want %d (%s)", tt.body, rec.Code, tt.want, rec.Body.String())
		}
		if tt.want == http.StatusBadRequest {
			var body map[string]string
			decode(t, rec, &body)
			if body["detail"] == "" {
				t.Errorf("%s: missing detail", tt.body)
			}
		}
	}
}

func TestSearchAndExport(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/search", `{"sku":"48SMA0097-21G"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: %d %s", rec.Code, rec.Body.String())
	}
	var sr searchResponse
	decode(t, rec, &sr)
	if !sr.Success || sr.Product.Brand != "Lacoste" || sr.Product.Type != "Sneakers" || sr.Product.Price.String() != "90.99" {
		t.Fatalf("search response = %+v", sr)
	}

	rec = do(t, h, http.MethodGet, "/api/export/"+sr.Product.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") || !strings.Contains(cd, "prestashop_import_"+sr.Product.ID+".csv") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	r := csv.NewReader(bytes.NewReader(rec.Body.Bytes()))
	r.Comma = ';'
	rows, err := r.ReadAll()
	if err != nil || len(rows) != 2 {
		t.Fatalf("csv = %v, %v", rows, err)
	}
	if rows[1][6] != "48SMA0097-21G" {
		t.Fatalf("Référence = %q", rows[1][6])
	}

	rec = do(t, h, http.MethodGet, "/api/export/"+sr.Product.ID+"?format=xlsx", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Type"), "spreadsheetml") {
		t.Fatalf("xlsx export: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	rec = do(t, h, http.MethodGet, "/api/export/"+sr.Product.ID+"?format=pdf", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("pdf export: %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/api/export/unknown-id", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown export: %d", rec.Code)
	}
}

func TestListAndDelete(t *testing.T) {
	h := newTestServer(t)
	for i := 0; i < 2; i++ {
		if rec := do(t, h, http.MethodPost, "/api/search", `{"ean":"3608077027028"}`); rec.Code != http.StatusOK {
			t.Fatalf("search: %d", rec.Code)
		}
	}

	var products struct {
		Products []models.Product `json:"products"`
		Total    int              `json:"total"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/products", ""), &products)
	if products.Total != 2 || products.Products[0].ID == products.Products[1].ID {
		t.Fatalf("products = %+v", products)
	}

	var sheets struct {
		Sheets []models.Sheet `json:"sheets"`
		Total  int            `json:"total"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/sheets", ""), &sheets)
	if sheets.Total != 2 {
		t.Fatalf("sheets total = %d", sheets.Total)
	}

	if rec := do(t, h, http.MethodDelete, "/api/sheets/"+sheets.Sheets[0].ID, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete sheet: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/products/"+products.Products[1].ID, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete product: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/products/"+products.Products[1].ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/products/"+products.Products[0].ID, ""); rec.Code != http.StatusOK {
		t.Fatalf("get product: %d", rec.Code)
	}

	decode(t, do(t, h, http.MethodGet, "/api/sheets", ""), &sheets)
	if sheets.Total != 0 {
		t.Fatalf("sheets after deletes = %d", sheets.Total)
	}
}

func TestGenerateManual(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/generate", `{"sku":"BAG-1","name":"Sac Chantaco","brand":"Lacoste","type":"Sac","price":149.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", rec.Code, rec.Body.String())
	}
	var sr searchResponse
	decode(t, rec, &sr)
	if sr.Product.Source != catalog.SourceManual || sr.Sheet == nil {
		t.Fatalf("generate response = %+v", sr)
	}
	if rec := do(t, h, http.MethodPost, "/api/generate", `{"sku":"BAG-1"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("generate without name: %d", rec.Code)
	}
}

func TestHealthIndexMetrics(t *testing.T) {
	h := newTestServer(t)

	var health map[string]string
	decode(t, do(t, h, http.MethodGet, "/api/health", ""), &health)
	if health["status"] != "healthy" || health["version"] != "test" || health["timestamp"] == "" {
		t.Fatalf("health = %v", health)
	}

	if rec := do(t, h, http.MethodGet, "/", ""); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<form") {
		t.Fatalf("index: %d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "sheetgen_http_requests_total") {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}
