package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lukman83/sheetgen/internal/httputil"
	"github.com/lukman83/sheetgen/internal/models"
	"github.com/lukman83/sheetgen/internal/resolver"
	"github.com/lukman83/sheetgen/internal/rules"
	"github.com/shopspring/decimal"
)

const upcItemDBEndpoint = "https://api.upcitemdb.com/prod/trial/lookup"

// UPCItemDBStrategy looks EANs up in the public UPCitemdb trial API.
// SKUs are never sent.
type UPCItemDBStrategy struct {
	Endpoint string
	client   *http.Client
	rules    *rules.Rules
}

func NewUPCItemDBStrategy(client *http.Client, r *rules.Rules) *UPCItemDBStrategy {
	return &UPCItemDBStrategy{Endpoint: upcItemDBEndpoint, client: client, rules: r}
}

func (s *UPCItemDBStrategy) Name() string { return "upcitemdb" }

type upcResponse struct {
	Code  string    `json:"code"`
	Total int       `json:"total"`
	Items []upcItem `json:"items"`
}

type upcItem struct {
	EAN                 string   `json:"ean"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Brand               string   `json:"brand"`
	Category            string   `json:"category"`
	Images              []string `json:"images"`
	LowestRecordedPrice float64  `json:"lowest_recorded_price"`
}

func (s *UPCItemDBStrategy) Resolve(ctx context.Context, id models.Identifier) (*models.ProductDetail, error) {
	if id.Kind != models.KindEAN {
		return nil, resolver.ErrNoMatch
	}

	body, err := httputil.Get(ctx, s.client, s.Endpoint+"?upc="+url.QueryEscape(id.Value), httputil.JSONHeaders())
	if err != nil {
		return nil, fmt.Errorf("upcitemdb: %w", err)
	}

	var resp upcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("upcitemdb: decode response: %w", err)
	}
	if !strings.EqualFold(resp.Code, "OK") || len(resp.Items) == 0 || strings.TrimSpace(resp.Items[0].Title) == "" {
		return nil, resolver.ErrNoMatch
	}

	item := resp.Items[0]
	d := models.ProductDetail{
		Name:        truncateRunes(strings.TrimSpace(item.Title), 60),
		Brand:       strings.TrimSpace(item.Brand),
		Type:        s.rules.Fallback.Type,
		Price:       s.rules.Remote.BarcodePrice,
		Description: truncateRunes(strings.TrimSpace(item.Description), 200),
		Confidence:  s.rules.Remote.BarcodeConfidence,
	}
	if d.Brand == "" {
		d.Brand = s.rules.MatchBrand(item.Title)
	}
	if d.Brand == "" {
		d.Brand = s.rules.Fallback.Brand
	}
	if t, ok := s.rules.MatchType(item.Title + " " + item.Category); ok {
		d.Type = t.Label
	}
	if item.LowestRecordedPrice > 0 {
		d.Price = decimal.NewFromFloat(item.LowestRecordedPrice).Round(2)
	}
	if d.Description == "" {
		d.Description = "Produit trouvé dans la base EAN"
	}
	if len(item.Images) > 0 {
		d.ImageURL = item.Images[0]
	}
	return &d, nil
}
