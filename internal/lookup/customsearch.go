package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lukman83/sheetgen/internal/httputil"
	"github.com/lukman83/sheetgen/internal/models"
	"github.com/lukman83/sheetgen/internal/rules"
)

const customSearchEndpoint = "https://www.googleapis.com/customsearch/v1"

// ErrNotConfigured is returned by strategies that need credentials they were not given.
var ErrNotConfigured = errors.New("strategy not configured")

// CustomSearchStrategy queries the Google Programmable Search JSON API and
// scores its results like the web search strategy.
type CustomSearchStrategy struct {
	Endpoint string
	client   *http.Client
	rules    *rules.Rules
	scorer   *Scorer
	apiKey   string
	cx       string
}

func NewCustomSearchStrategy(client *http.Client, r *rules.Rules, apiKey, cx string) *CustomSearchStrategy {
	return &CustomSearchStrategy{
		Endpoint: customSearchEndpoint,
		client:   client,
		rules:    r,
		scorer:   NewScorer(r),
		apiKey:   apiKey,
		cx:       cx,
	}
}

func (s *CustomSearchStrategy) Name() string { return "customsearch" }

type cseResponse struct {
	Items []cseItem `json:"items"`
}

type cseItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Pagemap struct {
		Offer []struct {
			Price string `json:"price"`
		} `json:"offer"`
		CSEImage []struct {
			Src string `json:"src"`
		} `json:"cse_image"`
	} `json:"pagemap"`
}

func (s *CustomSearchStrategy) Resolve(ctx context.Context, id models.Identifier) (*models.ProductDetail, error) {
	if s.apiKey == "" || s.cx == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("key", s.apiKey)
	q.Set("cx", s.cx)
	q.Set("q", id.Value)
	q.Set("num", "10")

	body, err := httputil.Get(ctx, s.client, s.Endpoint+"?"+q.Encode(), httputil.JSONHeaders())
	if err != nil {
		return nil, fmt.Errorf("customsearch: %w", err)
	}

	var resp cseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("customsearch: decode response: %w", err)
	}

	snippets := make([]Snippet, 0, len(resp.Items))
	for _, item := range resp.Items {
		sn := Snippet{Title: item.Title, URL: item.Link, Text: item.Snippet}
		if len(item.Pagemap.Offer) > 0 {
			sn.Price = item.Pagemap.Offer[0].Price
		}
		if len(item.Pagemap.CSEImage) > 0 {
			sn.Image = item.Pagemap.CSEImage[0].Src
		}
		snippets = append(snippets, sn)
	}
	return pickBest(s.scorer, s.rules, id, snippets)
}
