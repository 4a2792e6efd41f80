package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lukman83/sheetgen/internal/httputil"
	"github.com/lukman83/sheetgen/internal/models"
	"github.com/lukman83/sheetgen/internal/resolver"
	"github.com/lukman83/sheetgen/internal/rules"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const duckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

// WebSearchStrategy queries the DuckDuckGo HTML endpoint with several
// phrasings and votes across every result snippet.
type WebSearchStrategy struct {
	Endpoint      string
	client        *http.Client
	rules         *rules.Rules
	scorer        *Scorer
	maxConcurrent int
}

func NewWebSearchStrategy(client *http.Client, r *rules.Rules, maxConcurrent int) *WebSearchStrategy {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &WebSearchStrategy{
		Endpoint:      duckDuckGoEndpoint,
		client:        client,
		rules:         r,
		scorer:        NewScorer(r),
		maxConcurrent: maxConcurrent,
	}
}

func (s *WebSearchStrategy) Name() string { return "websearch" }

func (s *WebSearchStrategy) Resolve(ctx context.Context, id models.Identifier) (*models.ProductDetail, error) {
	queries := searchQueries(id)
	results := make([][]Snippet, len(queries))
	errs := make([]error, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, q := range queries {
		g.Go(func() error {
			body, err := httputil.Get(gctx, s.client, s.Endpoint+"?q="+url.QueryEscape(q), httputil.BrowserHeaders())
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = ParseDuckDuckGo(body)
			return nil
		})
	}
	g.Wait()

	var snippets []Snippet
	for _, r := range results {
		snippets = append(snippets, r...)
	}
	if len(snippets) == 0 {
		if err := errors.Join(errs...); err != nil {
			return nil, fmt.Errorf("duckduckgo: %w", err)
		}
		return nil, resolver.ErrNoMatch
	}
	return pickBest(s.scorer, s.rules, id, snippets)
}

func pickBest(sc *Scorer, r *rules.Rules, id models.Identifier, snippets []Snippet) (*models.ProductDetail, error) {
	best, ok := sc.Best(id, snippets)
	if !ok || best.Score < r.Remote.MinConfidence {
		return nil, resolver.ErrNoMatch
	}
	d := sc.Detail(id, best)
	return &d, nil
}

func searchQueries(id models.Identifier) []string {
	return []string{
		id.Value + " prix acheter",
		id.Value + " product price",
		`"` + id.Value + `"`,
	}
}

// ParseDuckDuckGo extracts result titles, links and snippets from a
// DuckDuckGo HTML results page.
func ParseDuckDuckGo(body []byte) ([]Snippet, error) {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var snippets []Snippet
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				snippets = append(snippets, Snippet{
					Title: textContent(n),
					URL:   resultURL(attr(n, "href")),
				})
				return
			case hasClass(n, "result__snippet") && len(snippets) > 0:
				last := &snippets[len(snippets)-1]
				if last.Text == "" {
					last.Text = textContent(n)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return snippets, nil
}

// resultURL unwraps DuckDuckGo's //duckduckgo.com/l/?uddg=<target> redirect links.
func resultURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
