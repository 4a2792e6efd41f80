package lookup

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/lukman83/sheetgen/internal/models"
	"github.com/lukman83/sheetgen/internal/resolver"
	"github.com/lukman83/sheetgen/internal/rules"
)

// HeadlessStrategy renders the DuckDuckGo results page in a headless
// Chromium and scores the rendered snippets. It is the slowest strategy and
// only registered when enabled in the configuration.
type HeadlessStrategy struct {
	Endpoint string
	rules    *rules.Rules
	scorer   *Scorer
	bin      string // optional browser binary
}

func NewHeadlessStrategy(r *rules.Rules, bin string) *HeadlessStrategy {
	return &HeadlessStrategy{
		Endpoint: duckDuckGoEndpoint,
		rules:    r,
		scorer:   NewScorer(r),
		bin:      bin,
	}
}

func (h *HeadlessStrategy) Name() string { return "headless" }

func (h *HeadlessStrategy) Resolve(ctx context.Context, id models.Identifier) (*models.ProductDetail, error) {
	page, cleanup, err := h.openPage(ctx, h.Endpoint+"?q="+url.QueryEscape(id.Value+" prix"))
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := page.WaitStable(time.Second); err != nil {
		return nil, fmt.Errorf("headless: wait for page: %w", err)
	}
	content, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("headless: get page HTML: %w", err)
	}

	snippets, err := ParseDuckDuckGo([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("headless: %w", err)
	}
	if len(snippets) == 0 {
		return nil, resolver.ErrNoMatch
	}
	return pickBest(h.scorer, h.rules, id, snippets)
}

func (h *HeadlessStrategy) openPage(ctx context.Context, pageURL string) (*rod.Page, func(), error) {
	l := launcher.New().Headless(true).Logger(io.Discard)
	if h.bin != "" {
		l = l.Bin(h.bin)
	}
	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("headless: launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("headless: connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		browser.Close()
		l.Cleanup()
		return nil, nil, fmt.Errorf("headless: open page: %w", err)
	}

	cleanup := func() {
		page.Close()
		browser.Close()
		l.Cleanup()
	}
	return page, cleanup, nil
}
