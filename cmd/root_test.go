package cmd

import (
	"net/http"
	"strings"
	"testing"

	"github.com/lukman83/sheetgen/config"
	"github.com/lukman83/sheetgen/internal/resolver"
	"github.com/lukman83/sheetgen/internal/rules"
)

func TestRegisteredChain(t *testing.T) {
	r, err := rules.Default()
	if err != nil {
		t.Fatalf("rules.Default: %v", err)
	}
	saved := cfg
	t.Cleanup(func() { cfg = saved })

	tests := []struct {
		name  string
		setup func(c *config.Config)
		want  string
	}{
		{"defaults skip unconfigured", func(c *config.Config) {}, "exact,heuristic,websearch,upcitemdb,fallback"},
		{"google credentials", func(c *config.Config) {
			c.GoogleAPIKey, c.GoogleCX = "key", "cx"
		}, "exact,heuristic,websearch,upcitemdb,customsearch,fallback"},
		{"headless enabled", func(c *config.Config) { c.Headless = true }, "exact,heuristic,websearch,upcitemdb,headless,fallback"},
		{"custom order", func(c *config.Config) {
			c.Strategies = []string{"upcitemdb", "exact"}
		}, "upcitemdb,exact,fallback"},
	}
	for _, tt := range tests {
		cfg = config.DefaultConfig()
		tt.setup(cfg)
		reg := registerStrategies(http.DefaultClient, r)
		res := resolver.New(reg.Chain(cfg.Strategies), resolver.NewFallback(r), cfg.LookupTimeout)
		if got := strings.Join(res.Strategies(), ","); got != tt.want {
			t.Errorf("%s: chain = %s, want %s", tt.name, got, tt.want)
		}
	}
}
