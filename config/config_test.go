package config

import (
	"slices"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SHEETGEN_STRATEGIES", "exact, websearch,,heuristic")
	t.Setenv("SHEETGEN_LOOKUP_TIMEOUT", "10s")
	t.Setenv("SHEETGEN_RESPECT_ROBOTS", "false")
	t.Setenv("SHEETGEN_STORE", "sqlite")
	t.Setenv("PORT", "9000")
	t.Setenv("GOOGLE_SEARCH_API_KEY", "key")
	t.Setenv("SHEETGEN_MAX_CONCURRENT", "not-a-number")

	c := DefaultConfig()
	c.LoadFromEnv()

	if !slices.Equal(c.Strategies, []string{"exact", "websearch", "heuristic"}) {
		t.Errorf("Strategies = %v", c.Strategies)
	}
	if c.LookupTimeout != 10*time.Second {
		t.Errorf("LookupTimeout = %v", c.LookupTimeout)
	}
	if c.RespectRobots {
		t.Error("RespectRobots should be false")
	}
	if c.StoreDriver != "sqlite" || c.HTTPPort != "9000" || c.GoogleAPIKey != "key" {
		t.Errorf("config = %+v", c)
	}
	if c.MaxConcurrent != 3 {
		t.Errorf("invalid value should keep the default, got %d", c.MaxConcurrent)
	}
}

func TestDefaultStrategiesNotShared(t *testing.T) {
	c := DefaultConfig()
	c.Strategies[0] = "changed"
	if DefaultStrategies[0] != "exact" {
		t.Fatal("DefaultConfig shares its strategy slice")
	}
}
