package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Resolution
	RulesFile     string
	Strategies    []string // chain order; unregistered names are skipped
	LookupTimeout time.Duration
	MaxConcurrent int
	Headless      bool
	BrowserBin    string

	// Outbound requests
	RespectRobots bool
	DelayProfile  string // "none", "cautious", "normal"
	RatePerSecond float64
	RateBurst     int
	ProxyFile     string

	// Google Programmable Search
	GoogleAPIKey string
	GoogleCX     string

	// Store
	StoreDriver string // "jsonlog", "sqlite", "postgres"
	StorePath   string
	DatabaseURL string

	// Sheets
	ShopBaseURL string

	// HTTP server
	HTTPPort string
	APIKey   string
	GinMode  string
}

// DefaultStrategies is the resolution chain used when none is configured.
var DefaultStrategies = []string{"exact", "heuristic", "websearch", "upcitemdb", "customsearch", "headless"}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Strategies:    append([]string(nil), DefaultStrategies...),
		LookupTimeout: 8 * time.Second,
		MaxConcurrent: 3,
		RespectRobots: true,
		DelayProfile:  "none",
		RatePerSecond: 2.0,
		RateBurst:     3,
		StoreDriver:   "jsonlog",
		StorePath:     "data/products.jsonl",
		ShopBaseURL:   "https://monsite.com/produit",
		HTTPPort:      "8000",
		GinMode:       "release",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("SHEETGEN_RULES_FILE"); v != "" {
		c.RulesFile = v
	}
	if v := os.Getenv("SHEETGEN_STRATEGIES"); v != "" {
		c.Strategies = SplitList(v)
	}
	if v := os.Getenv("SHEETGEN_LOOKUP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.LookupTimeout = d
		}
	}
	if v := os.Getenv("SHEETGEN_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrent = n
		}
	}
	if v := os.Getenv("SHEETGEN_HEADLESS"); v != "" {
		c.Headless = v == "true" || v == "1"
	}
	if v := os.Getenv("ROD_BROWSER_BIN"); v != "" {
		c.BrowserBin = v
	}
	if v := os.Getenv("SHEETGEN_RESPECT_ROBOTS"); v == "false" {
		c.RespectRobots = false
	}
	if v := os.Getenv("SHEETGEN_DELAY_PROFILE"); v != "" {
		c.DelayProfile = v
	}
	if v := os.Getenv("SHEETGEN_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv("SHEETGEN_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	if v := os.Getenv("SHEETGEN_PROXIES"); v != "" {
		c.ProxyFile = v
	}
	if v := os.Getenv("GOOGLE_SEARCH_API_KEY"); v != "" {
		c.GoogleAPIKey = v
	}
	if v := os.Getenv("GOOGLE_SEARCH_CX"); v != "" {
		c.GoogleCX = v
	}
	if v := os.Getenv("SHEETGEN_STORE"); v != "" {
		c.StoreDriver = v
	}
	if v := os.Getenv("SHEETGEN_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("SHEETGEN_SHOP_URL"); v != "" {
		c.ShopBaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("SHEETGEN_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.GinMode = v
	}
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
