package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/lukman83/sheetgen/config"
	"github.com/lukman83/sheetgen/internal/catalog"
	"github.com/lukman83/sheetgen/internal/httputil"
	"github.com/lukman83/sheetgen/internal/lookup"
	"github.com/lukman83/sheetgen/internal/resolver"
	"github.com/lukman83/sheetgen/internal/rules"
	"github.com/lukman83/sheetgen/internal/sheet"
	"github.com/lukman83/sheetgen/internal/stealth"
	"github.com/lukman83/sheetgen/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

const version = "1.0.0"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:     "sheetgen",
	Short:   "Product sheet generator - identify a product by EAN or SKU and build its catalog sheet",
	Long:    "A Go-based HTTP API, CLI and MCP server that resolves EAN/SKU identifiers into products and generates catalog import sheets.",
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("rules", "", "Path to a catalog rules YAML file (default: embedded rules)")
	rootCmd.PersistentFlags().String("strategies", "", "Comma-separated resolver chain, e.g. exact,heuristic,websearch")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-strategy lookup timeout (default 8s)")
	rootCmd.PersistentFlags().Bool("headless", false, "Enable the headless browser strategy")
	rootCmd.PersistentFlags().String("store", "", "Store driver: jsonlog, sqlite, postgres")
	rootCmd.PersistentFlags().String("store-path", "", "jsonlog file or sqlite database path")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string")
	rootCmd.PersistentFlags().String("delay-profile", "", "Delay profile: none, cautious, normal")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt rules")
	rootCmd.PersistentFlags().String("proxy-file", "", "Path to proxy list file")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	flags := rootCmd.PersistentFlags()
	if v, _ := flags.GetString("rules"); v != "" {
		cfg.RulesFile = v
	}
	if v, _ := flags.GetString("strategies"); v != "" {
		cfg.Strategies = config.SplitList(v)
	}
	if v, _ := flags.GetDuration("timeout"); v > 0 {
		cfg.LookupTimeout = v
	}
	if v, _ := flags.GetBool("headless"); v {
		cfg.Headless = true
	}
	if v, _ := flags.GetString("store"); v != "" {
		cfg.StoreDriver = v
	}
	if v, _ := flags.GetString("store-path"); v != "" {
		cfg.StorePath = v
	}
	if v, _ := flags.GetString("database-url"); v != "" {
		cfg.DatabaseURL = v
	}
	if v, _ := flags.GetString("delay-profile"); v != "" {
		cfg.DelayProfile = v
	}
	if v, _ := flags.GetBool("respect-robots"); !v {
		cfg.RespectRobots = false
	}
	if v, _ := flags.GetString("proxy-file"); v != "" {
		cfg.ProxyFile = v
	}
}

// buildHTTPClient creates the stealth-wrapped HTTP client from config.
func buildHTTPClient() (*http.Client, error) {
	fpPool := stealth.NewFingerprintPool()
	delay := stealth.NewHumanDelay(stealth.DelayProfile(cfg.DelayProfile))
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)

	baseTransport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	var proxyRotator *stealth.ProxyRotator
	if cfg.ProxyFile != "" {
		providers, err := stealth.LoadProxyFile(cfg.ProxyFile)
		if err != nil {
			return nil, err
		}
		proxyRotator = stealth.NewProxyRotator(providers)
	}

	robots := stealth.NewRobotsChecker(&http.Client{Timeout: 5 * time.Second}, cfg.RespectRobots)

	transport := &stealth.Transport{
		Base:        baseTransport,
		Robots:      robots,
		Fingerprint: fpPool,
		Proxy:       proxyRotator,
		Delay:       delay,
		RateLimiter: limiter,
	}
	return httputil.NewHTTPClient(transport, cfg.LookupTimeout), nil
}

// registerStrategies registers every strategy the configuration allows.
// Google search needs credentials and the headless browser must be enabled.
func registerStrategies(client *http.Client, r *rules.Rules) *resolver.Registry {
	reg := resolver.NewRegistry()
	reg.Register(resolver.NewExactStrategy(r))
	reg.Register(resolver.NewHeuristicStrategy(r))
	reg.Register(lookup.NewWebSearchStrategy(client, r, cfg.MaxConcurrent))
	reg.Register(lookup.NewUPCItemDBStrategy(client, r))
	if cfg.GoogleAPIKey != "" && cfg.GoogleCX != "" {
		reg.Register(lookup.NewCustomSearchStrategy(client, r, cfg.GoogleAPIKey, cfg.GoogleCX))
	}
	if cfg.Headless {
		reg.Register(lookup.NewHeadlessStrategy(r, cfg.BrowserBin))
	}
	return reg
}

// app is the wired catalog service plus what must be closed on exit.
type app struct {
	svc      *catalog.Service
	resolver *resolver.Resolver
	store    store.Store
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
}

func buildApp(ctx context.Context) (*app, error) {
	r, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	client, err := buildHTTPClient()
	if err != nil {
		return nil, err
	}

	reg := registerStrategies(client, r)
	res := resolver.New(reg.Chain(cfg.Strategies), resolver.NewFallback(r), cfg.LookupTimeout)

	st, err := store.Open(ctx, store.Options{
		Driver: cfg.StoreDriver,
		Path:   cfg.StorePath,
		DSN:    cfg.DatabaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &app{
		svc:      catalog.NewService(res, sheet.NewGenerator(r, cfg.ShopBaseURL), st),
		resolver: res,
		store:    st,
	}, nil
}
