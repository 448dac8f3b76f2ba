// apitest lists a series' open markets and prints what the quoter would do
// with each one. It never submits orders.
// Usage: go run ./cmd/apitest --config configs/quoter.yaml --series KXNBATOTAL
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/kalshi-quoter/internal/api"
	"github.com/rickgao/kalshi-quoter/internal/auth"
	"github.com/rickgao/kalshi-quoter/internal/config"
	"github.com/rickgao/kalshi-quoter/internal/eligibility"
	"github.com/rickgao/kalshi-quoter/internal/model"
	"github.com/rickgao/kalshi-quoter/internal/pricing"
)

func main() {
	configPath := flag.String("config", "configs/quoter.yaml", "path to config file")
	series := flag.String("series", "", "comma-separated series to list (default: config series)")
	maxPages := flag.Int("pages", 5, "maximum pages per series")
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *series != "" {
		cfg.Quoter.Series = strings.Split(*series, ",")
	}
	if len(cfg.Quoter.Series) == 0 {
		logger.Error("no series given")
		os.Exit(1)
	}

	env, err := cfg.Environment()
	if err != nil {
		logger.Error("invalid environment", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Market listings are public; sign only when credentials are configured.
	var signer api.Signer
	if cfg.API.KeyID != "" && cfg.API.PrivateKeyPath != "" {
		creds, err := auth.LoadCredentials(cfg.API.KeyID, cfg.API.PrivateKeyPath)
		if err != nil {
			logger.Error("failed to load credentials", "error", err)
			os.Exit(1)
		}
		signer = creds
	}

	client := api.NewClient(env.BaseURL(), signer, api.WithLogger(logger), api.WithTimeout(cfg.API.Timeout))

	status, err := client.GetExchangeStatus(ctx)
	if err != nil {
		logger.Error("failed to get exchange status", "error", err)
		os.Exit(1)
	}
	fmt.Printf("exchange %s: exchange_active=%v trading_active=%v\n", env, status.ExchangeActive, status.TradingActive)

	policy, err := cfg.PricingPolicy()
	if err != nil {
		logger.Error("invalid pricing rules", "error", err)
		os.Exit(1)
	}
	filter := eligibility.New(cfg.EligibilityConfig())
	now := time.Now()

	for _, s := range cfg.Quoter.Series {
		if info, err := client.GetSeries(ctx, s); err == nil {
			fmt.Printf("\n== %s: %s\n", s, info.Title)
		} else {
			fmt.Printf("\n== %s\n", s)
		}

		pages := 0
		opts := api.GetMarketsOptions{SeriesTicker: s, Status: cfg.Quoter.Status, Limit: cfg.Quoter.PageSize}
		for batch, err := range client.MarketPages(ctx, opts) {
			if err != nil {
				fmt.Printf("  error: %v\n", err)
				break
			}
			for _, m := range batch {
				printMarket(m, filter.Check(m, now), policy, now)
			}
			pages++
			if pages >= *maxPages {
				fmt.Printf("  (stopped after %d pages)\n", pages)
				break
			}
		}
	}
}

func printMarket(m model.Market, v eligibility.Verdict, policy *pricing.Policy, now time.Time) {
	exp := "-"
	if m.ExpectedExpiration != nil {
		exp = m.ExpectedExpiration.Sub(now).Round(time.Minute).String()
	}
	fmt.Printf("  %-40s expires_in=%-8s yes=%s no=%s\n", m.Ticker, exp, quote(m, model.SideYes), quote(m, model.SideNo))

	if !v.Eligible {
		fmt.Printf("    skip: %s\n", v.Reason)
		return
	}
	for _, side := range model.Sides {
		res := policy.Price(m, side, now)
		if !res.OK {
			fmt.Printf("    %-3s skip: %s\n", side, res.Reason)
			continue
		}
		d := res.Decision
		fmt.Printf("    %-3s buy @ %dc rule=%s spread=%d expires=%s\n",
			side, d.LimitPriceCents, d.Rule, d.Spread, expiry(d.ExpirationTS))
	}
}

func quote(m model.Market, side model.Side) string {
	bid, ask, ok := m.Quote(side)
	if !ok {
		return "--/--"
	}
	return fmt.Sprintf("%d/%d", bid, ask)
}

func expiry(ts int64) string {
	if ts == 0 {
		return "gtc"
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
