package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/kalshi-quoter/internal/api"
	"github.com/rickgao/kalshi-quoter/internal/auth"
	"github.com/rickgao/kalshi-quoter/internal/config"
	"github.com/rickgao/kalshi-quoter/internal/database"
	"github.com/rickgao/kalshi-quoter/internal/eligibility"
	"github.com/rickgao/kalshi-quoter/internal/journal"
	"github.com/rickgao/kalshi-quoter/internal/metrics"
	"github.com/rickgao/kalshi-quoter/internal/order"
	"github.com/rickgao/kalshi-quoter/internal/scanner"
	"github.com/rickgao/kalshi-quoter/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/quoter.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single sweep and exit")
	dryRun := flag.Bool("dry-run", false, "log orders without sending them")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// Optional .env with KALSHI_* secrets referenced from the YAML.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting quoter",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *once {
		cfg.Quoter.Mode = string(scanner.ModeOnce)
	}
	if *dryRun {
		cfg.Quoter.DryRun = true
	}

	env, _ := cfg.Environment()
	logger.Info("configuration loaded",
		"environment", env,
		"mode", cfg.Quoter.Mode,
		"series", cfg.Quoter.Series,
		"dry_run", cfg.Quoter.DryRun,
	)

	creds, err := auth.LoadCredentials(cfg.API.KeyID, cfg.API.PrivateKeyPath)
	if err != nil {
		var credErr *auth.CredentialError
		if errors.As(err, &credErr) {
			logger.Error("invalid credentials", "reason", credErr.Reason, "error", err)
		} else {
			logger.Error("failed to load credentials", "error", err)
		}
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	collector := metrics.New()

	apiClient := api.NewClient(
		env.BaseURL(),
		creds,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithObserver(collector.ObserveRequest),
	)

	// Check exchange status
	status, err := apiClient.GetExchangeStatus(ctx)
	if err != nil {
		logger.Error("failed to get exchange status", "error", err)
		os.Exit(1)
	}
	logger.Info("exchange status",
		"exchange_active", status.ExchangeActive,
		"trading_active", status.TradingActive,
	)
	if !status.TradingActive {
		logger.Warn("trading is not active; orders will be rejected until it resumes",
			"estimated_resume", status.EstimatedResumeTime,
		)
	}

	// Order journal
	var pool *pgxpool.Pool
	dispatchOpts := []order.Option{order.WithLogger(logger)}
	if cfg.Database.Enabled() {
		logger.Info("connecting to journal database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		j := journal.New(pool, logger)
		if err := j.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare journal", "error", err)
			os.Exit(1)
		}
		dispatchOpts = append(dispatchOpts, order.WithRecorder(j))
	}

	policy, err := cfg.PricingPolicy()
	if err != nil {
		logger.Error("invalid pricing rules", "error", err)
		os.Exit(1)
	}
	scanCfg, err := cfg.ScannerConfig()
	if err != nil {
		logger.Error("invalid quoter config", "error", err)
		os.Exit(1)
	}

	dispatcher := order.New(apiClient, cfg.DispatcherConfig(), dispatchOpts...)
	scan := scanner.New(
		scanCfg,
		apiClient,
		eligibility.New(cfg.EligibilityConfig()),
		policy,
		dispatcher,
		scanner.WithLogger(logger),
		scanner.WithObserver(collector),
	)

	healthServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           createHealthHandler(pool, scan, collector, cfg.Metrics.Path),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting health server", "port", cfg.Metrics.Port, "metrics_path", cfg.Metrics.Path)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// A finished one-shot run stops the health server too.
		defer cancel()
		return scan.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return healthServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("quoter exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("quoter stopped", "traded", scan.Traded().Len())
}

// createHealthHandler serves /health and the metrics endpoint. pool is nil
// when the journal is disabled.
func createHealthHandler(pool *pgxpool.Pool, scan *scanner.Scanner, collector *metrics.Collector, metricsPath string) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(metricsPath, collector.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Version    string         `json:"version"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.String(),
			Components: make(map[string]any),
		}

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["journal"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["journal"] = "connected"
			}
		} else {
			health.Components["journal"] = "disabled"
		}

		health.Components["scanner"] = map[string]any{
			"traded": scan.Traded().Len(),
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
