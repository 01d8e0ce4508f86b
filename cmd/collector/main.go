package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dexsnap/internal/collector"
	"dexsnap/internal/config"
	"dexsnap/internal/dexscreener"
	"dexsnap/internal/storage"
	"dexsnap/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "collector",
		Short:        "Solana DEX pair snapshot collector",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect one snapshot of pairs matching the search queries",
		RunE:  runCollect,
	}
	collectCmd.Flags().StringSlice("query", nil, "search queries (comma-separated)")
	addSharedFlags(collectCmd)
	root.AddCommand(collectCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Collect snapshots periodically until terminated",
		RunE:  runPeriodic,
	}
	runCmd.Flags().StringSlice("query", nil, "search queries (comma-separated)")
	runCmd.Flags().Duration("interval", 5*time.Minute, "time between snapshots")
	addSharedFlags(runCmd)
	root.AddCommand(runCmd)

	pairsCmd := &cobra.Command{
		Use:   "pairs",
		Short: "Collect one snapshot of specific pairs by id",
		RunE:  runPairs,
	}
	pairsCmd.Flags().StringSlice("pair-ids", nil, "pair addresses (comma-separated)")
	pairsCmd.Flags().String("chain-id", "solana", "chain id for pair lookups")
	pairsCmd.Flags().Int("pairs-per-request", 30, "pair ids per API call")
	addSharedFlags(pairsCmd)
	root.AddCommand(pairsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSharedFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", config.DefaultLimit, "max pairs saved per snapshot")
	cmd.Flags().String("base-url", "", "API base URL")
	cmd.Flags().String("out-dir", "./data/raw", "output directory for daily CSVs")
	cmd.Flags().String("raw-out", "", "optional raw pairs JSONL path")
	cmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	cmd.Flags().String("state-file", "", "optional run-state file path")
	cmd.Flags().Duration("timeout", 20*time.Second, "HTTP request timeout")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts per request")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().Float64("rate-limit", 4, "max requests per second")
	cmd.Flags().Int("rate-burst", 2, "request burst size")
	cmd.Flags().String("user-agent", "dexsnap/1.1", "User-Agent header")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runCollect(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	queries := collector.ParseQueries(cfg.Queries)
	if len(queries) == 0 {
		return fmt.Errorf("at least one query is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, cleanup, err := buildRunner(ctx, cfg, collector.RunConfig{
		Queries:      queries,
		Limit:        cfg.Limit,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("collect start",
		zap.Strings("queries", queries),
		zap.Int("limit", cfg.Limit),
		zap.String("out_dir", cfg.OutDir),
	)

	rows, err := runner.Snapshot(ctx)
	if err != nil {
		return err
	}

	logger.Info("collect complete", zap.Int("rows", rows))
	return nil
}

// buildRunner wires the API client, sinks, and state store from config.
func buildRunner(ctx context.Context, cfg config.Config, runCfg collector.RunConfig, logger *zap.Logger) (*collector.Runner, func(), error) {
	if cfg.BaseURL == "" {
		return nil, nil, fmt.Errorf("base url is required")
	}

	client, err := dexscreener.NewClient(dexscreener.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sinks := []storage.Sink{storage.NewCSVStorage(cfg.OutDir)}
	cleanup := func() {}

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		sinks = append(sinks, store)
		cleanup = store.Close
	}

	var raw *storage.RawPairStorage
	if cfg.RawOut != "" {
		raw = storage.NewRawPairStorage(cfg.RawOut)
	}

	var state collector.StateStore
	switch {
	case cfg.StateFile != "":
		state = &collector.FileStateStore{Path: cfg.StateFile}
	case store != nil:
		state = &collector.DBStateStore{Store: store, Name: "collector"}
	}

	return collector.NewRunner(runCfg, client, sinks, raw, state, logger), cleanup, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
