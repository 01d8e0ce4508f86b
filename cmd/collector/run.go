package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dexsnap/internal/collector"
	"dexsnap/internal/config"
)

func runPeriodic(cmd *cobra.Command, _ []string) error {
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
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
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

	logger.Info("run start",
		zap.Strings("queries", queries),
		zap.Int("limit", cfg.Limit),
		zap.Duration("interval", cfg.Interval),
		zap.String("out_dir", cfg.OutDir),
	)

	return runner.RunLoop(ctx, cfg.Interval)
}
