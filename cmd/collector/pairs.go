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

func runPairs(cmd *cobra.Command, _ []string) error {
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

	pairIDs, err := collector.ParsePairIDs(cfg.PairIDs)
	if err != nil {
		return err
	}
	if len(pairIDs) == 0 {
		return fmt.Errorf("at least one pair id is required")
	}
	if cfg.ChainID == "" {
		return fmt.Errorf("chain id is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, cleanup, err := buildRunner(ctx, cfg, collector.RunConfig{
		ChainID:         cfg.ChainID,
		PairIDs:         pairIDs,
		Limit:           cfg.Limit,
		PairsPerRequest: cfg.PairsPerRequest,
		MaxRetries:      cfg.MaxRetries,
		RetryBackoff:    cfg.RetryBackoff,
	}, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("pairs start",
		zap.String("chain_id", cfg.ChainID),
		zap.Int("pair_ids", len(pairIDs)),
		zap.String("out_dir", cfg.OutDir),
	)

	rows, err := runner.Snapshot(ctx)
	if err != nil {
		return err
	}

	logger.Info("pairs complete", zap.Int("rows", rows))
	return nil
}
