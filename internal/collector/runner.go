package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dexsnap/internal/model"
	"dexsnap/internal/storage"
)

// PairFetcher provides pair records from the data provider.
type PairFetcher interface {
	Search(ctx context.Context, query string) ([]model.Pair, error)
	PairsByIDs(ctx context.Context, chainID string, pairIDs []string) ([]model.Pair, error)
}

// RunConfig holds runtime settings for the collector.
type RunConfig struct {
	Queries         []string
	ChainID         string
	PairIDs         []string
	Limit           int
	PairsPerRequest int
	MaxRetries      int
	RetryBackoff    time.Duration
	SeenTTL         time.Duration
}

// Runner pulls pair snapshots from the provider and writes them to the sinks.
type Runner struct {
	cfg     RunConfig
	fetcher PairFetcher
	sinks   []storage.Sink
	raw     *storage.RawPairStorage
	state   StateStore
	seen    *SeenCache
	logger  *zap.Logger
}

// NewRunner builds a Runner with its dependencies. raw and state may be nil.
func NewRunner(cfg RunConfig, fetcher PairFetcher, sinks []storage.Sink, raw *storage.RawPairStorage, state StateStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		sinks:   sinks,
		raw:     raw,
		state:   state,
		seen:    NewSeenCache(cfg.SeenTTL),
		logger:  logger,
	}
}

// Snapshot performs one fetch-normalize-write cycle and returns the number of
// rows handed to the sinks.
func (r *Runner) Snapshot(ctx context.Context) (int, error) {
	if r.fetcher == nil {
		return 0, fmt.Errorf("fetcher is nil")
	}
	if len(r.sinks) == 0 {
		return 0, fmt.Errorf("at least one sink is required")
	}

	snapshotTS := time.Now().UTC().Format(time.RFC3339)

	pairs, err := r.fetchPairs(ctx)
	if err != nil {
		return 0, err
	}

	if r.cfg.Limit > 0 && len(pairs) > r.cfg.Limit {
		pairs = pairs[:r.cfg.Limit]
	}

	if r.raw != nil {
		if err := r.raw.PutPairBatch(snapshotTS, pairs); err != nil {
			return 0, fmt.Errorf("store raw pairs: %w", err)
		}
	}

	rows := make([]model.SnapshotRow, 0, len(pairs))
	for _, pair := range pairs {
		row, err := model.FlattenPair(pair, snapshotTS)
		if err != nil {
			return 0, fmt.Errorf("flatten pair: %w", err)
		}
		if r.seen.Seen(row.Key()) {
			continue
		}
		rows = append(rows, row)
	}

	for _, sink := range r.sinks {
		if err := sink.PutSnapshotBatch(ctx, rows); err != nil {
			return 0, fmt.Errorf("store snapshot: %w", err)
		}
	}

	if r.state != nil {
		if err := r.state.Save(ctx, RunState{LastSnapshotTS: snapshotTS, RowsWritten: int64(len(rows))}); err != nil {
			return 0, fmt.Errorf("save run state: %w", err)
		}
	}

	r.logger.Info("snapshot complete",
		zap.String("snapshot_ts", snapshotTS),
		zap.Int("pairs", len(pairs)),
		zap.Int("rows", len(rows)),
	)

	return len(rows), nil
}

// RunLoop repeats Snapshot on a fixed interval until the context is canceled.
// A failed snapshot is logged and the loop keeps going.
func (r *Runner) RunLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.Snapshot(ctx); err != nil {
			if ctx.Err() != nil {
				r.logger.Info("run loop stopped")
				return nil
			}
			r.logger.Error("snapshot failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			r.logger.Info("run loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// fetchPairs queries the provider and merges results, deduplicating by pair
// address while preserving response order.
func (r *Runner) fetchPairs(ctx context.Context) ([]model.Pair, error) {
	var merged []model.Pair
	seen := make(map[string]struct{})

	appendPairs := func(pairs []model.Pair) {
		for _, pair := range pairs {
			if pair.PairAddress != "" {
				if _, ok := seen[pair.PairAddress]; ok {
					continue
				}
				seen[pair.PairAddress] = struct{}{}
			}
			merged = append(merged, pair)
		}
	}

	if len(r.cfg.PairIDs) > 0 {
		batchSize := r.cfg.PairsPerRequest
		if batchSize <= 0 {
			batchSize = 30
		}
		batches, err := ChunkPairIDs(r.cfg.PairIDs, batchSize)
		if err != nil {
			return nil, err
		}
		for _, batch := range batches {
			pairs, err := r.pairsByIDsWithRetry(ctx, batch)
			if err != nil {
				return nil, fmt.Errorf("fetch pairs %s: %w", r.cfg.ChainID, err)
			}
			appendPairs(pairs)
		}
		return merged, nil
	}

	for _, query := range r.cfg.Queries {
		pairs, err := r.searchWithRetry(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		appendPairs(pairs)
	}
	return merged, nil
}

func (r *Runner) searchWithRetry(ctx context.Context, query string) ([]model.Pair, error) {
	var pairs []model.Pair
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		pairs, err = r.fetcher.Search(ctx, query)
		if err != nil {
			r.logger.Warn("search failed", zap.Error(err), zap.String("query", query))
		}
		return err
	})
	return pairs, err
}

func (r *Runner) pairsByIDsWithRetry(ctx context.Context, pairIDs []string) ([]model.Pair, error) {
	var pairs []model.Pair
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		pairs, err = r.fetcher.PairsByIDs(ctx, r.cfg.ChainID, pairIDs)
		if err != nil {
			r.logger.Warn("pair lookup failed", zap.Error(err), zap.Int("pair_ids", len(pairIDs)))
		}
		return err
	})
	return pairs, err
}
