package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dexsnap/internal/model"
)

// Store provides Postgres persistence for pair snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the snapshot and state tables when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS pair_snapshots (
			snapshot_ts      text NOT NULL,
			pair_address     text NOT NULL,
			chain_id         text NOT NULL,
			dex_id           text NOT NULL,
			url              text,
			base_symbol      text NOT NULL,
			base_address     text,
			quote_symbol     text NOT NULL,
			quote_address    text,
			price_native     text,
			price_usd        text,
			price_change_h1  double precision,
			price_change_h6  double precision,
			price_change_h24 double precision,
			txns_m5_buys     bigint,
			txns_m5_sells    bigint,
			txns_h1_buys     bigint,
			txns_h1_sells    bigint,
			txns_h6_buys     bigint,
			txns_h6_sells    bigint,
			txns_h24_buys    bigint,
			txns_h24_sells   bigint,
			volume_m5        double precision,
			volume_h1        double precision,
			volume_h6        double precision,
			volume_h24       double precision,
			liquidity_base   double precision,
			liquidity_quote  double precision,
			liquidity_usd    double precision,
			fdv              double precision,
			market_cap       double precision,
			pair_created_at  bigint,
			created_at       timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (pair_address, snapshot_ts)
		)`,
		`CREATE TABLE IF NOT EXISTS collector_state (
			name             text PRIMARY KEY,
			last_snapshot_ts text NOT NULL,
			rows_written     bigint NOT NULL DEFAULT 0,
			updated_at       timestamptz NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// PutSnapshotBatch inserts snapshot rows, skipping keys already present.
func (s *Store) PutSnapshotBatch(ctx context.Context, rows []model.SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO pair_snapshots (
				snapshot_ts, pair_address, chain_id, dex_id, url,
				base_symbol, base_address, quote_symbol, quote_address,
				price_native, price_usd,
				price_change_h1, price_change_h6, price_change_h24,
				txns_m5_buys, txns_m5_sells, txns_h1_buys, txns_h1_sells,
				txns_h6_buys, txns_h6_sells, txns_h24_buys, txns_h24_sells,
				volume_m5, volume_h1, volume_h6, volume_h24,
				liquidity_base, liquidity_quote, liquidity_usd,
				fdv, market_cap, pair_created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,
				$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32)
			ON CONFLICT (pair_address, snapshot_ts) DO NOTHING
		`,
			r.SnapshotTS,
			r.PairAddress,
			r.ChainID,
			r.DexID,
			r.URL,
			r.BaseSymbol,
			r.BaseAddress,
			r.QuoteSymbol,
			r.QuoteAddress,
			r.PriceNative,
			r.PriceUsd,
			r.PriceChangeH1,
			r.PriceChangeH6,
			r.PriceChangeH24,
			r.TxnsM5Buys,
			r.TxnsM5Sells,
			r.TxnsH1Buys,
			r.TxnsH1Sells,
			r.TxnsH6Buys,
			r.TxnsH6Sells,
			r.TxnsH24Buys,
			r.TxnsH24Sells,
			r.VolumeM5,
			r.VolumeH1,
			r.VolumeH6,
			r.VolumeH24,
			r.LiquidityBase,
			r.LiquidityQuote,
			r.LiquidityUsd,
			r.Fdv,
			r.MarketCap,
			r.PairCreatedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the stored run state for a name.
func (s *Store) LoadState(ctx context.Context, name string) (string, int64, bool, error) {
	if name == "" {
		return "", 0, false, fmt.Errorf("state name required")
	}
	var ts string
	var rows int64
	row := s.pool.QueryRow(ctx, `SELECT last_snapshot_ts, rows_written FROM collector_state WHERE name=$1`, name)
	if err := row.Scan(&ts, &rows); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, false, nil
		}
		return "", 0, false, err
	}
	return ts, rows, true, nil
}

// SaveState upserts the run state for a name.
func (s *Store) SaveState(ctx context.Context, name, lastSnapshotTS string, rowsWritten int64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO collector_state (name, last_snapshot_ts, rows_written, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET last_snapshot_ts = EXCLUDED.last_snapshot_ts,
			rows_written = EXCLUDED.rows_written,
			updated_at = now()
	`, name, lastSnapshotTS, rowsWritten)
	return err
}
