package model

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingField marks a pair that lacks a required field.
var ErrMissingField = errors.New("missing required field")

// SnapshotRow is the flattened representation of a pair for CSV storage.
type SnapshotRow struct {
	SnapshotTS     string
	PairAddress    string
	ChainID        string
	DexID          string
	URL            string
	BaseSymbol     string
	BaseAddress    string
	QuoteSymbol    string
	QuoteAddress   string
	PriceNative    string
	PriceUsd       string
	PriceChangeH1  float64
	PriceChangeH6  float64
	PriceChangeH24 float64
	TxnsM5Buys     int64
	TxnsM5Sells    int64
	TxnsH1Buys     int64
	TxnsH1Sells    int64
	TxnsH6Buys     int64
	TxnsH6Sells    int64
	TxnsH24Buys    int64
	TxnsH24Sells   int64
	VolumeM5       float64
	VolumeH1       float64
	VolumeH6       float64
	VolumeH24      float64
	LiquidityBase  float64
	LiquidityQuote float64
	LiquidityUsd   float64
	Fdv            float64
	MarketCap      float64
	PairCreatedAt  int64
}

// CSVHeader is the fixed column order for snapshot CSV files.
var CSVHeader = []string{
	"snapshot_ts", "pair_address", "chain_id", "dex_id", "url",
	"base_symbol", "base_address", "quote_symbol", "quote_address",
	"price_native", "price_usd",
	"price_change_h1", "price_change_h6", "price_change_h24",
	"txns_m5_buys", "txns_m5_sells", "txns_h1_buys", "txns_h1_sells",
	"txns_h6_buys", "txns_h6_sells", "txns_h24_buys", "txns_h24_sells",
	"volume_m5", "volume_h1", "volume_h6", "volume_h24",
	"liquidity_base", "liquidity_quote", "liquidity_usd",
	"fdv", "market_cap", "pair_created_at",
}

// FlattenPair projects a pair into a snapshot row stamped with snapshotTS.
// It fails when the pair lacks an address or a token symbol.
func FlattenPair(p Pair, snapshotTS string) (SnapshotRow, error) {
	if p.PairAddress == "" {
		return SnapshotRow{}, fmt.Errorf("%w: pairAddress", ErrMissingField)
	}
	if p.BaseToken.Symbol == "" {
		return SnapshotRow{}, fmt.Errorf("%w: baseToken.symbol (pair %s)", ErrMissingField, p.PairAddress)
	}
	if p.QuoteToken.Symbol == "" {
		return SnapshotRow{}, fmt.Errorf("%w: quoteToken.symbol (pair %s)", ErrMissingField, p.PairAddress)
	}

	row := SnapshotRow{
		SnapshotTS:     snapshotTS,
		PairAddress:    p.PairAddress,
		ChainID:        p.ChainID,
		DexID:          p.DexID,
		URL:            p.URL,
		BaseSymbol:     p.BaseToken.Symbol,
		BaseAddress:    p.BaseToken.Address,
		QuoteSymbol:    p.QuoteToken.Symbol,
		QuoteAddress:   p.QuoteToken.Address,
		PriceNative:    p.PriceNative,
		PriceUsd:       p.PriceUsd,
		PriceChangeH1:  p.PriceChange.H1,
		PriceChangeH6:  p.PriceChange.H6,
		PriceChangeH24: p.PriceChange.H24,
		TxnsM5Buys:     p.Txns.M5.Buys,
		TxnsM5Sells:    p.Txns.M5.Sells,
		TxnsH1Buys:     p.Txns.H1.Buys,
		TxnsH1Sells:    p.Txns.H1.Sells,
		TxnsH6Buys:     p.Txns.H6.Buys,
		TxnsH6Sells:    p.Txns.H6.Sells,
		TxnsH24Buys:    p.Txns.H24.Buys,
		TxnsH24Sells:   p.Txns.H24.Sells,
		VolumeM5:       p.Volume.M5,
		VolumeH1:       p.Volume.H1,
		VolumeH6:       p.Volume.H6,
		VolumeH24:      p.Volume.H24,
		Fdv:            p.Fdv,
		MarketCap:      p.MarketCap,
		PairCreatedAt:  p.PairCreatedAt,
	}
	if p.Liquidity != nil {
		row.LiquidityBase = p.Liquidity.Base
		row.LiquidityQuote = p.Liquidity.Quote
		row.LiquidityUsd = p.Liquidity.Usd
	}
	return row, nil
}

// Key identifies a row for deduplication.
func (r SnapshotRow) Key() string {
	return r.PairAddress + "|" + r.SnapshotTS
}

// CSVRecord renders the row in CSVHeader column order.
func (r SnapshotRow) CSVRecord() []string {
	return []string{
		r.SnapshotTS, r.PairAddress, r.ChainID, r.DexID, r.URL,
		r.BaseSymbol, r.BaseAddress, r.QuoteSymbol, r.QuoteAddress,
		r.PriceNative, r.PriceUsd,
		formatFloat(r.PriceChangeH1), formatFloat(r.PriceChangeH6), formatFloat(r.PriceChangeH24),
		formatInt(r.TxnsM5Buys), formatInt(r.TxnsM5Sells),
		formatInt(r.TxnsH1Buys), formatInt(r.TxnsH1Sells),
		formatInt(r.TxnsH6Buys), formatInt(r.TxnsH6Sells),
		formatInt(r.TxnsH24Buys), formatInt(r.TxnsH24Sells),
		formatFloat(r.VolumeM5), formatFloat(r.VolumeH1),
		formatFloat(r.VolumeH6), formatFloat(r.VolumeH24),
		formatFloat(r.LiquidityBase), formatFloat(r.LiquidityQuote), formatFloat(r.LiquidityUsd),
		formatFloat(r.Fdv), formatFloat(r.MarketCap),
		formatInt(r.PairCreatedAt),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
