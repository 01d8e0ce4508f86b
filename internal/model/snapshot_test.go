package model

import (
	"encoding/json"
	"errors"
	"testing"
)

const cannedSearchJSON = `{
	"schemaVersion": "1.0.0",
	"pairs": [{
		"chainId": "solana",
		"dexId": "raydium",
		"url": "https://dexscreener.com/solana/abc",
		"pairAddress": "8vHkPCEz6dkVK1CUsBnESGJ5TJBRyMyvfLGDFKGjvPe1",
		"baseToken": {"address": "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", "name": "Bonk", "symbol": "BONK"},
		"quoteToken": {"address": "So11111111111111111111111111111111111111112", "name": "Wrapped SOL", "symbol": "SOL"},
		"priceNative": "0.0000001",
		"priceUsd": "0.0000214",
		"txns": {"m5": {"buys": 3, "sells": 1}, "h1": {"buys": 42, "sells": 17}, "h6": {"buys": 100, "sells": 80}, "h24": {"buys": 500, "sells": 450}},
		"volume": {"m5": 1200.5, "h1": 54000, "h6": 210000, "h24": 910000},
		"priceChange": {"m5": 0.1, "h1": -2.4, "h6": 5.5, "h24": 12},
		"liquidity": {"usd": 830000.25, "base": 12000000, "quote": 4100},
		"fdv": 1400000000,
		"marketCap": 1350000000,
		"pairCreatedAt": 1672531200000
	}]
}`

func TestFlattenPair(t *testing.T) {
	var resp SearchResponse
	if err := json.Unmarshal([]byte(cannedSearchJSON), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(resp.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(resp.Pairs))
	}

	row, err := FlattenPair(resp.Pairs[0], "2025-01-02T03:04:05Z")
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}

	if row.SnapshotTS != "2025-01-02T03:04:05Z" {
		t.Fatalf("snapshot ts mismatch: %s", row.SnapshotTS)
	}
	if row.PairAddress != "8vHkPCEz6dkVK1CUsBnESGJ5TJBRyMyvfLGDFKGjvPe1" {
		t.Fatalf("pair address mismatch: %s", row.PairAddress)
	}
	if row.BaseSymbol != "BONK" || row.QuoteSymbol != "SOL" {
		t.Fatalf("symbols mismatch: %s/%s", row.BaseSymbol, row.QuoteSymbol)
	}
	if row.PriceUsd != "0.0000214" {
		t.Fatalf("price mismatch: %s", row.PriceUsd)
	}
	if row.TxnsH1Buys != 42 || row.TxnsH1Sells != 17 {
		t.Fatalf("txns mismatch: %d/%d", row.TxnsH1Buys, row.TxnsH1Sells)
	}
	if row.VolumeH24 != 910000 {
		t.Fatalf("volume mismatch: %v", row.VolumeH24)
	}
	if row.LiquidityUsd != 830000.25 {
		t.Fatalf("liquidity mismatch: %v", row.LiquidityUsd)
	}
	if row.PairCreatedAt != 1672531200000 {
		t.Fatalf("created at mismatch: %d", row.PairCreatedAt)
	}
}

func TestFlattenPairNilLiquidity(t *testing.T) {
	pair := validPair()
	pair.Liquidity = nil

	row, err := FlattenPair(pair, "2025-01-02T03:04:05Z")
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	if row.LiquidityUsd != 0 || row.LiquidityBase != 0 || row.LiquidityQuote != 0 {
		t.Fatalf("expected zero liquidity, got %+v", row)
	}
}

func TestFlattenPairMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Pair)
	}{
		{"address", func(p *Pair) { p.PairAddress = "" }},
		{"base symbol", func(p *Pair) { p.BaseToken.Symbol = "" }},
		{"quote symbol", func(p *Pair) { p.QuoteToken.Symbol = "" }},
	}

	for _, tc := range cases {
		pair := validPair()
		tc.mutate(&pair)
		if _, err := FlattenPair(pair, "2025-01-02T03:04:05Z"); !errors.Is(err, ErrMissingField) {
			t.Fatalf("%s: expected ErrMissingField, got %v", tc.name, err)
		}
	}
}

func TestCSVRecordMatchesHeader(t *testing.T) {
	row, err := FlattenPair(validPair(), "2025-01-02T03:04:05Z")
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}

	record := row.CSVRecord()
	if len(record) != len(CSVHeader) {
		t.Fatalf("record has %d fields, header has %d", len(record), len(CSVHeader))
	}
	if record[0] != "2025-01-02T03:04:05Z" {
		t.Fatalf("first column should be snapshot_ts, got %s", record[0])
	}
}

func TestRowKey(t *testing.T) {
	row := SnapshotRow{PairAddress: "abc", SnapshotTS: "2025-01-02T03:04:05Z"}
	if row.Key() != "abc|2025-01-02T03:04:05Z" {
		t.Fatalf("unexpected key: %s", row.Key())
	}
}

func validPair() Pair {
	return Pair{
		ChainID:     "solana",
		DexID:       "raydium",
		PairAddress: "8vHkPCEz6dkVK1CUsBnESGJ5TJBRyMyvfLGDFKGjvPe1",
		BaseToken:   Token{Address: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Symbol: "BONK"},
		QuoteToken:  Token{Address: "So11111111111111111111111111111111111111112", Symbol: "SOL"},
		PriceUsd:    "0.0000214",
		Liquidity:   &Liquidity{Usd: 830000.25},
	}
}
