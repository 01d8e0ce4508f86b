package model

// Pair is a trading-pair record as returned by the DexScreener API.
type Pair struct {
	ChainID       string     `json:"chainId"`
	DexID         string     `json:"dexId"`
	URL           string     `json:"url"`
	PairAddress   string     `json:"pairAddress"`
	BaseToken     Token      `json:"baseToken"`
	QuoteToken    Token      `json:"quoteToken"`
	PriceNative   string     `json:"priceNative"`
	PriceUsd      string     `json:"priceUsd"`
	Txns          PairTxns   `json:"txns"`
	Volume        PairWindow `json:"volume"`
	PriceChange   PairWindow `json:"priceChange"`
	Liquidity     *Liquidity `json:"liquidity"`
	Fdv           float64    `json:"fdv"`
	MarketCap     float64    `json:"marketCap"`
	PairCreatedAt int64      `json:"pairCreatedAt"`
}

// Token identifies one side of a pair.
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Liquidity holds pool liquidity figures. Nullable in the API.
type Liquidity struct {
	Usd   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// TxnCounts holds buy and sell counts for one window.
type TxnCounts struct {
	Buys  int64 `json:"buys"`
	Sells int64 `json:"sells"`
}

// PairTxns holds transaction counts per time window.
type PairTxns struct {
	M5  TxnCounts `json:"m5"`
	H1  TxnCounts `json:"h1"`
	H6  TxnCounts `json:"h6"`
	H24 TxnCounts `json:"h24"`
}

// PairWindow holds one float metric per time window (volume, price change).
type PairWindow struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

// SearchResponse is the envelope of /latest/dex/search and /latest/dex/pairs.
type SearchResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}
