package model

import "time"

// Quote is the canonical market snapshot for one asset. All consumers see
// this one shape; the two field-name styles the upstream feed uses are
// reconciled at ingress by the marketdata package.
//
// Optional market fields are pointers so that "the feed did not report it"
// and "the feed reported zero" stay distinguishable downstream.
type Quote struct {
	Identifier            string    `json:"identifier"`
	Symbol                string    `json:"symbol"`
	DisplayName           string    `json:"display_name"`
	ImageRef              string    `json:"image_ref,omitempty"`
	MarketCapRank         int       `json:"market_cap_rank"`
	PriceUSD              *float64  `json:"price_usd,omitempty"`
	MarketCap             *float64  `json:"market_cap,omitempty"`
	Volume24h             *float64  `json:"volume_24h,omitempty"`
	CirculatingSupply     *float64  `json:"circulating_supply,omitempty"`
	TotalSupply           *float64  `json:"total_supply,omitempty"`
	MaxSupply             *float64  `json:"max_supply,omitempty"`
	FullyDilutedValuation *float64  `json:"fully_diluted_valuation,omitempty"`
	Change24h             *float64  `json:"change_24h,omitempty"`
	Change7d              *float64  `json:"change_7d,omitempty"`
	Change30d             *float64  `json:"change_30d,omitempty"`
	Change1y              *float64  `json:"change_1y,omitempty"`
	FetchedAt             time.Time `json:"fetched_at"`
}

// DetailedAsset holds the per-asset supply and volume figures used by the
// risk classifier. LastUpdated is epoch milliseconds, matching the on-disk
// cache layout.
type DetailedAsset struct {
	Identifier            string   `json:"identifier"`
	CirculatingSupply     *float64 `json:"circulating_supply,omitempty"`
	TotalSupply           *float64 `json:"total_supply,omitempty"`
	MaxSupply             *float64 `json:"max_supply,omitempty"`
	PriceUSD              *float64 `json:"price_usd,omitempty"`
	MarketCap             *float64 `json:"market_cap,omitempty"`
	Volume24h             *float64 `json:"volume_24h,omitempty"`
	FullyDilutedValuation *float64 `json:"fully_diluted_valuation,omitempty"`
	LastUpdated           int64    `json:"lastUpdated"`
}

// Float64 dereferences p, returning fallback when p is nil.
func Float64(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

// Float64Ptr returns a pointer to v. Convenience for building test fixtures
// and canonical quotes.
func Float64Ptr(v float64) *float64 {
	return &v
}
