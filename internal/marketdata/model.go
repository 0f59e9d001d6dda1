package marketdata

import (
	"strings"
	"time"

	"github.com/jmulder/crypto-portfolio-backend/internal/model"
)

// quoteDTO maps one entry of the ranked-list endpoint. The feed is served
// in two field-name styles depending on the relay in front of it
// (current_price vs priceUsd and friends); the DTO accepts both and
// canonicalize() reconciles them into the one model.Quote shape downstream
// code sees.
type quoteDTO struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Image         string   `json:"image"`
	MarketCapRank *int     `json:"market_cap_rank"`
	CurrentPrice  *float64 `json:"current_price"`
	PriceUSD      *float64 `json:"priceUsd"`
	MarketCap     *float64 `json:"market_cap"`
	MarketCapAlt  *float64 `json:"marketCap"`
	TotalVolume   *float64 `json:"total_volume"`
	Volume24h     *float64 `json:"volume24h"`

	CirculatingSupply     *float64 `json:"circulating_supply"`
	TotalSupply           *float64 `json:"total_supply"`
	MaxSupply             *float64 `json:"max_supply"`
	FullyDilutedValuation *float64 `json:"fully_diluted_valuation"`

	Change24h    *float64 `json:"price_change_percentage_24h"`
	Change24hAlt *float64 `json:"change24h"`
	Change7d     *float64 `json:"price_change_percentage_7d_in_currency"`
	Change7dAlt  *float64 `json:"change7d"`
	Change30d    *float64 `json:"price_change_percentage_30d_in_currency"`
	Change30dAlt *float64 `json:"change30d"`
	Change1y     *float64 `json:"price_change_percentage_1y_in_currency"`
	Change1yAlt  *float64 `json:"change1y"`
}

// detailDTO maps the detailed-asset endpoint. Only the market_data
// subtree is consumed.
type detailDTO struct {
	ID         string `json:"id"`
	MarketData struct {
		CirculatingSupply     *float64           `json:"circulating_supply"`
		TotalSupply           *float64           `json:"total_supply"`
		MaxSupply             *float64           `json:"max_supply"`
		CurrentPrice          map[string]float64 `json:"current_price"`
		MarketCap             map[string]float64 `json:"market_cap"`
		TotalVolume           map[string]float64 `json:"total_volume"`
		FullyDilutedValuation map[string]float64 `json:"fully_diluted_valuation"`
	} `json:"market_data"`
}

// firstNonNil returns the first non-nil pointer, or nil when both are.
func firstNonNil(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

// canonicalize converts a wire quote into the canonical record. The
// identifier is forced lowercase and the symbol uppercase; missing market
// fields stay nil so consumers can tell absence from zero.
func (d quoteDTO) canonicalize() model.Quote {
	q := model.Quote{
		Identifier:            strings.ToLower(d.ID),
		Symbol:                strings.ToUpper(d.Symbol),
		DisplayName:           d.Name,
		ImageRef:              d.Image,
		PriceUSD:              firstNonNil(d.PriceUSD, d.CurrentPrice),
		MarketCap:             firstNonNil(d.MarketCap, d.MarketCapAlt),
		Volume24h:             firstNonNil(d.Volume24h, d.TotalVolume),
		CirculatingSupply:     d.CirculatingSupply,
		TotalSupply:           d.TotalSupply,
		MaxSupply:             d.MaxSupply,
		FullyDilutedValuation: d.FullyDilutedValuation,
		Change24h:             firstNonNil(d.Change24h, d.Change24hAlt),
		Change7d:              firstNonNil(d.Change7d, d.Change7dAlt),
		Change30d:             firstNonNil(d.Change30d, d.Change30dAlt),
		Change1y:              firstNonNil(d.Change1y, d.Change1yAlt),
	}
	if d.MarketCapRank != nil {
		q.MarketCapRank = *d.MarketCapRank
	}
	return q
}

// usd pulls the USD entry out of a per-currency map, nil when absent.
func usd(m map[string]float64) *float64 {
	v, ok := m["usd"]
	if !ok {
		return nil
	}
	return &v
}

// canonicalize converts a wire detail record into the canonical shape.
func (d detailDTO) canonicalize(now time.Time) model.DetailedAsset {
	return model.DetailedAsset{
		Identifier:            strings.ToLower(d.ID),
		CirculatingSupply:     d.MarketData.CirculatingSupply,
		TotalSupply:           d.MarketData.TotalSupply,
		MaxSupply:             d.MarketData.MaxSupply,
		PriceUSD:              usd(d.MarketData.CurrentPrice),
		MarketCap:             usd(d.MarketData.MarketCap),
		Volume24h:             usd(d.MarketData.TotalVolume),
		FullyDilutedValuation: usd(d.MarketData.FullyDilutedValuation),
		LastUpdated:           now.UnixMilli(),
	}
}

// RateLimit carries the quota metadata the feed reports in response
// headers. Present is false when the response carried no rate-limit
// headers; callers keep their previous state in that case.
type RateLimit struct {
	Present   bool
	Remaining int
	ResetAt   time.Time
}
