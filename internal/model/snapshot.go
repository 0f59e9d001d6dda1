package model

import "time"

// ValuedLot is a lot enriched with the latest market data. When no quote
// matches the lot, CurrentPrice falls back to the purchase price and
// Change24h to zero so that portfolio totals stay finite.
type ValuedLot struct {
	Lot
	CurrentPrice float64 `json:"current_price"`
	Value        float64 `json:"value"`
	Change24h    float64 `json:"change_24h"`
	QuoteFound   bool    `json:"quote_found"`
}

// Performance holds value-weighted percentage returns per horizon. Raw
// values are retained; rounding happens only at the presentation edge.
type Performance struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Overall float64 `json:"overall"`
}

// AllocationEntry is one slice of the portfolio allocation, ordered by
// descending value. ShareFraction is in [0,1] and the fractions of a
// non-empty allocation sum to one.
type AllocationEntry struct {
	Identifier    string  `json:"identifier"`
	Symbol        string  `json:"symbol"`
	Value         float64 `json:"value"`
	ShareFraction float64 `json:"share_fraction"`
	Color         string  `json:"color"`
}

// StopLossStatus classifies how much of the configured entry value is
// still protected by the stop-loss.
type StopLossStatus string

const (
	StopLossSafe    StopLossStatus = "SAFE"
	StopLossCaution StopLossStatus = "CAUTION"
	StopLossDanger  StopLossStatus = "DANGER"
)

// StopLoss is the derived stop-loss / take-profit position. PercentChange,
// MaxLossPct and TakeProfitPct are exposed separately; mapping them onto a
// single marker scale is left to the presentation layer.
type StopLoss struct {
	EntryValue     float64        `json:"entry_value"`
	ProtectedValue float64        `json:"protected_value"`
	CapitalAtRisk  float64        `json:"capital_at_risk"`
	PercentChange  float64        `json:"percent_change"`
	MaxLossPct     float64        `json:"max_loss_pct"`
	TakeProfitPct  float64        `json:"take_profit_pct"`
	TakeProfitGap  float64        `json:"take_profit_gap"`
	Status         StopLossStatus `json:"status"`
}

// Mover is the best or worst 24h performer among the valued lots.
type Mover struct {
	Identifier   string  `json:"identifier"`
	Symbol       string  `json:"symbol"`
	Change24h    float64 `json:"change_24h"`
	DollarChange float64 `json:"dollar_change"`
}

// Snapshot is the immutable derived view of the portfolio at one instant.
// It is never persisted and always recomputable from the ledger, the quote
// cache and the configuration.
type Snapshot struct {
	Lots           []ValuedLot       `json:"lots"`
	TotalValue     float64           `json:"total_value"`
	TotalCost      float64           `json:"total_cost"`
	AbsoluteProfit float64           `json:"absolute_profit"`
	Performance    Performance       `json:"performance"`
	Allocation     []AllocationEntry `json:"allocation"`
	StopLoss       StopLoss          `json:"stop_loss"`
	Best           *Mover            `json:"best,omitempty"`
	Worst          *Mover            `json:"worst,omitempty"`
	ComputedAt     time.Time         `json:"computed_at"`
}
