// Package valuation derives the portfolio snapshot from the holdings
// ledger, the quote cache and the user settings. Everything in this
// package is a pure function: no I/O, no clocks, no globals. Computing a
// snapshot twice from the same inputs yields identical output.
package valuation

import (
	"math"
	"sort"
	"time"

	"github.com/jmulder/crypto-portfolio-backend/internal/model"
)

// QuoteLookup is the slice of the quote cache the engine needs. Joins try
// identifier equality first, then case-insensitive symbol equality; that
// fallback is the only permitted fuzzy match.
type QuoteLookup interface {
	GetByID(identifier string) (model.Quote, bool)
	GetBySymbol(symbol string) (model.Quote, bool)
}

// Palette is the fixed allocation color palette. Colors are assigned by
// allocation rank (ordinal mod len), so the same ranks always get the same
// colors no matter how the ledger is ordered.
var Palette = []string{
	"#f7931a", "#627eea", "#26a17b", "#e84142", "#8247e5",
	"#f3ba2f", "#2775ca", "#ff060a", "#0033ad", "#c2a633",
}

// Compute derives the full portfolio snapshot. now is only stamped into
// the result; it never influences any derived number.
func Compute(lots []model.Lot, quotes QuoteLookup, settings model.Settings, now time.Time) model.Snapshot {
	valued := enrich(lots, quotes)

	var totalValue, totalCost float64
	for _, v := range valued {
		totalValue += v.Value
		totalCost += v.Lot.Cost()
	}

	snap := model.Snapshot{
		Lots:           valued,
		TotalValue:     totalValue,
		TotalCost:      totalCost,
		AbsoluteProfit: totalValue - totalCost,
		Performance:    performance(valued, quotes, totalValue, totalCost),
		Allocation:     allocation(valued, totalValue),
		StopLoss:       stopLoss(totalValue, settings),
		ComputedAt:     now,
	}
	snap.Best, snap.Worst = extremes(valued)
	return snap
}

// enrich joins each lot with its quote. A lot without a matching quote is
// valued at its purchase price with a zero 24h change, keeping totals
// finite when the feed is partial.
func enrich(lots []model.Lot, quotes QuoteLookup) []model.ValuedLot {
	valued := make([]model.ValuedLot, len(lots))
	for i, lot := range lots {
		v := model.ValuedLot{Lot: lot, CurrentPrice: lot.PurchasePrice}

		if q, ok := lookup(quotes, lot); ok {
			v.QuoteFound = true
			v.CurrentPrice = model.Float64(q.PriceUSD, lot.PurchasePrice)
			v.Change24h = model.Float64(q.Change24h, 0)
		}

		v.Value = lot.Amount * v.CurrentPrice
		valued[i] = v
	}
	return valued
}

func lookup(quotes QuoteLookup, lot model.Lot) (model.Quote, bool) {
	if q, ok := quotes.GetByID(lot.Identifier); ok {
		return q, true
	}
	if lot.Symbol == "" {
		return model.Quote{}, false
	}
	return quotes.GetBySymbol(lot.Symbol)
}

// performance computes the value-weighted percentage return per horizon.
// Each lot contributes its value share times its quote's change for that
// horizon, missing changes counting as zero. A weighted average is always
// within the range of its inputs.
func performance(valued []model.ValuedLot, quotes QuoteLookup, totalValue, totalCost float64) model.Performance {
	var p model.Performance
	if totalValue > 0 {
		for _, v := range valued {
			weight := v.Value / totalValue
			q, ok := lookup(quotes, v.Lot)
			if !ok {
				continue
			}
			p.Daily += weight * model.Float64(q.Change24h, 0)
			p.Weekly += weight * model.Float64(q.Change7d, 0)
			p.Monthly += weight * model.Float64(q.Change30d, 0)
		}
	}
	if totalCost > 0 {
		p.Overall = (totalValue - totalCost) / totalCost * 100
	}
	return p
}

// allocation builds the per-lot share list, descending by value, ties
// broken by identifier. Zero-value lots are excluded; an empty portfolio
// yields an empty list.
func allocation(valued []model.ValuedLot, totalValue float64) []model.AllocationEntry {
	entries := []model.AllocationEntry{}
	if totalValue <= 0 {
		return entries
	}

	for _, v := range valued {
		if v.Value <= 0 {
			continue
		}
		entries = append(entries, model.AllocationEntry{
			Identifier:    v.Identifier,
			Symbol:        v.Symbol,
			Value:         v.Value,
			ShareFraction: v.Value / totalValue,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Identifier < entries[j].Identifier
	})

	for i := range entries {
		entries[i].Color = Palette[i%len(Palette)]
	}
	return entries
}

// stopLoss derives the protection numbers from the configured entry value
// and maximum loss. When no entry value is set, the current total value
// serves as the entry.
func stopLoss(totalValue float64, settings model.Settings) model.StopLoss {
	entry := settings.TakeProfit.EntryValue
	if entry <= 0 {
		entry = totalValue
	}

	protected := entry * (1 - settings.MaxLossPct/100)
	atRisk := totalValue - protected

	var pctChange float64
	if entry > 0 {
		pctChange = 100 * (totalValue - entry) / entry
	}

	status := model.StopLossDanger
	switch {
	case atRisk > entry*0.10:
		status = model.StopLossSafe
	case atRisk > 0:
		status = model.StopLossCaution
	}

	return model.StopLoss{
		EntryValue:     entry,
		ProtectedValue: protected,
		CapitalAtRisk:  atRisk,
		PercentChange:  pctChange,
		MaxLossPct:     settings.MaxLossPct,
		TakeProfitPct:  settings.TakeProfit.TargetPct,
		TakeProfitGap:  settings.TakeProfit.TargetValue - totalValue,
		Status:         status,
	}
}

// extremes picks the best and worst 24h movers. Ties go to the
// lexicographically smaller identifier; empty holdings yield nil.
func extremes(valued []model.ValuedLot) (best, worst *model.Mover) {
	if len(valued) == 0 {
		return nil, nil
	}

	bi, wi := 0, 0
	for i := 1; i < len(valued); i++ {
		if better(valued[i], valued[bi]) {
			bi = i
		}
		if worse(valued[i], valued[wi]) {
			wi = i
		}
	}

	return mover(valued[bi]), mover(valued[wi])
}

func better(a, b model.ValuedLot) bool {
	if a.Change24h != b.Change24h {
		return a.Change24h > b.Change24h
	}
	return a.Identifier < b.Identifier
}

func worse(a, b model.ValuedLot) bool {
	if a.Change24h != b.Change24h {
		return a.Change24h < b.Change24h
	}
	return a.Identifier < b.Identifier
}

func mover(v model.ValuedLot) *model.Mover {
	return &model.Mover{
		Identifier:   v.Identifier,
		Symbol:       v.Symbol,
		Change24h:    v.Change24h,
		DollarChange: v.Value * v.Change24h / 100,
	}
}

// Rounded2 rounds to two decimals for display. The raw values stay in the
// snapshot; only presentation code should call this.
func Rounded2(v float64) float64 {
	return math.Round(v*100) / 100
}
