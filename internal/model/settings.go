package model

import "time"

// Theme is the display theme persisted for the frontend.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether the theme is one of the supported values.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// TakeProfit holds the user's take-profit target and the entry point it is
// measured against. EntryDate is optional.
type TakeProfit struct {
	TargetValue float64    `json:"targetValue"`
	TargetPct   float64    `json:"targetPct"`
	EntryValue  float64    `json:"entryValue"`
	EntryDate   *time.Time `json:"entryDate,omitempty"`
}

// Settings is the user-tunable configuration consumed by the valuation
// engine. It is mutated only through the config service, which persists
// every change before notifying observers.
type Settings struct {
	Theme      Theme      `json:"theme"`
	MaxLossPct float64    `json:"max_loss_pct"`
	TakeProfit TakeProfit `json:"take_profit"`
}
