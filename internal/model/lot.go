package model

import "time"

// Lot represents a single purchase event of one asset: the user bought
// Amount units at PurchasePrice (USD) on PurchaseDate. The ledger assigns
// IDs monotonically and never reuses them, even across removals.
type Lot struct {
	ID            int64     `json:"id"`
	Identifier    string    `json:"identifier"`
	Symbol        string    `json:"symbol"`
	DisplayName   string    `json:"display_name"`
	Amount        float64   `json:"amount"`
	PurchasePrice float64   `json:"purchase_price"`
	PurchaseDate  time.Time `json:"purchase_date"`
}

// LotPatch carries the updatable fields of a lot. Nil pointers leave the
// corresponding field unchanged; the lot ID itself can never be patched.
type LotPatch struct {
	Identifier    *string    `json:"identifier,omitempty"`
	Symbol        *string    `json:"symbol,omitempty"`
	DisplayName   *string    `json:"display_name,omitempty"`
	Amount        *float64   `json:"amount,omitempty"`
	PurchasePrice *float64   `json:"purchase_price,omitempty"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
}

// Cost returns the cost basis of the lot.
func (l Lot) Cost() float64 {
	return l.Amount * l.PurchasePrice
}
