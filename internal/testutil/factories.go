package testutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmulder/crypto-portfolio-backend/internal/model"
)

// titleCase capitalizes the first letter, good enough for fixture names.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// LotBuilder provides a fluent interface for creating test lots.
//
// Example usage:
//
//	// Simple creation with defaults
//	lot := testutil.NewLot().Build()
//
//	// Customized lot
//	lot := testutil.NewLot().
//	    WithIdentifier("ethereum").
//	    WithAmount(2.5).
//	    WithPurchasePrice(1800).
//	    Build()
type LotBuilder struct {
	ID            int64
	Identifier    string
	Symbol        string
	DisplayName   string
	Amount        float64
	PurchasePrice float64
	PurchaseDate  time.Time
}

// NewLot creates a LotBuilder with sensible defaults.
func NewLot() *LotBuilder {
	return &LotBuilder{
		Identifier:    "bitcoin",
		Symbol:        "BTC",
		DisplayName:   "Bitcoin",
		Amount:        1,
		PurchasePrice: 20000,
		PurchaseDate:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

// WithID sets an explicit lot ID.
func (b *LotBuilder) WithID(id int64) *LotBuilder {
	b.ID = id
	return b
}

// WithIdentifier sets the asset identifier, deriving symbol and display
// name from it.
func (b *LotBuilder) WithIdentifier(identifier string) *LotBuilder {
	b.Identifier = identifier
	b.Symbol = strings.ToUpper(identifier)
	if len(b.Symbol) > 4 {
		b.Symbol = b.Symbol[:4]
	}
	b.DisplayName = titleCase(identifier)
	return b
}

// WithSymbol sets a custom symbol.
func (b *LotBuilder) WithSymbol(symbol string) *LotBuilder {
	b.Symbol = symbol
	return b
}

// WithAmount sets the lot quantity.
func (b *LotBuilder) WithAmount(amount float64) *LotBuilder {
	b.Amount = amount
	return b
}

// WithPurchasePrice sets the per-unit purchase price.
func (b *LotBuilder) WithPurchasePrice(price float64) *LotBuilder {
	b.PurchasePrice = price
	return b
}

// WithPurchaseDate sets the purchase date.
func (b *LotBuilder) WithPurchaseDate(date time.Time) *LotBuilder {
	b.PurchaseDate = date
	return b
}

// Build returns the lot.
func (b *LotBuilder) Build() model.Lot {
	return model.Lot{
		ID:            b.ID,
		Identifier:    b.Identifier,
		Symbol:        b.Symbol,
		DisplayName:   b.DisplayName,
		Amount:        b.Amount,
		PurchasePrice: b.PurchasePrice,
		PurchaseDate:  b.PurchaseDate,
	}
}

// QuoteBuilder provides a fluent interface for creating test quotes.
//
// Example usage:
//
//	quote := testutil.NewQuote("bitcoin").
//	    WithPrice(42000).
//	    WithChange24h(-2.5).
//	    Build()
type QuoteBuilder struct {
	Identifier  string
	Symbol      string
	DisplayName string
	Rank        int
	Price       float64
	MarketCap   *float64
	Volume24h   *float64
	Change24h   *float64
	Change7d    *float64
	Change30d   *float64
	Change1y    *float64
}

// NewQuote creates a QuoteBuilder for the given identifier.
func NewQuote(identifier string) *QuoteBuilder {
	symbol := strings.ToUpper(identifier)
	if len(symbol) > 4 {
		symbol = symbol[:4]
	}
	return &QuoteBuilder{
		Identifier:  identifier,
		Symbol:      symbol,
		DisplayName: titleCase(identifier),
		Price:       100,
	}
}

// WithRank sets the market-cap rank.
func (b *QuoteBuilder) WithRank(rank int) *QuoteBuilder {
	b.Rank = rank
	return b
}

// WithSymbol sets a custom symbol.
func (b *QuoteBuilder) WithSymbol(symbol string) *QuoteBuilder {
	b.Symbol = symbol
	return b
}

// WithPrice sets the current price.
func (b *QuoteBuilder) WithPrice(price float64) *QuoteBuilder {
	b.Price = price
	return b
}

// WithMarketCap sets the market capitalization.
func (b *QuoteBuilder) WithMarketCap(cap float64) *QuoteBuilder {
	b.MarketCap = &cap
	return b
}

// WithVolume24h sets the 24-hour trading volume.
func (b *QuoteBuilder) WithVolume24h(vol float64) *QuoteBuilder {
	b.Volume24h = &vol
	return b
}

// WithChange24h sets the 24-hour percentage change.
func (b *QuoteBuilder) WithChange24h(pct float64) *QuoteBuilder {
	b.Change24h = &pct
	return b
}

// WithChange7d sets the 7-day percentage change.
func (b *QuoteBuilder) WithChange7d(pct float64) *QuoteBuilder {
	b.Change7d = &pct
	return b
}

// WithChange30d sets the 30-day percentage change.
func (b *QuoteBuilder) WithChange30d(pct float64) *QuoteBuilder {
	b.Change30d = &pct
	return b
}

// WithChange1y sets the 1-year percentage change.
func (b *QuoteBuilder) WithChange1y(pct float64) *QuoteBuilder {
	b.Change1y = &pct
	return b
}

// Build returns the quote.
func (b *QuoteBuilder) Build() model.Quote {
	return model.Quote{
		Identifier:    b.Identifier,
		Symbol:        b.Symbol,
		DisplayName:   b.DisplayName,
		MarketCapRank: b.Rank,
		PriceUSD:      &b.Price,
		MarketCap:     b.MarketCap,
		Volume24h:     b.Volume24h,
		Change24h:     b.Change24h,
		Change7d:      b.Change7d,
		Change30d:     b.Change30d,
		Change1y:      b.Change1y,
	}
}

// Convenience functions

// CreateQuotes builds count quotes with distinct identifiers, descending
// prices and ascending ranks.
//
// Example usage:
//
//	quotes := testutil.CreateQuotes(5)
func CreateQuotes(count int) []model.Quote {
	quotes := make([]model.Quote, count)
	for i := 0; i < count; i++ {
		quotes[i] = NewQuote(fmt.Sprintf("asset-%02d", i+1)).
			WithRank(i + 1).
			WithPrice(float64(1000 - i*10)).
			Build()
	}
	return quotes
}
