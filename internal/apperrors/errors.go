package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// Upstream market-data errors. These are swallowed into the fetcher status
// flag and never break the serving path; the quote cache keeps serving the
// last good snapshot.
var (
	// ErrTransport indicates a network or timeout failure talking to the
	// market-data service.
	ErrTransport = errors.New("market data request failed")

	// ErrDecode indicates the market-data service returned a payload that
	// could not be parsed.
	ErrDecode = errors.New("malformed market data payload")

	// ErrRateLimited indicates the external quota is exhausted. Callers must
	// not retry before the server-supplied reset instant.
	ErrRateLimited = errors.New("market data rate limit exceeded")
)

// User-input validation errors. These are surfaced to the caller and leave
// the ledger unchanged.
var (
	// ErrInvalidAmount indicates a lot amount that is zero or negative.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInvalidPurchasePrice indicates a negative purchase price.
	ErrInvalidPurchasePrice = errors.New("purchase price cannot be negative")

	// ErrInvalidPurchaseDate indicates a purchase date that could not be parsed.
	ErrInvalidPurchaseDate = errors.New("invalid purchase date")

	// ErrInvalidIdentifier indicates a missing asset identifier.
	ErrInvalidIdentifier = errors.New("asset identifier is required")

	// ErrInvalidMaxLoss indicates a negative maximum-loss percentage.
	ErrInvalidMaxLoss = errors.New("max loss percentage cannot be negative")

	// ErrInvalidTakeProfit indicates negative take-profit targets.
	ErrInvalidTakeProfit = errors.New("take profit values cannot be negative")

	// ErrInvalidTheme indicates a theme outside the supported set.
	ErrInvalidTheme = errors.New("theme must be light or dark")
)

// Lookup and storage errors.
var (
	// ErrLotNotFound indicates that a lot with the given ID does not exist.
	ErrLotNotFound = errors.New("lot not found")

	// ErrQuoteNotFound indicates that an asset identifier is absent from the
	// quote cache.
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrPersistence indicates the store refused a write. In-memory state
	// proceeds; the next mutation retries the write.
	ErrPersistence = errors.New("persistence failure")
)

// RateLimitError wraps ErrRateLimited with the instant at which the
// external quota resets. NextAllowedAt drives the countdown shown to the
// user while the refresh control is disabled.
type RateLimitError struct {
	NextAllowedAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.NextAllowedAt.UTC().Format(time.RFC3339))
}

// Unwrap makes errors.Is(err, ErrRateLimited) hold for RateLimitError values.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
