package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jmulder/crypto-portfolio-backend/internal/apperrors"
	"github.com/jmulder/crypto-portfolio-backend/internal/cache"
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
	"github.com/jmulder/crypto-portfolio-backend/internal/valuation"
)

// Listener receives freshly derived snapshots. Listeners run on the
// dispatching goroutine and must not mutate the session from within the
// callback; dataflow is strictly ledger mutation -> snapshot -> listener.
type Listener func(model.Snapshot)

// PortfolioSession ties the ledger, the quote cache and the settings
// together behind one consumer surface: read the derived snapshot, mutate
// the ledger or settings, subscribe to changes. Every mutation computes
// the new snapshot exactly once and dispatches it to all listeners.
type PortfolioSession struct {
	holdings *HoldingsService
	config   *ConfigService
	quotes   *cache.QuoteCache
	logger   zerolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	listeners map[string]Listener
}

// NewPortfolioSession creates a session over the given components.
func NewPortfolioSession(holdings *HoldingsService, config *ConfigService, quotes *cache.QuoteCache, logger zerolog.Logger) *PortfolioSession {
	return &PortfolioSession{
		holdings:  holdings,
		config:    config,
		quotes:    quotes,
		logger:    logger,
		now:       time.Now,
		listeners: map[string]Listener{},
	}
}

// Snapshot derives the current portfolio view. Derivation is pure and
// cheap; callers may invoke it on every read.
func (s *PortfolioSession) Snapshot() model.Snapshot {
	return valuation.Compute(s.holdings.Lots(), s.quotes, s.config.Settings(), s.now())
}

// Subscribe registers a listener and returns a token for Unsubscribe.
func (s *PortfolioSession) Subscribe(fn Listener) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.New().String()
	s.listeners[token] = fn
	return token
}

// Unsubscribe removes a listener. Unknown tokens are ignored.
func (s *PortfolioSession) Unsubscribe(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, token)
}

// dispatch computes one fresh snapshot and hands it to every listener.
func (s *PortfolioSession) dispatch() {
	snap := s.Snapshot()

	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// QuotesRefreshed is invoked by the fetcher's owner after a successful
// cache replacement, so subscribers see the revalued portfolio.
func (s *PortfolioSession) QuotesRefreshed() {
	s.dispatch()
}

// mutationApplied reports whether the underlying service changed its
// in-memory state despite the error. A persistence failure leaves the
// mutation applied (the next write retries); subscribers must still see
// the new state, and the caller gets the applied result with the error.
func mutationApplied(err error) bool {
	return err == nil || errors.Is(err, apperrors.ErrPersistence)
}

// AddLot appends a lot through the ledger and notifies subscribers.
func (s *PortfolioSession) AddLot(lot model.Lot) (int64, error) {
	id, err := s.holdings.AddLot(lot)
	if !mutationApplied(err) {
		return 0, err
	}
	s.dispatch()
	return id, err
}

// UpdateLot patches a lot through the ledger and notifies subscribers.
func (s *PortfolioSession) UpdateLot(lotID int64, patch model.LotPatch) (model.Lot, error) {
	lot, err := s.holdings.UpdateLot(lotID, patch)
	if !mutationApplied(err) {
		return model.Lot{}, err
	}
	s.dispatch()
	return lot, err
}

// RemoveLot removes a lot through the ledger and notifies subscribers.
// Idempotent like the underlying ledger operation.
func (s *PortfolioSession) RemoveLot(lotID int64) error {
	err := s.holdings.RemoveLot(lotID)
	if !mutationApplied(err) {
		return err
	}
	s.dispatch()
	return err
}

// ClearLots empties the ledger and notifies subscribers.
func (s *PortfolioSession) ClearLots() error {
	err := s.holdings.Clear()
	if !mutationApplied(err) {
		return err
	}
	s.dispatch()
	return err
}

// Lots exposes the current ledger contents.
func (s *PortfolioSession) Lots() []model.Lot {
	return s.holdings.Lots()
}

// Settings exposes the current configuration.
func (s *PortfolioSession) Settings() model.Settings {
	return s.config.Settings()
}

// SetTheme persists the theme and notifies subscribers.
func (s *PortfolioSession) SetTheme(theme model.Theme) error {
	err := s.config.SetTheme(theme)
	if !mutationApplied(err) {
		return err
	}
	s.dispatch()
	return err
}

// SetMaxLoss persists the maximum-loss percentage and notifies subscribers.
func (s *PortfolioSession) SetMaxLoss(pct float64) error {
	err := s.config.SetMaxLoss(pct)
	if !mutationApplied(err) {
		return err
	}
	s.dispatch()
	return err
}

// SetTakeProfit persists the take-profit configuration and notifies
// subscribers.
func (s *PortfolioSession) SetTakeProfit(tp model.TakeProfit) error {
	err := s.config.SetTakeProfit(tp)
	if !mutationApplied(err) {
		return err
	}
	s.dispatch()
	return err
}
