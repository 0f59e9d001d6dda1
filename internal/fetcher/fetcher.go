// Package fetcher keeps the quote cache fresh without exceeding the
// external feed's rate limits. Concurrent refresh triggers are coalesced
// into a single outbound request, failed fetches leave the cache serving
// its last good snapshot, and a denied refresh reports when the next
// attempt is allowed.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jmulder/crypto-portfolio-backend/internal/apperrors"
	"github.com/jmulder/crypto-portfolio-backend/internal/cache"
	"github.com/jmulder/crypto-portfolio-backend/internal/marketdata"
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
	"github.com/jmulder/crypto-portfolio-backend/internal/repository"
)

// lowBudgetThreshold is the remaining-request count below which the
// fetcher stops spending quota until the reset instant passes.
const lowBudgetThreshold = 10

// pollSpec re-evaluates refresh availability every 30 seconds.
const pollSpec = "@every 30s"

// DeniedError reports a refresh that was not issued because the schedule
// or the rate-limit budget forbids it. NextAllowedAt drives the UI
// countdown.
type DeniedError struct {
	NextAllowedAt time.Time
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("refresh denied until %s", e.NextAllowedAt.UTC().Format(time.RFC3339))
}

// Status is the fetcher state exposed to the UI: staleness, the last
// error (if any), and the rate-limit budget.
type Status struct {
	LastSuccessAt time.Time  `json:"last_success_at"`
	LastError     string     `json:"last_error,omitempty"`
	InFlight      bool       `json:"in_flight"`
	Remaining     *int       `json:"remaining,omitempty"`
	ResetAt       *time.Time `json:"reset_at,omitempty"`
	CanRefresh    bool       `json:"can_refresh"`
	NextAllowedAt *time.Time `json:"next_allowed_at,omitempty"`
}

// Fetcher populates the quote cache from the market-data client on a
// schedule and on demand, serializing its own calls: at most one fetch is
// in flight, and concurrent triggers await the same result.
type Fetcher struct {
	client    marketdata.Client
	cache     *cache.QuoteCache
	store     *repository.KVRepository
	logger    zerolog.Logger
	interval  time.Duration
	coinLimit int
	now       func() time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	group     singleflight.Group
	cron      *cron.Cron
	onRefresh func()

	mu            sync.Mutex
	inFlight      bool
	lastSuccessAt time.Time
	lastErr       error
	remaining     *int
	resetAt       time.Time
}

// New creates a fetcher. store may be nil to skip snapshot persistence.
func New(client marketdata.Client, quotes *cache.QuoteCache, store *repository.KVRepository, interval time.Duration, coinLimit int, logger zerolog.Logger) *Fetcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Fetcher{
		client:    client,
		cache:     quotes,
		store:     store,
		logger:    logger,
		interval:  interval,
		coinLimit: coinLimit,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// OnRefreshed registers a hook invoked after every successful cache
// replacement, scheduled or manual. Set before Start.
func (f *Fetcher) OnRefreshed(fn func()) {
	f.onRefresh = fn
}

// WarmStart rehydrates the quote cache from the persisted snapshot so the
// UI has stale-but-serving data before the first fetch completes. The
// persisted fetch timestamp becomes the staleness stamp; it does not count
// as a fetch success.
func (f *Fetcher) WarmStart() {
	if f.store == nil {
		return
	}

	var quotes []model.Quote
	if !f.store.Load(repository.KeyTopCoins, &quotes) || len(quotes) == 0 {
		return
	}

	var fetchedAt time.Time
	f.store.Load(repository.KeyTopCoinsFetchedAt, &fetchedAt)

	f.cache.ReplaceAll(quotes, fetchedAt)
	f.logger.Info().Int("quotes", len(quotes)).Time("fetched_at", fetchedAt).Msg("quote cache rehydrated from store")
}

// Start schedules the background availability poll. Every tick re-runs
// the refresh predicate and fetches when allowed; a failed fetch backs off
// until the next tick, never retrying within the same one.
func (f *Fetcher) Start() error {
	if f.cron != nil {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(pollSpec, func() {
		if err := f.Refresh(f.ctx); err != nil {
			var denied *DeniedError
			if errors.As(err, &denied) || marketdata.IsBenign(err) {
				return
			}
			f.logger.Warn().Err(err).Msg("scheduled quote refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule quote refresh: %w", err)
	}

	c.Start()
	f.cron = c
	return nil
}

// Stop halts the schedule and cancels any in-flight fetch.
func (f *Fetcher) Stop() {
	if f.cron != nil {
		f.cron.Stop()
		f.cron = nil
	}
	f.cancel()
}

// CanRefresh evaluates the refresh predicate at now: no fetch in flight,
// the minimum interval since the last success has elapsed, and the
// rate-limit budget permits a request. When denied, nextAllowedAt is the
// earliest instant a retry can succeed (zero while a fetch is in flight).
func (f *Fetcher) CanRefresh(now time.Time) (bool, time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canRefreshLocked(now)
}

func (f *Fetcher) canRefreshLocked(now time.Time) (bool, time.Time) {
	if f.inFlight {
		return false, time.Time{}
	}

	if !f.lastSuccessAt.IsZero() {
		if next := f.lastSuccessAt.Add(f.interval); now.Before(next) {
			return false, next
		}
	}

	if f.remaining != nil && *f.remaining <= lowBudgetThreshold && now.Before(f.resetAt) {
		return false, f.resetAt
	}

	return true, time.Time{}
}

// Refresh fetches the quote list if the predicate allows it. Concurrent
// callers share a single outbound request. A denied refresh returns
// *DeniedError without touching the network; ctx cancellation returns
// ctx.Err() and leaves all fetcher state untouched.
func (f *Fetcher) Refresh(ctx context.Context) error {
	ch := f.group.DoChan("top-coins", func() (any, error) {
		return nil, f.fetch()
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		// The shared flight keeps running for the other waiters; this
		// caller just stops waiting.
		return ctx.Err()
	}
}

// fetch is the single in-flight body behind the singleflight group.
func (f *Fetcher) fetch() error {
	now := f.now()

	f.mu.Lock()
	if ok, next := f.canRefreshLocked(now); !ok {
		f.mu.Unlock()
		return &DeniedError{NextAllowedAt: next}
	}
	f.inFlight = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.mu.Unlock()
	}()

	quotes, rl, err := f.client.TopQuotes(f.ctx, f.coinLimit)
	if err != nil {
		return f.recordFailure(err, rl)
	}
	if f.ctx.Err() != nil {
		// Torn down while the response was in transit: leave the cache and
		// rate-limit metadata exactly as they were.
		return f.ctx.Err()
	}

	fetchedAt := f.now()
	f.cache.ReplaceAll(quotes, fetchedAt)
	f.persistSnapshot(fetchedAt)

	f.mu.Lock()
	if rl.Present {
		remaining := rl.Remaining
		f.remaining = &remaining
		if !rl.ResetAt.IsZero() {
			f.resetAt = rl.ResetAt
		}
	}
	if fetchedAt.After(f.lastSuccessAt) {
		f.lastSuccessAt = fetchedAt
	}
	f.lastErr = nil
	f.mu.Unlock()

	f.logger.Info().Int("quotes", f.cache.Len()).Msg("quote cache refreshed")

	// Hook runs outside the lock; listeners may call back into Status.
	if f.onRefresh != nil {
		f.onRefresh()
	}
	return nil
}

// recordFailure stores the failure for the status endpoint. The cache and
// lastSuccessAt stay untouched; a rate-limited response additionally
// zeroes the budget so the predicate denies until the reset instant.
func (f *Fetcher) recordFailure(err error, rl marketdata.RateLimit) error {
	if marketdata.IsBenign(err) || f.ctx.Err() != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastErr = err

	if rl.Present {
		remaining := rl.Remaining
		f.remaining = &remaining
		if !rl.ResetAt.IsZero() {
			f.resetAt = rl.ResetAt
		}
	}

	var limited *apperrors.RateLimitError
	if errors.As(err, &limited) {
		zero := 0
		f.remaining = &zero
		if limited.NextAllowedAt.After(f.resetAt) {
			f.resetAt = limited.NextAllowedAt
		}
	}

	f.logger.Warn().Err(err).Msg("quote fetch failed, serving stale cache")
	return err
}

// persistSnapshot mirrors the refreshed cache to the store. Persistence
// failures are logged only; the in-memory cache is already up to date and
// the next refresh will retry the write.
func (f *Fetcher) persistSnapshot(fetchedAt time.Time) {
	if f.store == nil {
		return
	}
	if err := f.store.Save(repository.KeyTopCoins, f.cache.List()); err != nil {
		f.logger.Warn().Err(err).Msg("failed to persist quote snapshot")
		return
	}
	if err := f.store.Save(repository.KeyTopCoinsFetchedAt, fetchedAt); err != nil {
		f.logger.Warn().Err(err).Msg("failed to persist quote snapshot timestamp")
	}
}

// Status reports the fetcher state for the UI.
func (f *Fetcher) Status() Status {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()

	s := Status{
		LastSuccessAt: f.lastSuccessAt,
		InFlight:      f.inFlight,
		Remaining:     f.remaining,
	}
	if f.lastErr != nil {
		s.LastError = f.lastErr.Error()
	}
	if !f.resetAt.IsZero() {
		reset := f.resetAt
		s.ResetAt = &reset
	}

	ok, next := f.canRefreshLocked(now)
	s.CanRefresh = ok
	if !ok && !next.IsZero() {
		s.NextAllowedAt = &next
	}
	return s
}
