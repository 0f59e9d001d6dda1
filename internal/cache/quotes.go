// Package cache holds the in-memory market snapshot: the latest ranked
// quote list and a small bounded cache of detailed per-asset records.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmulder/crypto-portfolio-backend/internal/model"
)

// QuoteCache is the authoritative in-memory snapshot of the latest quote
// list, keyed by canonical asset identifier. ReplaceAll swaps the entire
// snapshot under the write lock, so readers never observe a half-updated
// cache. Iteration order is ascending market-cap rank, ties broken by
// identifier.
type QuoteCache struct {
	mu        sync.RWMutex
	quotes    []model.Quote
	byID      map[string]int
	bySymbol  map[string]int
	fetchedAt time.Time
}

// maxQuoteEntries is the hard cap on cached quotes, matching the
// request-side cap the marketdata client puts on per_page. An upstream
// response longer than this is truncated to the best-ranked entries.
const maxQuoteEntries = 500

// NewQuoteCache creates an empty quote cache.
func NewQuoteCache() *QuoteCache {
	return &QuoteCache{
		byID:     map[string]int{},
		bySymbol: map[string]int{},
	}
}

// ReplaceAll swaps the cached snapshot for the given quote list.
//
// Incoming quotes are de-duplicated by identifier (first occurrence wins).
// Quotes without a reported rank get their position in the incoming list
// (1-based) as rank. The result is sorted ascending by rank, ties broken
// by identifier, truncated to the 500 best-ranked entries, and every
// quote is stamped with fetchedAt.
func (c *QuoteCache) ReplaceAll(quotes []model.Quote, fetchedAt time.Time) {
	deduped := make([]model.Quote, 0, len(quotes))
	seen := make(map[string]struct{}, len(quotes))
	for i, q := range quotes {
		if _, dup := seen[q.Identifier]; dup || q.Identifier == "" {
			continue
		}
		seen[q.Identifier] = struct{}{}

		if q.MarketCapRank <= 0 {
			q.MarketCapRank = i + 1
		}
		q.FetchedAt = fetchedAt
		deduped = append(deduped, q)
	}

	sort.Slice(deduped, func(i, j int) bool {
		if deduped[i].MarketCapRank != deduped[j].MarketCapRank {
			return deduped[i].MarketCapRank < deduped[j].MarketCapRank
		}
		return deduped[i].Identifier < deduped[j].Identifier
	})

	if len(deduped) > maxQuoteEntries {
		deduped = deduped[:maxQuoteEntries]
	}

	byID := make(map[string]int, len(deduped))
	bySymbol := make(map[string]int, len(deduped))
	for i, q := range deduped {
		byID[q.Identifier] = i
		// Lowest-ranked quote wins a contested symbol.
		sym := strings.ToLower(q.Symbol)
		if _, taken := bySymbol[sym]; !taken && sym != "" {
			bySymbol[sym] = i
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes = deduped
	c.byID = byID
	c.bySymbol = bySymbol
	c.fetchedAt = fetchedAt
}

// GetByID returns the quote for the given canonical identifier.
func (c *QuoteCache) GetByID(identifier string) (model.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[identifier]
	if !ok {
		return model.Quote{}, false
	}
	return c.quotes[i], true
}

// GetBySymbol returns the quote matching the given ticker symbol,
// case-insensitively. This is the only permitted fuzzy match; callers must
// try GetByID first.
func (c *QuoteCache) GetBySymbol(symbol string) (model.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.bySymbol[strings.ToLower(symbol)]
	if !ok {
		return model.Quote{}, false
	}
	return c.quotes[i], true
}

// GetByIDs returns the quotes for the given identifiers, in cache order.
// Unknown identifiers are skipped.
func (c *QuoteCache) GetByIDs(identifiers []string) []model.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()

	want := make(map[string]struct{}, len(identifiers))
	for _, id := range identifiers {
		want[id] = struct{}{}
	}

	result := []model.Quote{}
	for _, q := range c.quotes {
		if _, ok := want[q.Identifier]; ok {
			result = append(result, q)
		}
	}
	return result
}

// List returns a copy of the cached quotes in rank order.
func (c *QuoteCache) List() []model.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Quote, len(c.quotes))
	copy(out, c.quotes)
	return out
}

// Len returns the number of cached quotes.
func (c *QuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quotes)
}

// FetchedAt returns the staleness timestamp of the current snapshot, zero
// when the cache has never been populated.
func (c *QuoteCache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}
