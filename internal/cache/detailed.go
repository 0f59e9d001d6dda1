package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmulder/crypto-portfolio-backend/internal/model"
	"github.com/jmulder/crypto-portfolio-backend/internal/repository"
)

// Bounds taken over from the dashboard this replaces: at most 50 detailed
// records are kept, the least-recently-updated evicted first, and a record
// older than 24 hours is treated as absent.
const (
	maxDetailedEntries = 50
	detailedTTL        = 24 * time.Hour
)

// DetailedCache holds per-asset supply and volume records for the risk
// classifier. Entries are mirrored to the persistence store under
// cache.detailed.<identifier> so they survive restarts.
type DetailedCache struct {
	store  *repository.KVRepository
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]model.DetailedAsset
}

// NewDetailedCache creates a detailed-record cache. store may be nil, in
// which case entries live in memory only.
func NewDetailedCache(store *repository.KVRepository, logger zerolog.Logger) *DetailedCache {
	return &DetailedCache{
		store:   store,
		logger:  logger,
		now:     time.Now,
		entries: map[string]model.DetailedAsset{},
	}
}

// Put stores a detailed record, stamping LastUpdated with the current time
// when the caller left it unset, and evicts the least-recently-updated
// entry once the cache exceeds its bound.
func (c *DetailedCache) Put(identifier string, rec model.DetailedAsset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec.Identifier = identifier
	if rec.LastUpdated == 0 {
		rec.LastUpdated = c.now().UnixMilli()
	}
	c.entries[identifier] = rec

	for len(c.entries) > maxDetailedEntries {
		oldestID := ""
		oldest := int64(0)
		for id, e := range c.entries {
			if oldestID == "" || e.LastUpdated < oldest {
				oldestID = id
				oldest = e.LastUpdated
			}
		}
		delete(c.entries, oldestID)
		if c.store != nil {
			if err := c.store.Remove(repository.PrefixDetailed + oldestID); err != nil {
				c.logger.Warn().Err(err).Str("identifier", oldestID).Msg("failed to evict persisted detail record")
			}
		}
	}

	if c.store != nil {
		if err := c.store.Save(repository.PrefixDetailed+identifier, rec); err != nil {
			c.logger.Warn().Err(err).Str("identifier", identifier).Msg("failed to persist detail record")
		}
	}
}

// Get returns the detailed record for identifier, missing when the record
// is absent or older than 24 hours.
func (c *DetailedCache) Get(identifier string) (model.DetailedAsset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.entries[identifier]
	if !ok {
		return model.DetailedAsset{}, false
	}

	age := c.now().Sub(time.UnixMilli(rec.LastUpdated))
	if age > detailedTTL {
		return model.DetailedAsset{}, false
	}
	return rec, true
}

// WarmStart rehydrates the in-memory cache from the persistence store.
// Corrupt entries are dropped by the store's own loader; expired entries
// stay on disk until evicted but never surface through Get.
func (c *DetailedCache) WarmStart() {
	if c.store == nil {
		return
	}

	keys, err := c.store.KeysWithPrefix(repository.PrefixDetailed)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to list persisted detail records")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		var rec model.DetailedAsset
		if !c.store.Load(key, &rec) {
			continue
		}
		id := key[len(repository.PrefixDetailed):]
		rec.Identifier = id
		c.entries[id] = rec
	}
}
