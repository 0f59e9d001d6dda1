package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmulder/crypto-portfolio-backend/internal/model"
)

// Tests live inside the package so the clock can be pinned.

func newDetailedAt(now time.Time) *DetailedCache {
	c := NewDetailedCache(nil, zerolog.Nop())
	c.now = func() time.Time { return now }
	return c
}

func TestDetailedCache_PutAndGet(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newDetailedAt(now)

	c.Put("bitcoin", model.DetailedAsset{
		CirculatingSupply: model.Float64Ptr(19_700_000),
		MaxSupply:         model.Float64Ptr(21_000_000),
	})

	rec, ok := c.Get("bitcoin")
	if !ok {
		t.Fatal("Get(bitcoin) not found after Put")
	}
	if rec.Identifier != "bitcoin" {
		t.Errorf("Identifier = %q, want bitcoin", rec.Identifier)
	}
	if rec.LastUpdated != now.UnixMilli() {
		t.Errorf("LastUpdated = %d, want %d", rec.LastUpdated, now.UnixMilli())
	}

	if _, ok := c.Get("ethereum"); ok {
		t.Error("Get(ethereum) unexpectedly found")
	}
}

func TestDetailedCache_FreshnessWindow(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newDetailedAt(start)

	c.Put("bitcoin", model.DetailedAsset{})

	t.Run("fresh within 24 hours", func(t *testing.T) {
		c.now = func() time.Time { return start.Add(23 * time.Hour) }
		if _, ok := c.Get("bitcoin"); !ok {
			t.Error("record within the freshness window reported missing")
		}
	})

	t.Run("missing after 24 hours", func(t *testing.T) {
		c.now = func() time.Time { return start.Add(25 * time.Hour) }
		if _, ok := c.Get("bitcoin"); ok {
			t.Error("stale record still served")
		}
	})

	t.Run("a fresh Put revives the identifier", func(t *testing.T) {
		c.now = func() time.Time { return start.Add(25 * time.Hour) }
		c.Put("bitcoin", model.DetailedAsset{})
		if _, ok := c.Get("bitcoin"); !ok {
			t.Error("re-put record reported missing")
		}
	})
}

func TestDetailedCache_EvictsLeastRecentlyUpdated(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	c := newDetailedAt(start)

	// Fill to the bound with strictly increasing timestamps.
	for i := 0; i < maxDetailedEntries; i++ {
		c.now = func() time.Time { return start.Add(time.Duration(i) * time.Minute) }
		c.Put(fmt.Sprintf("asset-%02d", i), model.DetailedAsset{})
	}

	// One more evicts asset-00, the oldest.
	c.now = func() time.Time { return start.Add(time.Hour) }
	c.Put("newcomer", model.DetailedAsset{})

	if len(c.entries) != maxDetailedEntries {
		t.Fatalf("entries = %d, want %d", len(c.entries), maxDetailedEntries)
	}
	if _, ok := c.entries["asset-00"]; ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := c.entries["newcomer"]; !ok {
		t.Error("new entry missing after eviction")
	}
	if _, ok := c.entries["asset-01"]; !ok {
		t.Error("second-oldest entry evicted too eagerly")
	}
}
