package testutil

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jmulder/crypto-portfolio-backend/internal/cache"
	"github.com/jmulder/crypto-portfolio-backend/internal/repository"
	"github.com/jmulder/crypto-portfolio-backend/internal/service"
)

// Logger returns a silenced logger for tests.
func Logger() zerolog.Logger {
	return zerolog.Nop()
}

func NewTestKVRepository(t *testing.T, db *sql.DB) *repository.KVRepository {
	t.Helper()

	return repository.NewKVRepository(db, Logger())
}

func NewTestHoldingsService(t *testing.T, db *sql.DB) *service.HoldingsService {
	t.Helper()

	return service.NewHoldingsService(NewTestKVRepository(t, db), Logger())
}

func NewTestConfigService(t *testing.T, db *sql.DB) *service.ConfigService {
	t.Helper()

	return service.NewConfigService(NewTestKVRepository(t, db), nil, Logger())
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// NewTestSession wires a session over fresh services and the given quote
// cache. Pass nil to get an empty cache.
func NewTestSession(t *testing.T, db *sql.DB, quotes *cache.QuoteCache) *service.PortfolioSession {
	t.Helper()

	if quotes == nil {
		quotes = cache.NewQuoteCache()
	}

	holdings := NewTestHoldingsService(t, db)
	config := NewTestConfigService(t, db)
	return service.NewPortfolioSession(holdings, config, quotes, Logger())
}
