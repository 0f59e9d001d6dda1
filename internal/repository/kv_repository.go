package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jmulder/crypto-portfolio-backend/internal/apperrors"
)

// Well-known store keys. The store is schemaless otherwise; these constants
// are the exhaustive set of keys the application writes.
const (
	KeyHoldings          = "holdings"
	KeyNextLotID         = "holdings.nextLotId"
	KeyTheme             = "config.theme"
	KeyMaxLoss           = "config.maxLoss"
	KeyTakeProfit        = "config.takeProfit"
	KeyAPIKey            = "config.apiKey"
	KeyTopCoins          = "cache.topCoins"
	KeyTopCoinsFetchedAt = "cache.topCoinsFetchedAt"
	PrefixDetailed       = "cache.detailed."
)

// KVRepository provides durable JSON storage under stable string keys,
// backed by the kv_store table. Values round-trip through encoding/json,
// so embedded time.Time fields serialize as RFC 3339 strings and rehydrate
// on load.
type KVRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewKVRepository creates a new KVRepository with the provided database connection.
func NewKVRepository(db *sql.DB, logger zerolog.Logger) *KVRepository {
	return &KVRepository{db: db, logger: logger}
}

// Load reads the value stored under key into dst and reports whether a
// usable value was found. Absent keys, query failures and corrupt entries
// all report false; failures are logged, never propagated, so callers fall
// back to their defaults.
func (r *KVRepository) Load(key string, dst any) bool {
	var raw string
	err := r.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("kv load failed")
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("kv entry corrupt, using default")
		return false
	}

	return true
}

// Save stores v under key as JSON. The write is a single upsert statement,
// so a failure leaves either the previous value or the new one, never a
// half-written entry.
func (r *KVRepository) Save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: failed to encode value for key %s: %v", apperrors.ErrPersistence, key, err)
	}

	_, err = r.db.Exec(`
          INSERT INTO kv_store (key, value, updated_at)
          VALUES (?, ?, CURRENT_TIMESTAMP)
          ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
      `, key, string(raw))
	if err != nil {
		return fmt.Errorf("%w: failed to write key %s: %v", apperrors.ErrPersistence, key, err)
	}

	return nil
}

// Remove deletes the entry stored under key. Removing an absent key is not
// an error.
func (r *KVRepository) Remove(key string) error {
	if _, err := r.db.Exec("DELETE FROM kv_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: failed to remove key %s: %v", apperrors.ErrPersistence, key, err)
	}
	return nil
}

// KeysWithPrefix returns all stored keys that start with prefix, sorted
// ascending. Returns an empty slice when nothing matches.
func (r *KVRepository) KeysWithPrefix(prefix string) ([]string, error) {
	rows, err := r.db.Query("SELECT key FROM kv_store WHERE key LIKE ? || '%' ORDER BY key", prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query kv_store keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan kv_store key: %w", err)
		}
		keys = append(keys, k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating kv_store keys: %w", err)
	}

	return keys, nil
}
