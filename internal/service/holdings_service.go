package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmulder/crypto-portfolio-backend/internal/apperrors"
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
	"github.com/jmulder/crypto-portfolio-backend/internal/repository"
)

// HoldingsService owns the list of lots. All mutations go through its
// API, are validated first, and are persisted to the store before the
// call returns. In-memory state proceeds even when the write fails; the
// next mutation rewrites the full list and thereby retries.
type HoldingsService struct {
	store  *repository.KVRepository
	logger zerolog.Logger

	mu        sync.Mutex
	lots      []model.Lot
	nextLotID int64
}

// storedLot is the on-disk shape of a lot. The date travels as a string
// so that a malformed record can be rejected with a diagnostic instead of
// silently zeroing the field.
type storedLot struct {
	ID            int64    `json:"id"`
	Identifier    string   `json:"identifier"`
	Symbol        string   `json:"symbol"`
	DisplayName   string   `json:"display_name"`
	Amount        *float64 `json:"amount"`
	PurchasePrice *float64 `json:"purchase_price"`
	PurchaseDate  string   `json:"purchase_date"`
}

// NewHoldingsService creates the ledger and loads the persisted lots.
// Records with invalid shapes are dropped with a warning; the rest are
// kept.
func NewHoldingsService(store *repository.KVRepository, logger zerolog.Logger) *HoldingsService {
	s := &HoldingsService{
		store:  store,
		logger: logger,
		lots:   []model.Lot{},
	}
	s.load()
	return s
}

func (s *HoldingsService) load() {
	var raw json.RawMessage
	if !s.store.Load(repository.KeyHoldings, &raw) {
		raw = nil
	}

	var stored []storedLot
	if raw != nil {
		if err := json.Unmarshal(raw, &stored); err != nil {
			s.logger.Warn().Err(err).Msg("holdings entry is not a list, starting empty")
			stored = nil
		}
	}

	maxID := int64(0)
	for _, rec := range stored {
		lot, err := rec.validate()
		if err != nil {
			s.logger.Warn().Err(err).Int64("lot_id", rec.ID).Msg("dropping malformed holdings record")
			continue
		}
		s.lots = append(s.lots, lot)
		if lot.ID > maxID {
			maxID = lot.ID
		}
	}

	s.nextLotID = maxID + 1
	var persisted int64
	if s.store.Load(repository.KeyNextLotID, &persisted) && persisted > s.nextLotID {
		s.nextLotID = persisted
	}
}

// validate turns a stored record into a lot, rejecting records with a
// missing amount or purchase price or an unparseable date.
func (r storedLot) validate() (model.Lot, error) {
	if r.Amount == nil || *r.Amount <= 0 {
		return model.Lot{}, apperrors.ErrInvalidAmount
	}
	if r.PurchasePrice == nil || *r.PurchasePrice < 0 {
		return model.Lot{}, apperrors.ErrInvalidPurchasePrice
	}
	date, err := ParseDate(r.PurchaseDate)
	if err != nil {
		return model.Lot{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidPurchaseDate, r.PurchaseDate)
	}
	return model.Lot{
		ID:            r.ID,
		Identifier:    r.Identifier,
		Symbol:        r.Symbol,
		DisplayName:   r.DisplayName,
		Amount:        *r.Amount,
		PurchasePrice: *r.PurchasePrice,
		PurchaseDate:  date,
	}, nil
}

// ParseDate accepts the two date formats the frontend sends: a plain day
// or a full RFC 3339 timestamp. The result is normalized to UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Lots returns a copy of the current lots.
func (s *HoldingsService) Lots() []model.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Lot, len(s.lots))
	copy(out, s.lots)
	return out
}

// AddLot validates and appends a new lot, assigning the next ledger ID.
// IDs are monotonic for the lifetime of the ledger and never reused.
// Returns the assigned ID; a validation failure leaves the ledger
// unchanged.
func (s *HoldingsService) AddLot(lot model.Lot) (int64, error) {
	if err := validateLot(lot); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lot.ID = s.nextLotID
	lot.PurchaseDate = lot.PurchaseDate.UTC()
	s.nextLotID++
	s.lots = append(s.lots, lot)

	return lot.ID, s.persistLocked()
}

// UpdateLot applies a patch to an existing lot. The lot ID itself can
// never change. Patched fields are validated the same way AddLot
// validates them.
func (s *HoldingsService) UpdateLot(lotID int64, patch model.LotPatch) (model.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, l := range s.lots {
		if l.ID == lotID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return model.Lot{}, apperrors.ErrLotNotFound
	}

	updated := s.lots[idx]
	if patch.Identifier != nil {
		updated.Identifier = *patch.Identifier
	}
	if patch.Symbol != nil {
		updated.Symbol = *patch.Symbol
	}
	if patch.DisplayName != nil {
		updated.DisplayName = *patch.DisplayName
	}
	if patch.Amount != nil {
		updated.Amount = *patch.Amount
	}
	if patch.PurchasePrice != nil {
		updated.PurchasePrice = *patch.PurchasePrice
	}
	if patch.PurchaseDate != nil {
		updated.PurchaseDate = patch.PurchaseDate.UTC()
	}

	if err := validateLot(updated); err != nil {
		return model.Lot{}, err
	}

	s.lots[idx] = updated
	return updated, s.persistLocked()
}

// RemoveLot deletes a lot. Removing an absent lot is a no-op.
func (s *HoldingsService) RemoveLot(lotID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.lots {
		if l.ID == lotID {
			s.lots = append(s.lots[:i], s.lots[i+1:]...)
			return s.persistLocked()
		}
	}
	return nil
}

// Clear empties the ledger. The ID counter keeps counting; cleared IDs
// are never handed out again.
func (s *HoldingsService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lots = []model.Lot{}
	return s.persistLocked()
}

func validateLot(lot model.Lot) error {
	if lot.Identifier == "" {
		return apperrors.ErrInvalidIdentifier
	}
	if lot.Amount <= 0 {
		return apperrors.ErrInvalidAmount
	}
	if lot.PurchasePrice < 0 {
		return apperrors.ErrInvalidPurchasePrice
	}
	if lot.PurchaseDate.IsZero() {
		return apperrors.ErrInvalidPurchaseDate
	}
	return nil
}

// persistLocked writes the full lot list and the ID counter. Called with
// the mutex held.
func (s *HoldingsService) persistLocked() error {
	stored := make([]storedLot, len(s.lots))
	for i, l := range s.lots {
		amount, price := l.Amount, l.PurchasePrice
		stored[i] = storedLot{
			ID:            l.ID,
			Identifier:    l.Identifier,
			Symbol:        l.Symbol,
			DisplayName:   l.DisplayName,
			Amount:        &amount,
			PurchasePrice: &price,
			PurchaseDate:  l.PurchaseDate.Format(time.RFC3339),
		}
	}

	if err := s.store.Save(repository.KeyHoldings, stored); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist holdings")
		return err
	}
	if err := s.store.Save(repository.KeyNextLotID, s.nextLotID); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist lot id counter")
		return err
	}
	return nil
}
