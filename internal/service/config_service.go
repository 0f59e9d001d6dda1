package service

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/jmulder/crypto-portfolio-backend/internal/apperrors"
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
	"github.com/jmulder/crypto-portfolio-backend/internal/repository"
	"github.com/jmulder/crypto-portfolio-backend/internal/secrets"
)

// ConfigService owns the user-tunable settings: theme, maximum loss and
// take-profit targets. Every mutation is persisted before the call
// returns, so observers notified afterwards always see durable state.
type ConfigService struct {
	store  *repository.KVRepository
	sealer *secrets.Sealer
	logger zerolog.Logger

	mu       sync.Mutex
	settings model.Settings
}

// NewConfigService loads persisted settings, falling back to defaults for
// anything absent or corrupt. sealer may be nil; the API key is then kept
// in memory only.
func NewConfigService(store *repository.KVRepository, sealer *secrets.Sealer, logger zerolog.Logger) *ConfigService {
	s := &ConfigService{
		store:  store,
		sealer: sealer,
		logger: logger,
		settings: model.Settings{
			Theme:      model.ThemeDark,
			MaxLossPct: 10,
		},
	}

	var theme model.Theme
	if store.Load(repository.KeyTheme, &theme) && theme.Valid() {
		s.settings.Theme = theme
	}
	var maxLoss float64
	if store.Load(repository.KeyMaxLoss, &maxLoss) && maxLoss >= 0 {
		s.settings.MaxLossPct = maxLoss
	}
	var tp model.TakeProfit
	if store.Load(repository.KeyTakeProfit, &tp) {
		s.settings.TakeProfit = tp
	}

	if sealer == nil {
		logger.Info().Msg("no fernet key configured, api key will not be persisted")
	}

	return s
}

// Settings returns a copy of the current settings.
func (s *ConfigService) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetTheme validates and persists the display theme.
func (s *ConfigService) SetTheme(theme model.Theme) error {
	if !theme.Valid() {
		return apperrors.ErrInvalidTheme
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Theme = theme
	return s.store.Save(repository.KeyTheme, theme)
}

// SetMaxLoss validates and persists the maximum-loss percentage.
func (s *ConfigService) SetMaxLoss(pct float64) error {
	if pct < 0 {
		return apperrors.ErrInvalidMaxLoss
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.MaxLossPct = pct
	return s.store.Save(repository.KeyMaxLoss, pct)
}

// SetTakeProfit validates and persists the take-profit configuration.
func (s *ConfigService) SetTakeProfit(tp model.TakeProfit) error {
	if tp.TargetValue < 0 || tp.TargetPct < 0 || tp.EntryValue < 0 {
		return apperrors.ErrInvalidTakeProfit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.TakeProfit = tp
	return s.store.Save(repository.KeyTakeProfit, tp)
}

// StoreAPIKey seals the market-data API key and persists it. Without a
// sealer the key is not written anywhere.
func (s *ConfigService) StoreAPIKey(key string) error {
	if s.sealer == nil {
		return nil
	}

	sealed, err := s.sealer.Seal(key)
	if err != nil {
		return err
	}
	return s.store.Save(repository.KeyAPIKey, sealed)
}

// LoadAPIKey retrieves and unseals the persisted market-data API key,
// empty when absent or unsealing fails.
func (s *ConfigService) LoadAPIKey() string {
	if s.sealer == nil {
		return ""
	}

	var sealed string
	if !s.store.Load(repository.KeyAPIKey, &sealed) {
		return ""
	}

	key, err := s.sealer.Open(sealed)
	if err != nil {
		s.logger.Warn().Err(err).Msg("stored api key could not be unsealed")
		return ""
	}
	return key
}
