package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jmulder/crypto-portfolio-backend/internal/cache"
	"github.com/jmulder/crypto-portfolio-backend/internal/marketdata"
	"github.com/jmulder/crypto-portfolio-backend/internal/risk"
)

// RiskProfile pairs the tokenomics classification with the coarse
// rank-based badge for one asset.
type RiskProfile struct {
	Record     risk.Record     `json:"record"`
	RankRating risk.RankRating `json:"rank_rating"`
}

// RiskService resolves an asset's detailed supply figures, through the
// bounded detail cache when fresh enough, and classifies them. The
// classification itself is pure; all I/O lives here.
type RiskService struct {
	client   marketdata.Client
	detailed *cache.DetailedCache
	quotes   *cache.QuoteCache
	logger   zerolog.Logger
}

// NewRiskService creates a new RiskService.
func NewRiskService(client marketdata.Client, detailed *cache.DetailedCache, quotes *cache.QuoteCache, logger zerolog.Logger) *RiskService {
	return &RiskService{
		client:   client,
		detailed: detailed,
		quotes:   quotes,
		logger:   logger,
	}
}

// GetRiskProfile classifies the asset with the given identifier. A cached
// detail record younger than 24 hours short-circuits the upstream call;
// upstream failures (including rate limiting) propagate to the caller,
// who decides how to surface them.
func (s *RiskService) GetRiskProfile(ctx context.Context, identifier string) (RiskProfile, error) {
	detail, ok := s.detailed.Get(identifier)
	if !ok {
		fetched, err := s.client.AssetDetail(ctx, identifier)
		if err != nil {
			return RiskProfile{}, err
		}
		s.detailed.Put(identifier, fetched)
		detail = fetched
	}

	profile := RiskProfile{
		Record:     risk.Classify(detail),
		RankRating: risk.RateByRank(0),
	}
	if q, found := s.quotes.GetByID(identifier); found {
		profile.RankRating = risk.RateByRank(q.MarketCapRank)
	}
	return profile, nil
}
