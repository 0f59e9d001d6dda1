package testutil

import (
	"context"
	"sync"

	"github.com/jmulder/crypto-portfolio-backend/internal/marketdata"
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
)

// MockMarketClient is a mock implementation of marketdata.Client for
// testing. It returns predefined data instead of making API calls and
// counts how often each method is invoked.
type MockMarketClient struct {
	mu sync.Mutex

	// MockQuotes is returned from TopQuotes.
	MockQuotes []model.Quote
	// MockDetail is returned from AssetDetail.
	MockDetail model.DetailedAsset
	// MockRateLimit is the rate-limit metadata returned alongside quotes.
	MockRateLimit marketdata.RateLimit
	// MockError is returned from both query methods when set.
	MockError error

	// TopQuotesCalls and AssetDetailCalls track invocation counts.
	TopQuotesCalls   int
	AssetDetailCalls int
}

// NewMockMarketClient creates a mock returning five ranked quotes.
func NewMockMarketClient() *MockMarketClient {
	return &MockMarketClient{
		MockQuotes: CreateQuotes(5),
	}
}

// TopQuotes returns the configured quotes, rate limit and error.
func (m *MockMarketClient) TopQuotes(_ context.Context, _ int) ([]model.Quote, marketdata.RateLimit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TopQuotesCalls++
	if m.MockError != nil {
		return nil, m.MockRateLimit, m.MockError
	}
	return m.MockQuotes, m.MockRateLimit, nil
}

// AssetDetail returns the configured detail and error.
func (m *MockMarketClient) AssetDetail(_ context.Context, _ string) (model.DetailedAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AssetDetailCalls++
	if m.MockError != nil {
		return model.DetailedAsset{}, m.MockError
	}
	return m.MockDetail, nil
}

// WithQuotes configures the quote list.
func (m *MockMarketClient) WithQuotes(quotes []model.Quote) *MockMarketClient {
	m.MockQuotes = quotes
	return m
}

// WithDetail configures the asset detail.
func (m *MockMarketClient) WithDetail(detail model.DetailedAsset) *MockMarketClient {
	m.MockDetail = detail
	return m
}

// WithError configures the mock to fail with err.
func (m *MockMarketClient) WithError(err error) *MockMarketClient {
	m.MockError = err
	return m
}

// WithRateLimit configures the rate-limit metadata.
func (m *MockMarketClient) WithRateLimit(rl marketdata.RateLimit) *MockMarketClient {
	m.MockRateLimit = rl
	return m
}

// Calls returns the TopQuotes invocation count.
func (m *MockMarketClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.TopQuotesCalls
}
