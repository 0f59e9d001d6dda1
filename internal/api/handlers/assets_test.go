package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmulder/crypto-portfolio-backend/internal/api/handlers"
	"github.com/jmulder/crypto-portfolio-backend/internal/apperrors"
	"github.com/jmulder/crypto-portfolio-backend/internal/cache"
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
	"github.com/jmulder/crypto-portfolio-backend/internal/service"
	"github.com/jmulder/crypto-portfolio-backend/internal/testutil"
)

func newAssetsHandler(client *testutil.MockMarketClient) *handlers.AssetsHandler {
	detailed := cache.NewDetailedCache(nil, testutil.Logger())
	quotes := cache.NewQuoteCache()
	return handlers.NewAssetsHandler(service.NewRiskService(client, detailed, quotes, testutil.Logger()))
}

// TestAssetsHandler_Risk tests the GET /api/assets/{identifier}/risk endpoint.
//
// WHY: The risk badge is rendered on every asset detail page. The endpoint
// must translate upstream failure modes into statuses the frontend can act
// on instead of leaking raw transport errors.
func TestAssetsHandler_Risk(t *testing.T) {
	t.Run("returns the classified profile", func(t *testing.T) {
		// Setup
		detail := model.DetailedAsset{
			Identifier:            "bitcoin",
			CirculatingSupply:     model.Float64Ptr(8e8),
			MaxSupply:             model.Float64Ptr(1e9),
			MarketCap:             model.Float64Ptr(8e8),
			FullyDilutedValuation: model.Float64Ptr(1e9),
			Volume24h:             model.Float64Ptr(2e8),
			LastUpdated:           time.Now().UnixMilli(),
		}
		client := testutil.NewMockMarketClient().WithDetail(detail)
		handler := newAssetsHandler(client)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/assets/bitcoin/risk",
			map[string]string{"identifier": "bitcoin"},
		)
		w := httptest.NewRecorder()

		// Execute
		handler.Risk(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var profile service.RiskProfile
		if err := json.NewDecoder(w.Body).Decode(&profile); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if profile.Record.Composite.Level != "Low" {
			t.Errorf("Composite level = %s, want Low", profile.Record.Composite.Level)
		}
	})

	t.Run("upstream rate limit returns 429", func(t *testing.T) {
		client := testutil.NewMockMarketClient().WithError(&apperrors.RateLimitError{
			NextAllowedAt: time.Now().Add(time.Minute),
		})
		handler := newAssetsHandler(client)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/assets/bitcoin/risk",
			map[string]string{"identifier": "bitcoin"},
		)
		w := httptest.NewRecorder()

		handler.Risk(w, req)

		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("Expected status 429, got %d", w.Code)
		}
		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if _, ok := body["next_allowed_at"]; !ok {
			t.Error("Response is missing next_allowed_at")
		}
	})

	t.Run("upstream transport failure returns 502", func(t *testing.T) {
		client := testutil.NewMockMarketClient().WithError(apperrors.ErrTransport)
		handler := newAssetsHandler(client)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/assets/bitcoin/risk",
			map[string]string{"identifier": "bitcoin"},
		)
		w := httptest.NewRecorder()

		handler.Risk(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected status 502, got %d", w.Code)
		}
	})
}
