package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmulder/crypto-portfolio-backend/internal/api/handlers"
	"github.com/jmulder/crypto-portfolio-backend/internal/cache"
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
	"github.com/jmulder/crypto-portfolio-backend/internal/testutil"
)

// pricedCache builds a quote cache where bitcoin trades at 50000 with a
// +2% day and ethereum at 2500 with a -1% day.
func pricedCache() *cache.QuoteCache {
	quotes := cache.NewQuoteCache()
	quotes.ReplaceAll([]model.Quote{
		testutil.NewQuote("bitcoin").WithSymbol("BTC").WithRank(1).WithPrice(50000).WithChange24h(2).Build(),
		testutil.NewQuote("ethereum").WithSymbol("ETH").WithRank(2).WithPrice(2500).WithChange24h(-1).Build(),
	}, time.Now())
	return quotes
}

// TestPortfolioHandler_Summary tests the GET /api/portfolio/summary endpoint.
//
// WHY: The summary is the dashboard's single data source. Totals must
// reflect the latest quotes and the payload must be a complete snapshot,
// not a partial view.
func TestPortfolioHandler_Summary(t *testing.T) {
	t.Run("GET /api/portfolio/summary returns valued totals", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, pricedCache())
		handler := handlers.NewPortfolioHandler(session)

		session.AddLot(testutil.NewLot().WithIdentifier("bitcoin").WithAmount(1).WithPurchasePrice(20000).Build())
		session.AddLot(testutil.NewLot().WithIdentifier("ethereum").WithAmount(10).WithPurchasePrice(2000).Build())

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/summary", nil)
		w := httptest.NewRecorder()

		// Execute
		handler.Summary(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var snap model.Snapshot
		if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if snap.TotalValue != 75000 {
			t.Errorf("TotalValue = %v, want 75000", snap.TotalValue)
		}
		if snap.TotalCost != 40000 {
			t.Errorf("TotalCost = %v, want 40000", snap.TotalCost)
		}
		if snap.AbsoluteProfit != 35000 {
			t.Errorf("AbsoluteProfit = %v, want 35000", snap.AbsoluteProfit)
		}
		if len(snap.Lots) != 2 {
			t.Errorf("Expected 2 valued lots, got %d", len(snap.Lots))
		}
	})

	t.Run("empty portfolio returns zeroed snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewPortfolioHandler(session)

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/summary", nil)
		w := httptest.NewRecorder()

		handler.Summary(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var snap model.Snapshot
		if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if snap.TotalValue != 0 || snap.TotalCost != 0 {
			t.Errorf("Expected zero totals, got value=%v cost=%v", snap.TotalValue, snap.TotalCost)
		}
	})
}

// TestPortfolioHandler_Allocation tests the GET /api/portfolio/allocation endpoint.
func TestPortfolioHandler_Allocation(t *testing.T) {
	t.Run("entries come back ordered by descending value", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, pricedCache())
		handler := handlers.NewPortfolioHandler(session)

		session.AddLot(testutil.NewLot().WithIdentifier("ethereum").WithAmount(10).WithPurchasePrice(2000).Build())
		session.AddLot(testutil.NewLot().WithIdentifier("bitcoin").WithAmount(1).WithPurchasePrice(20000).Build())

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/allocation", nil)
		w := httptest.NewRecorder()

		handler.Allocation(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var entries []model.AllocationEntry
		if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(entries))
		}
		// bitcoin is worth 50000, ethereum 25000.
		if entries[0].Identifier != "bitcoin" || entries[1].Identifier != "ethereum" {
			t.Errorf("Order = [%s, %s], want [bitcoin, ethereum]", entries[0].Identifier, entries[1].Identifier)
		}

		sum := entries[0].ShareFraction + entries[1].ShareFraction
		if sum < 0.999999 || sum > 1.000001 {
			t.Errorf("Share fractions sum to %v, want 1", sum)
		}
	})
}

// TestPortfolioHandler_Performance tests the GET /api/portfolio/performance endpoint.
func TestPortfolioHandler_Performance(t *testing.T) {
	t.Run("returns per-horizon percentages rounded to two decimals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		quotes := cache.NewQuoteCache()
		quotes.ReplaceAll([]model.Quote{
			testutil.NewQuote("bitcoin").WithPrice(30000).WithChange24h(1.23456).Build(),
		}, time.Now())
		session := testutil.NewTestSession(t, db, quotes)
		handler := handlers.NewPortfolioHandler(session)

		session.AddLot(testutil.NewLot().WithIdentifier("bitcoin").WithAmount(1).WithPurchasePrice(20000).Build())

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/performance", nil)
		w := httptest.NewRecorder()

		handler.Performance(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var perf handlers.PerformanceResponse
		if err := json.NewDecoder(w.Body).Decode(&perf); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if perf.Daily != 1.23 {
			t.Errorf("Daily = %v, want 1.23", perf.Daily)
		}
		// 30000 against a 20000 cost basis.
		if perf.Overall != 50 {
			t.Errorf("Overall = %v, want 50", perf.Overall)
		}
	})
}

// TestPortfolioHandler_StopLoss tests the GET /api/portfolio/stoploss endpoint.
func TestPortfolioHandler_StopLoss(t *testing.T) {
	t.Run("reflects the configured max loss", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, pricedCache())
		handler := handlers.NewPortfolioHandler(session)

		session.AddLot(testutil.NewLot().WithIdentifier("bitcoin").WithAmount(1).WithPurchasePrice(20000).Build())
		if err := session.SetMaxLoss(10); err != nil {
			t.Fatalf("SetMaxLoss failed: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/stoploss", nil)
		w := httptest.NewRecorder()

		handler.StopLoss(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var sl model.StopLoss
		if err := json.NewDecoder(w.Body).Decode(&sl); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if sl.MaxLossPct != 10 {
			t.Errorf("MaxLossPct = %v, want 10", sl.MaxLossPct)
		}
		if sl.EntryValue != 50000 {
			t.Errorf("EntryValue = %v, want 50000", sl.EntryValue)
		}
		if sl.ProtectedValue != 45000 {
			t.Errorf("ProtectedValue = %v, want 45000", sl.ProtectedValue)
		}
	})
}
