package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmulder/crypto-portfolio-backend/internal/api/handlers"
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
	"github.com/jmulder/crypto-portfolio-backend/internal/testutil"
)

// TestHoldingsHandler_Create tests the POST /api/holdings endpoint.
//
// WHY: This is how every lot enters the system. The frontend depends on
// the 201 body carrying the assigned ID and on validation failures coming
// back as 400 rather than corrupting the ledger.
func TestHoldingsHandler_Create(t *testing.T) {
	t.Run("POST /api/holdings returns 201 with the assigned id", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewHoldingsHandler(session)

		body := `{
			"identifier": "bitcoin",
			"symbol": "BTC",
			"displayName": "Bitcoin",
			"amount": 0.5,
			"purchasePrice": 42000,
			"purchaseDate": "2024-01-15"
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/holdings", strings.NewReader(body))
		w := httptest.NewRecorder()

		// Execute
		handler.Create(w, req)

		// Assert
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}

		var lot model.Lot
		if err := json.NewDecoder(w.Body).Decode(&lot); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if lot.ID != 1 {
			t.Errorf("Lot ID = %d, want 1", lot.ID)
		}
		if lot.Identifier != "bitcoin" || lot.Amount != 0.5 {
			t.Errorf("Stored lot = %+v", lot)
		}

		if len(session.Lots()) != 1 {
			t.Errorf("Ledger has %d lots, want 1", len(session.Lots()))
		}
	})

	t.Run("invalid amount returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewHoldingsHandler(session)

		body := `{"identifier": "bitcoin", "amount": -1, "purchasePrice": 100, "purchaseDate": "2024-01-15"}`
		req := httptest.NewRequest(http.MethodPost, "/api/holdings", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
		if len(session.Lots()) != 0 {
			t.Error("Invalid lot reached the ledger")
		}
	})

	t.Run("unparseable date returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewHoldingsHandler(session)

		body := `{"identifier": "bitcoin", "amount": 1, "purchasePrice": 100, "purchaseDate": "15/01/2024"}`
		req := httptest.NewRequest(http.MethodPost, "/api/holdings", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewHoldingsHandler(session)

		req := httptest.NewRequest(http.MethodPost, "/api/holdings", strings.NewReader("{broken"))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestHoldingsHandler_List tests the GET /api/holdings endpoint.
func TestHoldingsHandler_List(t *testing.T) {
	t.Run("GET /api/holdings returns 200 with empty array", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewHoldingsHandler(session)

		req := httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
		w := httptest.NewRecorder()

		handler.List(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if contentType := w.Header().Get("Content-Type"); contentType != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
		}

		var lots []model.Lot
		if err := json.NewDecoder(w.Body).Decode(&lots); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(lots) != 0 {
			t.Errorf("Expected empty array, got %d items", len(lots))
		}
	})

	t.Run("GET /api/holdings returns all lots", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewHoldingsHandler(session)

		session.AddLot(testutil.NewLot().Build())
		session.AddLot(testutil.NewLot().WithIdentifier("ethereum").Build())

		req := httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
		w := httptest.NewRecorder()

		handler.List(w, req)

		var lots []model.Lot
		if err := json.NewDecoder(w.Body).Decode(&lots); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(lots) != 2 {
			t.Errorf("Expected 2 lots, got %d", len(lots))
		}
	})
}

// TestHoldingsHandler_Update tests the PUT /api/holdings/{lotID} endpoint.
func TestHoldingsHandler_Update(t *testing.T) {
	t.Run("patches the lot and returns it", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewHoldingsHandler(session)

		session.AddLot(testutil.NewLot().WithAmount(1).Build())

		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPut,
			"/api/holdings/1",
			`{"amount": 3}`,
			map[string]string{"lotID": "1"},
		)
		w := httptest.NewRecorder()

		handler.Update(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var lot model.Lot
		if err := json.NewDecoder(w.Body).Decode(&lot); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if lot.Amount != 3 {
			t.Errorf("Amount = %v, want 3", lot.Amount)
		}
	})

	t.Run("unknown lot returns 404", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewHoldingsHandler(session)

		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPut,
			"/api/holdings/99",
			`{"amount": 2}`,
			map[string]string{"lotID": "99"},
		)
		w := httptest.NewRecorder()

		handler.Update(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("non-numeric lot id returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewHoldingsHandler(session)

		req := testutil.NewRequestWithURLParams(http.MethodPut, "/api/holdings/abc", map[string]string{"lotID": "abc"})
		w := httptest.NewRecorder()

		handler.Update(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestHoldingsHandler_Delete tests the DELETE endpoints.
func TestHoldingsHandler_Delete(t *testing.T) {
	t.Run("DELETE /api/holdings/{lotID} returns 204 and is idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewHoldingsHandler(session)

		session.AddLot(testutil.NewLot().Build())

		for i := 0; i < 2; i++ {
			req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/holdings/1", map[string]string{"lotID": "1"})
			w := httptest.NewRecorder()

			handler.Delete(w, req)

			if w.Code != http.StatusNoContent {
				t.Errorf("Attempt %d: expected status 204, got %d", i+1, w.Code)
			}
		}

		if len(session.Lots()) != 0 {
			t.Errorf("Ledger has %d lots after delete, want 0", len(session.Lots()))
		}
	})

	t.Run("DELETE /api/holdings clears the ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewHoldingsHandler(session)

		session.AddLot(testutil.NewLot().Build())
		session.AddLot(testutil.NewLot().WithIdentifier("ethereum").Build())

		req := httptest.NewRequest(http.MethodDelete, "/api/holdings", nil)
		w := httptest.NewRecorder()

		handler.Clear(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", w.Code)
		}
		if len(session.Lots()) != 0 {
			t.Errorf("Ledger has %d lots after clear, want 0", len(session.Lots()))
		}
	})
}
