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

// TestSettingsHandler_Get tests the GET /api/config endpoint.
func TestSettingsHandler_Get(t *testing.T) {
	t.Run("GET /api/config returns the defaults", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewSettingsHandler(session)

		req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
		w := httptest.NewRecorder()

		// Execute
		handler.Get(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var settings model.Settings
		if err := json.NewDecoder(w.Body).Decode(&settings); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if settings.Theme != model.ThemeDark {
			t.Errorf("Theme = %s, want %s", settings.Theme, model.ThemeDark)
		}
		if settings.MaxLossPct != 10 {
			t.Errorf("MaxLossPct = %v, want 10", settings.MaxLossPct)
		}
	})
}

// TestSettingsHandler_UpdateTheme tests the PUT /api/config/theme endpoint.
func TestSettingsHandler_UpdateTheme(t *testing.T) {
	t.Run("valid theme is applied and echoed back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewSettingsHandler(session)

		req := httptest.NewRequest(http.MethodPut, "/api/config/theme", strings.NewReader(`{"theme": "light"}`))
		w := httptest.NewRecorder()

		handler.UpdateTheme(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var settings model.Settings
		if err := json.NewDecoder(w.Body).Decode(&settings); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if settings.Theme != model.ThemeLight {
			t.Errorf("Theme = %s, want %s", settings.Theme, model.ThemeLight)
		}
	})

	t.Run("unknown theme returns 400 and keeps the old value", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewSettingsHandler(session)

		req := httptest.NewRequest(http.MethodPut, "/api/config/theme", strings.NewReader(`{"theme": "neon"}`))
		w := httptest.NewRecorder()

		handler.UpdateTheme(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
		if session.Settings().Theme != model.ThemeDark {
			t.Errorf("Theme changed to %s after rejected update", session.Settings().Theme)
		}
	})
}

// TestSettingsHandler_UpdateMaxLoss tests the PUT /api/config/maxloss endpoint.
func TestSettingsHandler_UpdateMaxLoss(t *testing.T) {
	t.Run("valid percentage is applied", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewSettingsHandler(session)

		req := httptest.NewRequest(http.MethodPut, "/api/config/maxloss", strings.NewReader(`{"maxLossPct": 25}`))
		w := httptest.NewRecorder()

		handler.UpdateMaxLoss(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if session.Settings().MaxLossPct != 25 {
			t.Errorf("MaxLossPct = %v, want 25", session.Settings().MaxLossPct)
		}
	})

	t.Run("negative percentage returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewSettingsHandler(session)

		req := httptest.NewRequest(http.MethodPut, "/api/config/maxloss", strings.NewReader(`{"maxLossPct": -5}`))
		w := httptest.NewRecorder()

		handler.UpdateMaxLoss(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestSettingsHandler_UpdateTakeProfit tests the PUT /api/config/takeprofit endpoint.
func TestSettingsHandler_UpdateTakeProfit(t *testing.T) {
	t.Run("full take-profit target round trips", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewSettingsHandler(session)

		body := `{
			"targetValue": 120000,
			"targetPct": 20,
			"entryValue": 100000,
			"entryDate": "2024-06-01T00:00:00Z"
		}`
		req := httptest.NewRequest(http.MethodPut, "/api/config/takeprofit", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.UpdateTakeProfit(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var settings model.Settings
		if err := json.NewDecoder(w.Body).Decode(&settings); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if settings.TakeProfit.TargetValue != 120000 || settings.TakeProfit.EntryValue != 100000 {
			t.Errorf("TakeProfit = %+v", settings.TakeProfit)
		}
		if settings.TakeProfit.EntryDate == nil {
			t.Error("EntryDate not stored")
		}
	})

	t.Run("unparseable entry date returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		session := testutil.NewTestSession(t, db, nil)
		handler := handlers.NewSettingsHandler(session)

		body := `{"targetValue": 120000, "entryDate": "June 1st"}`
		req := httptest.NewRequest(http.MethodPut, "/api/config/takeprofit", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.UpdateTakeProfit(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}
