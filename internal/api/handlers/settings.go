package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmulder/crypto-portfolio-backend/internal/api/request"
	"github.com/jmulder/crypto-portfolio-backend/internal/api/response"
	"github.com/jmulder/crypto-portfolio-backend/internal/apperrors"
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
	"github.com/jmulder/crypto-portfolio-backend/internal/service"
)

// SettingsHandler serves the persisted dashboard configuration.
type SettingsHandler struct {
	session *service.PortfolioSession
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(session *service.PortfolioSession) *SettingsHandler {
	return &SettingsHandler{session: session}
}

// Get returns the current settings.
//
// Endpoint: GET /api/config
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.session.Settings())
}

// UpdateTheme sets the UI theme.
//
// Endpoint: PUT /api/config/theme
func (h *SettingsHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.session.SetTheme(model.Theme(req.Theme)); err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, h.session.Settings())
}

// UpdateMaxLoss sets the maximum acceptable loss percentage used by the
// stop-loss calculation.
//
// Endpoint: PUT /api/config/maxloss
func (h *SettingsHandler) UpdateMaxLoss(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateMaxLossRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.session.SetMaxLoss(req.MaxLossPct); err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, h.session.Settings())
}

// UpdateTakeProfit sets the take-profit target. An omitted entry date
// means the target tracks the portfolio value at the time of setting.
//
// Endpoint: PUT /api/config/takeprofit
func (h *SettingsHandler) UpdateTakeProfit(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateTakeProfitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tp := model.TakeProfit{
		TargetValue: req.TargetValue,
		TargetPct:   req.TargetPct,
		EntryValue:  req.EntryValue,
	}
	if req.EntryDate != nil {
		parsed, err := time.Parse(time.RFC3339, *req.EntryDate)
		if err != nil {
			respondServiceError(w, apperrors.ErrInvalidTakeProfit)
			return
		}
		tp.EntryDate = &parsed
	}

	if err := h.session.SetTakeProfit(tp); err != nil {
		respondServiceError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, h.session.Settings())
}
