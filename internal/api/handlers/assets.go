package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmulder/crypto-portfolio-backend/internal/api/response"
	"github.com/jmulder/crypto-portfolio-backend/internal/apperrors"
	"github.com/jmulder/crypto-portfolio-backend/internal/service"
)

// AssetsHandler serves per-asset detail lookups.
type AssetsHandler struct {
	risk *service.RiskService
}

// NewAssetsHandler creates a new AssetsHandler.
func NewAssetsHandler(risk *service.RiskService) *AssetsHandler {
	return &AssetsHandler{risk: risk}
}

// Risk returns the tokenomics classification for a single asset. Detail
// data comes from the bounded detail cache where possible, falling back
// to a live fetch.
//
// Endpoint: GET /api/assets/{identifier}/risk
// Errors: 429 when the upstream is rate limiting, 502 when it is down
func (h *AssetsHandler) Risk(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	profile, err := h.risk.GetRiskProfile(r.Context(), identifier)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRateLimited):
			respondRetryLater(w, err)
		case errors.Is(err, apperrors.ErrTransport), errors.Is(err, apperrors.ErrDecode):
			response.RespondError(w, http.StatusBadGateway, "asset detail unavailable", err.Error())
		default:
			respondServiceError(w, err)
		}
		return
	}
	response.RespondJSON(w, http.StatusOK, profile)
}
