package handlers

import (
	"net/http"

	"github.com/jmulder/crypto-portfolio-backend/internal/api/response"
	"github.com/jmulder/crypto-portfolio-backend/internal/service"
	"github.com/jmulder/crypto-portfolio-backend/internal/valuation"
)

// PortfolioHandler serves the derived portfolio views.
type PortfolioHandler struct {
	session *service.PortfolioSession
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(session *service.PortfolioSession) *PortfolioHandler {
	return &PortfolioHandler{session: session}
}

// PerformanceResponse carries the per-horizon returns rounded for
// display. The snapshot itself keeps the raw values.
type PerformanceResponse struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Overall float64 `json:"overall"`
}

// Summary returns the full derived snapshot.
//
// Endpoint: GET /api/portfolio/summary
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Allocation returns just the allocation slice of the snapshot.
//
// Endpoint: GET /api/portfolio/allocation
func (h *PortfolioHandler) Allocation(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.session.Snapshot().Allocation)
}

// Performance returns the per-horizon returns, rounded to two decimals.
//
// Endpoint: GET /api/portfolio/performance
func (h *PortfolioHandler) Performance(w http.ResponseWriter, r *http.Request) {
	p := h.session.Snapshot().Performance
	response.RespondJSON(w, http.StatusOK, PerformanceResponse{
		Daily:   valuation.Rounded2(p.Daily),
		Weekly:  valuation.Rounded2(p.Weekly),
		Monthly: valuation.Rounded2(p.Monthly),
		Overall: valuation.Rounded2(p.Overall),
	})
}

// StopLoss returns the stop-loss / take-profit block of the snapshot.
//
// Endpoint: GET /api/portfolio/stoploss
func (h *PortfolioHandler) StopLoss(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.session.Snapshot().StopLoss)
}
