package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jmulder/crypto-portfolio-backend/internal/api/request"
	"github.com/jmulder/crypto-portfolio-backend/internal/api/response"
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
	"github.com/jmulder/crypto-portfolio-backend/internal/service"
)

// HoldingsHandler handles lot-ledger HTTP requests.
type HoldingsHandler struct {
	session *service.PortfolioSession
}

// NewHoldingsHandler creates a new HoldingsHandler.
func NewHoldingsHandler(session *service.PortfolioSession) *HoldingsHandler {
	return &HoldingsHandler{session: session}
}

// List returns all lots in the ledger.
//
// Endpoint: GET /api/holdings
func (h *HoldingsHandler) List(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.session.Lots())
}

// Create adds a lot to the ledger and returns it with its assigned ID.
//
// Endpoint: POST /api/holdings
// Response: 201 Created with the stored lot
// Error: 400 Bad Request on validation failure
func (h *HoldingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	purchaseDate, err := service.ParseDate(req.PurchaseDate)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid purchaseDate", err.Error())
		return
	}

	lot := model.Lot{
		Identifier:    req.Identifier,
		Symbol:        req.Symbol,
		DisplayName:   req.DisplayName,
		Amount:        req.Amount,
		PurchasePrice: req.PurchasePrice,
		PurchaseDate:  purchaseDate,
	}

	id, err := h.session.AddLot(lot)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	lot.ID = id
	response.RespondJSON(w, http.StatusCreated, lot)
}

// Update patches a lot.
//
// Endpoint: PUT /api/holdings/{lotID}
// Response: 200 OK with the updated lot
// Error: 400 on validation failure, 404 when the lot does not exist
func (h *HoldingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	lotID, ok := lotIDParam(w, r)
	if !ok {
		return
	}

	var req request.UpdateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	patch := model.LotPatch{
		Identifier:    req.Identifier,
		Symbol:        req.Symbol,
		DisplayName:   req.DisplayName,
		Amount:        req.Amount,
		PurchasePrice: req.PurchasePrice,
	}
	if req.PurchaseDate != nil {
		date, err := service.ParseDate(*req.PurchaseDate)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid purchaseDate", err.Error())
			return
		}
		patch.PurchaseDate = &date
	}

	lot, err := h.session.UpdateLot(lotID, patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, lot)
}

// Delete removes a lot. Deleting an absent lot succeeds, matching the
// ledger's idempotent remove.
//
// Endpoint: DELETE /api/holdings/{lotID}
func (h *HoldingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lotID, ok := lotIDParam(w, r)
	if !ok {
		return
	}

	if err := h.session.RemoveLot(lotID); err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Clear empties the ledger.
//
// Endpoint: DELETE /api/holdings
func (h *HoldingsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ClearLots(); err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// lotIDParam parses the lotID URL parameter, writing a 400 on failure.
func lotIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "lotID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(w, http.StatusBadRequest, "invalid lot ID", raw)
		return 0, false
	}
	return id, true
}
