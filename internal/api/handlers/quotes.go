package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jmulder/crypto-portfolio-backend/internal/api/response"
	"github.com/jmulder/crypto-portfolio-backend/internal/apperrors"
	"github.com/jmulder/crypto-portfolio-backend/internal/cache"
	"github.com/jmulder/crypto-portfolio-backend/internal/fetcher"
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
)

// QuotesHandler serves the cached quote list and the refresh control.
type QuotesHandler struct {
	quotes  *cache.QuoteCache
	fetcher *fetcher.Fetcher
}

// NewQuotesHandler creates a new QuotesHandler.
func NewQuotesHandler(quotes *cache.QuoteCache, f *fetcher.Fetcher) *QuotesHandler {
	return &QuotesHandler{quotes: quotes, fetcher: f}
}

// QuoteListResponse is the cached list plus its staleness timestamp and
// the fetcher state the UI needs for the refresh control.
type QuoteListResponse struct {
	Quotes    []model.Quote  `json:"quotes"`
	FetchedAt time.Time      `json:"fetched_at"`
	Status    fetcher.Status `json:"status"`
}

// List returns the cached quotes in rank order. Stale data is served as
// is; the timestamp tells the UI how old it is.
//
// Endpoint: GET /api/quotes
func (h *QuotesHandler) List(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, QuoteListResponse{
		Quotes:    h.quotes.List(),
		FetchedAt: h.quotes.FetchedAt(),
		Status:    h.fetcher.Status(),
	})
}

// Get returns one cached quote by identifier.
//
// Endpoint: GET /api/quotes/{identifier}
// Error: 404 when the identifier is absent from the cache
func (h *QuotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	quote, ok := h.quotes.GetByID(identifier)
	if !ok {
		response.RespondError(w, http.StatusNotFound, "quote not found", identifier)
		return
	}
	response.RespondJSON(w, http.StatusOK, quote)
}

// Refresh triggers a manual fetch. It obeys the same predicate as the
// scheduled poll: a denial returns 429 with the instant the next attempt
// is allowed, a transport failure returns 502 with the stale snapshot
// still being served.
//
// Endpoint: POST /api/quotes/refresh
func (h *QuotesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.fetcher.Refresh(r.Context()); err != nil {
		var denied *fetcher.DeniedError
		if errors.As(err, &denied) || errors.Is(err, apperrors.ErrRateLimited) {
			respondRetryLater(w, err)
			return
		}
		response.RespondError(w, http.StatusBadGateway, "quote refresh failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, QuoteListResponse{
		Quotes:    h.quotes.List(),
		FetchedAt: h.quotes.FetchedAt(),
		Status:    h.fetcher.Status(),
	})
}
