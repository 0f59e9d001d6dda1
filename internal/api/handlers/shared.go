package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/jmulder/crypto-portfolio-backend/internal/api/response"
	"github.com/jmulder/crypto-portfolio-backend/internal/apperrors"
	"github.com/jmulder/crypto-portfolio-backend/internal/fetcher"
)

// respondServiceError maps service-layer errors onto HTTP statuses: user
// input problems become 400, missing entities 404, refresh denials and
// upstream rate limits 429 with the retry instant, everything else 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case isValidationError(err):
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
	case errors.Is(err, apperrors.ErrLotNotFound),
		errors.Is(err, apperrors.ErrQuoteNotFound):
		response.RespondError(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, apperrors.ErrRateLimited):
		respondRetryLater(w, err)
	case errors.Is(err, apperrors.ErrPersistence):
		response.RespondError(w, http.StatusInternalServerError, "failed to persist changes", err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		apperrors.ErrInvalidAmount,
		apperrors.ErrInvalidPurchasePrice,
		apperrors.ErrInvalidPurchaseDate,
		apperrors.ErrInvalidIdentifier,
		apperrors.ErrInvalidMaxLoss,
		apperrors.ErrInvalidTakeProfit,
		apperrors.ErrInvalidTheme,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondRetryLater sends a 429 with the instant the client may retry,
// for both upstream rate limits and locally denied refreshes.
func respondRetryLater(w http.ResponseWriter, err error) {
	body := map[string]any{"error": "rate limited"}

	var limited *apperrors.RateLimitError
	var denied *fetcher.DeniedError
	switch {
	case errors.As(err, &limited):
		body["next_allowed_at"] = limited.NextAllowedAt.UTC().Format(time.RFC3339)
	case errors.As(err, &denied) && !denied.NextAllowedAt.IsZero():
		body["next_allowed_at"] = denied.NextAllowedAt.UTC().Format(time.RFC3339)
	}

	response.RespondJSON(w, http.StatusTooManyRequests, body)
}
