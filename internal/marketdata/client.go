// Package marketdata wraps the external quote feed: the ranked-list
// endpoint that populates the quote cache and the per-asset detail
// endpoint that feeds the risk classifier.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmulder/crypto-portfolio-backend/internal/apperrors"
	"github.com/jmulder/crypto-portfolio-backend/internal/config"
	"github.com/jmulder/crypto-portfolio-backend/internal/model"
)

// requestTimeout bounds every outbound call. An elapsed deadline counts as
// a transport failure, not a cancellation.
const requestTimeout = 30 * time.Second

// Client is the interface the fetcher and the risk endpoint consume.
// Tests substitute a mock; production code uses FeedClient.
type Client interface {
	TopQuotes(ctx context.Context, limit int) ([]model.Quote, RateLimit, error)
	AssetDetail(ctx context.Context, identifier string) (model.DetailedAsset, error)
}

// FeedClient talks HTTP to the market-data service.
type FeedClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewFeedClient creates a client for the given base URL. apiKey may be
// empty for the feed's anonymous tier.
func NewFeedClient(baseURL, apiKey string, logger zerolog.Logger) *FeedClient {
	return &FeedClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
		now:        time.Now,
	}
}

// TopQuotes fetches the ranked quote list, canonicalized, together with
// whatever rate-limit metadata the response carried. limit is capped at
// the feed's hard maximum.
func (c *FeedClient) TopQuotes(ctx context.Context, limit int) ([]model.Quote, RateLimit, error) {
	if limit <= 0 || limit > config.MaxCoinLimit {
		limit = config.MaxCoinLimit
	}

	url := fmt.Sprintf(
		"%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&price_change_percentage=24h,7d,30d,1y",
		c.baseURL, limit,
	)

	body, rl, err := c.get(ctx, url)
	if err != nil {
		return nil, rl, err
	}

	var dtos []quoteDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, rl, fmt.Errorf("%w: %v", apperrors.ErrDecode, err)
	}

	quotes := make([]model.Quote, len(dtos))
	for i, d := range dtos {
		quotes[i] = d.canonicalize()
	}
	return quotes, rl, nil
}

// AssetDetail fetches the supply and volume figures for one asset.
func (c *FeedClient) AssetDetail(ctx context.Context, identifier string) (model.DetailedAsset, error) {
	url := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false", c.baseURL, identifier)

	body, _, err := c.get(ctx, url)
	if err != nil {
		return model.DetailedAsset{}, err
	}

	var dto detailDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return model.DetailedAsset{}, fmt.Errorf("%w: %v", apperrors.ErrDecode, err)
	}
	return dto.canonicalize(c.now()), nil
}

// get executes a GET and maps the failure modes onto the error taxonomy:
// context cancellation passes through untouched, HTTP 429 becomes a
// RateLimitError carrying the reset instant, anything else non-200 is a
// transport failure.
func (c *FeedClient) get(ctx context.Context, url string) ([]byte, RateLimit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, RateLimit{}, fmt.Errorf("%w: %v", apperrors.ErrTransport, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, RateLimit{}, ctxErr
		}
		return nil, RateLimit{}, fmt.Errorf("%w: %v", apperrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	rl := c.parseRateLimit(resp)

	if resp.StatusCode == http.StatusTooManyRequests {
		reset := rl.ResetAt
		if reset.IsZero() {
			reset = c.retryAfter(resp)
		}
		return nil, rl, &apperrors.RateLimitError{NextAllowedAt: reset}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, rl, fmt.Errorf("%w: unexpected status %d", apperrors.ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, rl, ctxErr
		}
		return nil, rl, fmt.Errorf("%w: %v", apperrors.ErrTransport, err)
	}

	return body, rl, nil
}

// parseRateLimit extracts the quota headers. Reset is an epoch second.
func (c *FeedClient) parseRateLimit(resp *http.Response) RateLimit {
	remainingHdr := resp.Header.Get("x-ratelimit-remaining")
	resetHdr := resp.Header.Get("x-ratelimit-reset")
	if remainingHdr == "" && resetHdr == "" {
		return RateLimit{}
	}

	rl := RateLimit{Present: true}
	if n, err := strconv.Atoi(remainingHdr); err == nil {
		rl.Remaining = n
	}
	if sec, err := strconv.ParseInt(resetHdr, 10, 64); err == nil && sec > 0 {
		rl.ResetAt = time.Unix(sec, 0)
	}
	return rl
}

// retryAfter falls back to the Retry-After header for 429 responses that
// carry no reset epoch, defaulting to one minute out.
func (c *FeedClient) retryAfter(resp *http.Response) time.Time {
	if sec, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && sec > 0 {
		return c.now().Add(time.Duration(sec) * time.Second)
	}
	return c.now().Add(time.Minute)
}

// IsBenign reports whether err is a cancellation rather than a real
// failure: cancelled fetches must not be recorded as errors.
func IsBenign(err error) bool {
	return errors.Is(err, context.Canceled)
}
