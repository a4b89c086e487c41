package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/simaogato/pawnvalue-backend/internal/domain"
)

// GoldClient quotes gold per gram from the HTTP pricing service
type GoldClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGoldClient creates a client for baseURL
// requestsPerSecond <= 0 disables rate limiting
func NewGoldClient(baseURL string, timeout time.Duration, requestsPerSecond float64) *GoldClient {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}

	return &GoldClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

type goldQuoteResponse struct {
	PricePerGram string `json:"price_per_gram"`
}

type faultResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Actor   string `json:"actor"`
}

// QuoteGold implements domain.GoldPricer
func (c *GoldClient) QuoteGold(ctx context.Context, criteria domain.GoldCriteria) (decimal.Decimal, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return decimal.Zero, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	query := url.Values{}
	query.Set("metal", criteria.Metal)
	query.Set("quality", criteria.Quality)
	query.Set("range", criteria.Range)
	endpoint := c.baseURL + "/v1/gold/price?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create gold quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Caller cancellation is not a service failure
		if ctx.Err() != nil {
			return decimal.Zero, ctx.Err()
		}
		return decimal.Zero, &CommunicationError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return decimal.Zero, &CommunicationError{Err: fmt.Errorf("failed to read gold quote response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var fault faultResponse
		if json.Unmarshal(body, &fault) == nil && fault.Code != "" {
			return decimal.Zero, &ProtocolFault{Code: fault.Code, Message: fault.Message, Actor: fault.Actor}
		}
		return decimal.Zero, &CommunicationError{Err: fmt.Errorf("gold pricing service returned %s", resp.Status)}
	}

	var quote goldQuoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode gold quote: %w", err)
	}

	price, err := decimal.NewFromString(quote.PricePerGram)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse price_per_gram: %w", err)
	}

	return price, nil
}
